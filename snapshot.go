package main

// ToState converts the player for broadcast
func (p *Player) ToState(weapons []WeaponSlot) PlayerState {
	ps := PlayerState{
		X:         round1(p.X),
		Z:         round1(p.Z),
		R:         p.Rotation,
		HP:        p.HP,
		MaxHP:     p.MaxHP,
		Alive:     p.Alive,
		Ship:      int(p.Ship),
		Level:     p.Level,
		XP:        p.XP,
		XPToNext:  p.XPToNext,
		Fragments: p.Fragments,
		Invuln:    p.InvulnTimer > 0,
		AbilityCD: p.Ability.Cooldown,
		AbilityOn: p.Ability.Active,
		ShieldHP:  p.Ability.ShieldHP,
		Weapons:   make([]WeaponState, len(weapons)),
	}
	for i, w := range weapons {
		ps.Weapons[i] = WeaponState{ID: w.ID, Level: w.Level}
	}
	return ps
}

// ToState converts an enemy for broadcast
func (e *Enemy) ToState() EnemyState {
	return EnemyState{
		ID:        e.NumID,
		TypeID:    e.TypeID,
		X:         round1(e.X),
		Z:         round1(e.Z),
		HP:        e.HP,
		MaxHP:     e.MaxHP,
		Radius:    e.Radius,
		Hit:       e.HitFlashTimer > 0,
		Telegraph: e.TelegraphTimer > 0,
	}
}

// ToState converts the boss for broadcast
func (b *Boss) ToState() *BossState {
	return &BossState{
		X:         round1(b.X),
		Z:         round1(b.Z),
		HP:        b.HP,
		MaxHP:     b.MaxHP,
		Radius:    b.Radius,
		Phase:     b.Phase,
		Hit:       b.HitFlashTimer > 0,
		Defeating: b.Defeating,
	}
}

// ToState converts a projectile for broadcast
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		X:      round1(p.X),
		Z:      round1(p.Z),
		DirX:   p.DirX,
		DirZ:   p.DirZ,
		Radius: p.Radius,
		Weapon: p.WeaponID,
	}
}

func appendProjectiles(dst []ProjectileState, projs []Projectile) []ProjectileState {
	for i := range projs {
		if projs[i].Active {
			dst = append(dst, projs[i].ToState())
		}
	}
	return dst
}

func appendPickups(dst []PickupState, pool *PickupPool) []PickupState {
	kind := int(pool.Kind())
	for _, pk := range pool.Slots() {
		ps := PickupState{
			ID:     pk.ID,
			Kind:   kind,
			X:      round1(pk.X),
			Z:      round1(pk.Z),
			Rare:   pk.IsRare,
			Magnet: pk.IsMagnetized,
		}
		if pool.Kind() == PickupRareItem {
			ps.Item = pk.ItemType.String()
		}
		dst = append(dst, ps)
	}
	return dst
}

// Snapshot copies everything a client needs to draw the current frame.
// The result shares no memory with the simulation.
func (s *Simulation) Snapshot() GameState {
	p := s.player.Player()
	enemies := s.enemies.Enemies()
	gs := GameState{
		Tick:    s.tick,
		Phase:   s.Phase.String(),
		System:  s.SystemNum,
		Time:    s.SystemTime,
		Player:  p.ToState(s.weapons.Slots()),
		Enemies: make([]EnemyState, 0, len(enemies)),
		Stats:   s.Stats,
	}
	for i := range enemies {
		gs.Enemies = append(gs.Enemies, enemies[i].ToState())
	}
	if b := s.boss.Boss(); b.Active {
		gs.Boss = b.ToState()
	}

	gs.Projectiles = appendProjectiles(make([]ProjectileState, 0, s.projectiles.Count()), s.projectiles.Items())
	gs.Hostile = make([]ProjectileState, 0, s.fx.Shots.Count()+s.fx.BossShots.Count())
	gs.Hostile = appendProjectiles(gs.Hostile, s.fx.Shots.Items())
	gs.Hostile = appendProjectiles(gs.Hostile, s.fx.BossShots.Items())
	for _, w := range s.fx.Shockwaves {
		gs.Shockwaves = append(gs.Shockwaves, ShockwaveState{X: round1(w.X), Z: round1(w.Z), Radius: w.Radius})
	}

	n := s.xpOrbs.ActiveCount() + s.healGems.ActiveCount() + s.fragments.ActiveCount() + s.rareItems.ActiveCount()
	gs.Pickups = make([]PickupState, 0, n)
	gs.Pickups = appendPickups(gs.Pickups, s.xpOrbs.PickupPool)
	gs.Pickups = appendPickups(gs.Pickups, s.healGems.PickupPool)
	gs.Pickups = appendPickups(gs.Pickups, s.fragments.PickupPool)
	gs.Pickups = appendPickups(gs.Pickups, s.rareItems.PickupPool)

	if s.Wormhole.Active {
		gs.Wormhole = &WormholeState{X: s.Wormhole.X, Z: s.Wormhole.Z, Radius: s.Wormhole.Radius}
	}
	if len(s.events) > 0 {
		gs.Events = append([]SimEvent(nil), s.events...)
	}
	if len(s.Offers) > 0 {
		gs.Offers = append([]UpgradeOffer(nil), s.Offers...)
	}
	return gs
}
