package main

import (
	"math"
	"math/rand"
)

// Wormhole opens where the boss died and carries the player to the next
// system
type Wormhole struct {
	Active bool
	X, Z   float64
	Radius float64
}

// SimEvent is a notable thing that happened during one tick
type SimEvent struct {
	Kind   string  `msgpack:"k"`
	TypeID string  `msgpack:"id,omitempty"`
	X      float64 `msgpack:"x"`
	Z      float64 `msgpack:"z"`
	Value  float64 `msgpack:"v,omitempty"`
}

// Event kinds
const (
	EventKill         = "kill"
	EventLevelUp      = "level_up"
	EventBossSpawn    = "boss_spawn"
	EventBossDefeated = "boss_defeated"
	EventWormhole     = "wormhole"
	EventSystem       = "system"
	EventGameOver     = "game_over"
	EventVictory      = "victory"
	EventRareItem     = "rare_item"
)

// Simulation owns every store, pool and system for one run. It is not safe
// for concurrent use; the owning game loop serialises access.
type Simulation struct {
	cfg  *Config
	defs *Definitions
	rng  *rand.Rand
	run  RunConfig

	Phase      RunPhase
	SystemNum  int
	SystemTime float64
	Wormhole   Wormhole
	Stats      RunStats
	Offers     []UpgradeOffer
	Ranks      map[string]int // permanent upgrade ranks applied at run start

	player      *PlayerStore
	enemies     *EnemyStore
	boss        *BossStore
	weapons     *WeaponStore
	projectiles *ProjectileStore
	fx          *EnemyEffects

	spawner    *SpawnSystem
	separation *SeparationSystem
	collision  *CollisionSystem
	colliders  *ColliderPool
	loot       *LootSystem

	xpOrbs    XPOrbPool
	healGems  HealGemPool
	fragments FragmentGemPool
	rareItems RareItemPool
	particles *ParticlePool
	trails    *TrailPool

	needsReset     bool
	maxEnemyRadius float64
	projFrom       int // player projectile colliders are [projFrom, projTo)
	projTo         int
	loadout        []string
	hits           []DamageHit
	events         []SimEvent
	tick           uint64
}

// NewSimulation wires every system for a run
func NewSimulation(cfg *Config, defs *Definitions, run RunConfig) *Simulation {
	rng := NewRand(run.Seed)
	s := &Simulation{
		cfg:         cfg,
		defs:        defs,
		rng:         rng,
		run:         run,
		Phase:       PhaseLobby,
		SystemNum:   1,
		Ranks:       map[string]int{},
		player:      NewPlayerStore(cfg),
		enemies:     NewEnemyStore(cfg, defs, rng),
		boss:        NewBossStore(cfg),
		weapons:     NewWeaponStore(cfg, defs),
		projectiles: NewProjectileStore(cfg.MaxProjectiles, "p"),
		fx:          NewEnemyEffects(cfg),
		spawner:     NewSpawnSystem(cfg, defs, rng),
		separation:  NewSeparationSystem(cfg),
		collision:   NewCollisionSystem(cfg.CollisionCellSize),
		colliders:   NewColliderPool(1 + cfg.MaxEnemies + 1 + cfg.MaxProjectiles + 2*cfg.MaxEnemyProjectiles),
		xpOrbs:      NewXPOrbPool(cfg),
		healGems:    NewHealGemPool(cfg),
		fragments:   NewFragmentGemPool(cfg),
		rareItems:   NewRareItemPool(cfg),
		particles:   NewParticlePool(cfg.MaxParticles),
		trails:      NewTrailPool(cfg.MaxTrailParticles, cfg.TrailEmitInterval, cfg.TrailLifetime),
		hits:        make([]DamageHit, 0, cfg.MaxProjectiles),
		events:      make([]SimEvent, 0, 32),
	}
	s.loot = NewLootSystem(cfg, defs, rng, s.xpOrbs)
	RegisterDefaultLoot(s.loot, s.healGems, s.fragments, s.rareItems)
	s.player.Init(run.Ship)
	s.loadout = []string{GetClassDef(run.Ship).StartWeapon}
	for _, def := range defs.Enemies {
		s.maxEnemyRadius = math.Max(s.maxEnemyRadius, def.Radius)
	}
	return s
}

// Accessors for the stores. Callers outside the game loop must go through
// Snapshot instead.
func (s *Simulation) Player() *PlayerStore { return s.player }
func (s *Simulation) Enemies() *EnemyStore { return s.enemies }
func (s *Simulation) Boss() *BossStore { return s.boss }
func (s *Simulation) Weapons() *WeaponStore { return s.weapons }
func (s *Simulation) Projectiles() *ProjectileStore { return s.projectiles }
func (s *Simulation) Effects() *EnemyEffects { return s.fx }
func (s *Simulation) Spawner() *SpawnSystem { return s.spawner }
func (s *Simulation) Loot() *LootSystem { return s.loot }
func (s *Simulation) XPOrbs() XPOrbPool { return s.xpOrbs }
func (s *Simulation) HealGems() HealGemPool { return s.healGems }
func (s *Simulation) FragmentGems() FragmentGemPool { return s.fragments }
func (s *Simulation) RareItems() RareItemPool { return s.rareItems }
func (s *Simulation) Particles() *ParticlePool { return s.particles }
func (s *Simulation) Trails() *TrailPool { return s.trails }
func (s *Simulation) Run() RunConfig { return s.run }
func (s *Simulation) TickCount() uint64 { return s.tick }

// Events returns what happened during the last tick. Reused by the next
// tick.
func (s *Simulation) Events() []SimEvent { return s.events }

// ClearEvents drops the events once a caller has consumed them, so a tick
// that does not run leaves nothing behind
func (s *Simulation) ClearEvents() { s.events = s.events[:0] }

// Start enters gameplay. Permanent upgrades in ranks are applied to the
// fresh player. The first tick afterwards resets the per-frame systems.
func (s *Simulation) Start(ranks map[string]int) {
	if s.Phase != PhaseLobby {
		return
	}
	for k, v := range ranks {
		s.Ranks[k] = v
	}
	for _, id := range ApplyPermanentUpgrades(s.Ranks, s.player) {
		if id != s.loadout[0] {
			s.loadout = append(s.loadout, id)
		}
	}
	s.Phase = PhasePlaying
	s.needsReset = true
}

// SetPaused pauses or resumes a running game
func (s *Simulation) SetPaused(paused bool) {
	switch {
	case paused && s.Phase == PhasePlaying:
		s.Phase = PhasePaused
	case !paused && s.Phase == PhasePaused:
		s.Phase = PhasePlaying
	}
}

// ChooseUpgrade applies one of the pending level-up offers
func (s *Simulation) ChooseUpgrade(index int) error {
	if s.Phase != PhaseLevelUp || index < 0 || index >= len(s.Offers) {
		return errNoOffer
	}
	if err := ApplyUpgrade(s.Offers[index], s.player, s.weapons); err != nil {
		return err
	}
	p := s.player.Player()
	if p.PendingLevelUps > 0 {
		p.PendingLevelUps--
	}
	s.Offers = nil
	if p.PendingLevelUps > 0 {
		s.Offers = RollUpgradeOffers(s.rng, s.defs, s.weapons, s.cfg.UpgradeOfferCount)
		return nil
	}
	s.Phase = PhasePlaying
	return nil
}

func (s *Simulation) emit(ev SimEvent) {
	s.events = append(s.events, ev)
}

// enterGameplay runs on the first frame after gameplay starts
func (s *Simulation) enterGameplay() {
	s.spawner.Reset()
	s.projectiles.Reset()
	s.fx.Reset()
	s.particles.Reset()
	s.trails.Reset()
	if len(s.weapons.Slots()) == 0 {
		s.weapons.Init(s.loadout)
	} else {
		s.weapons.Reset()
	}
	s.needsReset = false
}

func (s *Simulation) spawnOptions() SpawnOptions {
	return SpawnOptions{
		SystemNum:   s.SystemNum,
		SystemTimer: s.cfg.SystemTimer,
		CurseBonus:  s.player.Player().CurseBonus,
		Scaling:     s.systemScaling(),
	}
}

func (s *Simulation) systemScaling() *StatScaling {
	if s.SystemNum <= 1 {
		return nil
	}
	return &StatScaling{
		HP:     SystemMultiplier(s.SystemNum, s.cfg.SystemHPScale),
		Damage: SystemMultiplier(s.SystemNum, s.cfg.SystemDamageScale),
		Speed:  SystemMultiplier(s.SystemNum, s.cfg.SystemSpeedScale),
		XP:     SystemMultiplier(s.SystemNum, s.cfg.SystemXPScale),
	}
}

// Tick advances the simulation by one frame. Only runs while playing.
func (s *Simulation) Tick(delta float64, in Input) {
	if s.Phase != PhasePlaying {
		return
	}
	if delta > s.cfg.MaxFrameDelta {
		delta = s.cfg.MaxFrameDelta
	}
	if delta <= 0 {
		return
	}
	s.events = s.events[:0]
	s.tick++
	if s.needsReset {
		s.enterGameplay()
	}
	p := s.player.Player()

	// 1-2. input and player movement
	s.player.Tick(delta, in)
	if in.Ability && p.Ability.Activate() {
		s.useAbility(p)
	}

	// 3. weapons
	s.weapons.Tick(delta, p, s.enemies.Enemies(), s.projectiles)

	// 4. projectile motion, then drop expired shots
	s.projectiles.Tick(delta, s.cfg.ProjectileBound, s.enemies.Enemies())
	s.projectiles.Compact()
	s.fx.Shots.Tick(delta, s.cfg.ProjectileBound, nil)
	s.fx.Shots.Compact()
	s.fx.BossShots.Tick(delta, s.cfg.ProjectileBound, nil)
	s.fx.BossShots.Compact()
	s.trails.EmitFor(s.projectiles.Items(), delta)

	// 5. spawning and enemy AI
	if !s.boss.BossDefeated() {
		batch := s.spawner.Tick(delta, p.X, p.Z, s.spawnOptions())
		s.enemies.SpawnBatch(batch)
	}
	s.enemies.Tick(delta, p.X, p.Z, s.fx)
	if n := s.boss.Tick(delta, p.X, p.Z, s.fx); n > 0 {
		b := s.boss.Boss()
		for i := 0; i < n; i++ {
			ox := b.X + (s.rng.Float64()*2-1)*b.Radius
			oz := b.Z + (s.rng.Float64()*2-1)*b.Radius
			s.particles.EmitBurst(s.rng, ox, oz, "#ffdd00", s.cfg.DeathParticleCount, s.cfg.ParticleSpeed, s.cfg.ParticleLifetime)
		}
	}
	s.separation.ApplySeparation(s.enemies.Enemies(), s.boss.Boss(), delta)
	s.fx.TickShockwaves(delta)

	// 6. collision registration
	pc := s.registerColliders(p)

	// 7. damage
	s.loot.Luck = p.Luck
	s.resolveProjectileHits()
	s.resolvePlayerHits(p, pc)
	if !p.Alive {
		s.Phase = PhaseGameOver
		s.emit(SimEvent{Kind: EventGameOver, X: p.X, Z: p.Z})
	}

	// 8. second projectile cleanup
	s.projectiles.Compact()
	s.fx.Shots.Compact()
	s.fx.BossShots.Compact()

	// 9. pickups, progression and system flow
	s.updatePickups(delta, p)
	s.particles.Update(delta)
	s.trails.Update(delta)
	if s.Phase == PhaseGameOver {
		return
	}
	s.Stats.TimeAlive += delta
	s.advanceSystemClock(delta, p)
}

func (s *Simulation) useAbility(p *Player) {
	switch p.Ability.Type {
	case AbilityMissileBarrage:
		for i := 0; i < MissileBarrageCount; i++ {
			a := p.Rotation + (float64(i)-float64(MissileBarrageCount-1)/2)*0.25
			s.projectiles.Spawn(Projectile{
				X: p.X, Z: p.Z,
				DirX: math.Cos(a), DirZ: math.Sin(a),
				Speed:    MissileBarrageSpeed,
				Damage:   MissileBarrageDamage * p.DamageMul,
				Radius:   0.5,
				Lifetime: MissileBarrageLifetime,
				Homing:   true,
				TurnRate: MissileBarrageTurnRate,
				WeaponID: "barrage",
				Category: CatProjectile,
			})
		}
	case AbilityBlink:
		b := s.cfg.PlayAreaBound
		p.X = Clamp(p.X+math.Cos(p.Rotation)*BlinkDistance, -b, b)
		p.Z = Clamp(p.Z+math.Sin(p.Rotation)*BlinkDistance, -b, b)
	}
}

// registerColliders rebuilds the collision hash from the arena. Returns the
// player's collider.
func (s *Simulation) registerColliders(p *Player) *Collider {
	s.collision.Clear()
	n := 0
	next := func(id string, index int, x, z, r float64, cat Category) *Collider {
		c := s.colliders.Acquire(n)
		n++
		c.ID, c.Index, c.X, c.Z, c.Radius, c.Category = id, index, x, z, r, cat
		s.collision.RegisterEntity(c)
		return c
	}

	pc := next("player", 0, p.X, p.Z, p.Radius, CatPlayer)
	enemies := s.enemies.Enemies()
	for i := range enemies {
		e := &enemies[i]
		next(e.ID, i, e.X, e.Z, e.Radius, CatEnemy)
	}
	if s.boss.Alive() {
		b := s.boss.Boss()
		next("boss", 0, b.X, b.Z, b.Radius, CatBoss)
	}
	s.projFrom = n
	projs := s.projectiles.Items()
	for i := range projs {
		if projs[i].Active {
			next(projs[i].ID, i, projs[i].X, projs[i].Z, projs[i].Radius, CatProjectile)
		}
	}
	s.projTo = n
	shots := s.fx.Shots.Items()
	for i := range shots {
		if shots[i].Active {
			next(shots[i].ID, i, shots[i].X, shots[i].Z, shots[i].Radius, CatEnemyProjectile)
		}
	}
	bossShots := s.fx.BossShots.Items()
	for i := range bossShots {
		if bossShots[i].Active {
			next(bossShots[i].ID, i, bossShots[i].X, bossShots[i].Z, bossShots[i].Radius, CatBossProjectile)
		}
	}
	return pc
}

// updatePickups magnetizes, ages and collects every pickup pool
func (s *Simulation) updatePickups(delta float64, p *Player) {
	if !p.Alive {
		return
	}
	radius := s.cfg.PickupCollectRadius + p.Radius

	s.xpOrbs.UpdateMagnetization(p.X, p.Z, delta, p.PickupRadiusMul)
	s.xpOrbs.Update(delta)
	gained := 0
	s.xpOrbs.CollectInRange(p.X, p.Z, radius, func(pk Pickup) {
		s.Stats.XPCollected += pk.Value
		gained += s.player.AddXP(pk.Value)
	})

	s.healGems.UpdateMagnetization(p.X, p.Z, delta, p.PickupRadiusMul)
	s.healGems.Update(delta)
	s.healGems.CollectInRange(p.X, p.Z, radius, func(pk Pickup) {
		s.player.Heal(pk.Value)
	})

	s.fragments.UpdateMagnetization(p.X, p.Z, delta, p.PickupRadiusMul)
	s.fragments.Update(delta)
	s.fragments.CollectInRange(p.X, p.Z, radius, func(pk Pickup) {
		p.Fragments += int(pk.Value)
		s.Stats.Fragments += int(pk.Value)
	})

	s.rareItems.UpdateMagnetization(p.X, p.Z, delta, p.PickupRadiusMul)
	s.rareItems.Update(delta)
	s.rareItems.CollectInRange(p.X, p.Z, radius, s.applyRareItem)

	if gained > 0 {
		s.emit(SimEvent{Kind: EventLevelUp, X: p.X, Z: p.Z, Value: float64(p.Level)})
		if s.Phase == PhasePlaying {
			s.Offers = RollUpgradeOffers(s.rng, s.defs, s.weapons, s.cfg.UpgradeOfferCount)
			if len(s.Offers) > 0 {
				s.Phase = PhaseLevelUp
			}
		}
	}
}

// advanceSystemClock spawns the boss when the system timer runs out, then
// opens the wormhole once the defeat timeline has finished
func (s *Simulation) advanceSystemClock(delta float64, p *Player) {
	s.SystemTime += delta
	if !s.boss.Spawned() && s.SystemTime >= s.cfg.SystemTimer {
		a := s.rng.Float64() * 2 * math.Pi
		b := s.cfg.PlayAreaBound
		x := Clamp(p.X+math.Cos(a)*s.cfg.BossSpawnDistance, -b, b)
		z := Clamp(p.Z+math.Sin(a)*s.cfg.BossSpawnDistance, -b, b)
		if s.boss.Spawn(s.SystemNum, x, z, nil) {
			s.emit(SimEvent{Kind: EventBossSpawn, X: x, Z: z})
		}
	}

	bs := s.boss.Boss()
	if !s.boss.BossDefeated() || bs.Active || s.Wormhole.Active {
		if s.Wormhole.Active && CirclesOverlap(p.X, p.Z, p.Radius, s.Wormhole.X, s.Wormhole.Z, s.Wormhole.Radius) {
			s.AdvanceSystem()
		}
		return
	}
	s.Stats.SystemsCleared++
	if s.run.IsFinalSystem(s.SystemNum) {
		s.Phase = PhaseVictory
		s.emit(SimEvent{Kind: EventVictory, X: p.X, Z: p.Z, Value: float64(s.SystemNum)})
		return
	}
	s.Wormhole = Wormhole{Active: true, X: bs.X, Z: bs.Z, Radius: s.cfg.WormholeRadius}
	s.emit(SimEvent{Kind: EventWormhole, X: bs.X, Z: bs.Z})
}
