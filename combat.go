package main

import (
	"errors"
	"math"
)

var errNoOffer = errors.New("no such upgrade offer")

// RareBombDamage is dealt to every enemy when a bomb item is collected
const RareBombDamage = 60.0

// projectileTarget finds what a player projectile hit this frame: the first
// overlapping enemy, else the first enemy its path crossed. Returns nil on
// a miss.
func (s *Simulation) projectileTarget(c *Collider, p *Projectile) *Collider {
	if hits := s.collision.QueryCollisions(c, CatEnemy); len(hits) > 0 {
		return hits[0]
	}
	// swept test against targets the endpoint check missed
	dx := p.X - p.PrevX
	dz := p.Z - p.PrevZ
	seg := math.Sqrt(dx*dx + dz*dz)
	if seg == 0 {
		return nil
	}
	midX := (p.X + p.PrevX) / 2
	midZ := (p.Z + p.PrevZ) / 2
	var best *Collider
	bestD := math.MaxFloat64
	for _, other := range s.collision.QueryNearby(midX, midZ, seg/2+p.Radius+s.maxEnemyRadius) {
		if other.Category != CatEnemy {
			continue
		}
		if !SweptCircleHit(p.PrevX, p.PrevZ, p.X, p.Z, other.X, other.Z, other.Radius+p.Radius) {
			continue
		}
		// earliest along the path
		if d := DistanceSq(p.PrevX, p.PrevZ, other.X, other.Z); d < bestD {
			bestD = d
			best = other
		}
	}
	return best
}

// resolveProjectileHits deactivates each player projectile on its first hit
// and applies all enemy damage as one batch
func (s *Simulation) resolveProjectileHits() {
	s.hits = s.hits[:0]
	projs := s.projectiles.Items()
	boss := s.boss.Boss()
	for i := s.projFrom; i < s.projTo; i++ {
		c := s.colliders.Acquire(i)
		p := &projs[c.Index]
		if !p.Active {
			continue
		}
		if target := s.projectileTarget(c, p); target != nil {
			p.Active = false
			s.hits = append(s.hits, DamageHit{
				EnemyID:   target.ID,
				Damage:    p.Damage,
				FromX:     p.PrevX,
				FromZ:     p.PrevZ,
				Knockback: p.Knockback,
			})
			continue
		}
		if !s.boss.Alive() {
			continue
		}
		if CirclesOverlap(p.X, p.Z, p.Radius, boss.X, boss.Z, boss.Radius) ||
			SweptCircleHit(p.PrevX, p.PrevZ, p.X, p.Z, boss.X, boss.Z, boss.Radius+p.Radius) {
			p.Active = false
			s.Stats.DamageDealt += math.Min(p.Damage, boss.HP)
			if s.boss.Damage(p.Damage) {
				s.onBossDefeated()
			}
		}
	}
	s.applyEnemyDamage(s.hits)
}

// applyEnemyDamage runs one batched damage call and handles the deaths
func (s *Simulation) applyEnemyDamage(hits []DamageHit) {
	if len(hits) == 0 {
		return
	}
	for _, h := range hits {
		s.Stats.DamageDealt += h.Damage
	}
	for _, res := range s.enemies.DamageEnemiesBatch(hits) {
		if res.Killed {
			s.onEnemyKilled(&res.Death)
		}
	}
}

func (s *Simulation) onEnemyKilled(d *EnemyDeath) {
	s.Stats.Kills++
	if d.Elite {
		s.Stats.EliteKills++
	}
	s.player.Player().Kills++
	s.loot.RollDrops(d.TypeID, d.X, d.Z, d)
	s.particles.EmitBurst(s.rng, d.X, d.Z, d.Color, s.cfg.DeathParticleCount, s.cfg.ParticleSpeed, s.cfg.ParticleLifetime)
	s.emit(SimEvent{Kind: EventKill, TypeID: d.TypeID, X: d.X, Z: d.Z, Value: float64(d.XPReward)})
}

func (s *Simulation) onBossDefeated() {
	b := s.boss.Boss()
	s.Stats.BossKills++
	s.emit(SimEvent{Kind: EventBossDefeated, X: b.X, Z: b.Z})
	// boss loot: a ring of rare XP and fragments
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		x := b.X + math.Cos(a)*b.Radius
		z := b.Z + math.Sin(a)*b.Radius
		s.xpOrbs.SpawnOrb(x, z, 10*float64(s.SystemNum)*s.cfg.RareXPGemMultiplier, true)
		s.fragments.SpawnGem(x, z, 5*s.cfg.FragmentGemValue)
	}
}

// resolvePlayerHits applies contact, projectile and shockwave damage to the
// player. Must run after projectile damage so enemies killed this frame
// deal no contact damage.
func (s *Simulation) resolvePlayerHits(p *Player, pc *Collider) {
	if !p.Alive {
		return
	}
	hpBefore := p.HP

	if s.player.CanTakeContact() {
		contact := 0.0
		for _, c := range s.collision.QueryCollisions(pc, CatEnemy) {
			// re-read: the collider may belong to an enemy killed above
			if e := s.enemies.Find(c.ID); e != nil {
				contact += e.Damage
			}
		}
		if s.boss.Alive() && len(s.collision.QueryCollisions(pc, CatBoss)) > 0 {
			contact += s.boss.Boss().ContactDamage
		}
		s.player.TakeContactDamage(contact)
	}

	s.hitPlayerWith(pc, s.fx.Shots, CatEnemyProjectile)
	s.hitPlayerWith(pc, s.fx.BossShots, CatBossProjectile)

	if s.collision.CheckPair(CatPlayer, CatShockwave) {
		for i := range s.fx.Shockwaves {
			w := &s.fx.Shockwaves[i]
			if w.HitPlayer {
				continue
			}
			// the ring front passes over the player
			d := Distance(w.X, w.Z, p.X, p.Z)
			if d <= w.Radius+p.Radius && d >= w.Radius-p.Radius-1 {
				w.HitPlayer = true
				s.player.TakeDamage(w.Damage)
			}
		}
	}

	if p.HP < hpBefore {
		s.Stats.DamageTaken += hpBefore - p.HP
	}
}

// hitPlayerWith consumes every hostile projectile of cat touching the
// player, including ones that crossed the player between frames
func (s *Simulation) hitPlayerWith(pc *Collider, store *ProjectileStore, cat Category) {
	shots := store.Items()
	for _, c := range s.collision.QueryCollisions(pc, cat) {
		sh := &shots[c.Index]
		if sh.Active {
			sh.Active = false
			s.player.TakeDamage(sh.Damage)
		}
	}
	if !s.collision.CheckPair(cat, CatPlayer) {
		return
	}
	for i := range shots {
		sh := &shots[i]
		if !sh.Active {
			continue
		}
		if SweptCircleHit(sh.PrevX, sh.PrevZ, sh.X, sh.Z, pc.X, pc.Z, pc.Radius+sh.Radius) {
			sh.Active = false
			s.player.TakeDamage(sh.Damage)
		}
	}
}

// applyRareItem triggers a collected rare item
func (s *Simulation) applyRareItem(pk Pickup) {
	s.Stats.RareItems++
	p := s.player.Player()
	s.emit(SimEvent{Kind: EventRareItem, TypeID: pk.ItemType.String(), X: pk.X, Z: pk.Z})
	switch pk.ItemType {
	case RareMagnet:
		s.xpOrbs.MagnetizeAll()
		s.fragments.MagnetizeAll()
	case RareBomb:
		enemies := s.enemies.Enemies()
		hits := make([]DamageHit, 0, len(enemies))
		for i := range enemies {
			hits = append(hits, DamageHit{EnemyID: enemies[i].ID, Damage: RareBombDamage})
		}
		s.applyEnemyDamage(hits)
	case RareRepair:
		s.player.Heal(p.MaxHP)
	}
}
