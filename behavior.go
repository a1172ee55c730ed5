package main

import (
	"math"
	"math/rand"
	"strconv"
)

// behaviorContext carries per-tick inputs to behavior updates
type behaviorContext struct {
	cfg    *Config
	rng    *rand.Rand
	delta  float64
	px, pz float64
	fx     *EnemyEffects
}

// behaviorFunc advances one enemy. Returning false removes it.
type behaviorFunc func(e *Enemy, ctx *behaviorContext) bool

// behaviorUpdates is indexed by Behavior; every variant has an entry
var behaviorUpdates = [behaviorCount]behaviorFunc{
	BehaviorChase:        updateChase,
	BehaviorSweep:        updateSweep,
	BehaviorShockwave:    updateShockwave,
	BehaviorSniperMobile: updateSniperMobile,
	BehaviorSniperFixed:  updateSniperFixed,
	BehaviorTeleport:     updateTeleport,
	BehaviorBoss:         updateChase,
}

// moveToward steps e toward (tx, tz) at its speed without overshooting
func moveToward(e *Enemy, tx, tz, speed, delta float64) {
	dx := tx - e.X
	dz := tz - e.Z
	d := math.Sqrt(dx*dx + dz*dz)
	if d < 1e-6 {
		return
	}
	step := math.Min(speed*delta, d)
	e.X += dx / d * step
	e.Z += dz / d * step
}

func updateChase(e *Enemy, ctx *behaviorContext) bool {
	moveToward(e, ctx.px, ctx.pz, e.Speed, ctx.delta)
	return true
}

func updateSweep(e *Enemy, ctx *behaviorContext) bool {
	e.X += e.SweepDirX * e.Speed * ctx.delta
	e.Z += e.SweepDirZ * e.Speed * ctx.delta
	e.DespawnTimer -= ctx.delta
	if e.DespawnTimer <= 0 {
		return false
	}
	b := ctx.cfg.ProjectileBound
	return math.Abs(e.X) <= b && math.Abs(e.Z) <= b
}

func updateShockwave(e *Enemy, ctx *behaviorContext) bool {
	moveToward(e, ctx.px, ctx.pz, e.Speed, ctx.delta)
	e.ShockwaveTimer -= ctx.delta
	if e.ShockwaveTimer > 0 {
		return true
	}
	trigger := ctx.cfg.ShockwaveRadius * 1.5
	if DistanceSq(e.X, e.Z, ctx.px, ctx.pz) <= trigger*trigger {
		ctx.fx.EmitShockwave(e.X, e.Z, ctx.cfg.ShockwaveRadius, ctx.cfg.ShockwaveDamage)
		e.ShockwaveTimer = ctx.cfg.ShockwaveInterval
	} else {
		// hold the charge until the player is close enough
		e.ShockwaveTimer = 0
	}
	return true
}

func updateSniperMobile(e *Enemy, ctx *behaviorContext) bool {
	if e.TelegraphTimer <= 0 {
		keep := ctx.cfg.SniperRange * 0.6
		d := Distance(e.X, e.Z, ctx.px, ctx.pz)
		switch {
		case d > ctx.cfg.SniperRange*0.8:
			moveToward(e, ctx.px, ctx.pz, e.Speed, ctx.delta)
		case d < keep && d > 1e-6:
			// back off along the line to the player
			e.X -= (ctx.px - e.X) / d * e.Speed * ctx.delta
			e.Z -= (ctx.pz - e.Z) / d * e.Speed * ctx.delta
		}
	}
	sniperAttack(e, ctx, ctx.cfg.SniperRange)
	return true
}

func updateSniperFixed(e *Enemy, ctx *behaviorContext) bool {
	sniperAttack(e, ctx, ctx.cfg.SniperDistanceMax*1.2)
	return true
}

// sniperAttack runs the aim-telegraph-fire cycle shared by both snipers
func sniperAttack(e *Enemy, ctx *behaviorContext, reach float64) {
	if e.TelegraphTimer > 0 {
		e.TelegraphTimer -= ctx.delta
		if e.TelegraphTimer <= 0 {
			e.TelegraphTimer = 0
			ctx.fx.FireEnemyShot(e.X, e.Z, e.AimX, e.AimZ, e.Damage)
			e.AttackTimer = ctx.cfg.SniperAttackInterval
		}
		return
	}
	e.AttackTimer -= ctx.delta
	if e.AttackTimer > 0 {
		return
	}
	if DistanceSq(e.X, e.Z, ctx.px, ctx.pz) > reach*reach {
		e.AttackTimer = 0
		return
	}
	e.AimX, e.AimZ = ctx.px, ctx.pz
	e.TelegraphTimer = ctx.cfg.SniperTelegraphTime
}

func updateTeleport(e *Enemy, ctx *behaviorContext) bool {
	moveToward(e, ctx.px, ctx.pz, e.Speed, ctx.delta)
	e.TeleportTimer -= ctx.delta
	if e.TeleportTimer <= 0 {
		a := ctx.rng.Float64() * 2 * math.Pi
		e.X = ctx.px + math.Cos(a)*ctx.cfg.TeleportDistance
		e.Z = ctx.pz + math.Sin(a)*ctx.cfg.TeleportDistance
		e.TeleportTimer = ctx.cfg.TeleportInterval
	}
	return true
}

// Shockwave is an expanding ring emitted by shockwave enemies. It hits the
// player at most once.
type Shockwave struct {
	ID          string
	X, Z        float64
	Radius      float64
	MaxRadius   float64
	Damage      float64
	ElapsedTime float64
	Duration    float64
	HitPlayer   bool
}

// EnemyEffects collects what enemies and the boss emit during a tick
type EnemyEffects struct {
	cfg        *Config
	Shots      *ProjectileStore
	BossShots  *ProjectileStore
	Shockwaves []Shockwave
	nextWave   uint64
}

// NewEnemyEffects creates the emitter with its projectile stores
func NewEnemyEffects(cfg *Config) *EnemyEffects {
	return &EnemyEffects{
		cfg:        cfg,
		Shots:      NewProjectileStore(cfg.MaxEnemyProjectiles, "ep"),
		BossShots:  NewProjectileStore(cfg.MaxEnemyProjectiles, "bp"),
		Shockwaves: make([]Shockwave, 0, 16),
	}
}

// FireEnemyShot launches an enemy projectile from (x, z) toward (tx, tz)
func (fx *EnemyEffects) FireEnemyShot(x, z, tx, tz, damage float64) bool {
	dx, dz := tx-x, tz-z
	d := math.Sqrt(dx*dx + dz*dz)
	if d < 1e-6 {
		return false
	}
	return fx.Shots.Spawn(Projectile{
		X: x, Z: z,
		DirX: dx / d, DirZ: dz / d,
		Speed:    fx.cfg.SniperProjectileSpeed,
		Damage:   damage,
		Radius:   fx.cfg.EnemyProjectileRadius,
		Lifetime: fx.cfg.EnemyProjectileLife,
		Category: CatEnemyProjectile,
	})
}

// FireBossShot launches a boss projectile along angle
func (fx *EnemyEffects) FireBossShot(x, z, angle, damage float64) bool {
	return fx.BossShots.Spawn(Projectile{
		X: x, Z: z,
		DirX: math.Cos(angle), DirZ: math.Sin(angle),
		Speed:    fx.cfg.BossProjectileSpeed,
		Damage:   damage,
		Radius:   fx.cfg.EnemyProjectileRadius * 1.5,
		Lifetime: fx.cfg.EnemyProjectileLife,
		Category: CatBossProjectile,
	})
}

// EmitShockwave starts a ring at (x, z)
func (fx *EnemyEffects) EmitShockwave(x, z, maxRadius, damage float64) {
	fx.nextWave++
	fx.Shockwaves = append(fx.Shockwaves, Shockwave{
		ID:        "sw" + strconv.FormatUint(fx.nextWave, 10),
		X:         x,
		Z:         z,
		MaxRadius: maxRadius,
		Damage:    damage,
		Duration:  fx.cfg.ShockwaveDuration,
	})
}

// TickShockwaves grows rings and drops finished ones
func (fx *EnemyEffects) TickShockwaves(delta float64) {
	n := len(fx.Shockwaves)
	for i := 0; i < n; {
		w := &fx.Shockwaves[i]
		w.ElapsedTime += delta
		if w.ElapsedTime < w.Duration {
			w.Radius = w.MaxRadius * w.ElapsedTime / w.Duration
			i++
			continue
		}
		n--
		fx.Shockwaves[i] = fx.Shockwaves[n]
	}
	fx.Shockwaves = fx.Shockwaves[:n]
}

// Reset clears every emitted effect
func (fx *EnemyEffects) Reset() {
	fx.Shots.Reset()
	fx.BossShots.Reset()
	fx.Shockwaves = fx.Shockwaves[:0]
	fx.nextWave = 0
}
