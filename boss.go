package main

import "math"

// Boss is the singleton end-of-system enemy. It is not part of the pooled
// enemy array and never receives knockback.
type Boss struct {
	Active           bool
	X, Z             float64
	HP               float64
	MaxHP            float64
	Radius           float64
	Speed            float64
	ContactDamage    float64
	DamageMultiplier float64 // frozen at spawn from system scaling
	Phase            int
	AttackTimer      float64
	HitFlashTimer    float64
	SystemNum        int

	Defeating            bool
	DefeatAnimationTimer float64
	DefeatExplosionCount int
	spiral               float64
}

// BossStore owns the boss singleton and the per-system defeat flag
type BossStore struct {
	cfg      *Config
	boss     Boss
	defeated bool
}

// NewBossStore creates an empty boss store
func NewBossStore(cfg *Config) *BossStore {
	return &BossStore{cfg: cfg}
}

// Boss returns the singleton. Active is false when no fight is running.
func (s *BossStore) Boss() *Boss { return &s.boss }

// Alive reports whether the boss is fighting
func (s *BossStore) Alive() bool {
	return s.boss.Active && !s.boss.Defeating && s.boss.HP > 0
}

// BossDefeated reports whether this system's boss has been destroyed
func (s *BossStore) BossDefeated() bool { return s.defeated }

// Spawned reports whether a boss exists for this system, alive or dying
func (s *BossStore) Spawned() bool { return s.boss.Active || s.defeated }

// SystemMultiplier returns the stat multiplier for a system number
func SystemMultiplier(systemNum int, perSystem float64) float64 {
	if systemNum < 1 {
		systemNum = 1
	}
	return 1 + perSystem*float64(systemNum-1)
}

// Spawn starts the boss fight. Ignored while a boss is already active.
func (s *BossStore) Spawn(systemNum int, x, z float64, scaling *StatScaling) bool {
	if s.boss.Active {
		return false
	}
	hpMul, dmgMul, spdMul := 1.0, 1.0, 1.0
	if scaling != nil {
		hpMul = scaleOr1(scaling.HP)
		dmgMul = scaleOr1(scaling.Damage)
		spdMul = scaleOr1(scaling.Speed)
	}
	hp := s.cfg.BossBaseHP * SystemMultiplier(systemNum, s.cfg.SystemHPScale) * hpMul
	dmul := SystemMultiplier(systemNum, s.cfg.SystemDamageScale) * dmgMul
	s.boss = Boss{
		Active:           true,
		X:                x,
		Z:                z,
		HP:               hp,
		MaxHP:            hp,
		Radius:           s.cfg.BossRadius,
		Speed:            s.cfg.BossSpeed * SystemMultiplier(systemNum, s.cfg.SystemSpeedScale) * spdMul,
		ContactDamage:    s.cfg.BossContactDamage * dmul,
		DamageMultiplier: dmul,
		Phase:            1,
		AttackTimer:      s.cfg.BossAttackInterval,
		SystemNum:        systemNum,
	}
	s.defeated = false
	return true
}

// Damage applies amount to a fighting boss. Returns true on the killing
// blow, which starts the defeat timeline.
func (s *BossStore) Damage(amount float64) bool {
	if !s.Alive() || amount <= 0 {
		return false
	}
	b := &s.boss
	b.HP -= amount
	b.HitFlashTimer = s.cfg.HitFlashDuration
	if b.HP > 0 {
		b.Phase = phaseForFraction(b.HP / b.MaxHP)
		return false
	}
	b.HP = 0
	b.Defeating = true
	b.DefeatAnimationTimer = s.cfg.BossDefeatDuration
	b.DefeatExplosionCount = 0
	s.defeated = true
	return true
}

func phaseForFraction(f float64) int {
	switch {
	case f > 2.0/3:
		return 1
	case f > 1.0/3:
		return 2
	}
	return 3
}

// Tick moves and fires while fighting, or advances the defeat timeline.
// Returns the number of defeat explosions due this frame.
func (s *BossStore) Tick(delta, px, pz float64, fx *EnemyEffects) int {
	b := &s.boss
	if !b.Active {
		return 0
	}
	if b.HitFlashTimer > 0 {
		b.HitFlashTimer = math.Max(0, b.HitFlashTimer-delta)
	}
	if b.Defeating {
		return s.tickDefeat(delta)
	}

	dx := px - b.X
	dz := pz - b.Z
	d := math.Sqrt(dx*dx + dz*dz)
	if d > b.Radius*2 {
		step := math.Min(b.Speed*delta, d)
		b.X += dx / d * step
		b.Z += dz / d * step
	}

	b.AttackTimer -= delta
	if b.AttackTimer <= 0 {
		s.fireRing(fx)
		// later phases attack faster
		b.AttackTimer = s.cfg.BossAttackInterval * (1 - 0.2*float64(b.Phase-1))
	}
	return 0
}

func (s *BossStore) fireRing(fx *EnemyEffects) {
	b := &s.boss
	count := 8 + 4*(b.Phase-1)
	step := 2 * math.Pi / float64(count)
	dmg := s.cfg.BossProjectileDamage * b.DamageMultiplier
	for i := 0; i < count; i++ {
		fx.FireBossShot(b.X, b.Z, b.spiral+float64(i)*step, dmg)
	}
	b.spiral += step / 2
}

func (s *BossStore) tickDefeat(delta float64) int {
	b := &s.boss
	total := s.cfg.BossDefeatExplosions
	b.DefeatAnimationTimer -= delta
	elapsed := s.cfg.BossDefeatDuration - b.DefeatAnimationTimer
	due := total
	if s.cfg.BossDefeatDuration > 0 && b.DefeatAnimationTimer > 0 {
		due = int(elapsed / s.cfg.BossDefeatDuration * float64(total))
	}
	if due > total {
		due = total
	}
	n := due - b.DefeatExplosionCount
	if n < 0 {
		n = 0
	}
	b.DefeatExplosionCount = due
	if b.DefeatAnimationTimer <= 0 {
		b.Active = false
		b.Defeating = false
		b.DefeatAnimationTimer = 0
	}
	return n
}

// Reset clears the boss and the defeat flag
func (s *BossStore) Reset() {
	s.boss = Boss{}
	s.defeated = false
}
