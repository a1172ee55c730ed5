package main

import "math"

// TurnSpeed is the maximum facing turn rate in radians/s
const TurnSpeed = 10.0

// Input is one frame of player intent. Move is a direction with length at
// most 1; Aim is a world-space direction and may be zero.
type Input struct {
	MoveX float64 `msgpack:"mx"`
	MoveZ float64 `msgpack:"mz"`
	AimX  float64 `msgpack:"ax"`
	AimZ  float64 `msgpack:"az"`
	// Ability requests the ship ability this frame
	Ability bool `msgpack:"ab"`
}

// Player is the singleton survivor
type Player struct {
	X, Z     float64
	Rotation float64
	TargetR  float64
	HP       float64
	MaxHP    float64
	Speed    float64
	Radius   float64
	Alive    bool
	Ship     ShipClass
	Ability  Ability

	InvulnTimer     float64
	ContactCooldown float64

	Level           int
	XP              float64
	XPToNext        float64
	PendingLevelUps int
	Kills           int
	Fragments       int

	// upgrade modifiers
	DamageMul       float64
	FireRateMul     float64
	PickupRadiusMul float64
	CurseBonus      float64
	Luck            float64
}

// PlayerStore owns the player singleton
type PlayerStore struct {
	cfg *Config
	p   Player
}

// NewPlayerStore creates a store holding a fresh fighter
func NewPlayerStore(cfg *Config) *PlayerStore {
	s := &PlayerStore{cfg: cfg}
	s.Init(ClassFighter)
	return s
}

// Player returns the singleton for direct mutation
func (s *PlayerStore) Player() *Player { return &s.p }

// Init resets the player for a new run with the given ship class
func (s *PlayerStore) Init(ship ShipClass) {
	def := GetClassDef(ship)
	maxHP := s.cfg.PlayerMaxHP * def.HPMul
	s.p = Player{
		HP:              maxHP,
		MaxHP:           maxHP,
		Speed:           s.cfg.PlayerSpeed * def.SpeedMul,
		Radius:          s.cfg.PlayerRadius,
		Alive:           true,
		Ship:            ship,
		Ability:         AbilityForClass(ship),
		Level:           1,
		XPToNext:        s.XPForLevel(1),
		DamageMul:       1,
		FireRateMul:     1,
		PickupRadiusMul: def.PickupRadiusMul,
		Luck:            def.Luck,
	}
}

// XPForLevel returns the XP needed to advance past level
func (s *PlayerStore) XPForLevel(level int) float64 {
	if level < 1 {
		level = 1
	}
	return math.Round(s.cfg.LevelXPBase * math.Pow(s.cfg.LevelXPGrowth, float64(level-1)))
}

// Tick moves the player from input and counts down timers
func (s *PlayerStore) Tick(delta float64, in Input) {
	p := &s.p
	if !p.Alive {
		return
	}

	mx, mz := in.MoveX, in.MoveZ
	if l := math.Sqrt(mx*mx + mz*mz); l > 1 {
		mx /= l
		mz /= l
	}
	p.X += mx * p.Speed * delta
	p.Z += mz * p.Speed * delta
	b := s.cfg.PlayAreaBound
	p.X = Clamp(p.X, -b, b)
	p.Z = Clamp(p.Z, -b, b)

	// Face the aim direction, or the movement direction when not aiming
	switch {
	case in.AimX != 0 || in.AimZ != 0:
		p.TargetR = math.Atan2(in.AimZ, in.AimX)
	case mx != 0 || mz != 0:
		p.TargetR = math.Atan2(mz, mx)
	}
	diff := NormalizeAngle(p.TargetR - p.Rotation)
	maxTurn := TurnSpeed * delta
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	p.Rotation = NormalizeAngle(p.Rotation + diff)

	p.Ability.Update(delta)
	if p.Ability.Active && p.Ability.Type == AbilityRepair {
		p.HP = math.Min(p.MaxHP, p.HP+RepairRate*delta)
	}
	if p.InvulnTimer > 0 {
		p.InvulnTimer = math.Max(0, p.InvulnTimer-delta)
	}
	if p.ContactCooldown > 0 {
		p.ContactCooldown = math.Max(0, p.ContactCooldown-delta)
	}
}

// Invulnerable reports whether damage is currently ignored
func (s *PlayerStore) Invulnerable() bool {
	return s.p.InvulnTimer > 0
}

// CanTakeContact reports whether contact damage may be applied this frame
func (s *PlayerStore) CanTakeContact() bool {
	return s.p.Alive && s.p.InvulnTimer <= 0 && s.p.ContactCooldown <= 0
}

// TakeDamage reduces HP and starts the invulnerability window. Returns true
// if the player died.
func (s *PlayerStore) TakeDamage(dmg float64) bool {
	p := &s.p
	if !p.Alive || dmg <= 0 || p.InvulnTimer > 0 {
		return false
	}
	dmg = p.Ability.AbsorbDamage(dmg)
	if dmg <= 0 {
		return false
	}
	p.HP -= dmg
	p.InvulnTimer = s.cfg.PlayerInvulnTime
	if p.HP <= 0 {
		p.HP = 0
		p.Alive = false
		return true
	}
	return false
}

// TakeContactDamage applies summed contact damage once and arms the
// contact cooldown
func (s *PlayerStore) TakeContactDamage(dmg float64) bool {
	if !s.CanTakeContact() || dmg <= 0 {
		return false
	}
	s.p.ContactCooldown = s.cfg.ContactDamageCooldown
	return s.TakeDamage(dmg)
}

// Heal restores HP up to MaxHP
func (s *PlayerStore) Heal(amount float64) {
	p := &s.p
	if !p.Alive || amount <= 0 {
		return
	}
	p.HP = math.Min(p.MaxHP, p.HP+amount)
}

// AddXP grants XP and returns the number of levels gained
func (s *PlayerStore) AddXP(v float64) int {
	p := &s.p
	if v <= 0 {
		return 0
	}
	p.XP += v
	gained := 0
	for p.XPToNext > 0 && p.XP >= p.XPToNext {
		p.XP -= p.XPToNext
		p.Level++
		p.XPToNext = s.XPForLevel(p.Level)
		gained++
	}
	p.PendingLevelUps += gained
	return gained
}

// ResetPosition puts the player back at the origin for a new system
func (s *PlayerStore) ResetPosition() {
	s.p.X, s.p.Z = 0, 0
	s.p.InvulnTimer = 0
	s.p.ContactCooldown = 0
}
