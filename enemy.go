package main

import (
	"math"
	"math/rand"
	"strconv"
)

// Enemy is a pooled hostile. Flat data plus a behavior tag.
type Enemy struct {
	ID       string
	NumID    uint32
	TypeID   string
	X, Z     float64
	HP       float64
	MaxHP    float64
	Speed    float64
	Damage   float64
	Radius   float64
	XPReward int
	Behavior Behavior
	Color    string

	AttackTimer    float64
	TelegraphTimer float64
	TeleportTimer  float64
	DespawnTimer   float64
	ShockwaveTimer float64
	HitFlashTimer  float64

	SweepDirX, SweepDirZ float64
	AimX, AimZ           float64 // locked sniper target while telegraphing
	KnockX, KnockZ       float64 // knockback velocity, decays
	Protected            bool
	spawnSeq             uint64
	dead                 bool
}

// StatScaling multiplies base stats at spawn. Zero fields mean 1.
type StatScaling struct {
	HP     float64 `msgpack:"hp" json:"hp"`
	Damage float64 `msgpack:"dmg" json:"dmg"`
	Speed  float64 `msgpack:"spd" json:"spd"`
	XP     float64 `msgpack:"xp" json:"xp"`
}

func scaleOr1(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// SpawnInstruction asks the enemy store to create one enemy
type SpawnInstruction struct {
	TypeID               string
	X, Z                 float64
	SweepDirX, SweepDirZ float64
	Scaling              *StatScaling
}

// DamageHit is one recorded hit for a batched damage call
type DamageHit struct {
	EnemyID   string
	Damage    float64
	FromX     float64
	FromZ     float64
	Knockback float64
}

// EnemyDeath snapshots a killed enemy for loot and visual effects
type EnemyDeath struct {
	ID       string
	TypeID   string
	X, Z     float64
	Color    string
	XPReward int
	Elite    bool
}

// DamageResult reports the outcome for one targeted enemy
type DamageResult struct {
	EnemyID string
	Killed  bool
	Death   EnemyDeath
}

// EnemyStore owns the live enemy array
type EnemyStore struct {
	cfg     *Config
	defs    *Definitions
	rng     *rand.Rand
	enemies []Enemy
	nextNum uint32
	seq     uint64

	// reused across batched damage calls
	pending map[string]float64
	order   []string
	results []DamageResult
	index   map[string]int
}

// NewEnemyStore creates an empty store
func NewEnemyStore(cfg *Config, defs *Definitions, rng *rand.Rand) *EnemyStore {
	return &EnemyStore{
		cfg:     cfg,
		defs:    defs,
		rng:     rng,
		enemies: make([]Enemy, 0, cfg.MaxEnemies),
		pending: make(map[string]float64, 32),
		order:   make([]string, 0, 32),
		results: make([]DamageResult, 0, 32),
		index:   make(map[string]int, cfg.MaxEnemies),
	}
}

// Enemies returns the live array. Entries may be mutated in place.
func (s *EnemyStore) Enemies() []Enemy {
	return s.enemies
}

// Count returns the number of live enemies
func (s *EnemyStore) Count() int {
	return len(s.enemies)
}

// Find returns the enemy with id, or nil
func (s *EnemyStore) Find(id string) *Enemy {
	for i := range s.enemies {
		if s.enemies[i].ID == id {
			return &s.enemies[i]
		}
	}
	return nil
}

// Spawn creates an enemy from inst. Unknown types are ignored. When the
// store is at its cap the oldest unprotected enemy is evicted; if every
// enemy is protected the spawn is rejected.
func (s *EnemyStore) Spawn(inst SpawnInstruction) bool {
	def := s.defs.Enemy(inst.TypeID)
	if def == nil {
		return false
	}
	if len(s.enemies) >= s.cfg.MaxEnemies {
		victim := s.oldestUnprotected()
		if victim < 0 {
			return false
		}
		s.removeAt(victim)
	}

	hpMul, dmgMul, spdMul, xpMul := 1.0, 1.0, 1.0, 1.0
	if inst.Scaling != nil {
		hpMul = scaleOr1(inst.Scaling.HP)
		dmgMul = scaleOr1(inst.Scaling.Damage)
		spdMul = scaleOr1(inst.Scaling.Speed)
		xpMul = scaleOr1(inst.Scaling.XP)
	}

	s.nextNum++
	s.seq++
	e := Enemy{
		ID:        "e" + strconv.FormatUint(uint64(s.nextNum), 10),
		NumID:     s.nextNum,
		TypeID:    def.ID,
		X:         inst.X,
		Z:         inst.Z,
		HP:        def.HP * hpMul,
		MaxHP:     def.HP * hpMul,
		Speed:     def.Speed * spdMul,
		Damage:    def.Damage * dmgMul,
		Radius:    def.Radius,
		XPReward:  int(math.Round(float64(def.XPReward) * xpMul)),
		Behavior:  def.Behavior,
		Color:     def.Color,
		Protected: def.Protected(),
		spawnSeq:  s.seq,
	}
	s.initBehavior(&e, inst)
	s.enemies = append(s.enemies, e)
	return true
}

// SpawnBatch applies every instruction in order
func (s *EnemyStore) SpawnBatch(batch []SpawnInstruction) int {
	n := 0
	for _, inst := range batch {
		if s.Spawn(inst) {
			n++
		}
	}
	return n
}

func (s *EnemyStore) initBehavior(e *Enemy, inst SpawnInstruction) {
	switch e.Behavior {
	case BehaviorSweep:
		e.SweepDirX, e.SweepDirZ = inst.SweepDirX, inst.SweepDirZ
		if e.SweepDirX == 0 && e.SweepDirZ == 0 {
			e.SweepDirX = 1
		}
		e.DespawnTimer = s.cfg.SweepDespawnTime
	case BehaviorShockwave:
		e.ShockwaveTimer = s.cfg.ShockwaveInterval
	case BehaviorSniperMobile, BehaviorSniperFixed:
		e.AttackTimer = s.cfg.SniperAttackInterval * (0.5 + s.rng.Float64()*0.5)
	case BehaviorTeleport:
		e.TeleportTimer = s.cfg.TeleportInterval
	}
}

func (s *EnemyStore) oldestUnprotected() int {
	victim := -1
	var oldest uint64 = math.MaxUint64
	for i := range s.enemies {
		e := &s.enemies[i]
		if e.Protected {
			continue
		}
		if e.spawnSeq < oldest {
			oldest = e.spawnSeq
			victim = i
		}
	}
	return victim
}

func (s *EnemyStore) removeAt(i int) {
	last := len(s.enemies) - 1
	if i != last {
		s.enemies[i] = s.enemies[last]
	}
	s.enemies[last] = Enemy{}
	s.enemies = s.enemies[:last]
}

// DamageEnemiesBatch applies every hit, summing hits on the same enemy
// before deciding whether it dies. Returns one result per distinct targeted
// enemy that exists. Killed enemies are removed from the live array. The
// returned slice is reused by the next call.
func (s *EnemyStore) DamageEnemiesBatch(hits []DamageHit) []DamageResult {
	s.results = s.results[:0]
	if len(hits) == 0 {
		return s.results
	}
	clear(s.pending)
	clear(s.index)
	s.order = s.order[:0]
	for i := range s.enemies {
		s.index[s.enemies[i].ID] = i
	}

	for _, h := range hits {
		if _, ok := s.index[h.EnemyID]; !ok {
			continue
		}
		if _, seen := s.pending[h.EnemyID]; !seen {
			s.order = append(s.order, h.EnemyID)
		}
		s.pending[h.EnemyID] += h.Damage
	}

	anyDead := false
	for _, id := range s.order {
		e := &s.enemies[s.index[id]]
		e.HP -= s.pending[id]
		e.HitFlashTimer = s.cfg.HitFlashDuration
		res := DamageResult{EnemyID: id}
		if e.HP <= 0 {
			e.HP = 0
			e.dead = true
			anyDead = true
			res.Killed = true
			res.Death = EnemyDeath{
				ID:       e.ID,
				TypeID:   e.TypeID,
				X:        e.X,
				Z:        e.Z,
				Color:    e.Color,
				XPReward: e.XPReward,
				Elite:    e.Protected,
			}
		}
		s.results = append(s.results, res)
	}

	// knockback on survivors
	for _, h := range hits {
		if h.Knockback <= 0 {
			continue
		}
		i, ok := s.index[h.EnemyID]
		if !ok || s.enemies[i].dead {
			continue
		}
		s.applyKnockback(&s.enemies[i], h.FromX, h.FromZ, h.Knockback)
	}

	if anyDead {
		s.compactDead()
	}
	return s.results
}

func (s *EnemyStore) compactDead() {
	n := len(s.enemies)
	for i := 0; i < n; {
		if !s.enemies[i].dead {
			i++
			continue
		}
		n--
		s.enemies[i] = s.enemies[n]
		s.enemies[n] = Enemy{}
	}
	s.enemies = s.enemies[:n]
}

// ApplyKnockback pushes the enemy away from (fromX, fromZ)
func (s *EnemyStore) ApplyKnockback(id string, fromX, fromZ, strength float64) {
	if e := s.Find(id); e != nil {
		s.applyKnockback(e, fromX, fromZ, strength)
	}
}

func (s *EnemyStore) applyKnockback(e *Enemy, fromX, fromZ, strength float64) {
	// Stationary snipers hold position
	if e.Behavior == BehaviorSniperFixed {
		return
	}
	// Only pooled boss-tagged types resist. The main boss is a separate
	// singleton and never receives knockback at all.
	if def := s.defs.Enemy(e.TypeID); def != nil && def.IsBoss {
		strength *= 1 - s.cfg.BossKnockbackResist
	}
	dx := e.X - fromX
	dz := e.Z - fromZ
	d := math.Sqrt(dx*dx + dz*dz)
	if d < 1e-6 {
		return
	}
	e.KnockX += dx / d * strength
	e.KnockZ += dz / d * strength
}

// Tick advances timers, knockback and behavior for every enemy. Enemies
// whose behavior expires them (sweepers leaving) are removed.
func (s *EnemyStore) Tick(delta, px, pz float64, fx *EnemyEffects) {
	ctx := behaviorContext{
		cfg:   s.cfg,
		rng:   s.rng,
		delta: delta,
		px:    px,
		pz:    pz,
		fx:    fx,
	}
	bound := s.cfg.PlayAreaBound
	decay := math.Exp(-s.cfg.KnockbackDecay * delta)

	n := len(s.enemies)
	for i := 0; i < n; {
		e := &s.enemies[i]
		if e.HitFlashTimer > 0 {
			e.HitFlashTimer = math.Max(0, e.HitFlashTimer-delta)
		}
		if e.KnockX != 0 || e.KnockZ != 0 {
			e.X += e.KnockX * delta
			e.Z += e.KnockZ * delta
			e.KnockX *= decay
			e.KnockZ *= decay
			if math.Abs(e.KnockX) < 0.01 && math.Abs(e.KnockZ) < 0.01 {
				e.KnockX, e.KnockZ = 0, 0
			}
		}

		update := updateChase
		if e.Behavior < behaviorCount {
			update = behaviorUpdates[e.Behavior]
		}
		keep := update(e, &ctx)
		if e.Behavior != BehaviorSweep {
			e.X = Clamp(e.X, -bound, bound)
			e.Z = Clamp(e.Z, -bound, bound)
		}
		if keep {
			i++
			continue
		}
		n--
		s.enemies[i] = s.enemies[n]
		s.enemies[n] = Enemy{}
	}
	s.enemies = s.enemies[:n]
}

// Reset removes every enemy
func (s *EnemyStore) Reset() {
	clear(s.enemies)
	s.enemies = s.enemies[:0]
	s.nextNum = 0
	s.seq = 0
}
