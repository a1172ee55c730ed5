package main

import "sort"

// Behavior is the closed set of enemy movement/attack variants
type Behavior uint8

const (
	BehaviorChase Behavior = iota
	BehaviorSweep
	BehaviorShockwave
	BehaviorSniperMobile
	BehaviorSniperFixed
	BehaviorTeleport
	BehaviorBoss
	behaviorCount
)

var behaviorNames = [behaviorCount]string{
	"chase", "sweep", "shockwave", "sniper_mobile", "sniper_fixed", "teleport", "boss",
}

func (b Behavior) String() string {
	if b >= behaviorCount {
		return "unknown"
	}
	return behaviorNames[b]
}

// ParseBehavior maps a tag to a Behavior. Unknown tags fall back to chase.
func ParseBehavior(s string) Behavior {
	for i, name := range behaviorNames {
		if name == s {
			return Behavior(i)
		}
	}
	return BehaviorChase
}

// EnemyTier groups enemy types for wave weighting
type EnemyTier int

const (
	TierNone EnemyTier = 0
	Tier1    EnemyTier = 1
	Tier2    EnemyTier = 2
	Tier3    EnemyTier = 3
	Tier4    EnemyTier = 4
)

// EnemyDef holds the base stats for an enemy type
type EnemyDef struct {
	ID          string
	Name        string
	HP          float64
	Speed       float64
	Damage      float64
	Radius      float64
	XPReward    int
	Behavior    Behavior
	SpawnWeight float64
	Tier        EnemyTier // TierNone = infer from ID prefix
	Color       string
	IsElite     bool
	IsBoss      bool // pooled mini-boss; reduced knockback, never evicted
	// Per-enemy loot chance overrides, keyed by loot kind
	LootChances map[LootKind]float64
}

// ResolvedTier returns the explicit tier or the one encoded in an id of the
// form "t2_name". Unparseable ids are tier 1.
func (d *EnemyDef) ResolvedTier() EnemyTier {
	if d.Tier != TierNone {
		return d.Tier
	}
	return InferTier(d.ID)
}

// InferTier reads the tier from a "tN_" id prefix
func InferTier(id string) EnemyTier {
	if len(id) >= 3 && id[0] == 't' && id[2] == '_' && id[1] >= '1' && id[1] <= '9' {
		return EnemyTier(id[1] - '0')
	}
	return Tier1
}

// Protected enemies are never evicted when the enemy cap is reached
func (d *EnemyDef) Protected() bool {
	return d.IsElite || d.IsBoss
}

// FirePattern selects how a weapon emits projectiles
type FirePattern uint8

const (
	FireForward FirePattern = iota // along aim
	FireSpread                     // fan around aim
	FireNearest                    // at nearest enemy
	FireRadial                     // evenly around the player
)

// WeaponDef holds the base stats for a weapon type
type WeaponDef struct {
	ID                string
	Name              string
	Damage            float64
	Cooldown          float64
	ProjectileSpeed   float64
	ProjectileRadius  float64
	Lifetime          float64
	Count             int
	Spread            float64 // total fan angle in radians
	Pattern           FirePattern
	Homing            bool
	TurnRate          float64 // radians/s
	KnockbackStrength float64
}

// Definitions bundles the authored content tables injected into a simulation
type Definitions struct {
	Enemies map[string]*EnemyDef
	Weapons map[string]*WeaponDef
	Waves   map[int][]WavePhase
}

// Enemy returns the def for id, or nil
func (d *Definitions) Enemy(id string) *EnemyDef {
	return d.Enemies[id]
}

// Weapon returns the def for id, or nil
func (d *Definitions) Weapon(id string) *WeaponDef {
	return d.Weapons[id]
}

// EnemyIDs returns the enemy ids in a stable order
func (d *Definitions) EnemyIDs() []string {
	ids := make([]string, 0, len(d.Enemies))
	for id := range d.Enemies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WeaponIDs returns the weapon ids in a stable order
func (d *Definitions) WeaponIDs() []string {
	ids := make([]string, 0, len(d.Weapons))
	for id := range d.Weapons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultEnemyDefs is the shipped enemy roster
var DefaultEnemyDefs = []EnemyDef{
	{ID: "t1_drone", Name: "Drone", HP: 10, Speed: 5, Damage: 5, Radius: 0.75, XPReward: 1,
		Behavior: BehaviorChase, SpawnWeight: 10, Color: "#ff5555"},
	{ID: "t1_swarmer", Name: "Swarmer", HP: 6, Speed: 9, Damage: 4, Radius: 0.6, XPReward: 1,
		Behavior: BehaviorSweep, SpawnWeight: 4, Color: "#ffaa33"},
	{ID: "t2_pulsar", Name: "Pulsar", HP: 30, Speed: 3.5, Damage: 8, Radius: 1.0, XPReward: 3,
		Behavior: BehaviorShockwave, SpawnWeight: 5, Color: "#aa55ff"},
	{ID: "t2_gunship", Name: "Gunship", HP: 22, Speed: 4, Damage: 6, Radius: 0.9, XPReward: 3,
		Behavior: BehaviorSniperMobile, SpawnWeight: 5, Color: "#55aaff"},
	{ID: "t3_sentinel", Name: "Sentinel", HP: 45, Speed: 0, Damage: 10, Radius: 1.2, XPReward: 6,
		Behavior: BehaviorSniperFixed, SpawnWeight: 2, Color: "#33ffcc"},
	{ID: "t3_phaser", Name: "Phaser", HP: 35, Speed: 4.5, Damage: 9, Radius: 0.9, XPReward: 5,
		Behavior: BehaviorTeleport, SpawnWeight: 4, Color: "#ff55cc"},
	{ID: "t4_juggernaut", Name: "Juggernaut", HP: 220, Speed: 2.5, Damage: 20, Radius: 2.0, XPReward: 25,
		Behavior: BehaviorChase, SpawnWeight: 1, Color: "#ffffff", IsElite: true,
		LootChances: map[LootKind]float64{LootHealGem: 0.5, LootFragmentGem: 0.5}},
	{ID: "t4_warden", Name: "Warden", HP: 600, Speed: 2, Damage: 25, Radius: 2.5, XPReward: 60,
		Behavior: BehaviorChase, SpawnWeight: 0.3, Color: "#ffdd00", IsBoss: true,
		LootChances: map[LootKind]float64{LootHealGem: 1, LootFragmentGem: 1}},
}

// DefaultWeaponDefs is the shipped weapon roster
var DefaultWeaponDefs = []WeaponDef{
	{ID: "blaster", Name: "Blaster", Damage: 10, Cooldown: 0.4, ProjectileSpeed: 60,
		ProjectileRadius: 0.4, Lifetime: 1.5, Count: 1, Pattern: FireNearest, KnockbackStrength: 1.5},
	{ID: "scatter", Name: "Scatter Cannon", Damage: 6, Cooldown: 0.9, ProjectileSpeed: 45,
		ProjectileRadius: 0.35, Lifetime: 0.8, Count: 5, Spread: 0.6, Pattern: FireSpread, KnockbackStrength: 2.5},
	{ID: "seeker", Name: "Seeker Missiles", Damage: 14, Cooldown: 1.4, ProjectileSpeed: 30,
		ProjectileRadius: 0.5, Lifetime: 3, Count: 2, Spread: 0.8, Pattern: FireForward,
		Homing: true, TurnRate: 4, KnockbackStrength: 1},
	{ID: "nova", Name: "Nova Ring", Damage: 8, Cooldown: 2.0, ProjectileSpeed: 25,
		ProjectileRadius: 0.5, Lifetime: 1.2, Count: 12, Pattern: FireRadial, KnockbackStrength: 3},
	{ID: "railgun", Name: "Railgun", Damage: 40, Cooldown: 1.6, ProjectileSpeed: 300,
		ProjectileRadius: 1.5, Lifetime: 0.6, Count: 1, Pattern: FireForward, KnockbackStrength: 4},
}

// DefaultDefinitions builds the shipped content tables
func DefaultDefinitions() *Definitions {
	d := &Definitions{
		Enemies: make(map[string]*EnemyDef, len(DefaultEnemyDefs)),
		Weapons: make(map[string]*WeaponDef, len(DefaultWeaponDefs)),
		Waves:   DefaultWaveProfiles(),
	}
	for i := range DefaultEnemyDefs {
		def := DefaultEnemyDefs[i]
		d.Enemies[def.ID] = &def
	}
	for i := range DefaultWeaponDefs {
		def := DefaultWeaponDefs[i]
		d.Weapons[def.ID] = &def
	}
	return d
}
