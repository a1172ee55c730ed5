package main

import (
	"math"
	"math/rand"
)

// LootKind identifies a registered non-XP drop
type LootKind uint8

const (
	LootHealGem LootKind = iota
	LootFragmentGem
	LootRareItem
)

func (k LootKind) String() string {
	switch k {
	case LootHealGem:
		return "heal_gem"
	case LootFragmentGem:
		return "fragment_gem"
	case LootRareItem:
		return "rare_item"
	}
	return "unknown"
}

// LuckMode selects how the luck bonus modifies a drop chance
type LuckMode uint8

const (
	LuckAdditive       LuckMode = iota // chance + luck
	LuckMultiplicative                 // min(chance * (1 + luck), cap)
)

// LootEntry is one registry row. Spawn places the drop and reports whether
// the target pool accepted it.
type LootEntry struct {
	Kind     LootKind
	Chance   float64
	LuckMode LuckMode
	Spawn    func(x, z float64, d *EnemyDeath) bool
}

// LootSystem rolls kill drops
type LootSystem struct {
	cfg     *Config
	defs    *Definitions
	rng     *rand.Rand
	xp      XPOrbPool
	entries []LootEntry

	// Luck is the player's current luck bonus
	Luck float64
}

// NewLootSystem creates a loot roller with an empty registry
func NewLootSystem(cfg *Config, defs *Definitions, rng *rand.Rand, xp XPOrbPool) *LootSystem {
	return &LootSystem{cfg: cfg, defs: defs, rng: rng, xp: xp}
}

// Register adds entry, replacing any entry of the same kind
func (l *LootSystem) Register(entry LootEntry) {
	for i := range l.entries {
		if l.entries[i].Kind == entry.Kind {
			l.entries[i] = entry
			return
		}
	}
	l.entries = append(l.entries, entry)
}

// Entries returns the registry in registration order
func (l *LootSystem) Entries() []LootEntry {
	return l.entries
}

// RareXPChance returns the chance that a kill's XP drop is a rare gem
func (l *LootSystem) RareXPChance() float64 {
	return math.Min(l.cfg.RareXPChance+l.Luck, 1)
}

// EntryChance returns the effective chance of entry for an enemy type
func (l *LootSystem) EntryChance(entry LootEntry, def *EnemyDef) float64 {
	chance := entry.Chance
	if def != nil {
		if c, ok := def.LootChances[entry.Kind]; ok {
			chance = c
		}
	}
	if entry.LuckMode == LuckMultiplicative {
		return math.Min(chance*(1+l.Luck), l.cfg.LootChanceCap)
	}
	return math.Min(chance+l.Luck, 1)
}

// RollDrops runs every drop roll for one kill. A kill worth XP always drops
// exactly one XP pickup; registry entries then roll independently. Returns
// the number of pickups placed.
func (l *LootSystem) RollDrops(enemyTypeID string, x, z float64, d *EnemyDeath) int {
	def := l.defs.Enemy(enemyTypeID)
	xpReward := 0
	switch {
	case d != nil:
		xpReward = d.XPReward
	case def != nil:
		xpReward = def.XPReward
	}

	slots := len(l.entries) + 1
	base := l.rng.Float64() * 2 * math.Pi
	drops := 0
	slot := 0

	if xpReward > 0 {
		ox, oz := l.scatter(x, z, base, slot, slots)
		if l.rng.Float64() < l.RareXPChance() {
			l.xp.SpawnOrb(ox, oz, float64(xpReward)*l.cfg.RareXPGemMultiplier, true)
		} else {
			l.xp.SpawnOrb(ox, oz, float64(xpReward), false)
		}
		drops++
		slot++
	}

	for _, entry := range l.entries {
		if entry.Spawn == nil {
			continue
		}
		if l.rng.Float64() >= l.EntryChance(entry, def) {
			continue
		}
		ox, oz := l.scatter(x, z, base, slot, slots)
		slot++
		if entry.Spawn(ox, oz, d) {
			drops++
		}
	}
	return drops
}

// scatter spaces drops evenly around (x, z) with a little jitter
func (l *LootSystem) scatter(x, z, base float64, slot, slots int) (float64, float64) {
	a := base + float64(slot)*2*math.Pi/float64(slots)
	r := l.cfg.LootScatterRadius + (l.rng.Float64()*2-1)*l.cfg.LootScatterJitter
	if r < 0 {
		r = 0
	}
	return x + math.Cos(a)*r, z + math.Sin(a)*r
}

// RegisterDefaultLoot wires the heal, fragment and rare item pools
func RegisterDefaultLoot(l *LootSystem, heal HealGemPool, frags FragmentGemPool, rares RareItemPool) {
	cfg := l.cfg
	l.Register(LootEntry{
		Kind:     LootHealGem,
		Chance:   cfg.HealGemChance,
		LuckMode: LuckAdditive,
		Spawn: func(x, z float64, _ *EnemyDeath) bool {
			return heal.SpawnGem(x, z, cfg.HealGemAmount)
		},
	})
	l.Register(LootEntry{
		Kind:     LootFragmentGem,
		Chance:   cfg.FragmentGemChance,
		LuckMode: LuckMultiplicative,
		Spawn: func(x, z float64, d *EnemyDeath) bool {
			v := cfg.FragmentGemValue
			if d != nil && d.Elite {
				v *= 3
			}
			frags.SpawnGem(x, z, v)
			return true
		},
	})
	l.Register(LootEntry{
		Kind:     LootRareItem,
		Chance:   cfg.RareItemChance,
		LuckMode: LuckMultiplicative,
		Spawn: func(x, z float64, _ *EnemyDeath) bool {
			return rares.SpawnItem(x, z, RareItemType(l.rng.Intn(int(rareItemCount))))
		},
	})
}
