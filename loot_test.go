package main

import "testing"

func newTestLoot(cfg *Config) (*LootSystem, XPOrbPool) {
	xp := NewXPOrbPool(cfg)
	return NewLootSystem(cfg, DefaultDefinitions(), NewRand(42), xp), xp
}

func TestRollDropsRareXP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RareXPChance = 1
	loot, xp := newTestLoot(&cfg)

	d := &EnemyDeath{TypeID: "t1_drone", XPReward: 12}
	if n := loot.RollDrops("t1_drone", 0, 0, d); n != 1 {
		t.Fatalf("expected exactly one drop, got %d", n)
	}
	if xp.ActiveCount() != 1 {
		t.Fatalf("expected one orb, got %d", xp.ActiveCount())
	}
	orb := xp.Slots()[0]
	if orb.Value != 60 || !orb.IsRare {
		t.Errorf("expected a rare orb worth 60, got %+v", orb)
	}
}

func TestRollDropsCommonXP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RareXPChance = 0
	loot, xp := newTestLoot(&cfg)

	loot.RollDrops("t1_drone", 3, 4, nil)
	if xp.ActiveCount() != 1 {
		t.Fatalf("expected one orb, got %d", xp.ActiveCount())
	}
	orb := xp.Slots()[0]
	if orb.Value != 1 || orb.IsRare {
		t.Errorf("expected a common orb worth the type's reward, got %+v", orb)
	}
	if d := Distance(3, 4, orb.X, orb.Z); d > cfg.LootScatterRadius+cfg.LootScatterJitter+1e-9 {
		t.Errorf("orb scattered too far: %v", d)
	}
}

func TestRollDropsNoXP(t *testing.T) {
	cfg := DefaultConfig()
	loot, xp := newTestLoot(&cfg)
	if n := loot.RollDrops("unknown", 0, 0, nil); n != 0 {
		t.Errorf("expected no drops for an unknown type, got %d", n)
	}
	if xp.ActiveCount() != 0 {
		t.Error("no orb expected")
	}
}

func TestRollDropsRegistry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HealGemChance = 1
	cfg.FragmentGemChance = 1
	cfg.RareItemChance = 0
	loot, _ := newTestLoot(&cfg)
	heal := NewHealGemPool(&cfg)
	frags := NewFragmentGemPool(&cfg)
	rares := NewRareItemPool(&cfg)
	RegisterDefaultLoot(loot, heal, frags, rares)

	d := &EnemyDeath{TypeID: "t1_drone", XPReward: 1, Elite: true}
	if n := loot.RollDrops("t1_drone", 0, 0, d); n != 3 {
		t.Errorf("expected xp, heal and fragment drops, got %d", n)
	}
	if heal.ActiveCount() != 1 || frags.ActiveCount() != 1 || rares.ActiveCount() != 0 {
		t.Errorf("unexpected pool counts: heal %d frags %d rares %d",
			heal.ActiveCount(), frags.ActiveCount(), rares.ActiveCount())
	}
	if v := frags.Slots()[0].Value; v != float64(cfg.FragmentGemValue*3) {
		t.Errorf("elite fragment gem should be worth triple, got %v", v)
	}
}

func TestRegisterReplacesKind(t *testing.T) {
	cfg := DefaultConfig()
	loot, _ := newTestLoot(&cfg)
	loot.Register(LootEntry{Kind: LootHealGem, Chance: 0.1})
	loot.Register(LootEntry{Kind: LootHealGem, Chance: 0.5})
	if len(loot.Entries()) != 1 || loot.Entries()[0].Chance != 0.5 {
		t.Errorf("expected one heal entry at 0.5, got %+v", loot.Entries())
	}
}

func TestEntryChanceLuck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LootChanceCap = 0.3
	loot, _ := newTestLoot(&cfg)
	loot.Luck = 0.1

	add := LootEntry{Kind: LootHealGem, Chance: 0.2, LuckMode: LuckAdditive}
	if got := loot.EntryChance(add, nil); !near(got, 0.3) {
		t.Errorf("additive: expected 0.3, got %v", got)
	}
	mul := LootEntry{Kind: LootRareItem, Chance: 0.25, LuckMode: LuckMultiplicative}
	if got := loot.EntryChance(mul, nil); !near(got, 0.275) {
		t.Errorf("multiplicative under the cap: expected 0.275, got %v", got)
	}
	capped := LootEntry{Kind: LootRareItem, Chance: 0.3, LuckMode: LuckMultiplicative}
	if got := loot.EntryChance(capped, nil); got != 0.3 {
		t.Errorf("multiplicative should cap at 0.3, got %v", got)
	}

	def := &EnemyDef{ID: "x", LootChances: map[LootKind]float64{LootHealGem: 0.5}}
	if got := loot.EntryChance(add, def); !near(got, 0.6) {
		t.Errorf("per-type override: expected 0.6, got %v", got)
	}
}
