package main

import (
	"math"
	"testing"
)

func newTestEnemies(cfg *Config) *EnemyStore {
	return NewEnemyStore(cfg, DefaultDefinitions(), NewRand(1))
}

func TestEnemySpawnScaling(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	if !s.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 1, Z: 2, Scaling: &StatScaling{HP: 2, XP: 3}}) {
		t.Fatal("spawn failed")
	}
	e := s.Enemies()[0]
	if e.HP != 20 || e.MaxHP != 20 {
		t.Errorf("expected 20 hp, got %v/%v", e.HP, e.MaxHP)
	}
	if e.XPReward != 3 {
		t.Errorf("expected 3 xp, got %d", e.XPReward)
	}
	// zero multipliers mean unscaled
	if e.Speed != 5 || e.Damage != 5 {
		t.Errorf("unexpected speed/damage %v/%v", e.Speed, e.Damage)
	}
	if e.ID != "e1" || e.NumID != 1 {
		t.Errorf("unexpected id %s/%d", e.ID, e.NumID)
	}
	if s.Spawn(SpawnInstruction{TypeID: "nope"}) {
		t.Error("unknown type should be ignored")
	}
}

func TestEnemySpawnEvictsOldestUnprotected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEnemies = 3
	s := newTestEnemies(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t4_juggernaut"})
	s.Spawn(SpawnInstruction{TypeID: "t1_drone"})
	s.Spawn(SpawnInstruction{TypeID: "t1_drone"})

	if !s.Spawn(SpawnInstruction{TypeID: "t1_drone"}) {
		t.Fatal("spawn at cap should evict")
	}
	if s.Count() != 3 {
		t.Fatalf("expected cap 3, got %d", s.Count())
	}
	if s.Find("e1") == nil {
		t.Error("elite should never be evicted")
	}
	if s.Find("e2") != nil {
		t.Error("oldest drone should have been evicted")
	}
	if s.Find("e4") == nil {
		t.Error("new enemy missing")
	}
}

func TestEnemySpawnRejectedWhenAllProtected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEnemies = 2
	s := newTestEnemies(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t4_juggernaut"})
	s.Spawn(SpawnInstruction{TypeID: "t4_warden"})
	if s.Spawn(SpawnInstruction{TypeID: "t1_drone"}) {
		t.Error("spawn should be rejected when every enemy is protected")
	}
}

func TestEnemyCapHundred(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	for i := 0; i < 150; i++ {
		s.Spawn(SpawnInstruction{TypeID: "t1_drone", X: float64(i)})
	}
	if s.Count() != 100 {
		t.Errorf("expected 100 enemies, got %d", s.Count())
	}
	if s.Find("e50") != nil || s.Find("e51") == nil {
		t.Error("the first 50 spawns should have been evicted")
	}
}

func TestDamageEnemiesBatchSumsHits(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t1_drone", Scaling: &StatScaling{HP: 1.5}}) // 15 hp
	s.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 10})

	res := s.DamageEnemiesBatch([]DamageHit{
		{EnemyID: "e1", Damage: 10},
		{EnemyID: "e1", Damage: 10},
		{EnemyID: "missing", Damage: 100},
	})
	if len(res) != 1 {
		t.Fatalf("expected one result, got %d", len(res))
	}
	if !res[0].Killed || res[0].Death.ID != "e1" || res[0].Death.XPReward != 1 {
		t.Errorf("expected e1 killed once, got %+v", res[0])
	}
	if s.Count() != 1 || s.Find("e1") != nil {
		t.Error("killed enemy should be removed")
	}
}

func TestDamageEnemiesBatchSurvivorKnockback(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t4_juggernaut", X: 5})
	s.Spawn(SpawnInstruction{TypeID: "t3_sentinel", X: -5})

	res := s.DamageEnemiesBatch([]DamageHit{
		{EnemyID: "e1", Damage: 1, Knockback: 10},
		{EnemyID: "e2", Damage: 1, Knockback: 10},
	})
	if len(res) != 2 || res[0].Killed || res[1].Killed {
		t.Fatalf("expected two survivors, got %+v", res)
	}
	if e := s.Find("e1"); e.KnockX <= 0 || e.HitFlashTimer <= 0 {
		t.Errorf("juggernaut should be pushed away and flash, got %+v", e)
	}
	if e := s.Find("e2"); e.KnockX != 0 {
		t.Errorf("fixed sniper should ignore knockback, got %v", e.KnockX)
	}
}

func TestKnockbackBossResist(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t4_warden", X: 1})
	s.ApplyKnockback("e1", 0, 0, 8)
	want := 8 * (1 - cfg.BossKnockbackResist)
	if got := s.Find("e1").KnockX; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected knockback %v, got %v", want, got)
	}
}

func TestEnemyTickChaseAndClamp(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	fx := NewEnemyEffects(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 10})
	s.Tick(1, 0, 0, fx)
	if x := s.Enemies()[0].X; math.Abs(x-5) > 1e-9 {
		t.Errorf("drone should close 5 units, at %v", x)
	}

	s.Enemies()[0].X = cfg.PlayAreaBound + 20
	s.Enemies()[0].Speed = 0
	s.Tick(0.1, cfg.PlayAreaBound+20, 0, fx)
	if x := s.Enemies()[0].X; x != cfg.PlayAreaBound {
		t.Errorf("enemy should be clamped to the play area, got %v", x)
	}
}

func TestEnemyTickSweepDespawns(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	fx := NewEnemyEffects(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t1_swarmer", SweepDirX: 1})
	s.Spawn(SpawnInstruction{TypeID: "t1_drone", X: 3})
	s.Tick(cfg.SweepDespawnTime+0.1, 0, 0, fx)
	if s.Count() != 1 || s.Enemies()[0].TypeID != "t1_drone" {
		t.Errorf("expired sweeper should be removed, left %d", s.Count())
	}
}

func TestEnemyTickSniperFires(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	fx := NewEnemyEffects(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t3_sentinel", X: 20})

	for i := 0; i < int((cfg.SniperAttackInterval+cfg.SniperTelegraphTime)*60)+10; i++ {
		s.Tick(1.0/60, 0, 0, fx)
	}
	if fx.Shots.Count() == 0 {
		t.Fatal("sentinel in reach should have fired")
	}
	if e := s.Enemies()[0]; e.X != 20 {
		t.Errorf("fixed sniper moved to %v", e.X)
	}
}

func TestEnemyReset(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestEnemies(&cfg)
	s.Spawn(SpawnInstruction{TypeID: "t1_drone"})
	s.Reset()
	s.Spawn(SpawnInstruction{TypeID: "t1_drone"})
	if s.Count() != 1 || s.Enemies()[0].ID != "e1" {
		t.Error("reset should empty the store and restart ids")
	}
}
