package main

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPairKeyOrderIndependent(t *testing.T) {
	if pairKey(3, 7) != pairKey(7, 3) {
		t.Error("pairKey should not depend on argument order")
	}
	if pairKey(1, 2) == pairKey(1, 3) {
		t.Error("distinct pairs should have distinct keys")
	}
}

func TestSeparationClampsAndRunsOncePerPair(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSeparationSystem(&cfg)
	enemies := []Enemy{
		{ID: "e1", NumID: 1, X: 0},
		{ID: "e2", NumID: 2, X: 1},
	}
	// overlap 1 * force 8 * delta 1 clamps to 0.5, split between both
	s.ApplySeparation(enemies, nil, 1)
	if !near(enemies[0].X, -0.25) || !near(enemies[1].X, 1.25) {
		t.Errorf("expected -0.25 and 1.25, got %v and %v", enemies[0].X, enemies[1].X)
	}
}

func TestSeparationSmallDelta(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSeparationSystem(&cfg)
	enemies := []Enemy{
		{ID: "e1", NumID: 1, X: 0},
		{ID: "e2", NumID: 2, X: 1},
	}
	delta := 1.0 / 60
	s.ApplySeparation(enemies, nil, delta)
	want := cfg.SeparationForce * delta / 2
	if !near(enemies[1].X-1, want) {
		t.Errorf("expected push %v, got %v", want, enemies[1].X-1)
	}
}

func TestSeparationThreeWay(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSeparationSystem(&cfg)
	enemies := []Enemy{
		{ID: "e1", NumID: 1, X: 0},
		{ID: "e2", NumID: 2, X: 0.5},
		{ID: "e3", NumID: 3, X: 1},
	}
	s.ApplySeparation(enemies, nil, 1)
	if len(s.processed) != 3 {
		t.Errorf("expected 3 processed pairs, got %d", len(s.processed))
	}
	if !(enemies[0].X < 0 && enemies[2].X > 1) {
		t.Errorf("outer enemies should move apart, got %v and %v", enemies[0].X, enemies[2].X)
	}
}

func TestSeparationIgnoresFixedSnipers(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSeparationSystem(&cfg)
	enemies := []Enemy{
		{ID: "s1", NumID: 1, X: 0, Behavior: BehaviorSniperFixed},
		{ID: "e2", NumID: 2, X: 1},
	}
	boss := &Boss{Active: true, HP: 100, X: 0}
	s.ApplySeparation(enemies, boss, 1)
	if enemies[0].X != 0 {
		t.Errorf("fixed sniper moved to %v", enemies[0].X)
	}
	// e2 is only pushed by the boss
	if !near(enemies[1].X, 1.5) {
		t.Errorf("expected e2 at 1.5, got %v", enemies[1].X)
	}
}

func TestSeparationBossPushIsOneWay(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSeparationSystem(&cfg)
	enemies := []Enemy{{ID: "e1", NumID: 1, X: 3}}
	boss := &Boss{Active: true, HP: 100}
	s.ApplySeparation(enemies, boss, 1)
	if !near(enemies[0].X, 3.5) {
		t.Errorf("expected enemy at 3.5, got %v", enemies[0].X)
	}
	if boss.X != 0 || boss.Z != 0 {
		t.Errorf("boss should not move, got (%v,%v)", boss.X, boss.Z)
	}

	enemies[0].X = 3
	boss.Active = false
	s.ApplySeparation(enemies, boss, 1)
	if enemies[0].X != 3 {
		t.Errorf("inactive boss should not push, enemy at %v", enemies[0].X)
	}
}
