package main

import "testing"

func colors(pts []Particle) []string {
	out := make([]string, len(pts))
	for i := range pts {
		out[i] = pts[i].Color
	}
	return out
}

func TestParticleUpdateSwapsLastIntoExpiredSlot(t *testing.T) {
	p := NewParticlePool(4)
	p.Spawn(Particle{Color: "a", Lifetime: 0.05})
	p.Spawn(Particle{Color: "b", Lifetime: 10, DirX: 1, Speed: 1})
	p.Spawn(Particle{Color: "c", Lifetime: 0.05})

	// a expires, c moves into slot 0 and expires in the same pass, then b
	// moves into slot 0 and is aged exactly once
	p.Update(0.1)

	if p.ActiveCount() != 1 {
		t.Fatalf("expected 1 live particle, got %v", colors(p.Particles()))
	}
	b := p.Particles()[0]
	if b.Color != "b" {
		t.Fatalf("expected b to survive, got %q", b.Color)
	}
	if !near(b.ElapsedTime, 0.1) || !near(b.X, 0.1) {
		t.Errorf("b should be aged and moved once, elapsed %v x %v", b.ElapsedTime, b.X)
	}
	for i := p.ActiveCount(); i < len(p.slots); i++ {
		if p.slots[i] != (Particle{}) {
			t.Errorf("dead slot %d not zeroed: %+v", i, p.slots[i])
		}
	}
}

func TestParticleUpdateExpiresLastSlot(t *testing.T) {
	p := NewParticlePool(3)
	p.Spawn(Particle{Color: "a", Lifetime: 10})
	p.Spawn(Particle{Color: "b", Lifetime: 0.05})

	p.Update(0.1)

	if got := colors(p.Particles()); len(got) != 1 || got[0] != "a" {
		t.Errorf("expected only a, got %v", got)
	}
	if p.slots[1] != (Particle{}) {
		t.Errorf("expired last slot not zeroed: %+v", p.slots[1])
	}
}

func TestParticleSpawnRecyclesOldest(t *testing.T) {
	p := NewParticlePool(3)
	p.Spawn(Particle{Color: "a", Lifetime: 10})
	p.Update(0.3)
	p.Spawn(Particle{Color: "b", Lifetime: 10})
	p.Update(0.1)
	p.Spawn(Particle{Color: "c", Lifetime: 10})

	p.Spawn(Particle{Color: "d", Lifetime: 10, ElapsedTime: 5})

	if p.ActiveCount() != 3 {
		t.Fatalf("a full pool should stay full, got %d", p.ActiveCount())
	}
	got := p.Particles()
	if got[0].Color != "d" {
		t.Errorf("the oldest particle should be overwritten, got %v", colors(got))
	}
	if got[0].ElapsedTime != 0 {
		t.Errorf("a spawned particle starts fresh, elapsed %v", got[0].ElapsedTime)
	}
	if got[1].Color != "b" || got[2].Color != "c" {
		t.Errorf("younger particles should be kept, got %v", colors(got))
	}
}

func TestParticleZeroCapacity(t *testing.T) {
	p := NewParticlePool(0)
	p.Spawn(Particle{Lifetime: 1})
	p.Update(0.1)
	if p.ActiveCount() != 0 {
		t.Error("zero capacity pool should stay empty")
	}
}

func TestParticleResetZeroesAllSlots(t *testing.T) {
	p := NewParticlePool(4)
	p.Spawn(Particle{Color: "a", Lifetime: 1})
	p.Spawn(Particle{Color: "b", Lifetime: 1})
	// stale data beyond the live region
	p.slots[3] = Particle{Color: "stale", X: 9}

	p.Reset()

	if p.ActiveCount() != 0 {
		t.Errorf("expected empty pool, got %d", p.ActiveCount())
	}
	for i := range p.slots {
		if p.slots[i] != (Particle{}) {
			t.Errorf("slot %d not zeroed: %+v", i, p.slots[i])
		}
	}
}

func TestParticleEmitBurst(t *testing.T) {
	p := NewParticlePool(16)
	p.EmitBurst(NewRand(1), 2, 3, "#ff0000", 6, 10, 0.5)
	if p.ActiveCount() != 6 {
		t.Fatalf("expected 6 particles, got %d", p.ActiveCount())
	}
	for _, pt := range p.Particles() {
		if pt.X != 2 || pt.Z != 3 || pt.Color != "#ff0000" || pt.Lifetime != 0.5 {
			t.Errorf("unexpected particle %+v", pt)
		}
		if pt.Speed < 6 || pt.Speed > 10 {
			t.Errorf("speed %v outside the jitter range", pt.Speed)
		}
	}
	p.EmitBurst(NewRand(1), 0, 0, "x", 0, 10, 0.5)
	if p.ActiveCount() != 6 {
		t.Error("an empty burst should spawn nothing")
	}
}

func TestTrailEmitTiming(t *testing.T) {
	tr := NewTrailPool(10, 0.1, 0.5)
	projs := []Projectile{
		{X: 1, Z: 2, Active: true},
		{X: 5, Z: 5},
	}

	// the timer starts expired
	tr.EmitFor(projs, 1.0/60)
	if tr.ActiveCount() != 1 {
		t.Fatalf("expected one point for the active projectile, got %d", tr.ActiveCount())
	}
	pt := tr.Particles()[0]
	if pt.X != 1 || pt.Z != 2 || pt.Lifetime != 0.5 || pt.Speed != 0 {
		t.Errorf("unexpected trail point %+v", pt)
	}

	tr.EmitFor(projs, 0.05)
	if tr.ActiveCount() != 1 {
		t.Errorf("no point before the interval elapses, got %d", tr.ActiveCount())
	}
	tr.EmitFor(projs, 0.05)
	if tr.ActiveCount() != 2 {
		t.Errorf("expected a second point once the interval elapsed, got %d", tr.ActiveCount())
	}

	tr.Reset()
	tr.EmitFor(projs, 0.01)
	if tr.ActiveCount() != 1 {
		t.Errorf("reset should clear the emit timer, got %d", tr.ActiveCount())
	}
}
