package main

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(0, 0, 3, 4); d != 5 {
		t.Errorf("Distance(0,0,3,4) = %v, want 5", d)
	}
	if d := DistanceSq(1, 1, 4, 5); d != 25 {
		t.Errorf("DistanceSq(1,1,4,5) = %v, want 25", d)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi, math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRotateToward(t *testing.T) {
	// already facing the target
	x, z := RotateToward(1, 0, 5, 0, 0.1)
	if math.Abs(x-1) > 1e-9 || math.Abs(z) > 1e-9 {
		t.Errorf("expected (1,0), got (%v,%v)", x, z)
	}

	// limited turn toward +Z
	x, z = RotateToward(1, 0, 0, 1, 0.5)
	if math.Abs(math.Atan2(z, x)-0.5) > 1e-9 {
		t.Errorf("expected a 0.5 rad turn, got %v", math.Atan2(z, x))
	}

	// shortest arc across the -PI/PI seam
	x, z = RotateToward(-1, 0.01, -1, -0.01, 1)
	if math.Abs(x+1) > 1e-3 || z > 0 {
		t.Errorf("expected a small turn across the seam, got (%v,%v)", x, z)
	}
}

func TestNewRandSeeded(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 5; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed should give the same sequence")
		}
	}
	rng := NewRand(7)
	for i := 0; i < 100; i++ {
		if v := randRange(rng, 2, 3); v < 2 || v >= 3 {
			t.Fatalf("randRange out of bounds: %v", v)
		}
	}
}
