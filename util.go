package main

import (
	"math"
	mrand "math/rand"
	"time"
)

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, z1, x2, z2 float64) float64 {
	dx := x2 - x1
	dz := z2 - z1
	return math.Sqrt(dx*dx + dz*dz)
}

// DistanceSq returns the squared distance between two points
func DistanceSq(x1, z1, x2, z2 float64) float64 {
	dx := x2 - x1
	dz := z2 - z1
	return dx*dx + dz*dz
}

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// RotateToward turns (dirX, dirZ) toward (tx, tz) by at most maxTurn radians
// along the shortest arc. The result is unit length.
func RotateToward(dirX, dirZ, tx, tz, maxTurn float64) (float64, float64) {
	current := math.Atan2(dirZ, dirX)
	desired := math.Atan2(tz, tx)
	diff := NormalizeAngle(desired - current)
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	a := current + diff
	return math.Cos(a), math.Sin(a)
}

// round1 rounds to one decimal for compact state frames
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// NewRand returns a seeded source. seed 0 picks a time-based seed.
func NewRand(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return mrand.New(mrand.NewSource(seed))
}

// randRange returns a float in [min, max)
func randRange(rng *mrand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}
