package main

import "math"

// SeparationSystem pushes overlapping enemies apart and away from the boss.
// It keeps its own spatial hash so it never disturbs the collision frame.
type SeparationSystem struct {
	cfg       *Config
	hash      *SpatialHash
	stubs     *ColliderPool
	processed map[uint64]struct{}
}

// NewSeparationSystem creates the system with a stub arena sized for the
// enemy cap
func NewSeparationSystem(cfg *Config) *SeparationSystem {
	return &SeparationSystem{
		cfg:       cfg,
		hash:      NewSpatialHash(cfg.SeparationCellSize),
		stubs:     NewColliderPool(cfg.MaxEnemies),
		processed: make(map[uint64]struct{}, cfg.MaxEnemies*4),
	}
}

// pairKey is order independent for two numeric ids
func pairKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

func (s *SeparationSystem) displacement(overlap, delta float64) float64 {
	return math.Min(overlap*s.cfg.SeparationForce*delta, s.cfg.MaxSeparationDisplacement)
}

// ApplySeparation runs one frame of enemy/enemy and boss/enemy push-apart.
// Fixed snipers neither move nor push. boss may be nil.
func (s *SeparationSystem) ApplySeparation(enemies []Enemy, boss *Boss, delta float64) {
	radius := s.cfg.EnemySeparationRadius
	s.hash.Clear()
	clear(s.processed)

	n := 0
	for i := range enemies {
		e := &enemies[i]
		if e.Behavior == BehaviorSniperFixed {
			continue
		}
		stub := s.stubs.Acquire(n)
		n++
		stub.ID = e.ID
		stub.Index = i
		stub.X = e.X
		stub.Z = e.Z
		stub.Radius = radius / 2
		stub.Category = CatEnemy
		s.hash.Insert(stub)
	}

	for i := range enemies {
		a := &enemies[i]
		if a.Behavior == BehaviorSniperFixed {
			continue
		}
		for _, other := range s.hash.QueryNearby(a.X, a.Z, radius) {
			j := other.Index
			if j == i {
				continue
			}
			b := &enemies[j]
			key := pairKey(a.NumID, b.NumID)
			if _, done := s.processed[key]; done {
				continue
			}
			s.processed[key] = struct{}{}

			dx := b.X - a.X
			dz := b.Z - a.Z
			dist := math.Sqrt(dx*dx + dz*dz)
			if dist == 0 || dist >= radius {
				continue
			}
			half := s.displacement(radius-dist, delta) / 2
			nx := dx / dist
			nz := dz / dist
			a.X -= nx * half
			a.Z -= nz * half
			b.X += nx * half
			b.Z += nz * half
		}
	}

	if boss == nil || !boss.Active || boss.HP <= 0 {
		return
	}
	bossRadius := s.cfg.BossSeparationRadius
	for i := range enemies {
		e := &enemies[i]
		if e.Behavior == BehaviorSniperFixed {
			continue
		}
		dx := e.X - boss.X
		dz := e.Z - boss.Z
		dist := math.Sqrt(dx*dx + dz*dz)
		if dist == 0 || dist >= bossRadius {
			continue
		}
		d := s.displacement(bossRadius-dist, delta)
		e.X += dx / dist * d
		e.Z += dz / dist * d
	}
}
