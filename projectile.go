package main

import (
	"math"
	"strconv"
)

// Projectile is a player, enemy or boss shot. Enemy and boss shots use the
// same record with a different Category.
type Projectile struct {
	ID           string
	X, Z         float64
	PrevX, PrevZ float64
	DirX, DirZ   float64
	Speed        float64
	Damage       float64
	Radius       float64
	Lifetime     float64
	ElapsedTime  float64
	Active       bool
	Homing       bool
	TurnRate     float64
	Knockback    float64
	WeaponID     string
	Category     Category
}

// TickProjectiles advances every active projectile in place. Homing
// projectiles steer toward the nearest enemy. Projectiles that outlive
// their lifetime or leave [-bound, bound] are deactivated but left in place;
// compaction is the caller's job.
func TickProjectiles(projs []Projectile, delta, bound float64, enemies []Enemy) {
	for i := range projs {
		p := &projs[i]
		if !p.Active {
			continue
		}

		if p.Homing && len(enemies) > 0 {
			best := math.MaxFloat64
			var tx, tz float64
			for j := range enemies {
				e := &enemies[j]
				d2 := DistanceSq(p.X, p.Z, e.X, e.Z)
				if d2 < best {
					best = d2
					tx = e.X - p.X
					tz = e.Z - p.Z
				}
			}
			if tx != 0 || tz != 0 {
				p.DirX, p.DirZ = RotateToward(p.DirX, p.DirZ, tx, tz, p.TurnRate*delta)
			}
		}

		p.PrevX = p.X
		p.PrevZ = p.Z
		p.X += p.DirX * p.Speed * delta
		p.Z += p.DirZ * p.Speed * delta
		p.ElapsedTime += delta

		if p.ElapsedTime >= p.Lifetime || math.Abs(p.X) > bound || math.Abs(p.Z) > bound {
			p.Active = false
		}
	}
}

// CompactProjectiles removes inactive projectiles by swapping the last live
// entry into each hole. Order is not preserved.
func CompactProjectiles(projs []Projectile) []Projectile {
	n := len(projs)
	for i := 0; i < n; {
		if projs[i].Active {
			i++
			continue
		}
		n--
		projs[i] = projs[n]
		projs[n] = Projectile{}
		// re-examine i: it now holds what was the last entry
	}
	return projs[:n]
}

// ProjectileStore owns a capped projectile array for one owner category
type ProjectileStore struct {
	items    []Projectile
	capacity int
	prefix   string
	nextID   uint64
}

// NewProjectileStore creates a store with a fixed capacity
func NewProjectileStore(capacity int, prefix string) *ProjectileStore {
	return &ProjectileStore{
		items:    make([]Projectile, 0, capacity),
		capacity: capacity,
		prefix:   prefix,
	}
}

// Spawn appends p, assigning an id. Returns false when at capacity.
func (s *ProjectileStore) Spawn(p Projectile) bool {
	if len(s.items) >= s.capacity {
		return false
	}
	s.nextID++
	p.ID = s.prefix + strconv.FormatUint(s.nextID, 10)
	p.Active = true
	p.PrevX, p.PrevZ = p.X, p.Z
	s.items = append(s.items, p)
	return true
}

// Items returns the live array; callers may mutate entries in place
func (s *ProjectileStore) Items() []Projectile {
	return s.items
}

// Tick advances every projectile
func (s *ProjectileStore) Tick(delta, bound float64, enemies []Enemy) {
	TickProjectiles(s.items, delta, bound, enemies)
}

// Compact drops inactive projectiles
func (s *ProjectileStore) Compact() {
	s.items = CompactProjectiles(s.items)
}

// Count returns the number of stored projectiles
func (s *ProjectileStore) Count() int {
	return len(s.items)
}

// Reset drops every projectile
func (s *ProjectileStore) Reset() {
	clear(s.items)
	s.items = s.items[:0]
	s.nextID = 0
}
