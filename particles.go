package main

import (
	"math"
	"math/rand"
)

// Particle is a cosmetic point. It moves along its direction and expires.
type Particle struct {
	X, Z        float64
	DirX, DirZ  float64
	Speed       float64
	ElapsedTime float64
	Lifetime    float64
	Color       string
}

// ParticlePool holds death bursts. Full pools recycle the oldest particle.
type ParticlePool struct {
	slots  []Particle
	active int
}

// NewParticlePool allocates every slot up front
func NewParticlePool(capacity int) *ParticlePool {
	if capacity < 0 {
		capacity = 0
	}
	return &ParticlePool{slots: make([]Particle, capacity)}
}

// Particles returns the live region
func (p *ParticlePool) Particles() []Particle { return p.slots[:p.active] }

// ActiveCount returns the number of live particles
func (p *ParticlePool) ActiveCount() int { return p.active }

// Spawn writes pt into a free slot or over the oldest live one
func (p *ParticlePool) Spawn(pt Particle) {
	if len(p.slots) == 0 {
		return
	}
	idx := p.active
	if p.active < len(p.slots) {
		p.active++
	} else {
		idx = 0
		for i := 1; i < p.active; i++ {
			if p.slots[i].ElapsedTime > p.slots[idx].ElapsedTime {
				idx = i
			}
		}
	}
	pt.ElapsedTime = 0
	p.slots[idx] = pt
}

// EmitBurst spawns count particles fanning out from (x, z)
func (p *ParticlePool) EmitBurst(rng *rand.Rand, x, z float64, color string, count int, speed, lifetime float64) {
	if count <= 0 {
		return
	}
	step := 2 * math.Pi / float64(count)
	for i := 0; i < count; i++ {
		a := float64(i)*step + (rng.Float64()-0.5)*step*0.5
		p.Spawn(Particle{
			X: x, Z: z,
			DirX: math.Cos(a), DirZ: math.Sin(a),
			Speed:    speed * (0.6 + rng.Float64()*0.4),
			Lifetime: lifetime,
			Color:    color,
		})
	}
}

// Update moves and ages live particles, removing expired ones. When a slot
// is removed the last live slot moves into it and is examined next.
func (p *ParticlePool) Update(delta float64) {
	for i := 0; i < p.active; {
		s := &p.slots[i]
		s.ElapsedTime += delta
		if s.ElapsedTime < s.Lifetime {
			s.X += s.DirX * s.Speed * delta
			s.Z += s.DirZ * s.Speed * delta
			i++
			continue
		}
		p.active--
		if i != p.active {
			p.slots[i] = p.slots[p.active]
		}
		p.slots[p.active] = Particle{}
	}
}

// Reset zeroes every slot
func (p *ParticlePool) Reset() {
	clear(p.slots)
	p.active = 0
}

// TrailPool holds stationary fading points left behind projectiles
type TrailPool struct {
	*ParticlePool
	interval float64
	lifetime float64
	timer    float64
}

// NewTrailPool creates a trail pool emitting every interval seconds
func NewTrailPool(capacity int, interval, lifetime float64) *TrailPool {
	return &TrailPool{
		ParticlePool: NewParticlePool(capacity),
		interval:     interval,
		lifetime:     lifetime,
	}
}

// EmitFor drops one trail point per active projectile when the emit timer
// fires
func (t *TrailPool) EmitFor(projs []Projectile, delta float64) {
	t.timer -= delta
	if t.timer > 0 {
		return
	}
	t.timer = t.interval
	for i := range projs {
		if !projs[i].Active {
			continue
		}
		t.Spawn(Particle{X: projs[i].X, Z: projs[i].Z, Lifetime: t.lifetime})
	}
}

// Reset zeroes every slot and the emit timer
func (t *TrailPool) Reset() {
	t.ParticlePool.Reset()
	t.timer = 0
}
