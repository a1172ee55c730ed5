package main

import "math"

// UpdateMagnetization pulls pickups toward the player. A slot inside the
// magnet radius becomes magnetized and stays so until collected or reset.
// Closer pickups accelerate harder so they converge instead of orbiting.
func (p *PickupPool) UpdateMagnetization(px, pz, delta, pickupRadiusMul float64) {
	if pickupRadiusMul <= 0 {
		pickupRadiusMul = 1
	}
	radius := p.cfg.XPMagnetRadius * pickupRadiusMul
	radiusSq := radius * radius
	eps := p.cfg.MagnetEpsilon

	for i := 0; i < p.active; i++ {
		s := &p.slots[i]
		dx := px - s.X
		dz := pz - s.Z
		distSq := dx*dx + dz*dz
		if distSq <= radiusSq {
			s.IsMagnetized = true
		}
		if !s.IsMagnetized {
			continue
		}
		dist := math.Sqrt(distSq)
		if dist <= eps {
			continue
		}
		norm := math.Min(dist/radius, 1)
		speed := math.Max(p.cfg.MagnetMinSpeed, p.cfg.MagnetSpeed*math.Pow(1-norm, p.cfg.MagnetAccelCurve))
		step := math.Min(speed*delta, dist)
		s.X += dx / dist * step
		s.Z += dz / dist * step
	}
}

// CollectInRange removes every live slot within radius of the player and
// passes each removed pickup to fn. Swapped-in slots are re-examined.
func (p *PickupPool) CollectInRange(px, pz, radius float64, fn func(Pickup)) int {
	rSq := radius * radius
	n := 0
	for i := 0; i < p.active; {
		if DistanceSq(px, pz, p.slots[i].X, p.slots[i].Z) > rSq {
			i++
			continue
		}
		pk, _ := p.Collect(i)
		n++
		if fn != nil {
			fn(pk)
		}
	}
	return n
}
