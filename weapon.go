package main

import "math"

// WeaponSlot is one equipped weapon
type WeaponSlot struct {
	ID       string
	Level    int
	Cooldown float64
	def      *WeaponDef
}

// WeaponStore owns the equipped weapons and fires them on cooldown
type WeaponStore struct {
	cfg   *Config
	defs  *Definitions
	slots []WeaponSlot
}

// NewWeaponStore creates an empty weapon store
func NewWeaponStore(cfg *Config, defs *Definitions) *WeaponStore {
	return &WeaponStore{cfg: cfg, defs: defs, slots: make([]WeaponSlot, 0, cfg.MaxWeapons)}
}

// Slots returns the equipped weapons
func (s *WeaponStore) Slots() []WeaponSlot { return s.slots }

// Init replaces the equipped weapons with loadout. Unknown ids are skipped.
func (s *WeaponStore) Init(loadout []string) {
	s.slots = s.slots[:0]
	for _, id := range loadout {
		s.Add(id)
	}
}

// Has reports whether id is equipped
func (s *WeaponStore) Has(id string) bool {
	return s.slot(id) != nil
}

func (s *WeaponStore) slot(id string) *WeaponSlot {
	for i := range s.slots {
		if s.slots[i].ID == id {
			return &s.slots[i]
		}
	}
	return nil
}

// Add equips a weapon at level 1. Fails for unknown ids, duplicates and
// when every slot is taken.
func (s *WeaponStore) Add(id string) bool {
	def := s.defs.Weapon(id)
	if def == nil || s.Has(id) || len(s.slots) >= s.cfg.MaxWeapons {
		return false
	}
	s.slots = append(s.slots, WeaponSlot{ID: id, Level: 1, def: def})
	return true
}

// LevelUp raises an equipped weapon's level
func (s *WeaponStore) LevelUp(id string) bool {
	w := s.slot(id)
	if w == nil {
		return false
	}
	w.Level++
	return true
}

// Full reports whether every weapon slot is taken
func (s *WeaponStore) Full() bool {
	return len(s.slots) >= s.cfg.MaxWeapons
}

// Loadout returns the equipped weapon ids in slot order
func (s *WeaponStore) Loadout() []string {
	ids := make([]string, len(s.slots))
	for i, w := range s.slots {
		ids[i] = w.ID
	}
	return ids
}

// Tick counts down cooldowns and fires every ready weapon into out
func (s *WeaponStore) Tick(delta float64, p *Player, enemies []Enemy, out *ProjectileStore) {
	if !p.Alive {
		return
	}
	for i := range s.slots {
		w := &s.slots[i]
		if w.Cooldown > 0 {
			w.Cooldown -= delta
		}
		if w.Cooldown > 0 {
			continue
		}
		if !s.fire(w, p, enemies, out) {
			w.Cooldown = 0
			continue
		}
		rate := p.FireRateMul
		if rate <= 0 {
			rate = 1
		}
		w.Cooldown += w.def.Cooldown / rate
		if w.Cooldown < 0 {
			w.Cooldown = 0
		}
	}
}

// fire emits one volley. Returns false when there is nothing to shoot at.
func (s *WeaponStore) fire(w *WeaponSlot, p *Player, enemies []Enemy, out *ProjectileStore) bool {
	def := w.def
	// +20% damage per level, one extra projectile every other level
	damage := def.Damage * (1 + 0.2*float64(w.Level-1)) * p.DamageMul
	count := def.Count + (w.Level-1)/2
	if count < 1 {
		count = 1
	}

	aim := p.Rotation
	switch def.Pattern {
	case FireNearest:
		idx := nearestEnemy(enemies, p.X, p.Z)
		if idx < 0 {
			return false
		}
		aim = math.Atan2(enemies[idx].Z-p.Z, enemies[idx].X-p.X)
	case FireRadial:
		step := 2 * math.Pi / float64(count)
		for k := 0; k < count; k++ {
			s.emit(out, def, p, aim+float64(k)*step, damage)
		}
		return true
	}

	spread := def.Spread
	if def.Pattern == FireNearest && count > 1 && spread == 0 {
		spread = 0.15 * float64(count-1)
	}
	if count == 1 || spread == 0 {
		for k := 0; k < count; k++ {
			s.emit(out, def, p, aim, damage)
		}
		return true
	}
	step := spread / float64(count-1)
	start := aim - spread/2
	for k := 0; k < count; k++ {
		s.emit(out, def, p, start+float64(k)*step, damage)
	}
	return true
}

func (s *WeaponStore) emit(out *ProjectileStore, def *WeaponDef, p *Player, angle, damage float64) {
	out.Spawn(Projectile{
		X:         p.X,
		Z:         p.Z,
		DirX:      math.Cos(angle),
		DirZ:      math.Sin(angle),
		Speed:     def.ProjectileSpeed,
		Damage:    damage,
		Radius:    def.ProjectileRadius,
		Lifetime:  def.Lifetime,
		Homing:    def.Homing,
		TurnRate:  def.TurnRate,
		Knockback: def.KnockbackStrength,
		WeaponID:  def.ID,
		Category:  CatProjectile,
	})
}

// nearestEnemy returns the index of the closest enemy, or -1
func nearestEnemy(enemies []Enemy, x, z float64) int {
	best := -1
	bestD := math.MaxFloat64
	for i := range enemies {
		d := DistanceSq(x, z, enemies[i].X, enemies[i].Z)
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// Reset zeroes every cooldown
func (s *WeaponStore) Reset() {
	for i := range s.slots {
		s.slots[i].Cooldown = 0
	}
}
