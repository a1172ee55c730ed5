package main

import (
	"math"
	"math/rand"
)

// SpawnOptions carries the per-system inputs to the spawn scheduler.
// SystemNum and SystemTimer are fixed for the life of one SpawnSystem.
type SpawnOptions struct {
	SystemNum   int
	SystemTimer float64
	CurseBonus  float64
	Scaling     *StatScaling
}

type weightedType struct {
	def    *EnemyDef
	weight float64
}

// SpawnSystem schedules enemy spawns from the wave tables
type SpawnSystem struct {
	cfg         *Config
	defs        *Definitions
	rng         *rand.Rand
	elapsedTime float64
	spawnTimer  float64
	armed       bool

	// reused per batch
	pool  []weightedType
	batch []SpawnInstruction
	ids   []string
}

// NewSpawnSystem creates a scheduler whose first event is timed lazily
func NewSpawnSystem(cfg *Config, defs *Definitions, rng *rand.Rand) *SpawnSystem {
	return &SpawnSystem{
		cfg:   cfg,
		defs:  defs,
		rng:   rng,
		pool:  make([]weightedType, 0, len(defs.Enemies)),
		batch: make([]SpawnInstruction, 0, 16),
		ids:   defs.EnemyIDs(),
	}
}

// ElapsedTime returns the scheduler clock
func (s *SpawnSystem) ElapsedTime() float64 {
	return s.elapsedTime
}

// SpawnTimer returns the countdown to the next spawn event
func (s *SpawnSystem) SpawnTimer() float64 {
	return s.spawnTimer
}

// Interval returns the time between spawn events for a phase multiplier and
// a curse bonus. Never below SpawnIntervalMin.
func (s *SpawnSystem) Interval(rateMultiplier, curseBonus float64) float64 {
	rate := rateMultiplier * (1 + curseBonus)
	if rate <= 0 {
		return s.cfg.SpawnIntervalBase
	}
	return math.Max(s.cfg.SpawnIntervalMin, s.cfg.SpawnIntervalBase/rate)
}

func (s *SpawnSystem) progress(opts SpawnOptions) float64 {
	if opts.SystemTimer <= 0 {
		return 1
	}
	return math.Min(s.elapsedTime/opts.SystemTimer, 1)
}

// Tick advances the clock and returns the instructions for any spawn event
// that fired. The returned slice is reused by the next call.
func (s *SpawnSystem) Tick(delta, px, pz float64, opts SpawnOptions) []SpawnInstruction {
	s.batch = s.batch[:0]
	if !s.armed {
		phase := GetPhaseForProgress(s.defs.Waves, opts.SystemNum, s.progress(opts))
		s.spawnTimer = s.Interval(phase.SpawnRateMultiplier, opts.CurseBonus)
		s.armed = true
	}

	s.elapsedTime += delta
	s.spawnTimer -= delta
	if s.spawnTimer > 0 {
		return s.batch
	}

	phase := GetPhaseForProgress(s.defs.Waves, opts.SystemNum, s.progress(opts))
	s.spawnTimer = s.Interval(phase.SpawnRateMultiplier, opts.CurseBonus)

	size := s.BatchSize()
	s.buildPool(phase)
	for i := 0; i < size; i++ {
		def := s.pick()
		if def == nil {
			break
		}
		switch def.Behavior {
		case BehaviorSweep:
			i += s.appendSweepGroup(def, px, pz, opts.Scaling) - 1
		case BehaviorSniperFixed:
			x, z := s.ring(px, pz, s.cfg.SniperDistanceMin, s.cfg.SniperDistanceMax)
			s.batch = append(s.batch, SpawnInstruction{TypeID: def.ID, X: x, Z: z, Scaling: opts.Scaling})
		default:
			x, z := s.ring(px, pz, s.cfg.SpawnDistanceMin, s.cfg.SpawnDistanceMax)
			s.batch = append(s.batch, SpawnInstruction{TypeID: def.ID, X: x, Z: z, Scaling: opts.Scaling})
		}
	}
	return s.batch
}

// BatchSize grows by one every SpawnBatchRampInterval seconds
func (s *SpawnSystem) BatchSize() int {
	n := s.cfg.SpawnBatchBase
	if s.cfg.SpawnBatchRampInterval > 0 {
		n += int(s.elapsedTime / s.cfg.SpawnBatchRampInterval)
	}
	if n < 1 {
		n = 1
	}
	return n
}

// buildPool collects spawnable types weighted by the phase's tier mix
func (s *SpawnSystem) buildPool(phase WavePhase) {
	s.pool = s.pool[:0]
	for _, id := range s.ids {
		def := s.defs.Enemies[id]
		if def.SpawnWeight <= 0 {
			continue
		}
		tw := phase.TierWeights[def.ResolvedTier()]
		if tw <= 0 {
			continue
		}
		s.pool = append(s.pool, weightedType{def: def, weight: def.SpawnWeight * tw})
	}
}

func (s *SpawnSystem) pick() *EnemyDef {
	if len(s.pool) == 0 {
		return s.pickAny()
	}
	total := 0.0
	for _, w := range s.pool {
		total += w.weight
	}
	r := s.rng.Float64() * total
	for _, w := range s.pool {
		r -= w.weight
		if r < 0 {
			return w.def
		}
	}
	return s.pool[len(s.pool)-1].def
}

// pickAny draws uniformly from every type with a positive spawn weight
func (s *SpawnSystem) pickAny() *EnemyDef {
	n := 0
	for _, id := range s.ids {
		if s.defs.Enemies[id].SpawnWeight > 0 {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	k := s.rng.Intn(n)
	for _, id := range s.ids {
		def := s.defs.Enemies[id]
		if def.SpawnWeight <= 0 {
			continue
		}
		if k == 0 {
			return def
		}
		k--
	}
	return nil
}

// ring places a point at a random angle around (px, pz), clamped to the
// play area
func (s *SpawnSystem) ring(px, pz, minDist, maxDist float64) (float64, float64) {
	a := s.rng.Float64() * 2 * math.Pi
	d := randRange(s.rng, minDist, maxDist)
	return s.clamp(px+math.Cos(a)*d, pz+math.Sin(a)*d)
}

func (s *SpawnSystem) clamp(x, z float64) (float64, float64) {
	b := s.cfg.PlayAreaBound
	return Clamp(x, -b, b), Clamp(z, -b, b)
}

// appendSweepGroup lines up a sweep formation on the far side of the player
// heading across it. Returns the group size.
func (s *SpawnSystem) appendSweepGroup(def *EnemyDef, px, pz float64, scaling *StatScaling) int {
	size := s.cfg.SweepGroupMin
	if span := s.cfg.SweepGroupMax - s.cfg.SweepGroupMin; span > 0 {
		size += s.rng.Intn(span + 1)
	}

	a := s.rng.Float64() * 2 * math.Pi
	dirX, dirZ := math.Cos(a), math.Sin(a)
	// start behind the player relative to the sweep direction
	d := randRange(s.rng, s.cfg.SpawnDistanceMin, s.cfg.SpawnDistanceMax)
	cx := px - dirX*d
	cz := pz - dirZ*d
	perpX, perpZ := -dirZ, dirX

	mid := float64(size-1) / 2
	for k := 0; k < size; k++ {
		off := (float64(k) - mid) * s.cfg.SweepSpacing
		x, z := s.clamp(cx+perpX*off, cz+perpZ*off)
		s.batch = append(s.batch, SpawnInstruction{
			TypeID:    def.ID,
			X:         x,
			Z:         z,
			SweepDirX: dirX,
			SweepDirZ: dirZ,
			Scaling:   scaling,
		})
	}
	return size
}

// Reset clears the clock and re-arms lazy timer initialisation
func (s *SpawnSystem) Reset() {
	s.elapsedTime = 0
	s.spawnTimer = 0
	s.armed = false
}
