package main

// WavePhase is one slice of a system's timeline. Phases of a profile are
// sorted, start at 0, end at 1 and share boundaries.
type WavePhase struct {
	Name                string
	Start               float64
	End                 float64
	SpawnRateMultiplier float64
	TierWeights         map[EnemyTier]float64
}

// phaseBounds are shared by every profile; only pacing and mix differ
var phaseBounds = [8]float64{0, 0.1, 0.25, 0.4, 0.55, 0.7, 0.85, 1.0}

var phaseNames = [7]string{"arrival", "scouting", "swarm", "escalation", "siege", "onslaught", "finale"}

type phaseMix struct {
	rate  float64
	tiers [4]float64 // tier 1..4 weights
}

func buildProfile(mix [7]phaseMix) []WavePhase {
	phases := make([]WavePhase, len(mix))
	for i, m := range mix {
		weights := make(map[EnemyTier]float64, 4)
		for t, w := range m.tiers {
			if w > 0 {
				weights[EnemyTier(t+1)] = w
			}
		}
		phases[i] = WavePhase{
			Name:                phaseNames[i],
			Start:               phaseBounds[i],
			End:                 phaseBounds[i+1],
			SpawnRateMultiplier: m.rate,
			TierWeights:         weights,
		}
	}
	return phases
}

// DefaultWaveProfiles returns the per-system phase tables
func DefaultWaveProfiles() map[int][]WavePhase {
	return map[int][]WavePhase{
		1: buildProfile([7]phaseMix{
			{0.6, [4]float64{1, 0, 0, 0}},
			{0.8, [4]float64{1, 0.1, 0, 0}},
			{1.0, [4]float64{1, 0.3, 0, 0}},
			{1.2, [4]float64{0.8, 0.5, 0.1, 0}},
			{1.4, [4]float64{0.7, 0.6, 0.2, 0}},
			{1.7, [4]float64{0.6, 0.6, 0.3, 0.05}},
			{2.0, [4]float64{0.5, 0.6, 0.4, 0.1}},
		}),
		2: buildProfile([7]phaseMix{
			{0.8, [4]float64{1, 0.2, 0, 0}},
			{1.0, [4]float64{0.8, 0.4, 0.05, 0}},
			{1.2, [4]float64{0.7, 0.6, 0.15, 0}},
			{1.4, [4]float64{0.6, 0.7, 0.3, 0.02}},
			{1.7, [4]float64{0.5, 0.7, 0.4, 0.05}},
			{2.0, [4]float64{0.4, 0.7, 0.5, 0.1}},
			{2.4, [4]float64{0.3, 0.6, 0.6, 0.15}},
		}),
		3: buildProfile([7]phaseMix{
			{1.0, [4]float64{0.8, 0.4, 0.1, 0}},
			{1.2, [4]float64{0.6, 0.6, 0.2, 0.02}},
			{1.5, [4]float64{0.5, 0.7, 0.35, 0.05}},
			{1.8, [4]float64{0.4, 0.7, 0.5, 0.08}},
			{2.1, [4]float64{0.3, 0.6, 0.6, 0.12}},
			{2.5, [4]float64{0.2, 0.6, 0.7, 0.18}},
			{3.0, [4]float64{0.2, 0.5, 0.8, 0.25}},
		}),
		4: buildProfile([7]phaseMix{
			{1.2, [4]float64{0.6, 0.6, 0.2, 0.02}},
			{1.5, [4]float64{0.5, 0.7, 0.3, 0.05}},
			{1.8, [4]float64{0.4, 0.7, 0.5, 0.08}},
			{2.2, [4]float64{0.3, 0.6, 0.6, 0.12}},
			{2.6, [4]float64{0.2, 0.6, 0.7, 0.18}},
			{3.0, [4]float64{0.1, 0.5, 0.8, 0.25}},
			{3.5, [4]float64{0.1, 0.4, 0.9, 0.35}},
		}),
	}
}

// GetPhaseForProgress returns the phase active at progress in [0, 1] for
// the given system. Unknown systems use system 1's profile; progress at or
// past 1 returns the last phase.
func GetPhaseForProgress(profiles map[int][]WavePhase, systemNum int, progress float64) WavePhase {
	phases, ok := profiles[systemNum]
	if !ok || len(phases) == 0 {
		phases = profiles[1]
	}
	if len(phases) == 0 {
		return WavePhase{End: 1, SpawnRateMultiplier: 1, TierWeights: map[EnemyTier]float64{Tier1: 1}}
	}
	if progress >= 1 {
		return phases[len(phases)-1]
	}
	if progress < 0 {
		progress = 0
	}
	for _, p := range phases {
		if progress >= p.Start && progress < p.End {
			return p
		}
	}
	return phases[len(phases)-1]
}
