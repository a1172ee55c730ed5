package main

// RunPhase represents the lifecycle of a run
type RunPhase int

const (
	PhaseLobby    RunPhase = 0 // created, waiting for start
	PhasePlaying  RunPhase = 1
	PhasePaused   RunPhase = 2
	PhaseLevelUp  RunPhase = 3 // waiting for an upgrade pick
	PhaseGameOver RunPhase = 4
	PhaseVictory  RunPhase = 5
)

var runPhaseNames = [...]string{"lobby", "playing", "paused", "level_up", "game_over", "victory"}

func (p RunPhase) String() string {
	if p < 0 || int(p) >= len(runPhaseNames) {
		return "unknown"
	}
	return runPhaseNames[p]
}

// Finished reports whether the run has ended
func (p RunPhase) Finished() bool {
	return p == PhaseGameOver || p == PhaseVictory
}

// GameMode defines how a run ends
type GameMode int

const (
	ModeStandard GameMode = 0 // victory after the final system's boss
	ModeEndless  GameMode = 1 // systems continue until death
)

// RunConfig holds settings for a run
type RunConfig struct {
	Mode        GameMode
	FinalSystem int
	Ship        ShipClass
	Seed        int64
}

// DefaultRunConfig returns the config for a mode
func DefaultRunConfig(mode GameMode) RunConfig {
	switch mode {
	case ModeEndless:
		return RunConfig{Mode: ModeEndless}
	default:
		return RunConfig{Mode: ModeStandard, FinalSystem: 4}
	}
}

// IsFinalSystem reports whether clearing systemNum ends the run
func (c RunConfig) IsFinalSystem(systemNum int) bool {
	return c.Mode == ModeStandard && c.FinalSystem > 0 && systemNum >= c.FinalSystem
}

// RunStats tracks per-run counters for results, achievements and analytics
type RunStats struct {
	Kills          int     `msgpack:"kills" json:"kills"`
	EliteKills     int     `msgpack:"eliteKills" json:"eliteKills"`
	BossKills      int     `msgpack:"bossKills" json:"bossKills"`
	DamageDealt    float64 `msgpack:"damageDealt" json:"damageDealt"`
	DamageTaken    float64 `msgpack:"damageTaken" json:"damageTaken"`
	XPCollected    float64 `msgpack:"xp" json:"xp"`
	Fragments      int     `msgpack:"fragments" json:"fragments"`
	RareItems      int     `msgpack:"rareItems" json:"rareItems"`
	SystemsCleared int     `msgpack:"systemsCleared" json:"systemsCleared"`
	TimeAlive      float64 `msgpack:"timeAlive" json:"timeAlive"`
}
