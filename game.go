package main

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickDuration = time.Second / TickRate
	tickDelta    = 1.0 / float64(TickRate)
)

var (
	errNotLobby    = errors.New("run already started")
	errNotPlaying  = errors.New("run is not in progress")
	errNoPilot     = errors.New("no pilot account attached")
	errPilotExists = errors.New("session already has a pilot")
)

// Broadcaster sends messages to one connected client
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game drives one run: a Simulation ticked at TickRate by its own
// goroutine, fed by the pilot's input and broadcast to every viewer
type Game struct {
	mu         sync.RWMutex
	sim        *Simulation
	sessionID  string
	input      Input
	pilot      Broadcaster
	pilotAuth  int64 // 0 = guest, nothing is persisted
	controller Broadcaster
	viewers    map[Broadcaster]bool
	pending    []SimEvent // events since the last broadcast
	frame      uint64
	ended      bool
	stopped    bool
	stop       chan struct{}

	db        *DB
	analytics *Analytics
}

// NewGame creates a game in the lobby phase
func NewGame(sessionID string, cfg *Config, defs *Definitions, run RunConfig, db *DB, an *Analytics) *Game {
	return &Game{
		sim:       NewSimulation(cfg, defs, run),
		sessionID: sessionID,
		viewers:   make(map[Broadcaster]bool),
		stop:      make(chan struct{}),
		db:        db,
		analytics: an,
	}
}

// Run starts the game loop
func (g *Game) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop. Safe to call more than once.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.stopped {
		g.stopped = true
		close(g.stop)
	}
}

// SetPilot attaches the client that flies the ship. authID 0 is a guest.
func (g *Game) SetPilot(c Broadcaster, authID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pilot != nil && g.pilot != c {
		return errPilotExists
	}
	g.pilot = c
	g.pilotAuth = authID
	g.viewers[c] = true
	return nil
}

// AddViewer attaches a spectator
func (g *Game) AddViewer(c Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.viewers[c] = true
}

// RemoveClient detaches a pilot or spectator. Losing the pilot pauses the run.
func (g *Game) RemoveClient(c Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.viewers, c)
	if g.pilot == c {
		g.pilot = nil
		g.input = Input{}
		g.sim.SetPaused(true)
	}
}

// SetController attaches a phone controller that shares the pilot's input
func (g *Game) SetController(c Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controller = c
	if g.pilot != nil {
		g.pilot.SendJSON(Envelope{T: MsgCtrlOn})
	}
}

// RemoveController detaches the phone controller
func (g *Game) RemoveController(c Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.controller != c {
		return
	}
	g.controller = nil
	if g.pilot != nil {
		g.pilot.SendJSON(Envelope{T: MsgCtrlOff})
	}
}

// HasPilot reports whether a pilot is attached
func (g *Game) HasPilot() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pilot != nil
}

// IsPilot reports whether c flies this run
func (g *Game) IsPilot(c Broadcaster) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pilot != nil && g.pilot == c
}

// ClientCount returns the number of attached pilots and spectators
func (g *Game) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.viewers)
}

// Info returns a summary for session lists
func (g *Game) Info() (phase RunPhase, system int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sim.Phase, g.sim.SystemNum
}

// RunConfig returns the run settings
func (g *Game) RunConfig() RunConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sim.Run()
}

// HandleInput stores the latest input. The ability request latches until
// the next tick consumes it.
func (g *Game) HandleInput(in Input) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ability := g.input.Ability || in.Ability
	g.input = in
	g.input.Ability = ability
}

// Start leaves the lobby, applying the pilot's permanent upgrades
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sim.Phase != PhaseLobby {
		return errNotLobby
	}
	var ranks map[string]int
	if g.db != nil && g.pilotAuth > 0 {
		r, err := g.db.GetUpgradeRanks(g.pilotAuth)
		if err != nil {
			log.Printf("game %s: load upgrades: %v", g.sessionID, err)
		}
		ranks = r
	}
	g.sim.Start(ranks)
	g.analytics.TrackJSON(EvtRunStart, g.pilotAuth, g.sessionID, map[string]any{
		"mode": int(g.sim.Run().Mode),
		"ship": int(g.sim.Run().Ship),
	})
	return nil
}

// SetPaused pauses or resumes the run
func (g *Game) SetPaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sim.SetPaused(paused)
}

// ChooseUpgrade applies a level-up offer
func (g *Game) ChooseUpgrade(index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.ChooseUpgrade(index)
}

// SaveRun stores the run-persistent state for the pilot and returns the
// saved run's ID. The run keeps going.
func (g *Game) SaveRun() (int64, error) {
	g.mu.Lock()
	if g.db == nil || g.pilotAuth == 0 {
		g.mu.Unlock()
		return 0, errNoPilot
	}
	if g.sim.Phase == PhaseLobby || g.sim.Phase.Finished() {
		g.mu.Unlock()
		return 0, errNotPlaying
	}
	snap := g.sim.SaveSnapshot()
	row := &RunRow{
		PlayerID:  g.pilotAuth,
		Status:    RunSaved,
		Mode:      int(g.sim.Run().Mode),
		Ship:      int(g.sim.Run().Ship),
		System:    g.sim.SystemNum,
		Kills:     g.sim.Stats.Kills,
		TimeAlive: g.sim.Stats.TimeAlive,
	}
	g.mu.Unlock()

	blob, err := msgpack.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	row.Snapshot = blob
	id, err := g.db.RecordRun(row)
	if err != nil {
		return 0, err
	}
	g.analytics.TrackJSON(EvtRunSaved, row.PlayerID, g.sessionID, map[string]any{"run": id, "system": row.System})
	return id, nil
}

// LoadRun resumes a saved run of the pilot into this lobby
func (g *Game) LoadRun(runID int64) error {
	g.mu.RLock()
	auth := g.pilotAuth
	phase := g.sim.Phase
	g.mu.RUnlock()
	if g.db == nil || auth == 0 {
		return errNoPilot
	}
	if phase != PhaseLobby {
		return errNotLobby
	}

	row, err := g.db.GetRun(runID)
	if err != nil {
		return fmt.Errorf("load run %d: %w", runID, err)
	}
	if row == nil || row.PlayerID != auth || row.Status != RunSaved {
		return fmt.Errorf("run %d not found", runID)
	}
	var snap map[string]any
	if err := msgpack.Unmarshal(row.Snapshot, &snap); err != nil {
		return fmt.Errorf("decode run %d: %w", runID, err)
	}

	g.mu.Lock()
	err = g.sim.LoadSnapshot(snap)
	g.mu.Unlock()
	if err != nil {
		return err
	}
	if err := g.db.ConsumeSavedRun(runID, auth); err != nil {
		log.Printf("game %s: consume run %d: %v", g.sessionID, runID, err)
	}
	g.analytics.TrackJSON(EvtRunLoaded, auth, g.sessionID, map[string]any{"run": runID, "system": row.System})
	return nil
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.frame++
	g.sim.Tick(tickDelta, g.input)
	g.input.Ability = false

	if ev := g.sim.Events(); len(ev) > 0 {
		g.pending = append(g.pending, ev...)
		g.trackEvents(ev)
		g.sim.ClearEvents()
	}
	if g.sim.Phase.Finished() && !g.ended {
		g.ended = true
		g.broadcastState()
		g.finishRun()
		return
	}
	if g.frame%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// trackEvents forwards the notable simulation events to analytics
func (g *Game) trackEvents(events []SimEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case EventBossDefeated:
			g.analytics.TrackJSON(EvtBossKill, g.pilotAuth, g.sessionID, map[string]any{"system": g.sim.SystemNum})
		case EventSystem:
			g.analytics.TrackJSON(EvtSystemReach, g.pilotAuth, g.sessionID, map[string]any{"system": int(ev.Value)})
		case EventLevelUp:
			g.analytics.TrackJSON(EvtLevelUp, g.pilotAuth, g.sessionID, map[string]any{"level": int(ev.Value)})
		}
	}
}

// broadcastState sends a msgpack state frame to every viewer
func (g *Game) broadcastState() {
	if len(g.viewers) == 0 {
		g.pending = g.pending[:0]
		return
	}
	state := g.sim.Snapshot()
	state.Events = g.pending
	data, err := msgpack.Marshal(&state)
	g.pending = g.pending[:0]
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.sessionID, err)
		return
	}
	for c := range g.viewers {
		c.SendBinary(data)
	}
}

// finishRun hands the result to persistence off the tick goroutine
func (g *Game) finishRun() {
	run := g.sim.Run()
	res := runResult{
		authID:  g.pilotAuth,
		victory: g.sim.Phase == PhaseVictory,
		system:  g.sim.SystemNum,
		mode:    int(run.Mode),
		ship:    int(run.Ship),
		stats:   g.sim.Stats,
		pilot:   g.pilot,
	}
	log.Printf("game %s: run over (victory=%v system=%d kills=%d)", g.sessionID, res.victory, res.system, res.stats.Kills)
	go g.persist(res)
}

type runResult struct {
	authID  int64
	victory bool
	system  int
	mode    int
	ship    int
	stats   RunStats
	pilot   Broadcaster
}

func (g *Game) persist(res runResult) {
	earned := res.stats.Fragments + FragmentsPerRun(res.stats.SystemsCleared, res.stats.BossKills, res.victory)
	msg := RunEndMsg{
		Victory:   res.victory,
		System:    res.system,
		Stats:     res.stats,
		Fragments: earned,
	}
	g.analytics.TrackJSON(EvtRunEnd, res.authID, g.sessionID, map[string]any{
		"system":    res.system,
		"victory":   res.victory,
		"kills":     res.stats.Kills,
		"timeAlive": res.stats.TimeAlive,
	})

	var unlocked []AchievementDef
	if g.db != nil && res.authID > 0 {
		id, err := g.db.RecordRun(&RunRow{
			PlayerID:  res.authID,
			Status:    RunFinished,
			Mode:      res.mode,
			Ship:      res.ship,
			System:    res.system,
			Victory:   res.victory,
			Kills:     res.stats.Kills,
			TimeAlive: res.stats.TimeAlive,
		})
		if err != nil {
			log.Printf("game %s: %v", g.sessionID, err)
		}
		msg.RunID = id
		if err := g.db.UpdateStatsAfterRun(res.authID, res.stats, res.system, res.victory, earned); err != nil {
			log.Printf("game %s: %v", g.sessionID, err)
		}
		unlocked = CheckAchievements(g.db, res.authID, res.stats, res.system, res.victory)
	}

	if res.pilot == nil {
		return
	}
	res.pilot.SendJSON(Envelope{T: MsgRunEnd, Data: msg})
	for _, a := range unlocked {
		res.pilot.SendJSON(Envelope{T: MsgAchievement, Data: AchievementMsg{ID: a.ID, Name: a.Name, Desc: a.Description}})
		g.analytics.TrackJSON(EvtAchievement, res.authID, g.sessionID, map[string]any{"id": a.ID})
	}
}
