package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtRunStart     = "run_start"
	EvtRunEnd       = "run_end"
	EvtRunSaved     = "run_saved"
	EvtRunLoaded    = "run_loaded"
	EvtBossKill     = "boss_kill"
	EvtSystemReach  = "system_reached"
	EvtLevelUp      = "level_up"
	EvtPurchase     = "purchase"
	EvtAchievement  = "achievement"
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
)

const (
	analyticsQueueSize  = 1024
	analyticsBatchSize  = 50
	analyticsFlushEvery = 5 * time.Second
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	PlayerID  int64
	SessionID string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics records events with batched background writes. The game loop
// never waits on the database.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu             sync.RWMutex
	connectedPeers int
	activeRuns     int
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, analyticsQueueSize),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event. Drops it if the queue is full.
func (a *Analytics) Track(evtType string, playerID int64, sessionID string, data string) {
	if a == nil {
		return
	}
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		PlayerID:  playerID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
	}
}

// TrackJSON is Track with metadata marshalled from v
func (a *Analytics) TrackJSON(evtType string, playerID int64, sessionID string, v any) {
	if a == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("analytics: marshal %s: %v", evtType, err)
		return
	}
	a.Track(evtType, playerID, sessionID, string(b))
}

// SetLive updates the live connection and run gauges
func (a *Analytics) SetLive(peers, runs int) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.connectedPeers = peers
	a.activeRuns = runs
	a.mu.Unlock()
}

// Live returns the current live gauges
func (a *Analytics) Live() (peers, runs int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connectedPeers, a.activeRuns
}

// Stop flushes queued events and shuts down the writer
func (a *Analytics) Stop() {
	a.once.Do(func() {
		close(a.stop)
		a.wg.Wait()
	})
}

func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(analyticsFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// drain without closing: Track may still race with shutdown
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events in one transaction
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Printf("analytics: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("analytics: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: evt.PlayerID, Valid: evt.PlayerID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, sid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.Printf("analytics: insert error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("analytics: commit error: %v", err)
	}
}

// ActivePilots returns distinct pilots seen in the last days days
func (a *Analytics) ActivePilots(days int) (int, error) {
	if a.db == nil {
		return 0, nil
	}
	var count int
	err := a.db.conn.QueryRow(`
		SELECT COUNT(DISTINCT player_id) FROM analytics_events
		WHERE player_id IS NOT NULL AND created_at >= date('now', '-' || ? || ' days')
	`, days).Scan(&count)
	return count, err
}

// EventCounts returns counts of each event type for the last days days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// RunOutcomes groups finished runs by the system they ended in
func (a *Analytics) RunOutcomes(days int) ([]RunOutcome, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT CAST(COALESCE(json_extract(data, '$.system'), 0) AS INTEGER) AS sys,
			COUNT(*) AS cnt,
			AVG(CAST(json_extract(data, '$.timeAlive') AS REAL)) AS avg_time
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data) AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY sys ORDER BY sys
	`, EvtRunEnd, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunOutcome
	for rows.Next() {
		var o RunOutcome
		var avg sql.NullFloat64
		if err := rows.Scan(&o.System, &o.Count, &avg); err != nil {
			continue
		}
		o.AvgTimeAlive = avg.Float64
		result = append(result, o)
	}
	return result, rows.Err()
}

// PopularPurchases returns the most bought permanent upgrades
func (a *Analytics) PopularPurchases(limit int) ([]ItemAnalytics, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT COALESCE(json_extract(data, '$.item_id'), 'unknown') as item, COUNT(*) as cnt
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data)
		GROUP BY item ORDER BY cnt DESC LIMIT ?
	`, EvtPurchase, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemAnalytics
	for rows.Next() {
		var ia ItemAnalytics
		if err := rows.Scan(&ia.ItemID, &ia.Count); err != nil {
			continue
		}
		result = append(result, ia)
	}
	return result, rows.Err()
}

// RunOutcome is the number of runs that ended in one system
type RunOutcome struct {
	System       int     `json:"system"`
	Count        int     `json:"count"`
	AvgTimeAlive float64 `json:"avgTimeAlive"`
}

// ItemAnalytics holds purchase count per item
type ItemAnalytics struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// AnalyticsSummary is served by the analytics endpoint
type AnalyticsSummary struct {
	ConnectedPeers int             `json:"connectedPeers"`
	ActiveRuns     int             `json:"activeRuns"`
	DailyPilots    int             `json:"dailyPilots"`
	WeeklyPilots   int             `json:"weeklyPilots"`
	Events         map[string]int  `json:"events"`
	Outcomes       []RunOutcome    `json:"outcomes"`
	Purchases      []ItemAnalytics `json:"purchases"`
}

// Summary gathers every dashboard figure for the last days days
func (a *Analytics) Summary(days int) (AnalyticsSummary, error) {
	var s AnalyticsSummary
	var err error
	s.ConnectedPeers, s.ActiveRuns = a.Live()
	if s.DailyPilots, err = a.ActivePilots(1); err != nil {
		return s, err
	}
	if s.WeeklyPilots, err = a.ActivePilots(7); err != nil {
		return s, err
	}
	if s.Events, err = a.EventCounts(days); err != nil {
		return s, err
	}
	if s.Outcomes, err = a.RunOutcomes(days); err != nil {
		return s, err
	}
	s.Purchases, err = a.PopularPurchases(10)
	return s, err
}
