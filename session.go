package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	maxSessions      = 100
	sessionIdleLimit = 10 * time.Minute
)

// Session is one run that clients can attach to
type Session struct {
	ID         string
	Name       string
	Game       *Game
	lastActive time.Time
}

// SessionManager handles creation, lookup and reaping of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      *Config
	defs     *Definitions
	db       *DB
	an       *Analytics
	now      func() time.Time
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(cfg *Config, defs *Definitions, db *DB, an *Analytics) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		defs:     defs,
		db:       db,
		an:       an,
		now:      time.Now,
	}
}

// CreateSession creates a run session and starts its loop. Returns nil if
// the limit is reached.
func (sm *SessionManager) CreateSession(name string, run RunConfig) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := uuid.NewString()
	sess := &Session{
		ID:         id,
		Name:       name,
		Game:       NewGame(id, sm.cfg, sm.defs, run, sm.db, sm.an),
		lastActive: sm.now(),
	}
	sm.sessions[id] = sess
	go sess.Game.Run()
	sm.an.Track(EvtSessionStart, 0, id, "")
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// MarkActive resets a session's idle clock
func (sm *SessionManager) MarkActive(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sess, ok := sm.sessions[id]; ok {
		sess.lastActive = sm.now()
	}
}

// RemoveClient detaches a client from a session. Empty sessions are
// stopped and removed.
func (sm *SessionManager) RemoveClient(sessionID string, c Broadcaster) {
	sess := sm.GetSession(sessionID)
	if sess == nil {
		return
	}
	sess.Game.RemoveClient(c)
	if sess.Game.ClientCount() == 0 {
		sm.remove(sessionID)
	}
}

func (sm *SessionManager) remove(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
	if !ok {
		return
	}
	sess.Game.Stop()
	sm.an.Track(EvtSessionEnd, 0, id, "")
}

// ReapIdle removes sessions with no pilot that have been idle too long.
// Returns how many were removed.
func (sm *SessionManager) ReapIdle() int {
	cutoff := sm.now().Add(-sessionIdleLimit)
	var stale []string
	sm.mu.RLock()
	for id, sess := range sm.sessions {
		if sess.lastActive.Before(cutoff) && !sess.Game.HasPilot() {
			stale = append(stale, id)
		}
	}
	sm.mu.RUnlock()
	for _, id := range stale {
		sm.remove(id)
	}
	return len(stale)
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		phase, system := sess.Game.Info()
		list = append(list, SessionInfo{
			ID:     sess.ID,
			Name:   sess.Name,
			Phase:  phase.String(),
			System: system,
			Pilot:  sess.Game.HasPilot(),
		})
	}
	return list
}
