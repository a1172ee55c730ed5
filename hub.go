package main

import (
	"log"
	"sync"
	"time"
)

const (
	maxConnsPerIP       = 5
	maxTotalConns       = 1000
	maintenanceInterval = time.Minute
)

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	// connection limiting, accessed from HTTP handlers
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// auth & persistence, nil without a database
	db        *DB
	auth      *Auth
	analytics *Analytics
	// authenticated pilots: account ID -> client
	onlineMu    sync.RWMutex
	onlineUsers map[int64]*Client
}

// NewHub creates a Hub. db may be nil to run without accounts.
func NewHub(cfg *Config, defs *Definitions, db *DB, an *Analytics) *Hub {
	h := &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		sessions:    NewSessionManager(cfg, defs, db, an),
		ipConns:     make(map[string]int),
		db:          db,
		analytics:   an,
		onlineUsers: make(map[int64]*Client),
	}
	if db != nil {
		h.auth = NewAuth(db)
	}
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	return h.ipConns[ip] < maxConnsPerIP
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			client.detach()
			if client.authPlayerID != 0 {
				h.SetOffline(client.authPlayerID, client)
			}
		}
	}
}

// RunMaintenance reaps idle sessions, prunes login windows and refreshes
// the live gauges until stop is closed
func (h *Hub) RunMaintenance(stop <-chan struct{}) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if n := h.sessions.ReapIdle(); n > 0 {
				log.Printf("hub: reaped %d idle sessions", n)
			}
			if h.auth != nil {
				h.auth.PruneRates(now)
			}
			h.analytics.SetLive(h.ClientCount(), h.sessions.Count())
		case <-stop:
			return
		}
	}
}

// SetOnline marks an authenticated pilot as online
func (h *Hub) SetOnline(playerID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[playerID] = client
}

// SetOffline removes a pilot from online tracking if client is still the
// one registered for it
func (h *Hub) SetOffline(playerID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	if h.onlineUsers[playerID] == client {
		delete(h.onlineUsers, playerID)
	}
}

// IsOnline checks if a pilot is online
func (h *Hub) IsOnline(playerID int64) bool {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	_, ok := h.onlineUsers[playerID]
	return ok
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
