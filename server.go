package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const (
	uuidPattern     = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`
	qrSize          = 256
	leaderboardMax  = 100
	leaderboardSize = 20
	runHistorySize  = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

func queryInt(r *http.Request, key string, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, clientDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		serveWS(hub, w, req)
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, hub.sessions.ListSessions())
	}).Methods(http.MethodGet)
	api.HandleFunc("/catalog", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, StoreCatalog)
	}).Methods(http.MethodGet)
	api.HandleFunc("/qr/{sid:"+uuidPattern+"}", func(w http.ResponseWriter, req *http.Request) {
		serveQR(hub, w, req)
	}).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", func(w http.ResponseWriter, req *http.Request) {
		serveLeaderboard(hub, w, req)
	}).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		serveRun(hub, w, req)
	}).Methods(http.MethodGet)
	api.HandleFunc("/pilots/{name}/runs", func(w http.ResponseWriter, req *http.Request) {
		serveRunHistory(hub, w, req)
	}).Methods(http.MethodGet)
	api.HandleFunc("/analytics", func(w http.ResponseWriter, req *http.Request) {
		serveAnalytics(hub, w, req)
	}).Methods(http.MethodGet)

	// SPA: index.html for the root and session paths, no-cache so browsers
	// always revalidate
	index := func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, req, filepath.Join(clientDir, "index.html"))
	}
	r.HandleFunc("/", index)
	r.HandleFunc("/{sid:"+uuidPattern+"}", index)
	fs := http.FileServer(http.Dir(clientDir))
	r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		fs.ServeHTTP(w, req)
	}))

	return r
}

func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	ip := extractIP(r)
	if !hub.CanAccept(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade error: %v", err)
		return
	}

	hub.TrackConnect(ip)

	client := NewClient(hub, conn, ip)
	hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// serveQR renders a PNG pointing a phone at the controller page of a run
func serveQR(hub *Hub, w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	if hub.sessions.GetSession(sid) == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	target := (&url.URL{Scheme: scheme, Host: r.Host, Path: "/" + sid, RawQuery: "ctrl=1"}).String()
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		log.Printf("qr: encode %s: %v", sid, err)
		http.Error(w, "qr error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func serveLeaderboard(hub *Hub, w http.ResponseWriter, r *http.Request) {
	if hub.db == nil {
		writeJSON(w, http.StatusOK, []LeaderboardEntry{})
		return
	}
	entries, err := hub.db.GetLeaderboard(r.URL.Query().Get("by"), queryInt(r, "limit", leaderboardSize, leaderboardMax))
	if err != nil {
		log.Printf("leaderboard: %v", err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func serveRun(hub *Hub, w http.ResponseWriter, r *http.Request) {
	if hub.db == nil {
		http.Error(w, "no database", http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "bad run id", http.StatusBadRequest)
		return
	}
	run, err := hub.db.GetRun(id)
	if err != nil {
		log.Printf("run %d: %v", id, err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func serveRunHistory(hub *Hub, w http.ResponseWriter, r *http.Request) {
	if hub.db == nil {
		http.Error(w, "no database", http.StatusNotFound)
		return
	}
	pilot, err := hub.db.GetPlayerByUsername(mux.Vars(r)["name"])
	if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if pilot == nil {
		http.Error(w, "pilot not found", http.StatusNotFound)
		return
	}
	runs, err := hub.db.GetRunHistory(pilot.ID, queryInt(r, "limit", runHistorySize, leaderboardMax))
	if err != nil {
		log.Printf("run history %d: %v", pilot.ID, err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []RunRow{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func serveAnalytics(hub *Hub, w http.ResponseWriter, r *http.Request) {
	if hub.analytics == nil {
		http.Error(w, "analytics disabled", http.StatusNotFound)
		return
	}
	summary, err := hub.analytics.Summary(queryInt(r, "days", 7, 90))
	if err != nil {
		log.Printf("analytics: summary: %v", err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
