package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	clientDir := flag.String("client", "", "Path to client directory (default: ../client)")
	dbPath := flag.String("db", "survivor.db", "SQLite database path (empty disables accounts)")
	configPath := flag.String("config", "", "YAML tuning overrides")
	flag.Parse()

	if *clientDir == "" {
		exe, _ := os.Executable()
		*clientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// fallback for development
		if _, err := os.Stat(*clientDir); os.IsNotExist(err) {
			*clientDir = "../client"
		}
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	defs := DefaultDefinitions()

	var db *DB
	var an *Analytics
	if *dbPath != "" {
		db, err = OpenDB(*dbPath)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		an = NewAnalytics(db)
		defer an.Stop()
	}

	hub := NewHub(&cfg, defs, db, an)
	go hub.Run()
	maint := make(chan struct{})
	go hub.RunMaintenance(maint)

	router := SetupRoutes(hub, *clientDir)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: *addr, Handler: router}

	go func() {
		log.Printf("Server starting on %s", *addr)
		log.Printf("Serving client files from %s", *clientDir)
		if db != nil {
			log.Printf("Using database %s", *dbPath)
		}
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	close(maint)
	server.Close()
}
