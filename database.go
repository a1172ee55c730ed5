package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// Run status values stored in runs.status
const (
	RunSaved    = "saved"
	RunFinished = "finished"
)

var errNotEnoughFragments = errors.New("not enough fragments")

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents a pilot account
type PlayerRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow holds lifetime stats for a pilot
type StatsRow struct {
	PlayerID   int64
	Runs       int
	Wins       int
	Kills      int
	EliteKills int
	BossKills  int
	BestSystem int
	Playtime   float64 // seconds
	Fragments  int     // unspent wallet
}

// RunRow is a finished or saved run
type RunRow struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"playerId"`
	Status    string    `json:"status"`
	Mode      int       `json:"mode"`
	Ship      int       `json:"ship"`
	System    int       `json:"system"`
	Victory   bool      `json:"victory"`
	Kills     int       `json:"kills"`
	TimeAlive float64   `json:"timeAlive"`
	Snapshot  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// WAL lets the HTTP handlers read while a run is being written
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES players(id),
		runs INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		elite_kills INTEGER NOT NULL DEFAULT 0,
		boss_kills INTEGER NOT NULL DEFAULT 0,
		best_system INTEGER NOT NULL DEFAULT 0,
		playtime REAL NOT NULL DEFAULT 0,
		fragments INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS upgrades (
		player_id INTEGER NOT NULL REFERENCES players(id),
		item_id TEXT NOT NULL,
		rank INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id INTEGER NOT NULL REFERENCES players(id),
		status TEXT NOT NULL,
		mode INTEGER NOT NULL DEFAULT 0,
		ship INTEGER NOT NULL DEFAULT 0,
		system INTEGER NOT NULL DEFAULT 1,
		victory INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		time_alive REAL NOT NULL DEFAULT 0,
		snapshot BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS achievements (
		player_id INTEGER NOT NULL REFERENCES players(id),
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (player_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		session_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(player_id);
	CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type, created_at);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("db: migration error: %v", err)
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// GetSetting returns a server setting, or "" if unset
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting stores a server setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// CreatePlayer creates a new pilot account (returns player ID)
func (db *DB) CreatePlayer(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO players (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	// Create stats row
	_, err = db.conn.Exec("INSERT INTO stats (player_id) VALUES (?)", id)
	return id, err
}

// GetPlayerByUsername returns a pilot by username
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM players WHERE username = ?",
		username,
	)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetPlayerByID returns a pilot by ID
func (db *DB) GetPlayerByID(id int64) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM players WHERE id = ?",
		id,
	)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetStats returns lifetime stats
func (db *DB) GetStats(playerID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(
		`SELECT player_id, runs, wins, kills, elite_kills, boss_kills, best_system, playtime, fragments
		 FROM stats WHERE player_id = ?`,
		playerID,
	)
	s := &StatsRow{}
	err := row.Scan(&s.PlayerID, &s.Runs, &s.Wins, &s.Kills, &s.EliteKills, &s.BossKills, &s.BestSystem, &s.Playtime, &s.Fragments)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// UpdateStatsAfterRun folds a finished run into lifetime stats and credits
// the earned fragments to the wallet
func (db *DB) UpdateStatsAfterRun(playerID int64, st RunStats, system int, won bool, fragments int) error {
	winInc := 0
	if won {
		winInc = 1
	}
	_, err := db.conn.Exec(`
		UPDATE stats SET
			runs = runs + 1,
			wins = wins + ?,
			kills = kills + ?,
			elite_kills = elite_kills + ?,
			boss_kills = boss_kills + ?,
			best_system = MAX(best_system, ?),
			playtime = playtime + ?,
			fragments = fragments + ?
		WHERE player_id = ?`,
		winInc, st.Kills, st.EliteKills, st.BossKills, system, st.TimeAlive, fragments, playerID,
	)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	return nil
}

// GetUpgradeRanks returns the pilot's permanent upgrade ranks
func (db *DB) GetUpgradeRanks(playerID int64) (map[string]int, error) {
	rows, err := db.conn.Query("SELECT item_id, rank FROM upgrades WHERE player_id = ?", playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := make(map[string]int)
	for rows.Next() {
		var id string
		var rank int
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, err
		}
		ranks[id] = rank
	}
	return ranks, rows.Err()
}

// BuyUpgrade spends fragments on the next rank of itemID. Returns the new
// rank and the remaining wallet.
func (db *DB) BuyUpgrade(playerID int64, itemID string) (int, int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback()

	var rank int
	err = tx.QueryRow("SELECT rank FROM upgrades WHERE player_id = ? AND item_id = ?", playerID, itemID).Scan(&rank)
	if err != nil && err != sql.ErrNoRows {
		return 0, 0, err
	}
	cost, err := PurchaseCost(itemID, map[string]int{itemID: rank})
	if err != nil {
		return 0, 0, err
	}

	var wallet int
	if err := tx.QueryRow("SELECT fragments FROM stats WHERE player_id = ?", playerID).Scan(&wallet); err != nil {
		return 0, 0, err
	}
	if wallet < cost {
		return 0, 0, errNotEnoughFragments
	}
	wallet -= cost
	if _, err := tx.Exec("UPDATE stats SET fragments = ? WHERE player_id = ?", wallet, playerID); err != nil {
		return 0, 0, err
	}
	rank++
	_, err = tx.Exec(
		`INSERT INTO upgrades (player_id, item_id, rank) VALUES (?, ?, ?)
		 ON CONFLICT(player_id, item_id) DO UPDATE SET rank = excluded.rank`,
		playerID, itemID, rank,
	)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit purchase: %w", err)
	}
	return rank, wallet, nil
}

// RecordRun stores a run row and returns its ID. Saved runs carry the
// msgpack-encoded snapshot; finished runs normally don't.
func (db *DB) RecordRun(r *RunRow) (int64, error) {
	res, err := db.conn.Exec(
		`INSERT INTO runs (player_id, status, mode, ship, system, victory, kills, time_alive, snapshot)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PlayerID, r.Status, r.Mode, r.Ship, r.System, r.Victory, r.Kills, r.TimeAlive, r.Snapshot,
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// GetRun returns a run by ID
func (db *DB) GetRun(id int64) (*RunRow, error) {
	row := db.conn.QueryRow(
		`SELECT id, player_id, status, mode, ship, system, victory, kills, time_alive, snapshot, created_at
		 FROM runs WHERE id = ?`,
		id,
	)
	r := &RunRow{}
	err := row.Scan(&r.ID, &r.PlayerID, &r.Status, &r.Mode, &r.Ship, &r.System, &r.Victory, &r.Kills, &r.TimeAlive, &r.Snapshot, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// ConsumeSavedRun deletes a saved run once it has been loaded so it can't
// be resumed twice
func (db *DB) ConsumeSavedRun(id, playerID int64) error {
	res, err := db.conn.Exec("DELETE FROM runs WHERE id = ? AND player_id = ? AND status = ?", id, playerID, RunSaved)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d is not a saved run of this pilot", id)
	}
	return nil
}

// GetRunHistory returns a pilot's recent runs, newest first
func (db *DB) GetRunHistory(playerID int64, limit int) ([]RunRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, player_id, status, mode, ship, system, victory, kills, time_alive, created_at
		FROM runs WHERE player_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.PlayerID, &r.Status, &r.Mode, &r.Ship, &r.System, &r.Victory, &r.Kills, &r.TimeAlive, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Username   string `json:"username"`
	BestSystem int    `json:"bestSystem"`
	Kills      int    `json:"kills"`
	BossKills  int    `json:"bossKills"`
	Wins       int    `json:"wins"`
	Runs       int    `json:"runs"`
}

// GetLeaderboard returns top pilots sorted by the given field
func (db *DB) GetLeaderboard(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist valid order columns
	validCols := map[string]string{
		"system": "s.best_system DESC, s.kills",
		"kills":  "s.kills",
		"bosses": "s.boss_kills",
		"wins":   "s.wins",
	}
	col, ok := validCols[orderBy]
	if !ok {
		col = validCols["system"]
	}

	query := `SELECT p.username, s.best_system, s.kills, s.boss_kills, s.wins, s.runs
		FROM stats s JOIN players p ON p.id = s.player_id
		WHERE s.runs > 0
		ORDER BY ` + col + ` DESC LIMIT ?`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.BestSystem, &e.Kills, &e.BossKills, &e.Wins, &e.Runs); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetAchievements returns the IDs a pilot has unlocked
func (db *DB) GetAchievements(playerID int64) ([]string, error) {
	rows, err := db.conn.Query("SELECT achievement_id FROM achievements WHERE player_id = ? ORDER BY unlocked_at", playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UnlockAchievement records an achievement. Returns false if it was
// already unlocked.
func (db *DB) UnlockAchievement(playerID int64, id string) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT OR IGNORE INTO achievements (player_id, achievement_id) VALUES (?, ?)",
		playerID, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
