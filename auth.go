package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = 7 * 24 * time.Hour
	jwtIssuer        = "survivor-server"
	bcryptCost       = 12
	minPasswordLen   = 4
	minUsernameLen   = 2
	maxUsernameLen   = 16
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

var errBadCredentials = errors.New("invalid username or password")

// pilotClaims is the JWT payload identifying a pilot account
type pilotClaims struct {
	PilotID  int64  `json:"pid"`
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Auth issues and checks pilot tokens
type Auth struct {
	db        *DB
	jwtSecret []byte

	// login attempts per IP
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates a new Auth handler
func NewAuth(db *DB) *Auth {
	return &Auth{
		db:        db,
		jwtSecret: loadOrCreateSecret(db),
		rateMap:   make(map[string]*rateEntry),
	}
}

// loadOrCreateSecret reads the signing key from settings so tokens survive
// a restart. A fresh key is generated and stored on first boot.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("auth: failed to generate secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("auth: could not persist secret: %v", err)
		}
	}
	return secret
}

func validUsername(name string) error {
	if len(name) < minUsernameLen || len(name) > maxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("username contains control characters")
		}
	}
	return nil
}

// Register creates a pilot account and returns its ID and a token
func (a *Auth) Register(username, password string) (int64, string, error) {
	username = strings.TrimSpace(username)
	if err := validUsername(username); err != nil {
		return 0, "", err
	}
	if len(password) < minPasswordLen {
		return 0, "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	exists, err := a.db.UsernameExists(username)
	if err != nil {
		log.Printf("auth: username lookup: %v", err)
		return 0, "", fmt.Errorf("database error")
	}
	if exists {
		return 0, "", fmt.Errorf("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, "", fmt.Errorf("internal error")
	}
	id, err := a.db.CreatePlayer(username, string(hash))
	if err != nil {
		log.Printf("auth: create pilot %q: %v", username, err)
		return 0, "", fmt.Errorf("failed to create account")
	}
	token, err := a.issue(id, username)
	if err != nil {
		return 0, "", fmt.Errorf("internal error")
	}
	return id, token, nil
}

// Login checks a password and returns the pilot ID and a fresh token
func (a *Auth) Login(username, password, ip string) (int64, string, error) {
	if !a.allow(ip) {
		return 0, "", fmt.Errorf("too many login attempts, try again later")
	}

	pilot, err := a.db.GetPlayerByUsername(strings.TrimSpace(username))
	if err != nil {
		log.Printf("auth: pilot lookup: %v", err)
		return 0, "", fmt.Errorf("database error")
	}
	if pilot == nil || pilot.PassHash == "" {
		return 0, "", errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(pilot.PassHash), []byte(password)); err != nil {
		return 0, "", errBadCredentials
	}

	token, err := a.issue(pilot.ID, pilot.Username)
	if err != nil {
		return 0, "", fmt.Errorf("internal error")
	}
	return pilot.ID, token, nil
}

// ValidateToken returns the pilot ID and username carried by a token
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	claims := &pilotClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(jwtIssuer))
	if err != nil {
		return 0, "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.PilotID <= 0 || claims.Username == "" {
		return 0, "", fmt.Errorf("invalid token claims")
	}
	return claims.PilotID, claims.Username, nil
}

func (a *Auth) issue(pilotID int64, username string) (string, error) {
	now := time.Now()
	claims := pilotClaims{
		PilotID:  pilotID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

// allow counts a login attempt from ip against the window limit
func (a *Auth) allow(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}

// PruneRates drops expired login windows. Called by the session reaper.
func (a *Auth) PruneRates(now time.Time) {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()
	for ip, e := range a.rateMap {
		if now.After(e.ResetAt) {
			delete(a.rateMap, ip)
		}
	}
}
