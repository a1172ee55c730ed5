package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreate   = "create" // create a run session
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgList     = "list"  // list sessions
	MsgCheck    = "check" // check if session exists
	MsgStart    = "start"
	MsgInput    = "input"
	MsgPause    = "pause"
	MsgResume   = "resume"
	MsgUpgrade  = "upgrade" // pick a level-up offer
	MsgControl  = "control" // phone controller attach
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume with a stored token
	MsgProfile  = "profile"
	MsgShop     = "shop" // list permanent upgrades
	MsgBuy      = "buy"
	MsgLoad     = "load" // resume a saved run
	MsgSave     = "save"
)

// Server -> Client message types. Game state goes out as binary msgpack
// frames, everything else as JSON envelopes.
const (
	MsgWelcome     = "welcome"
	MsgSessions    = "sessions"
	MsgCreated     = "created"
	MsgJoined      = "joined"
	MsgChecked     = "checked"
	MsgError       = "error"
	MsgControlOK   = "control_ok"
	MsgCtrlOn      = "ctrl_on"
	MsgCtrlOff     = "ctrl_off"
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgShopData    = "shop_data"
	MsgBought      = "bought"
	MsgSaved       = "saved"
	MsgRunEnd      = "run_end"
	MsgAchievement = "achievement"
)

// binaryInputTag prefixes a msgpack-encoded Input sent as a binary frame
const binaryInputTag = 0x01

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; RawMessage avoids a double decode
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is the JSON form of Input
type ClientInput struct {
	MoveX   float64 `json:"mx"`
	MoveZ   float64 `json:"mz"`
	AimX    float64 `json:"ax"`
	AimZ    float64 `json:"az"`
	Ability bool    `json:"ab,omitempty"`
}

// Input converts to the simulation's input
func (ci ClientInput) Input() Input {
	return Input{MoveX: ci.MoveX, MoveZ: ci.MoveZ, AimX: ci.AimX, AimZ: ci.AimZ, Ability: ci.Ability}
}

// CreateMsg is sent when a pilot wants to create a run
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
	Mode        int    `json:"mode"`
	Ship        int    `json:"ship"`
	Seed        int64  `json:"seed,omitempty"`
}

// JoinMsg attaches a client to an existing run as its pilot or spectator
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// UpgradeMsg picks one of the pending offers by index
type UpgradeMsg struct {
	Index int `json:"i"`
}

// BuyMsg buys the next rank of a permanent upgrade
type BuyMsg struct {
	ItemID string `json:"id"`
}

// LoadMsg resumes a saved run into the current lobby
type LoadMsg struct {
	RunID int64 `json:"rid"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with username and password
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates with a JWT
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg carries lifetime stats for the authenticated pilot
type ProfileDataMsg struct {
	Username     string         `json:"username"`
	Runs         int            `json:"runs"`
	Wins         int            `json:"wins"`
	Kills        int            `json:"kills"`
	BossKills    int            `json:"bossKills"`
	BestSystem   int            `json:"bestSystem"`
	Playtime     float64        `json:"playtime"`
	Fragments    int            `json:"fragments"`
	Upgrades     map[string]int `json:"upgrades"`
	Achievements []string       `json:"achievements"`
}

// ShopDataMsg lists the catalog with the pilot's ranks and wallet
type ShopDataMsg struct {
	Items     []StoreItem    `json:"items"`
	Ranks     map[string]int `json:"ranks"`
	Fragments int            `json:"fragments"`
}

// BoughtMsg confirms a purchase
type BoughtMsg struct {
	ItemID    string `json:"id"`
	Rank      int    `json:"rank"`
	Fragments int    `json:"fragments"`
}

// RunEndMsg is sent once when a run finishes
type RunEndMsg struct {
	Victory   bool     `json:"victory"`
	System    int      `json:"system"`
	Stats     RunStats `json:"stats"`
	Fragments int      `json:"fragments"` // earned this run, bonus included
	RunID     int64    `json:"rid,omitempty"`
}

// AchievementMsg announces a newly unlocked achievement
type AchievementMsg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// WelcomeMsg is sent to a pilot when they join
type WelcomeMsg struct {
	SessionID string `json:"sid"`
	Ship      int    `json:"s"`
	Mode      int    `json:"mode"`
	Phase     string `json:"phase"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phase  string `json:"phase"`
	System int    `json:"system"`
	Pilot  bool   `json:"pilot"` // a pilot is attached
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// ControlMsg is sent by a phone controller to attach to a run
type ControlMsg struct {
	SID string `json:"sid"`
}

// CheckMsg is sent by a client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID    string `json:"sid"`
	Exists bool   `json:"exists"`
	Name   string `json:"name,omitempty"`
	Phase  string `json:"phase,omitempty"`
}

// PlayerState is the pilot's ship in a state frame
type PlayerState struct {
	X         float64 `msgpack:"x"`
	Z         float64 `msgpack:"z"`
	R         float64 `msgpack:"r"`
	HP        float64 `msgpack:"hp"`
	MaxHP     float64 `msgpack:"mhp"`
	Alive     bool    `msgpack:"a"`
	Ship      int     `msgpack:"s"`
	Level     int     `msgpack:"lv"`
	XP        float64 `msgpack:"xp"`
	XPToNext  float64 `msgpack:"xpn"`
	Fragments int     `msgpack:"fr"`
	Invuln    bool    `msgpack:"inv,omitempty"`
	AbilityCD float64 `msgpack:"acd"`
	AbilityOn bool    `msgpack:"aon,omitempty"`
	ShieldHP  float64 `msgpack:"shp,omitempty"`

	Weapons []WeaponState `msgpack:"w"`
}

// WeaponState is one equipped weapon
type WeaponState struct {
	ID    string `msgpack:"id"`
	Level int    `msgpack:"lv"`
}

// EnemyState is broadcast per enemy
type EnemyState struct {
	ID        uint32  `msgpack:"id"`
	TypeID    string  `msgpack:"t"`
	X         float64 `msgpack:"x"`
	Z         float64 `msgpack:"z"`
	HP        float64 `msgpack:"hp"`
	MaxHP     float64 `msgpack:"mhp"`
	Radius    float64 `msgpack:"rad"`
	Hit       bool    `msgpack:"h,omitempty"`  // hit flash
	Telegraph bool    `msgpack:"tg,omitempty"` // sniper winding up
}

// BossState is broadcast while a boss is on the field
type BossState struct {
	X         float64 `msgpack:"x"`
	Z         float64 `msgpack:"z"`
	HP        float64 `msgpack:"hp"`
	MaxHP     float64 `msgpack:"mhp"`
	Radius    float64 `msgpack:"rad"`
	Phase     int     `msgpack:"ph"`
	Hit       bool    `msgpack:"h,omitempty"`
	Defeating bool    `msgpack:"d,omitempty"`
}

// ProjectileState is broadcast per projectile
type ProjectileState struct {
	X      float64 `msgpack:"x"`
	Z      float64 `msgpack:"z"`
	DirX   float64 `msgpack:"dx"`
	DirZ   float64 `msgpack:"dz"`
	Radius float64 `msgpack:"rad"`
	Weapon string  `msgpack:"w,omitempty"`
}

// ShockwaveState is an expanding ring
type ShockwaveState struct {
	X      float64 `msgpack:"x"`
	Z      float64 `msgpack:"z"`
	Radius float64 `msgpack:"rad"`
}

// PickupState is broadcast per pickup
type PickupState struct {
	ID     uint64  `msgpack:"id"`
	Kind   int     `msgpack:"k"`
	X      float64 `msgpack:"x"`
	Z      float64 `msgpack:"z"`
	Rare   bool    `msgpack:"r,omitempty"`
	Item   string  `msgpack:"it,omitempty"`
	Magnet bool    `msgpack:"m,omitempty"`
}

// WormholeState is the exit to the next system
type WormholeState struct {
	X      float64 `msgpack:"x"`
	Z      float64 `msgpack:"z"`
	Radius float64 `msgpack:"rad"`
}

// GameState is the full state frame
type GameState struct {
	Tick        uint64            `msgpack:"tick"`
	Phase       string            `msgpack:"ph"`
	System      int               `msgpack:"sys"`
	Time        float64           `msgpack:"t"`
	Player      PlayerState       `msgpack:"p"`
	Enemies     []EnemyState      `msgpack:"e"`
	Boss        *BossState        `msgpack:"b,omitempty"`
	Projectiles []ProjectileState `msgpack:"pr"`
	Hostile     []ProjectileState `msgpack:"hs"` // enemy and boss shots
	Shockwaves  []ShockwaveState  `msgpack:"sw,omitempty"`
	Pickups     []PickupState     `msgpack:"pk"`
	Wormhole    *WormholeState    `msgpack:"wh,omitempty"`
	Events      []SimEvent        `msgpack:"ev,omitempty"`
	Offers      []UpgradeOffer    `msgpack:"up,omitempty"`
	Stats       RunStats          `msgpack:"st"`
}
