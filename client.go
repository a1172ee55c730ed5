package main

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 90
	maxNameLen        = 16
	maxSessionNameLen = 30
)

// Client represents a WebSocket connection
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	sessionID    string
	remoteAddr   string
	isController bool
	msgCount     int
	msgResetAt   time.Time
	// auth state
	authPlayerID int64  // 0 = guest
	authUsername string // "" = guest
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		if msgType == websocket.BinaryMessage && len(message) > 1 && message[0] == binaryInputTag {
			c.handleBinaryInput(message[1:])
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix from SendBinary marks a binary frame
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	// the hub may have closed send already
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgList:
		c.SendJSON(Envelope{T: MsgSessions, Data: c.hub.sessions.ListSessions()})
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.detach()
	case MsgControl:
		c.handleControl(env.D)
	case MsgStart:
		c.handleStart()
	case MsgInput:
		c.handleInput(env.D)
	case MsgPause:
		c.handlePause(true)
	case MsgResume:
		c.handlePause(false)
	case MsgUpgrade:
		c.handleUpgrade(env.D)
	case MsgSave:
		c.handleSave()
	case MsgLoad:
		c.handleLoad(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgShop:
		c.handleShop()
	case MsgBuy:
		c.handleBuy(env.D)
	}
}

func clipName(name, fallback string, max int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if len(name) > max {
		name = name[:max]
	}
	return name
}

// game returns the session this client drives, or nil
func (c *Client) game() *Game {
	if c.sessionID == "" {
		return nil
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return nil
	}
	c.hub.sessions.MarkActive(c.sessionID)
	return sess.Game
}

// pilotGame is game restricted to the pilot and its controller
func (c *Client) pilotGame() *Game {
	g := c.game()
	if g == nil {
		return nil
	}
	if !c.isController && !g.IsPilot(c) {
		return nil
	}
	return g
}

// detach leaves the current session
func (c *Client) detach() {
	if c.sessionID == "" {
		return
	}
	if c.isController {
		if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
			sess.Game.RemoveController(c)
		}
	} else {
		c.hub.sessions.RemoveClient(c.sessionID, c)
	}
	c.sessionID = ""
	c.isController = false
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{SID: msg.SID, Exists: false}})
		return
	}
	phase, _ := sess.Game.Info()
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{
		SID:    msg.SID,
		Exists: true,
		Name:   sess.Name,
		Phase:  phase.String(),
	}})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	mode := GameMode(msg.Mode)
	if mode != ModeEndless {
		mode = ModeStandard
	}
	run := DefaultRunConfig(mode)
	run.Ship = ShipClass(msg.Ship)
	if msg.Ship < 0 || msg.Ship >= len(ShipClasses) {
		run.Ship = ClassFighter
	}
	run.Seed = msg.Seed

	c.detach()
	sess := c.hub.sessions.CreateSession(clipName(msg.SessionName, "Deep Space", maxSessionNameLen), run)
	if sess == nil {
		c.sendError("too many active sessions")
		return
	}
	if err := sess.Game.SetPilot(c, c.authPlayerID); err != nil {
		c.sendError(err.Error())
		return
	}
	c.sessionID = sess.ID
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": sess.ID}})
	c.welcome(sess)
}

func (c *Client) welcome(sess *Session) {
	run := sess.Game.RunConfig()
	phase, _ := sess.Game.Info()
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		SessionID: sess.ID,
		Ship:      int(run.Ship),
		Mode:      int(run.Mode),
		Phase:     phase.String(),
	}})
}

// handleJoin takes over a pilotless run, otherwise spectates it
func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SessionID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	c.detach()
	if err := sess.Game.SetPilot(c, c.authPlayerID); errors.Is(err, errPilotExists) {
		sess.Game.AddViewer(c)
	}
	c.hub.sessions.MarkActive(sess.ID)
	c.sessionID = sess.ID
	c.SendJSON(Envelope{T: MsgJoined, Data: map[string]string{"sid": sess.ID}})
	c.welcome(sess)
}

func (c *Client) handleControl(data json.RawMessage) {
	var msg ControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	if !sess.Game.HasPilot() {
		c.sendError("no pilot to control")
		return
	}
	c.detach()
	c.sessionID = msg.SID
	c.isController = true
	sess.Game.SetController(c)
	c.SendJSON(Envelope{T: MsgControlOK, Data: map[string]string{"sid": msg.SID}})
}

func (c *Client) handleStart() {
	g := c.pilotGame()
	if g == nil || c.isController {
		return
	}
	if err := g.Start(); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleInput(data json.RawMessage) {
	g := c.pilotGame()
	if g == nil {
		return
	}
	var in ClientInput
	if err := json.Unmarshal(data, &in); err != nil {
		return
	}
	g.HandleInput(in.Input())
}

// handleBinaryInput decodes a msgpack Input frame
func (c *Client) handleBinaryInput(payload []byte) {
	g := c.pilotGame()
	if g == nil {
		return
	}
	var in Input
	if err := msgpack.Unmarshal(payload, &in); err != nil {
		return
	}
	g.HandleInput(in)
}

func (c *Client) handlePause(paused bool) {
	if g := c.pilotGame(); g != nil {
		g.SetPaused(paused)
	}
}

func (c *Client) handleUpgrade(data json.RawMessage) {
	g := c.pilotGame()
	if g == nil {
		return
	}
	var msg UpgradeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if err := g.ChooseUpgrade(msg.Index); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleSave() {
	g := c.pilotGame()
	if g == nil || c.isController {
		return
	}
	id, err := g.SaveRun()
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.SendJSON(Envelope{T: MsgSaved, Data: map[string]int64{"rid": id}})
}

func (c *Client) handleLoad(data json.RawMessage) {
	g := c.pilotGame()
	if g == nil || c.isController {
		return
	}
	var msg LoadMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if err := g.LoadRun(msg.RunID); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) authenticated(id int64, username, token string) {
	c.authPlayerID = id
	c.authUsername = username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: username,
		PlayerID: id,
	}})
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authenticated(id, strings.TrimSpace(msg.Username), token)
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authenticated(id, strings.TrimSpace(msg.Username), token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.authenticated(id, username, msg.Token)
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetStats(c.authPlayerID)
	if err != nil || stats == nil {
		c.sendError("profile not found")
		return
	}
	ranks, err := c.hub.db.GetUpgradeRanks(c.authPlayerID)
	if err != nil {
		log.Printf("profile %d: upgrades: %v", c.authPlayerID, err)
	}
	achievements, err := c.hub.db.GetAchievements(c.authPlayerID)
	if err != nil {
		log.Printf("profile %d: achievements: %v", c.authPlayerID, err)
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username:     c.authUsername,
		Runs:         stats.Runs,
		Wins:         stats.Wins,
		Kills:        stats.Kills,
		BossKills:    stats.BossKills,
		BestSystem:   stats.BestSystem,
		Playtime:     stats.Playtime,
		Fragments:    stats.Fragments,
		Upgrades:     ranks,
		Achievements: achievements,
	}})
}

func (c *Client) handleShop() {
	msg := ShopDataMsg{Items: StoreCatalog, Ranks: map[string]int{}}
	if c.hub.db != nil && c.authPlayerID != 0 {
		if ranks, err := c.hub.db.GetUpgradeRanks(c.authPlayerID); err == nil {
			msg.Ranks = ranks
		}
		if stats, err := c.hub.db.GetStats(c.authPlayerID); err == nil && stats != nil {
			msg.Fragments = stats.Fragments
		}
	}
	c.SendJSON(Envelope{T: MsgShopData, Data: msg})
}

func (c *Client) handleBuy(data json.RawMessage) {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError("not authenticated")
		return
	}
	var msg BuyMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	rank, wallet, err := c.hub.db.BuyUpgrade(c.authPlayerID, msg.ItemID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.analytics.TrackJSON(EvtPurchase, c.authPlayerID, c.sessionID, map[string]any{"item_id": msg.ItemID, "rank": rank})
	c.SendJSON(Envelope{T: MsgBought, Data: BoughtMsg{ItemID: msg.ItemID, Rank: rank, Fragments: wallet}})
}
