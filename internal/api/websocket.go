package api

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"zombie-arena/internal/game"
	"zombie-arena/internal/protocol"
	"zombie-arena/internal/room"
)

const (
	// MaxWSConnectionsTotal is the default cap on concurrent WebSocket connections
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the default cap on WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// Inbound frames per second per connection. Clients send one input per
	// rendered frame, so this leaves room for a 120 Hz display plus pings.
	maxInputsPerSecond = 150
	inputBurst         = 60

	writeWait      = 5 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = pongWait * 9 / 10
	stateBuffer    = 4
	controlBuffer  = 16
	subscribeDepth = stateBuffer
)

// HubConfig configures a WebSocketHub.
type HubConfig struct {
	MaxConnections int
	MaxPerIP       int
	AllowedOrigins []string
	TickRate       int // reported in the welcome message
}

// wsClient is one connected player.
type wsClient struct {
	conn     *websocket.Conn
	ip       string
	codec    protocol.Codec
	room     *room.Room
	playerID string

	control   chan []byte // pre-encoded pong and error frames
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// queue hands a control frame to the writer, dropping it if the writer is
// behind.
func (c *wsClient) queue(frame []byte) {
	select {
	case c.control <- frame:
	case <-c.done:
	default:
	}
}

// WebSocketHub accepts player connections, joins them to rooms and streams
// snapshots back with DoS protection on both ends.
type WebSocketHub struct {
	rooms    RoomService
	cfg      HubConfig
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool

	seats *SeatLimiter
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub(rooms RoomService, cfg HubConfig) *WebSocketHub {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = MaxWSConnectionsTotal
	}
	if cfg.MaxPerIP <= 0 {
		cfg.MaxPerIP = MaxWSConnectionsPerIP
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	origins := NewOriginChecker(cfg.AllowedOrigins)

	h := &WebSocketHub{
		rooms:   rooms,
		cfg:     cfg,
		clients: make(map[*wsClient]struct{}),
		seats:   NewSeatLimiter(cfg.MaxPerIP),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allowed(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *WebSocketHub) register(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	UpdateWSConnections(len(h.clients))
	return true
}

func (h *WebSocketHub) unregister(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	UpdateWSConnections(n)
}

// CloseAll disconnects every client and refuses new ones.
func (h *WebSocketHub) CloseAll() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.close()
	}
}

// HandleWebSocket serves GET /ws?room=ID&name=NAME[&codec=msgpack].
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= h.cfg.MaxConnections {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	codec, err := protocol.ParseCodec(q.Get("codec"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rm, err := h.rooms.Get(q.Get("room"))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	if !h.seats.Claim(ip, rm.ID()) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.seats.Release(ip, rm.ID())
		return
	}

	c := &wsClient{
		conn:    conn,
		ip:      ip,
		codec:   codec,
		room:    rm,
		control: make(chan []byte, controlBuffer),
		done:    make(chan struct{}),
	}

	playerID, err := rm.Join(q.Get("name"))
	if err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			RecordConnectionRejected("room_full")
		}
		h.rejectAfterUpgrade(c, err.Error())
		return
	}
	c.playerID = playerID

	if !h.register(c) {
		rm.Leave(playerID)
		h.rejectAfterUpgrade(c, "server shutting down")
		return
	}

	welcome, mt, err := protocol.Encode(codec, protocol.EventWelcome, protocol.Welcome{
		PlayerID: playerID,
		RoomID:   rm.ID(),
		Settings: rm.Snapshot().Settings,
		TickRate: h.cfg.TickRate,
	})
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(mt, welcome)
	}
	if err != nil {
		log.Printf("⚠️ Welcome to %s failed: %v", ip, err)
		h.disconnect(c)
		return
	}

	log.Printf("📱 %s joined room %s from %s (%d connected)", playerID, rm.ID(), ip, h.ClientCount())

	states, cancel := rm.Subscribe(subscribeDepth)
	go h.writeLoop(c, states)
	go func() {
		defer cancel()
		defer h.disconnect(c)
		h.readLoop(c)
	}()
}

// rejectAfterUpgrade reports err over the socket, since the HTTP status line
// is already gone, and closes it.
func (h *WebSocketHub) rejectAfterUpgrade(c *wsClient, msg string) {
	if frame, mt, err := protocol.Encode(c.codec, protocol.EventError, protocol.ErrorMessage{Message: msg}); err == nil {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		c.conn.WriteMessage(mt, frame)
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg),
		time.Now().Add(time.Second))
	c.close()
	h.seats.Release(c.ip, c.room.ID())
}

// disconnect removes the player from its room and frees its slot.
func (h *WebSocketHub) disconnect(c *wsClient) {
	c.close()
	if err := c.room.Leave(c.playerID); err != nil && !errors.Is(err, room.ErrPlayerNotFound) {
		log.Printf("⚠️ Leave %s: %v", c.playerID, err)
	}
	h.seats.Release(c.ip, c.room.ID())
	h.unregister(c)
	log.Printf("📱 %s left room %s (%d remaining)", c.playerID, c.room.ID(), h.ClientCount())
}

// writeLoop is the only writer after the welcome frame.
func (h *WebSocketHub) writeLoop(c *wsClient, states <-chan *game.WorldState) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return

		case s, ok := <-states:
			if !ok {
				// room stopped
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room closed"))
				return
			}
			frame, mt, err := protocol.EncodeState(c.codec, s)
			if err != nil {
				log.Printf("❌ Encode state for %s: %v", c.playerID, err)
				continue
			}
			if !h.write(c, mt, frame) {
				return
			}

		case frame := <-c.control:
			if !h.write(c, c.codec.MessageType(), frame) {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHub) write(c *wsClient, mt int, frame []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(mt, frame); err != nil {
		return false
	}
	recordWSMessage("out")
	return true
}

// readLoop applies client frames to the room until the connection drops.
func (h *WebSocketHub) readLoop(c *wsClient) {
	limiter := rate.NewLimiter(maxInputsPerSecond, inputBurst)

	c.conn.SetReadLimit(protocol.MaxClientMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ WebSocket read from %s: %v", c.ip, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		recordWSMessage("in")

		if !limiter.Allow() {
			recordInputRejected("rate_limit")
			continue
		}

		msg, err := protocol.DecodeClientMessage(data)
		if err != nil {
			recordInputRejected("decode")
			h.sendError(c, err.Error())
			continue
		}

		switch {
		case msg.Input != nil:
			if err := c.room.SetInput(c.playerID, *msg.Input); err != nil {
				// removed from the room, e.g. the room was reset
				h.sendError(c, err.Error())
				return
			}
		case msg.Ping != nil:
			if frame, _, err := protocol.Encode(c.codec, protocol.EventPong, msg.Ping); err == nil {
				c.queue(frame)
			}
		}
	}
}

func (h *WebSocketHub) sendError(c *wsClient, msg string) {
	if frame, _, err := protocol.Encode(c.codec, protocol.EventError, protocol.ErrorMessage{Message: msg}); err == nil {
		c.queue(frame)
	}
}
