// Bingobox Bingo Game
//
// Players share a room code, each gets a 5x5 card, and the host calls
// numbers until somebody completes a line.
//
// Features:
// - REST action endpoint at /api/bingo/action mirroring every room operation
// - WebSockets per room: /bingo/:room and /bingo/:room/ws push live snapshots
// - First player to join an unhosted room becomes host (start, call, restart, close)
// - Numbers are called automatically every --call-interval once the host starts
// - Marks are only accepted for numbers that have been called
// - First completed line wins; later simultaneous bingos are not recorded
// - Disconnected players are removed after --player-timeout
// - Rooms auto-reaped after --session-timeout of inactivity
// - In-browser QR button to share the room, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/bingobox/bingo"
)

// Requests coming from clients, over HTTP or a websocket
type actionRequest struct {
	Action   string      `json:"action"`              // create | join | start | call | mark | toggle | state | restart_round | leave | close
	RoomCode string      `json:"room_code,omitempty"` // everything but create
	Username string      `json:"username,omitempty"`
	Number   *int        `json:"number,omitempty"`    // mark; 0 is the free cell
	Cell     *bingo.Cell `json:"cell,omitempty"`      // toggle
	NewCards bool        `json:"new_cards,omitempty"` // restart_round
}

type actionResponse struct {
	Message string          `json:"message"`
	Number  *int            `json:"number,omitempty"`
	Room    *bingo.Snapshot `json:"room,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Messages pushed over websockets
type StateMessage struct {
	Type string         `json:"type"` // "state"
	Room bingo.Snapshot `json:"room"`
}

type ResultMessage struct {
	Type    string `json:"type"` // "result"
	Message string `json:"message"`
	Number  *int   `json:"number,omitempty"`
}

// SimpleMessage is for errors and notifications ("error", "closed")
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	username string
}

// Hub tracks the websocket clients watching one room.
type Hub struct {
	code    string
	mu      sync.Mutex
	clients map[*Client]bool
}

func newHub(code string) *Hub {
	return &Hub{
		code:    code,
		clients: make(map[*Client]bool),
	}
}

// dropLocked assumes h.mu is already held.
func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(c)
}

func (h *Hub) setUsername(c *Client, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.username = name
}

func (h *Hub) connected(username string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.username == username {
			return true
		}
	}
	return false
}

func (h *Hub) sendTo(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.dropLocked(c)
	}
}

// broadcast sends every client its own view of room.
func (h *Hub) broadcast(room *bingo.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- StateMessage{Type: "state", Room: room.Snapshot(c.username)}:
		default:
			h.dropLocked(c)
		}
	}
}

// closeAll tells every client the room is gone and disconnects them.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- SimpleMessage{Type: "closed", Message: "This room has been closed."}:
		default:
		}
		h.dropLocked(c)
	}
}

// bingoServer ties the room service to HTTP and websocket clients.
type bingoServer struct {
	ctx   context.Context
	cfg   *Config
	svc   *bingo.Service
	clock quartz.Clock

	mu      sync.Mutex
	hubs    map[string]*Hub
	callers map[string]bool
}

func newBingoServer(ctx context.Context, cfg *Config, svc *bingo.Service, clock quartz.Clock) *bingoServer {
	return &bingoServer{
		ctx:     ctx,
		cfg:     cfg,
		svc:     svc,
		clock:   clock,
		hubs:    make(map[string]*Hub),
		callers: make(map[string]bool),
	}
}

func (b *bingoServer) hub(code string) *Hub {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h, ok := b.hubs[code]; ok {
		return h
	}
	h := newHub(code)
	b.hubs[code] = h
	return h
}

// notify pushes the current state of code to its watchers, or tells them
// the room is gone.
func (b *bingoServer) notify(code string) {
	b.mu.Lock()
	h, ok := b.hubs[code]
	b.mu.Unlock()
	if !ok {
		return
	}

	room, err := b.svc.Room(code)
	if err != nil {
		b.dropHub(code)
		return
	}
	h.broadcast(room)
}

func (b *bingoServer) dropHub(code string) {
	b.mu.Lock()
	h, ok := b.hubs[code]
	delete(b.hubs, code)
	b.mu.Unlock()

	if ok {
		h.closeAll()
	}
}

// dispatch runs one action and reports which room it touched.
func (b *bingoServer) dispatch(req actionRequest) (actionResponse, string, error) {
	action := strings.ToLower(strings.TrimSpace(req.Action))
	req.Username = strings.TrimSpace(req.Username)

	if action == "create" {
		room, err := b.svc.CreateRoom(req.Username)
		if err != nil {
			return actionResponse{}, "", err
		}
		logf(b.cfg, "GAMES: Created room %s", room.Code)
		return b.respond("room created", room, req.Username, nil), room.Code, nil
	}

	if req.RoomCode == "" {
		return actionResponse{}, "", errMissingRoomCode
	}
	room, err := b.svc.Room(req.RoomCode)
	if err != nil {
		return actionResponse{}, "", err
	}

	switch action {
	case "join":
		joined, err := room.Join(req.Username)
		if err != nil {
			return actionResponse{}, "", err
		}
		if joined {
			logf(b.cfg, "GAMES: Player %q joined %s", req.Username, room.Code)
		}
		return b.respond(req.Username+" joined", room, req.Username, nil), room.Code, nil

	case "start":
		if err := room.Start(req.Username); err != nil {
			return actionResponse{}, "", err
		}
		logf(b.cfg, "GAMES: Started %s", room.Code)
		b.startCaller(room)
		return b.respond("game started", room, req.Username, nil), room.Code, nil

	case "call":
		n, ok, err := room.Call(req.Username)
		if err != nil {
			return actionResponse{}, "", err
		}
		if !ok {
			return b.respond("no numbers remaining", room, req.Username, nil), room.Code, nil
		}
		logf(b.cfg, "GAMES: Called %s-%d in %s", bingo.Letter(n), n, room.Code)
		return b.respond(fmt.Sprintf("%s-%d called", bingo.Letter(n), n), room, req.Username, &n), room.Code, nil

	case "mark":
		if req.Username == "" || req.Number == nil {
			return actionResponse{}, "", errMissingNumber
		}
		if err := room.Mark(req.Username, *req.Number); err != nil {
			return actionResponse{}, "", err
		}
		b.logWinner(room)
		return b.respond("marked", room, req.Username, nil), room.Code, nil

	case "toggle":
		if req.Username == "" || req.Cell == nil {
			return actionResponse{}, "", errMissingCell
		}
		if err := room.Toggle(req.Username, *req.Cell); err != nil {
			return actionResponse{}, "", err
		}
		b.logWinner(room)
		return b.respond("toggled", room, req.Username, nil), room.Code, nil

	case "state":
		return b.respond("ok", room, req.Username, nil), "", nil

	case "restart_round":
		if err := room.Restart(req.Username, !req.NewCards); err != nil {
			return actionResponse{}, "", err
		}
		logf(b.cfg, "GAMES: Reset round in %s (new cards: %t)", room.Code, req.NewCards)
		return b.respond("round reset", room, req.Username, nil), room.Code, nil

	case "leave":
		if req.Username == "" {
			return actionResponse{}, "", bingo.ErrInvalidName
		}
		if room.Leave(req.Username) {
			logf(b.cfg, "GAMES: Player %q left %s", req.Username, room.Code)
		}
		return b.respond("left room", room, "", nil), room.Code, nil

	case "close":
		if err := b.svc.CloseRoom(room.Code, req.Username); err != nil {
			return actionResponse{}, "", err
		}
		logf(b.cfg, "GAMES: Closed room %s", room.Code)
		return actionResponse{Message: "room closed"}, room.Code, nil
	}

	return actionResponse{}, "", bingo.ErrInvalidAction
}

func (b *bingoServer) respond(message string, room *bingo.Room, username string, number *int) actionResponse {
	snapshot := room.Snapshot(username)
	return actionResponse{
		Message: message,
		Number:  number,
		Room:    &snapshot,
	}
}

func (b *bingoServer) logWinner(room *bingo.Room) {
	if winner, ok := room.CheckWinner(); ok {
		logf(b.cfg, "GAMES: %q has bingo in %s", winner, room.Code)
	}
}

// startCaller runs automatic calls for room until its round stops. At most
// one caller runs per room.
func (b *bingoServer) startCaller(room *bingo.Room) {
	interval := b.cfg.callInterval
	if interval <= 0 {
		return
	}

	b.mu.Lock()
	if b.callers[room.Code] {
		b.mu.Unlock()
		return
	}
	b.callers[room.Code] = true
	b.mu.Unlock()

	go func() {
		ticker := b.clock.NewTicker(max(interval/10, 10*time.Millisecond), "caller")
		defer ticker.Stop()

		for {
			n, called, running := room.AutoCall(interval)
			if called {
				logf(b.cfg, "GAMES: Called %s-%d in %s", bingo.Letter(n), n, room.Code)
				b.notify(room.Code)
			}
			if (!running || !b.svc.Active(room.Code)) && b.releaseCaller(room) {
				return
			}

			select {
			case <-b.ctx.Done():
				b.mu.Lock()
				delete(b.callers, room.Code)
				b.mu.Unlock()
				return
			case <-ticker.C:
			}
		}
	}()
}

// releaseCaller unregisters the caller for room, unless the room has been
// started again since the caller saw it stop.
func (b *bingoServer) releaseCaller(room *bingo.Room) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.svc.Active(room.Code) && room.CanCall() {
		return false
	}
	delete(b.callers, room.Code)
	return true
}

// scheduleRemoval removes username from room after d, unless they have
// reconnected by then.
func (b *bingoServer) scheduleRemoval(code, username string, d time.Duration) {
	b.clock.AfterFunc(d, func() {
		room, err := b.svc.Room(code)
		if err != nil {
			return
		}
		b.mu.Lock()
		h, ok := b.hubs[code]
		b.mu.Unlock()
		if ok && h.connected(username) {
			return
		}
		if room.Leave(username) {
			logf(b.cfg, "GAMES: Removed idle player %q from %s", username, code)
			b.notify(code)
		}
	}, "removal")
}

// reapLoop periodically closes rooms idle longer than the session timeout.
func (b *bingoServer) reapLoop(ctx context.Context) {
	if b.cfg.sessionTimeout <= 0 {
		return
	}

	ticker := b.clock.NewTicker(b.cfg.sessionTimeout/2, "reaper")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range b.svc.Reap(b.cfg.sessionTimeout) {
				logf(b.cfg, "GAMES: Reaped idle room %s", code)
				b.dropHub(code)
			}
		}
	}
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any, errs chan<- error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs <- err
	}
}

func serveAction(cfg *Config, b *bingoServer, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req actionRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"}, errs)

			return
		}

		resp, touched, err := b.dispatch(req)
		if err != nil {
			writeJSON(cfg, w, statusFor(err), errorResponse{Detail: err.Error()}, errs)

			return
		}

		writeJSON(cfg, w, http.StatusOK, resp, errs)

		if touched != "" {
			b.notify(touched)
		}
	}
}

func serveAPIStatus(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, http.StatusOK, map[string]string{"status": "ok", "service": "Bingo Game API"}, errs)
	}
}

func serveAPIHealth(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, http.StatusOK, map[string]string{"status": "healthy"}, errs)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS attaches a websocket to the room named by :room. The optional
// username query parameter scopes the pushed snapshots to that player.
func serveWS(cfg *Config, b *bingoServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("room")

		room, err := b.svc.Room(code)
		if err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			username: strings.TrimSpace(r.URL.Query().Get("username")),
		}

		h := b.hub(code)
		h.register(client)
		h.sendTo(client, StateMessage{Type: "state", Room: room.Snapshot(client.username)})

		go client.writePump()
		client.readPump(b, h)
	}
}

func (c *Client) readPump(b *bingoServer, h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()

		if c.username != "" && b.cfg.playerTimeout > 0 && !h.connected(c.username) {
			b.scheduleRemoval(h.code, c.username, b.cfg.playerTimeout)
		}
	}()

	for {
		var req actionRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}

		if strings.EqualFold(req.Action, "create") {
			h.sendTo(c, SimpleMessage{Type: "error", Message: bingo.ErrInvalidAction.Error()})
			continue
		}

		req.RoomCode = h.code
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			req.Username = c.username
		}

		resp, touched, err := b.dispatch(req)
		if err != nil {
			h.sendTo(c, SimpleMessage{Type: "error", Message: err.Error()})
			continue
		}

		switch strings.ToLower(req.Action) {
		case "join":
			h.setUsername(c, req.Username)
		case "leave":
			if req.Username == c.username {
				h.setUsername(c, "")
			}
		}

		h.sendTo(c, ResultMessage{Type: "result", Message: resp.Message, Number: resp.Number})

		if touched != "" {
			b.notify(touched)
		} else if resp.Room != nil {
			h.sendTo(c, StateMessage{Type: "state", Room: *resp.Room})
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the room URL using go-qrcode.
func qrHandler(b *bingoServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("room")
		if !b.svc.Active(code) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:room/qr; strip trailing "/qr" to get the room URL.
		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// serveRoomPage serves the client for an existing room.
func serveRoomPage(cfg *Config, b *bingoServer, errs chan<- error) httprouter.Handle {
	page := serveEmbedded(cfg, "assets/bingo/index.html", errs)

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !b.svc.Active(ps.ByName("room")) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusNotFound)

			_, _ = w.Write([]byte(newPage("Room Not Found", "Room not found. Check the code or create a new room.")))

			return
		}

		page(w, r, ps)
	}
}

// redirectNewRoom handles GET /path by opening a new room and redirecting
// to /path/:room. The first player to join becomes host.
func redirectNewRoom(cfg *Config, path string, b *bingoServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		room, err := b.svc.CreateRoom("")
		if err != nil {
			http.Error(w, "unable to create room", http.StatusInternalServerError)
			return
		}
		logf(cfg, "GAMES: Created room %s%s/%s", cfg.prefix, path, room.Code)
		http.Redirect(w, r, cfg.prefix+path+"/"+room.Code, http.StatusTemporaryRedirect)
	}
}

// registerBingoGame sets up routes so that:
//   - $path                  → redirects to a new room (6-char code)
//   - $path/:room            → HTML client
//   - $path/:room/ws         → WebSocket for that room
//   - $path/:room/qr         → PNG QR code for that room URL
//   - /api/bingo/action      → JSON actions
func registerBingoGame(cfg *Config, path string, mux *httprouter.Router, b *bingoServer, errs chan<- error) {
	mux.GET(cfg.prefix+path, redirectNewRoom(cfg, path, b))

	mux.GET(cfg.prefix+path+"/:room", serveRoomPage(cfg, b, errs))

	mux.GET(cfg.prefix+path+"/:room/ws", serveWS(cfg, b))

	mux.GET(cfg.prefix+path+"/:room/qr", qrHandler(b))

	mux.GET(cfg.prefix+"/api/bingo/", serveAPIStatus(cfg, errs))
	mux.GET(cfg.prefix+"/api/bingo/health", serveAPIHealth(cfg, errs))
	mux.POST(cfg.prefix+"/api/bingo/action", serveAction(cfg, b, errs))
}
