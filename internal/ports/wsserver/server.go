// Package wsserver is the standalone websocket router: one duel per process,
// seats addressed by path (/A, /B).
package wsserver

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"gridduel/internal/app"
	"gridduel/internal/domain"
	"gridduel/internal/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// ErrSeatTaken is sent to a second connection for an occupied seat.
var ErrSeatTaken = errors.New("Seat already taken")

type client struct {
	owner domain.Owner
	conn  *websocket.Conn
	send  chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close stops the write pump after it drains queued frames.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Server routes websocket frames for a single duel. A finished duel is
// replaced by a fresh one so the process can host consecutive games.
type Server struct {
	svc      *app.Service
	tokens   *app.SeatTokens
	logger   runtime.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	match   *app.Match
	matchID string
	clients map[domain.Owner]*client
}

// New creates a router. tokens may be nil to accept unauthenticated seats.
func New(svc *app.Service, tokens *app.SeatTokens, logger runtime.Logger) *Server {
	return &Server{
		svc:    svc,
		tokens: tokens,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		match:   app.NewMatch(svc),
		matchID: uuid.NewString(),
		clients: make(map[domain.Owner]*client),
	}
}

// MatchID identifies the duel currently hosted. Tokens bound to an earlier
// duel are rejected.
func (s *Server) MatchID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchID
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.serveSeat)
	return mux
}

func (s *Server) serveSeat(w http.ResponseWriter, r *http.Request) {
	owner, ownerErr := domain.ParseOwner(strings.Trim(r.URL.Path, "/"))

	if ownerErr == nil && s.tokens != nil {
		if _, err := s.tokens.Verify(r.URL.Query().Get("token"), owner, s.MatchID()); err != nil {
			s.logger.Warn("Rejected %s connection from %s: %v", owner, r.RemoteAddr, err)
			http.Error(w, "invalid seat token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Upgrade failed for %s: %v", r.URL.Path, err)
		return
	}

	if ownerErr != nil {
		s.reject(conn, domain.ErrUnknownPlayer)
		return
	}

	c := &client{owner: owner, conn: conn, send: make(chan []byte, sendBuffer)}
	if !s.register(c) {
		s.reject(conn, ErrSeatTaken)
		return
	}
	s.logger.Info("Player %s connected from %s", owner, r.RemoteAddr)

	go s.writePump(c)
	s.readPump(c)
}

// reject sends one error frame and closes a connection that never got a seat.
func (s *Server) reject(conn *websocket.Conn, cause error) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, protocol.EncodeError(cause))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, cause.Error()))
	_ = conn.Close()
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.clients[c.owner]; taken {
		return false
	}
	s.clients[c.owner] = c
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	if s.clients[c.owner] == c {
		delete(s.clients, c.owner)
	}
	s.mu.Unlock()
	c.close()
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.unregister(c)
		s.logger.Info("Player %s disconnected", c.owner)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Read error for %s: %v", c.owner, err)
			}
			return
		}
		s.handle(c, data)
	}
}

// handle runs one command with the server lock held, so frames leave in
// the order the engine produced them.
func (s *Server) handle(c *client, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clients[c.owner] != c {
		return
	}

	cmd, err := protocol.DecodeCommand(data)
	if err != nil {
		c.enqueue(protocol.EncodeError(err))
		return
	}

	events, err := protocol.Execute(s.match, c.owner, cmd)
	if err != nil {
		s.logger.Debug("%s %s rejected: %v", c.owner, cmd.Type, err)
		c.enqueue(protocol.EncodeError(err))
		return
	}

	gameOver := false
	for _, ev := range events {
		frame, err := protocol.EncodeEvent(ev)
		if err != nil {
			s.logger.Error("Failed to encode %s: %v", ev.Kind, err)
			continue
		}
		s.deliver(ev, frame)
		if ev.Kind == app.EventGameOver {
			gameOver = true
		}
	}

	if gameOver {
		s.logger.Info("Duel %s over after %d moves, winner %s", s.matchID, s.match.Moves(), s.match.Winner())
		for owner, cl := range s.clients {
			cl.close()
			delete(s.clients, owner)
		}
		s.match = app.NewMatch(s.svc)
		s.matchID = uuid.NewString()
	}
}

func (s *Server) deliver(ev app.Event, frame []byte) {
	for _, owner := range domain.Owners {
		cl, ok := s.clients[owner]
		if !ok {
			continue
		}
		if !cl.enqueue(frame) {
			s.logger.Warn("Dropping %s frame for slow client %s", ev.Kind, owner)
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
