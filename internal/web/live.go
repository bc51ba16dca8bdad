package web

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// LiveRequest is a client query on /ws/search. Seq must increase with every
// keystroke; a zero Seq is assigned by the server.
type LiveRequest struct {
	Seq uint64 `json:"seq"`
	Q   string `json:"q"`
}

// LiveResponse answers a LiveRequest. Responses for superseded requests are
// never sent: a result is queued only while its request is still the newest.
type LiveResponse struct {
	Type string `json:"type"` // "results" or "error"
	Seq  uint64 `json:"seq"`
	Q    string `json:"q"`
	*SearchResponse
	Error string `json:"error,omitempty"`
}

// StatusMessage is broadcast to live clients when the corpus changes state.
type StatusMessage struct {
	Type   string `json:"type"` // "status"
	Ready  bool   `json:"ready"`
	Verses int    `json:"verses"`
}

// Client is one live-search connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	seq    search.Sequencer
	bucket *tokenBucket

	// pending holds the newest accepted ticket not yet picked up by searchPump.
	pending chan search.Ticket

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) reply(resp LiveResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error("live_marshal_failed", "error", err.Error())
		return
	}
	if !c.enqueue(data) {
		c.hub.unregister(c)
	}
}

// offer replaces any waiting ticket with t. Only readPump sends on pending.
func (c *Client) offer(t search.Ticket) {
	select {
	case <-c.pending:
	default:
	}
	c.pending <- t
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(s.cfg.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, origin)
}

// handleLiveSearch upgrades to a WebSocket carrying LiveRequest/LiveResponse.
func (s *Server) handleLiveSearch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket_upgrade_failed", "error", err.Error())
		return
	}

	rate := float64(s.cfg.LiveMessageRate)
	c := &Client{
		hub:     s.hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		bucket:  newTokenBucket(rate*2, rate),
		pending: make(chan search.Ticket, 1),
	}
	s.hub.register(c)

	go c.writePump()
	go s.searchPump(c)
	go s.readPump(c)
}

// readPump decodes requests and hands accepted tickets to searchPump.
// A ticket still waiting when a newer one arrives is never searched.
func (s *Server) readPump(c *Client) {
	defer func() {
		close(c.pending)
		s.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(s.cfg.LiveMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req LiveRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket_read_failed", "error", err.Error())
			}
			return
		}

		if !c.bucket.allow() {
			c.reply(LiveResponse{Type: "error", Seq: req.Seq, Q: req.Q, Error: "rate limit exceeded"})
			continue
		}

		var ticket search.Ticket
		if req.Seq == 0 {
			ticket = c.seq.Next(req.Q)
		} else {
			var ok bool
			if ticket, ok = c.seq.Observe(req.Seq, req.Q); !ok {
				continue
			}
		}

		c.offer(ticket)
	}
}

// searchPump runs one search at a time for c. A result is queued under the
// sequencer lock, so it is dropped if a newer request was accepted while the
// search ran.
func (s *Server) searchPump(c *Client) {
	for t := range c.pending {
		resp := s.liveSearch(t.Term)
		data, err := json.Marshal(LiveResponse{Type: "results", Seq: t.Seq, Q: t.Term, SearchResponse: resp})
		if err != nil {
			logging.Error("live_marshal_failed", "error", err.Error())
			continue
		}

		queued := true
		if !c.seq.Deliver(t, func() { queued = c.enqueue(data) }) {
			logging.Debug("live_result_superseded", "seq", t.Seq)
			continue
		}
		if !queued {
			c.hub.unregister(c)
		}
	}
}

func (c *Client) writePump() {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
