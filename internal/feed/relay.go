package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/sethgrid/pelioscope/internal/clock"
)

const (
	msgSnapshot = "snapshot"
	msgUpdate   = "update"

	writeTimeout = 10 * time.Second
	clientBuffer = 16
)

// envelope is the relay wire message. Snapshots carry the whole record,
// updates carry only the fields to change.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Relay is a Source backed by a Hub over websockets, for setups where the
// detector cannot reach Firebase.
type Relay struct {
	url    string
	clock  clock.Clock
	logger *zap.Logger
}

func NewRelay(url string, clk clock.Clock, logger *zap.Logger) *Relay {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{url: url, clock: clk, logger: logger}
}

func (r *Relay) Subscribe(ctx context.Context, fn func(*Record)) error {
	conn, _, err := websocket.Dial(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial relay: %w", err)
	}
	defer conn.CloseNow()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return ErrStreamClosed
			}
			return fmt.Errorf("failed to read from relay: %w", err)
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.logger.Warn("skipping malformed relay message", zap.Error(err))
			continue
		}
		if env.Type != msgSnapshot {
			continue
		}
		var fields map[string]json.RawMessage
		if !isNull(env.Data) {
			if err := json.Unmarshal(env.Data, &fields); err != nil {
				r.logger.Warn("skipping malformed snapshot", zap.Error(err))
				continue
			}
		}
		rec, err := decodeFields(fields)
		if err != nil {
			r.logger.Warn("skipping undecodable record", zap.Error(err))
			continue
		}
		fn(rec)
	}
}

func (r *Relay) SetSystemStatus(ctx context.Context, active bool) error {
	return r.send(ctx, statusUpdate(active, r.clock.Now()))
}

func (r *Relay) PushDetection(ctx context.Context, label string, confidence float64) error {
	return r.send(ctx, detectionUpdate(label, confidence, r.clock.Now()))
}

func (r *Relay) send(ctx context.Context, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	payload, err := json.Marshal(envelope{Type: msgUpdate, Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial relay: %w", err)
	}
	defer conn.CloseNow()
	// the hub greets every connection with a snapshot we do not need
	conn.CloseRead(ctx)

	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("failed to send update: %w", err)
	}
	return conn.Close(websocket.StatusNormalClosure, "")
}

// Hub holds the detector record and fans every change out to connected
// relay clients. Clients write updates; the hub merges them and broadcasts
// the full record.
type Hub struct {
	logger  *zap.Logger
	origins []string

	register   chan *hubClient
	unregister chan *hubClient
	updates    chan map[string]json.RawMessage
	done       chan struct{}
	clients    map[*hubClient]struct{}

	mu      sync.RWMutex
	current map[string]json.RawMessage
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. origins lists the host patterns allowed to connect
// from browsers; non-browser clients are always accepted.
func NewHub(logger *zap.Logger, origins ...string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		origins:    origins,
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		updates:    make(chan map[string]json.RawMessage, 64),
		done:       make(chan struct{}),
		clients:    make(map[*hubClient]struct{}),
	}
}

// Current returns the record as the hub last merged it.
func (h *Hub) Current() (*Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return decodeFields(h.current)
}

// Run processes registrations and updates until ctx is done. It must be
// called exactly once.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("relay client connected", zap.Int("clients", len(h.clients)))
			if snap, err := h.snapshot(); err == nil {
				h.deliver(c, snap)
			}

		case c := <-h.unregister:
			h.drop(c)
			h.logger.Debug("relay client disconnected", zap.Int("clients", len(h.clients)))

		case fields := <-h.updates:
			h.mu.Lock()
			h.current = mergeFields(h.current, fields)
			h.mu.Unlock()
			snap, err := h.snapshot()
			if err != nil {
				h.logger.Error("failed to encode snapshot", zap.Error(err))
				continue
			}
			for c := range h.clients {
				h.deliver(c, snap)
			}

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Info("relay hub stopped")
			return nil
		}
	}
}

func (h *Hub) snapshot() ([]byte, error) {
	h.mu.RLock()
	data, err := json.Marshal(h.current)
	h.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: msgSnapshot, Data: data})
}

func (h *Hub) deliver(c *hubClient, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("relay client too slow, disconnecting")
		h.drop(c)
	}
}

func (h *Hub) drop(c *hubClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request and serves one relay client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Warn("relay upgrade failed", zap.Error(err))
		return
	}
	c := &hubClient{conn: conn, send: make(chan []byte, clientBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close(websocket.StatusGoingAway, "hub stopped")
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) writePump(c *hubClient) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")
	for msg := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			h.logger.Debug("relay write failed", zap.Error(err))
			return
		}
	}
}

func (h *Hub) readPump(c *hubClient) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.CloseNow()
	}()

	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			var ce websocket.CloseError
			if !errors.As(err, &ce) {
				h.logger.Debug("relay read ended", zap.Error(err))
			}
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type != msgUpdate {
			h.logger.Warn("ignoring relay message", zap.ByteString("message", data))
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(env.Data, &fields); err != nil {
			h.logger.Warn("ignoring malformed update", zap.Error(err))
			continue
		}
		select {
		case h.updates <- fields:
		case <-h.done:
			return
		}
	}
}
