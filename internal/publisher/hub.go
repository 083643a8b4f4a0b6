package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/ball-info/internal/detection"
)

// TopicPath is where websocket clients subscribe to detections.
const TopicPath = "/ballInfo"

// ClientQueueSize is the number of messages buffered per client before new
// messages are dropped for that client.
const ClientQueueSize = 16

const writeWait = 2 * time.Second

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans messages out to websocket subscribers.
//
// Each subscriber has its own bounded queue and writer goroutine. A slow
// subscriber loses messages; it never slows Publish down. A subscriber that
// connects is sent the most recent message straight away.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	last    []byte
	closed  bool

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates a hub with no subscribers.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger.Named("hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Publish implements Publisher. It never blocks on a subscriber.
func (h *Hub) Publish(_ context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode message")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("hub closed")
	}
	h.last = data
	for c := range h.clients {
		h.enqueue(c, data)
	}
	return nil
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *hubClient, data []byte) {
	select {
	case c.send <- data:
		h.sent.Add(1)
	default:
		if n := h.dropped.Add(1); n == 1 || n%100 == 0 {
			h.logger.Info("dropping messages for slow subscriber", zap.Uint64("dropped", n))
		}
	}
}

// Latest returns the last published message, if any.
func (h *Hub) Latest() (Message, bool) {
	h.mu.Lock()
	data := h.last
	h.mu.Unlock()
	if data == nil {
		return Message{}, false
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, false
	}
	return msg, true
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Stats returns how many messages were queued and dropped across all
// subscribers.
func (h *Hub) Stats() (sent, dropped uint64) {
	return h.sent.Load(), h.dropped.Load()
}

// Health is the /healthz body.
type Health struct {
	Clients int    `json:"clients"`
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

// Health reports the subscriber count and delivery counters.
func (h *Hub) Health() Health {
	sent, dropped := h.Stats()
	return Health{Clients: h.Clients(), Sent: sent, Dropped: dropped}
}

// ServeHTTP upgrades the request to a websocket subscription.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, ClientQueueSize)}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Info("subscriber connected", zap.String("remote", r.RemoteAddr))

	go h.writer(c)
	h.reader(c)
	h.unregister(c)
	h.logger.Info("subscriber disconnected", zap.String("remote", r.RemoteAddr))
}

func (h *Hub) register(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		h.enqueue(c, h.last)
	}
	return true
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// reader discards anything the subscriber sends and returns once the
// connection fails or is closed.
func (h *Hub) reader(c *hubClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writer(c *hubClient) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	return nil
}

// Router serves the websocket topic plus a couple of read-only endpoints:
//
//	GET /ballInfo   websocket subscription
//	GET /latest     last published message as JSON (204 before the first)
//	GET /classes    the color table in use
//	GET /healthz    subscriber count and sent/dropped counters
func (h *Hub) Router(classes detection.ColorTable) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(h.logger.Named("http")),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get(TopicPath, h.ServeHTTP)
	r.Get("/latest", func(w http.ResponseWriter, r *http.Request) {
		msg, ok := h.Latest()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, msg)
	})
	r.Get("/classes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, classes)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.Health())
	})

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
