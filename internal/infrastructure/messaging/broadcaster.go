// Package messaging provides the websocket broadcaster for the live
// metrics stream.
package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// MetricsUpdate is one frame pushed over the live metrics stream.
type MetricsUpdate struct {
	Type      string         `json:"type"` // "counters", "score", "segment"
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// MetricsBroadcaster fans metrics updates out to connected websocket clients.
type MetricsBroadcaster struct {
	clients map[*websocket.Conn]chan []byte
	mu      sync.Mutex
	logger  *logging.ChanneledLogger
}

// NewMetricsBroadcaster creates a new broadcaster.
func NewMetricsBroadcaster(logger *logging.ChanneledLogger) *MetricsBroadcaster {
	return &MetricsBroadcaster{
		clients: make(map[*websocket.Conn]chan []byte),
		logger:  logger,
	}
}

// AddClient registers a websocket connection and starts its writer goroutine.
func (b *MetricsBroadcaster) AddClient(conn *websocket.Conn) {
	ch := make(chan []byte, 16)

	b.mu.Lock()
	b.clients[conn] = ch
	count := len(b.clients)
	b.mu.Unlock()

	b.logger.System().Debug("Metrics stream client registered", "clients", count)

	go func() {
		defer b.RemoveClient(conn)
		for frame := range ch {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}()
}

// RemoveClient unregisters a websocket connection and closes it.
func (b *MetricsBroadcaster) RemoveClient(conn *websocket.Conn) {
	b.mu.Lock()
	ch, exists := b.clients[conn]
	if exists {
		delete(b.clients, conn)
		close(ch)
	}
	count := len(b.clients)
	b.mu.Unlock()

	if exists {
		conn.Close()
		b.logger.System().Debug("Metrics stream client unregistered", "clients", count)
	}
}

// ClientCount returns the number of connected stream clients.
func (b *MetricsBroadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Broadcast pushes an update to every connected client. Slow clients drop
// frames rather than blocking the pipeline.
func (b *MetricsBroadcaster) Broadcast(update MetricsUpdate) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}

	frame, err := json.Marshal(update)
	if err != nil {
		b.logger.System().Error("Failed to encode metrics update", "error", err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.clients {
		select {
		case ch <- frame:
		default:
			b.logger.System().Warn("Dropping metrics frame for slow client")
		}
	}
}

// BroadcastCounters pushes the current pipeline counters.
func (b *MetricsBroadcaster) BroadcastCounters(delivered, dropped, errors int64, queueSize int) {
	b.Broadcast(MetricsUpdate{
		Type: "counters",
		Data: map[string]any{
			"delivered": delivered,
			"dropped":   dropped,
			"errors":    errors,
			"queueSize": queueSize,
		},
	})
}

// BroadcastScore pushes a freshly computed engagement score.
func (b *MetricsBroadcaster) BroadcastScore(userID string, total int, segment string) {
	b.Broadcast(MetricsUpdate{
		Type: "score",
		Data: map[string]any{
			"userId":  userID,
			"score":   total,
			"segment": segment,
		},
	})
}

// Close disconnects all clients.
func (b *MetricsBroadcaster) Close() {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		b.RemoveClient(conn)
	}
}
