package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/delivery"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/require"
)

// newTestLogger builds a quiet logger that only surfaces errors.
func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: true,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
	})
	require.NoError(t, err)
	return logger
}

// ingestionRecorder is a fake ingestion endpoint that records every batch
// it receives and can be told to fail a number of requests first.
type ingestionRecorder struct {
	mu           sync.Mutex
	failuresLeft int
	received     [][]events.Event
	server       *httptest.Server
}

func newIngestionRecorder(t *testing.T, failures int) *ingestionRecorder {
	t.Helper()
	rec := &ingestionRecorder{failuresLeft: failures}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var envelope struct {
			BatchID string         `json:"batchId"`
			Events  []events.Event `json:"events"`
		}
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		rec.mu.Lock()
		defer rec.mu.Unlock()
		if rec.failuresLeft > 0 {
			rec.failuresLeft--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		rec.received = append(rec.received, envelope.Events)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

// receivedNames flattens the recorded batches into delivered event names.
func (rec *ingestionRecorder) receivedNames() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	var names []string
	for _, batch := range rec.received {
		for _, event := range batch {
			names = append(names, event.Name)
		}
	}
	return names
}

func (rec *ingestionRecorder) batchCount() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.received)
}

// newTestDelivery wires a delivery service against the fake endpoint with a
// batch size large enough that nothing flushes behind the test's back.
func newTestDelivery(t *testing.T, rec *ingestionRecorder) *DeliveryService {
	t.Helper()
	logger := newTestLogger(t)
	client := delivery.NewClient(rec.server.URL, 2*time.Second, logger)
	svc := NewDeliveryService(client, nil, nil, logger, performance.NewTracker(nil))
	svc.batchSize = 1 << 20
	return svc
}

func newTestSessions(t *testing.T, deliverySvc *DeliveryService) (*SessionService, *manager.Manager) {
	t.Helper()
	logger := newTestLogger(t)
	cache := manager.NewManager(logger)
	return NewSessionService(cache, deliverySvc, logger), cache
}

func makeEvent(name string) events.Event {
	return events.Event{
		ID:        name + "-id",
		Name:      name,
		Timestamp: time.Now().UTC(),
		SessionID: "session-test",
	}
}
