package delivery

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientLogger(t *testing.T) *logging.ChanneledLogger {
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

func testBatch() *events.Batch {
	return &events.Batch{
		ID: "batch_test",
		Events: []events.Event{
			{ID: "evt_1", Name: "content.view", SessionID: "session-1", UserID: "user-1", Timestamp: time.Now().UTC()},
		},
	}
}

func TestSend_PostsEnvelopeWithBatchMetadata(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, newClientLogger(t))
	result, err := client.Send(context.Background(), testBatch())
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Equal(t, "batch_test", got["batchId"])
	assert.Equal(t, "session-1", got["sessionId"])
	assert.Equal(t, "user-1", got["userId"])
}

func TestSend_NonSuccessStatusIsFailureNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, newClientLogger(t))
	result, err := client.Send(context.Background(), testBatch())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "503")
}

func TestSend_TransportFailureIsFailureNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second, newClientLogger(t))
	result, err := client.Send(context.Background(), testBatch())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestSend_AcceptsEmptyResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, newClientLogger(t))
	result, err := client.Send(context.Background(), testBatch())
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestSend_HonorsEndpointReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(Result{Success: false, Message: "schema mismatch"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, newClientLogger(t))
	result, err := client.Send(context.Background(), testBatch())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "schema mismatch", result.Message)
}
