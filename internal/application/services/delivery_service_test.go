package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pulsekit/pulse-go/internal/infrastructure/delivery"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryService_FlushPreservesFIFOOrder(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	svc := newTestDelivery(t, rec)
	svc.batchSize = 10

	// Stay below the batch size so nothing flushes in the background.
	for i := 0; i < 5; i++ {
		require.True(t, svc.Enqueue(makeEvent(fmt.Sprintf("event.%d", i))))
	}

	require.True(t, svc.Flush(context.Background()))

	assert.Equal(t, []string{"event.0", "event.1", "event.2", "event.3", "event.4"}, rec.receivedNames())
	assert.Equal(t, 0, svc.QueueSize())
	assert.Equal(t, int64(5), svc.Metrics().Delivered)
}

func TestDeliveryService_FailedBatchRequeuesAtHead(t *testing.T) {
	rec := newIngestionRecorder(t, 1)
	svc := newTestDelivery(t, rec)
	svc.batchSize = 10

	for i := 0; i < 5; i++ {
		svc.Enqueue(makeEvent(fmt.Sprintf("event.%d", i)))
	}

	// First attempt fails; the batch goes back to the head of the queue.
	assert.False(t, svc.Flush(context.Background()))
	assert.Equal(t, 5, svc.QueueSize())
	assert.Equal(t, int64(1), svc.Metrics().Errors)
	assert.Equal(t, int64(0), svc.Metrics().Delivered)

	// Second attempt delivers the same events in the original order.
	require.True(t, svc.Flush(context.Background()))
	assert.Equal(t, []string{"event.0", "event.1", "event.2", "event.3", "event.4"}, rec.receivedNames())
	assert.Equal(t, int64(5), svc.Metrics().Delivered)
}

func TestDeliveryService_FullQueueDropsNewestEvent(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	svc := newTestDelivery(t, rec)
	svc.maxQueueSize = 3

	assert.True(t, svc.Enqueue(makeEvent("event.0")))
	assert.True(t, svc.Enqueue(makeEvent("event.1")))
	assert.True(t, svc.Enqueue(makeEvent("event.2")))
	assert.False(t, svc.Enqueue(makeEvent("event.overflow")))

	metrics := svc.Metrics()
	assert.Equal(t, 3, metrics.QueueSize)
	assert.Equal(t, int64(1), metrics.Dropped)
}

func TestDeliveryService_FlushOnEmptyQueueIsNoOp(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	svc := newTestDelivery(t, rec)

	assert.False(t, svc.Flush(context.Background()))
	assert.Equal(t, 0, rec.batchCount())
}

func TestDeliveryService_DrainShipsEverythingInBatches(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	svc := newTestDelivery(t, rec)

	for i := 0; i < 25; i++ {
		svc.Enqueue(makeEvent(fmt.Sprintf("event.%02d", i)))
	}
	svc.batchSize = 10

	require.True(t, svc.Drain(context.Background()))

	assert.Equal(t, 3, rec.batchCount())
	assert.Equal(t, 0, svc.QueueSize())

	metrics := svc.Metrics()
	assert.Equal(t, int64(25), metrics.Delivered)
	assert.Equal(t, int64(3), metrics.BatchCount)
	assert.Greater(t, int64(metrics.AvgProcessingTime), int64(0))

	names := rec.receivedNames()
	require.Len(t, names, 25)
	assert.Equal(t, "event.00", names[0])
	assert.Equal(t, "event.24", names[24])
}

func TestDeliveryService_SingleFlushInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := newTestLogger(t)
	client := delivery.NewClient(server.URL, 10*time.Second, logger)
	svc := NewDeliveryService(client, nil, nil, logger, performance.NewTracker(nil))
	svc.batchSize = 1 << 20

	for i := 0; i < 20; i++ {
		svc.Enqueue(makeEvent(fmt.Sprintf("event.%02d", i)))
	}
	svc.batchSize = 10

	done := make(chan bool)
	go func() { done <- svc.Flush(context.Background()) }()
	<-entered

	// The queue still holds a full batch, so only the in-flight guard can
	// make this a no-op.
	assert.Equal(t, 10, svc.QueueSize())
	assert.False(t, svc.Flush(context.Background()))

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, 10, svc.QueueSize())
	assert.Equal(t, int64(10), svc.Metrics().Delivered)
}

func TestDeliveryService_DrainStopsOnFailure(t *testing.T) {
	rec := newIngestionRecorder(t, 1)
	svc := newTestDelivery(t, rec)

	for i := 0; i < 5; i++ {
		svc.Enqueue(makeEvent(fmt.Sprintf("event.%d", i)))
	}
	svc.batchSize = 10

	assert.False(t, svc.Drain(context.Background()))
	assert.Equal(t, 5, svc.QueueSize())
}
