// Package services provides batching and delivery orchestration
package services

import (
	"context"
	"sync"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/delivery"
	"github.com/pulsekit/pulse-go/internal/infrastructure/messaging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/state"
	"github.com/pulsekit/pulse-go/internal/infrastructure/security"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// PipelineMetrics is a snapshot of the delivery pipeline counters.
type PipelineMetrics struct {
	QueueSize         int           `json:"queueSize"`
	Delivered         int64         `json:"delivered"`
	Dropped           int64         `json:"dropped"`
	Errors            int64         `json:"errors"`
	BatchCount        int64         `json:"batchCount"`
	AvgProcessingTime time.Duration `json:"avgProcessingTime"`
}

// DeliveryService owns the bounded FIFO event queue and ships batches to the
// ingestion endpoint. One flush runs at a time; requests arriving while a
// flush is in flight are no-ops.
type DeliveryService struct {
	mu       sync.Mutex
	queue    []events.Event
	inFlight bool

	delivered       int64
	dropped         int64
	errors          int64
	batchCount      int64
	totalProcessing time.Duration

	client      *delivery.Client
	counterRepo *state.SQLCounterRepository
	broadcaster *messaging.MetricsBroadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	batchSize    int
	maxQueueSize int
}

// NewDeliveryService creates the delivery manager and restores persisted
// counter snapshots.
func NewDeliveryService(
	client *delivery.Client,
	counterRepo *state.SQLCounterRepository,
	broadcaster *messaging.MetricsBroadcaster,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *DeliveryService {
	s := &DeliveryService{
		client:       client,
		counterRepo:  counterRepo,
		broadcaster:  broadcaster,
		logger:       logger,
		perfTracker:  perfTracker,
		batchSize:    config.BatchSize,
		maxQueueSize: config.MaxQueueSize,
	}

	if counterRepo != nil {
		if counters, err := counterRepo.LoadAll(); err != nil {
			logger.Delivery().Warn("Failed to restore counter snapshots", "error", err.Error())
		} else {
			s.delivered = counters[state.CounterDelivered]
			s.dropped = counters[state.CounterDropped]
			s.errors = counters[state.CounterErrors]
			logger.Delivery().Info("Counter snapshots restored",
				"delivered", s.delivered, "dropped", s.dropped, "errors", s.errors)
		}
	}

	return s
}

// Enqueue appends an event to the queue. A full queue drops the event and
// returns false; the capture path never blocks.
func (s *DeliveryService) Enqueue(event events.Event) bool {
	s.mu.Lock()

	if len(s.queue) >= s.maxQueueSize {
		s.dropped++
		dropped := s.dropped
		s.mu.Unlock()

		s.logger.Delivery().Warn("Queue full, event dropped",
			"eventId", event.ID,
			"name", event.Name,
			"totalDropped", dropped)
		return false
	}

	s.queue = append(s.queue, event)
	shouldFlush := len(s.queue) >= s.batchSize
	s.mu.Unlock()

	if shouldFlush {
		go s.Flush(context.Background())
	}
	return true
}

// Flush ships one batch from the head of the queue. Returns false when the
// queue is empty or another flush is already in flight.
func (s *DeliveryService) Flush(ctx context.Context) bool {
	s.mu.Lock()
	if s.inFlight || len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	s.inFlight = true

	n := s.batchSize
	if n > len(s.queue) {
		n = len(s.queue)
	}
	batchEvents := make([]events.Event, n)
	copy(batchEvents, s.queue[:n])
	s.queue = s.queue[n:]
	s.mu.Unlock()

	marker := s.perfTracker.StartOperation("delivery:flush")
	marker.AddMetadata("events", n)

	batch := &events.Batch{
		ID:     security.GenerateBatchID(),
		Events: batchEvents,
	}

	start := time.Now()
	result, err := s.client.Send(ctx, batch)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.inFlight = false

	if err != nil || !result.Success {
		// Requeue at the head so delivery order is preserved.
		s.queue = append(batchEvents, s.queue...)
		if len(s.queue) > s.maxQueueSize {
			overflow := len(s.queue) - s.maxQueueSize
			s.queue = s.queue[:s.maxQueueSize]
			s.dropped += int64(overflow)
		}
		s.errors++
		s.mu.Unlock()

		if err != nil {
			marker.SetError(err)
		} else {
			marker.SetSuccess(false)
		}
		s.perfTracker.CompleteOperation(marker)

		s.logger.Delivery().Warn("Batch requeued after failed delivery",
			"batchId", batch.ID,
			"events", n,
			"message", result.Message)
		s.publishMetrics()
		return false
	}

	s.delivered += int64(n)
	s.batchCount++
	s.totalProcessing += elapsed
	s.mu.Unlock()

	s.perfTracker.CompleteOperation(marker)

	s.logger.Delivery().Info("Batch delivered",
		"batchId", batch.ID,
		"events", n,
		"duration", elapsed)

	s.persistCounters()
	s.publishMetrics()
	return true
}

// Drain flushes repeatedly until the queue is empty or a delivery fails.
// Used on session end; best-effort by contract.
func (s *DeliveryService) Drain(ctx context.Context) bool {
	marker := s.perfTracker.StartOperation("delivery:drain")
	defer s.perfTracker.CompleteOperation(marker)

	for {
		s.mu.Lock()
		remaining := len(s.queue)
		busy := s.inFlight
		s.mu.Unlock()

		if remaining == 0 {
			return true
		}
		if busy {
			marker.AddMetadata("abandoned", "flush in flight")
			return false
		}
		if !s.Flush(ctx) {
			marker.SetSuccess(false)
			return false
		}
	}
}

// StartFlushLoop runs the periodic flush timer until the context is
// cancelled. Call in a goroutine at startup.
func (s *DeliveryService) StartFlushLoop(ctx context.Context) {
	ticker := time.NewTicker(config.FlushInterval)
	defer ticker.Stop()

	s.logger.Delivery().Info("Delivery flush loop started", "interval", config.FlushInterval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Delivery().Info("Delivery flush loop stopping")
			s.persistCounters()
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// QueueSize returns the current queue depth.
func (s *DeliveryService) QueueSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Metrics returns a snapshot of the pipeline counters.
func (s *DeliveryService) Metrics() PipelineMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	var avg time.Duration
	if s.batchCount > 0 {
		avg = s.totalProcessing / time.Duration(s.batchCount)
	}

	return PipelineMetrics{
		QueueSize:         len(s.queue),
		Delivered:         s.delivered,
		Dropped:           s.dropped,
		Errors:            s.errors,
		BatchCount:        s.batchCount,
		AvgProcessingTime: avg,
	}
}

// persistCounters snapshots the counters to the local state store.
func (s *DeliveryService) persistCounters() {
	if s.counterRepo == nil {
		return
	}

	metrics := s.Metrics()
	for name, value := range map[string]int64{
		state.CounterDelivered: metrics.Delivered,
		state.CounterDropped:   metrics.Dropped,
		state.CounterErrors:    metrics.Errors,
	} {
		if err := s.counterRepo.Save(name, value); err != nil {
			s.logger.Delivery().Warn("Failed to persist counter", "counter", name, "error", err.Error())
		}
	}
}

// publishMetrics pushes current counters to the live metrics stream.
func (s *DeliveryService) publishMetrics() {
	if s.broadcaster == nil {
		return
	}
	metrics := s.Metrics()
	s.broadcaster.BroadcastCounters(metrics.Delivered, metrics.Dropped, metrics.Errors, metrics.QueueSize)
}
