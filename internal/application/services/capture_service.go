// Package services provides event capture orchestration
package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/pulsekit/pulse-go/internal/infrastructure/security"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// CaptureResult reports the outcome of one trackEvent call.
type CaptureResult struct {
	EventID string `json:"eventId,omitempty"`
	Sampled bool   `json:"sampled"`
	Queued  bool   `json:"queued"`
}

// CaptureService normalizes, samples, and enqueues behavioral events.
type CaptureService struct {
	sessions    *SessionService
	delivery    *DeliveryService
	eventRepo   *telemetry.SQLEventRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	// sample returns a uniform value in [0,1); injectable for tests.
	sample func() float64

	sampledOut atomic.Int64
}

// NewCaptureService creates a new capture service with its dependencies.
func NewCaptureService(
	sessions *SessionService,
	delivery *DeliveryService,
	eventRepo *telemetry.SQLEventRepository,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *CaptureService {
	return &CaptureService{
		sessions:    sessions,
		delivery:    delivery,
		eventRepo:   eventRepo,
		logger:      logger,
		perfTracker: perfTracker,
		sample:      rand.Float64,
	}
}

// samplingRate returns the configured rate for an event name, falling back
// to the default rate.
func samplingRate(name string) float64 {
	if rate, ok := config.SamplingRates[name]; ok {
		return rate
	}
	return config.DefaultSamplingRate
}

// TrackEvent normalizes and captures one event against an active session.
// A sampled-out event is a successful no-op, not an error.
func (s *CaptureService) TrackEvent(name string, payload map[string]any, eventCtx events.Context, sessionID string) (*CaptureResult, error) {
	marker := s.perfTracker.StartOperation("capture:track_event")
	defer s.perfTracker.CompleteOperation(marker)

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		marker.SetSuccess(false)
		return nil, fmt.Errorf("event name is required")
	}

	session, found := s.sessions.Get(sessionID)
	if !found {
		marker.SetSuccess(false)
		return nil, fmt.Errorf("no active session %s", sessionID)
	}

	if err := s.sessions.Touch(sessionID); err != nil {
		marker.SetSuccess(false)
		return nil, err
	}

	if rate := samplingRate(name); s.sample() >= rate {
		s.sampledOut.Add(1)
		s.logger.Capture().Debug("Event sampled out", "name", name, "rate", rate)
		return &CaptureResult{Sampled: false}, nil
	}

	session.Mu.RLock()
	userID := session.UserID
	session.Mu.RUnlock()

	event := events.Event{
		ID:        security.GenerateEventID(),
		Name:      name,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		UserID:    userID,
		Payload:   payload,
		Context:   eventCtx,
	}

	queued := s.delivery.Enqueue(event)
	marker.AddMetadata("queued", queued)

	// Historical store feeds the profile builder; delivery failures do not
	// affect it.
	if s.eventRepo != nil {
		if err := s.eventRepo.Store(&event); err != nil {
			s.logger.Capture().Warn("Failed to store event history", "eventId", event.ID, "error", err.Error())
		}
	}

	s.logger.Capture().Debug("Event captured",
		"eventId", event.ID,
		"name", name,
		"sessionId", sessionID,
		"queued", queued)

	return &CaptureResult{EventID: event.ID, Sampled: true, Queued: queued}, nil
}

// SampledOutCount returns the number of events discarded by sampling.
func (s *CaptureService) SampledOutCount() int64 {
	return s.sampledOut.Load()
}
