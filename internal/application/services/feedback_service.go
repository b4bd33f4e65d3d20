// Package services provides the recommendation feedback loop
package services

import (
	"fmt"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/pulsekit/pulse-go/internal/infrastructure/security"
)

// FeedbackInput is the caller-supplied slice of one feedback record.
type FeedbackInput struct {
	ContentID string        `json:"contentId"`
	Action    string        `json:"action"`
	Duration  time.Duration `json:"duration"`
}

// FeedbackService appends recommendation feedback to the training log.
// Recording only; no online weight updates happen here.
type FeedbackService struct {
	feedback    *telemetry.SQLFeedbackRepository
	cache       *manager.Manager
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewFeedbackService creates a new feedback service with its dependencies.
func NewFeedbackService(feedback *telemetry.SQLFeedbackRepository, cache *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FeedbackService {
	return &FeedbackService{
		feedback:    feedback,
		cache:       cache,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// TrainModel appends one feedback record to the user's interaction history
// and the global training log.
func (s *FeedbackService) TrainModel(userID string, input FeedbackInput) (*events.FeedbackRecord, error) {
	marker := s.perfTracker.StartOperation("recommend:feedback_write")
	defer s.perfTracker.CompleteOperation(marker)

	if input.ContentID == "" {
		marker.SetSuccess(false)
		return nil, fmt.Errorf("contentId is required")
	}

	action := input.Action
	if action == "" {
		action = "viewed"
	}

	record := &events.FeedbackRecord{
		ID:        security.GenerateFeedbackID(),
		UserID:    userID,
		ContentID: input.ContentID,
		Action:    action,
		Duration:  input.Duration,
		Timestamp: time.Now().UTC(),
	}

	if err := s.feedback.Append(record); err != nil {
		marker.SetError(err)
		return nil, err
	}

	// Fresh feedback makes cached recommendation lists stale.
	s.cache.InvalidateUser(userID)

	s.logger.Recommend().Debug("Feedback recorded",
		"userId", logging.SanitizeUserID(userID),
		"contentId", input.ContentID,
		"action", action)
	return record, nil
}

// History returns a user's recorded feedback, newest first.
func (s *FeedbackService) History(userID string, limit int) ([]events.FeedbackRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.feedback.FindByUser(userID, limit)
}
