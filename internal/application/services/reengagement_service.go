// Package services provides the dormant-user re-engagement notifier
package services

import (
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/infrastructure/email"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// ReengagementService sends a re-engagement email when a user goes dormant
// with a declining trend. Fire-and-forget; delivery failures are logged
// and never block the analytics path.
type ReengagementService struct {
	engagement *EngagementService
	trends     *TrendService
	eventRepo  *telemetry.SQLEventRepository
	mailer     email.Service
	logger     *logging.ChanneledLogger
}

// NewReengagementService creates a new re-engagement service with its dependencies.
func NewReengagementService(engagementSvc *EngagementService, trends *TrendService, eventRepo *telemetry.SQLEventRepository, mailer email.Service, logger *logging.ChanneledLogger) *ReengagementService {
	return &ReengagementService{
		engagement: engagementSvc,
		trends:     trends,
		eventRepo:  eventRepo,
		mailer:     mailer,
		logger:     logger,
	}
}

// evaluate classifies a user and reports whether they sit in the dormant
// segment with a declining score trend.
func (s *ReengagementService) evaluate(userID string) (*engagement.Segment, *engagement.TrendSummary, bool) {
	segment, err := s.engagement.ClassifySegment(userID)
	if err != nil {
		s.logger.Analytics().Warn("Re-engagement check failed", "userId", logging.SanitizeUserID(userID), "error", err.Error())
		return nil, nil, false
	}
	if segment.Segment != engagement.SegmentDormant {
		return nil, nil, false
	}

	trend := s.trends.Analyze(userID)
	if trend.Trend != engagement.TrendDeclining {
		return nil, nil, false
	}
	return segment, trend, true
}

// FindCandidates sweeps the users active within the profile window and
// returns those who are dormant with a declining trend.
func (s *ReengagementService) FindCandidates() ([]string, error) {
	until := time.Now().UTC()
	since := until.Add(-config.ProfileWindow)

	users, err := s.eventRepo.ListActiveUsers(since, until)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, userID := range users {
		if _, _, dormant := s.evaluate(userID); dormant {
			candidates = append(candidates, userID)
		}
	}

	s.logger.Analytics().Info("Re-engagement sweep completed",
		"activeUsers", len(users),
		"candidates", len(candidates))
	return candidates, nil
}

// CheckAndNotify evaluates one user and emails them when they are dormant
// with a declining score. Returns whether an email was sent.
func (s *ReengagementService) CheckAndNotify(userID, userEmail, name string) bool {
	if !config.ReengagementEnabled || s.mailer == nil || userEmail == "" {
		return false
	}

	segment, trend, dormant := s.evaluate(userID)
	if !dormant {
		return false
	}

	go func() {
		if err := s.mailer.SendReengagementEmail(userEmail, name, segment.Score, trend.Trend); err != nil {
			s.logger.System().Warn("Re-engagement email failed",
				"userId", logging.SanitizeUserID(userID),
				"error", err.Error())
			return
		}
		s.logger.System().Info("Re-engagement email sent",
			"userId", logging.SanitizeUserID(userID),
			"score", segment.Score)
	}()
	return true
}
