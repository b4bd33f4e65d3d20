// Package services provides user profile building
package services

import (
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// ProfileService rebuilds user interaction profiles from historical events.
// Profiles are derived data; they are recomputed on demand, never stored.
type ProfileService struct {
	eventRepo   *telemetry.SQLEventRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewProfileService creates a new profile service with its dependencies.
func NewProfileService(eventRepo *telemetry.SQLEventRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ProfileService {
	return &ProfileService{
		eventRepo:   eventRepo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Build aggregates the user's events within the profile window.
func (s *ProfileService) Build(userID string) (*engagement.UserProfile, error) {
	marker := s.perfTracker.StartOperation("analytics:profile_build")
	defer s.perfTracker.CompleteOperation(marker)

	until := time.Now().UTC()
	since := until.Add(-config.ProfileWindow)

	userEvents, err := s.eventRepo.FindByUser(userID, since, until)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	profile := BuildProfileFromEvents(userID, userEvents)
	marker.AddMetadata("events", profile.EventCount)
	marker.AddMetadata("sessions", profile.SessionCount)

	s.logger.Analytics().Debug("Profile built",
		"userId", logging.SanitizeUserID(userID),
		"events", profile.EventCount,
		"sessions", profile.SessionCount)
	return profile, nil
}

// BuildProfileFromEvents aggregates an event slice into a profile. Events
// are expected oldest first; an empty slice produces a zero-value profile.
func BuildProfileFromEvents(userID string, userEvents []events.Event) *engagement.UserProfile {
	profile := &engagement.UserProfile{
		UserID:                userID,
		InteractionTypeCounts: make(map[string]int),
	}

	if len(userEvents) == 0 {
		return profile
	}

	sessions := make(map[string]struct{})
	for i := range userEvents {
		event := &userEvents[i]

		sessionID := event.SessionID
		if sessionID == "" {
			sessionID = "unknown"
		}
		sessions[sessionID] = struct{}{}

		profile.InteractionTypeCounts[event.Category()]++
	}

	profile.EventCount = len(userEvents)
	profile.SessionCount = len(sessions)
	profile.AvgEventsPerSession = float64(profile.EventCount) / float64(max(1, profile.SessionCount))
	profile.LastActiveTime = userEvents[len(userEvents)-1].Timestamp

	return profile
}
