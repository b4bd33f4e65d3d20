// Package services provides engagement scoring and segmentation
package services

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/messaging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// EngagementService computes weighted 0-100 engagement scores and segments
// users by threshold.
type EngagementService struct {
	profiles    *ProfileService
	cache       *manager.Manager
	broadcaster *messaging.MetricsBroadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewEngagementService creates a new engagement service with its dependencies.
func NewEngagementService(
	profiles *ProfileService,
	cache *manager.Manager,
	broadcaster *messaging.MetricsBroadcaster,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *EngagementService {
	return &EngagementService{
		profiles:    profiles,
		cache:       cache,
		broadcaster: broadcaster,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// normalize scales value against a reference onto [0,100].
func normalize(value, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	normalized := (value / reference) * 100
	return math.Min(100, math.Max(0, normalized))
}

// ComputeScore returns the user's engagement score, serving from cache when
// a fresh entry exists. Identical inputs within the TTL yield the identical
// score.
func (s *EngagementService) ComputeScore(userID string) (*engagement.Score, error) {
	if cached, found := s.cache.GetScore(userID); found {
		return cached, nil
	}

	marker := s.perfTracker.StartOperation("analytics:score_computation")
	defer s.perfTracker.CompleteOperation(marker)

	profile, err := s.profiles.Build(userID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	score := ScoreFromProfile(profile)
	s.cache.SetScore(userID, score)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastScore(userID, score.Total, "")
	}

	s.logger.Analytics().Info("Engagement score computed",
		"userId", logging.SanitizeUserID(userID),
		"total", score.Total)
	return score, nil
}

// ScoreFromProfile computes the weighted component scores for a profile.
func ScoreFromProfile(profile *engagement.UserProfile) *engagement.Score {
	// Activity: sessions per week against the reference rate. The profile
	// window approximates a week-denominated rate as sessionCount/7.
	sessionsPerWeek := float64(profile.SessionCount) / 7
	activity := normalize(sessionsPerWeek, config.RefSessionsPerWeek)

	// Interaction: actions per session against the reference rate.
	interaction := normalize(profile.AvgEventsPerSession, config.RefActionsPerSession)

	// Social: share of social and content interactions among all events.
	social := 0.0
	if profile.EventCount > 0 {
		socialEvents := profile.InteractionTypeCounts["social"] + profile.InteractionTypeCounts["content"]
		social = math.Min(100, float64(socialEvents)/float64(profile.EventCount)*100)
	}

	// Frequency: session count scaled, saturating at ten sessions.
	frequency := math.Min(100, math.Max(0, float64(profile.SessionCount)*10))

	weights := engagement.Weights{
		Activity:    config.WeightActivity,
		Interaction: config.WeightInteraction,
		Social:      config.WeightSocial,
		Frequency:   config.WeightFrequency,
	}

	total := int(math.Round(
		activity*weights.Activity +
			interaction*weights.Interaction +
			social*weights.Social +
			frequency*weights.Frequency))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return &engagement.Score{
		UserID: profile.UserID,
		Total:  total,
		Components: engagement.ComponentScores{
			Activity:    int(math.Round(activity)),
			Interaction: int(math.Round(interaction)),
			Social:      int(math.Round(social)),
			Frequency:   int(math.Round(frequency)),
		},
		Weights:    weights,
		ComputedAt: time.Now().UTC(),
	}
}

// ClassifySegment buckets a user into a segment by engagement score. The
// segment cache invalidates together with the score cache.
func (s *EngagementService) ClassifySegment(userID string) (*engagement.Segment, error) {
	if cached, found := s.cache.GetSegment(userID); found {
		return cached, nil
	}

	marker := s.perfTracker.StartOperation("analytics:segmentation")
	defer s.perfTracker.CompleteOperation(marker)

	score, err := s.ComputeScore(userID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	segment := SegmentFromScore(userID, score.Total)
	s.cache.SetSegment(userID, segment)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastScore(userID, score.Total, segment.Segment)
	}

	s.logger.Analytics().Info("User segment identified",
		"userId", logging.SanitizeUserID(userID),
		"segment", segment.Segment)
	return segment, nil
}

// SegmentFromScore maps a total score onto a segment label with a fixed
// per-segment confidence.
func SegmentFromScore(userID string, score int) *engagement.Segment {
	label := engagement.SegmentDormant
	confidence := 0.7
	trait := "Inactive"

	switch {
	case score >= config.ThresholdPowerUser:
		label = engagement.SegmentPowerUser
		confidence = 0.9
		trait = "Highly engaged"
	case score >= config.ThresholdActive:
		label = engagement.SegmentActive
		confidence = 0.85
		trait = "Regular user"
	case score >= config.ThresholdCasual:
		label = engagement.SegmentCasual
		confidence = 0.75
		trait = "Occasional user"
	}

	return &engagement.Segment{
		UserID:     userID,
		Segment:    label,
		Score:      score,
		Confidence: confidence,
		Characteristics: []string{
			label + " user",
			"Engagement score: " + strconv.Itoa(score) + "/100",
			trait,
		},
		ComputedAt: time.Now().UTC(),
	}
}

// Breakdown returns the component-level view of a user's score.
func (s *EngagementService) Breakdown(userID string) (*engagement.Score, error) {
	return s.ComputeScore(userID)
}

// CompareToAverage positions a user's score against the population baseline.
func (s *EngagementService) CompareToAverage(userID string) (*engagement.Comparison, error) {
	score, err := s.ComputeScore(userID)
	if err != nil {
		return nil, err
	}

	const averageScore = 50

	status := "below_average"
	if score.Total > averageScore {
		status = "above_average"
	}

	return &engagement.Comparison{
		UserID:       userID,
		UserScore:    score.Total,
		AverageScore: averageScore,
		Difference:   score.Total - averageScore,
		Percentile:   score.Total,
		Status:       status,
	}, nil
}

// AnalyzePatterns summarizes a user's interaction behavior.
func (s *EngagementService) AnalyzePatterns(userID string) (*engagement.InteractionPatterns, error) {
	profile, err := s.profiles.Build(userID)
	if err != nil {
		return nil, err
	}

	return PatternsFromProfile(profile), nil
}

// PatternsFromProfile derives the pattern summary from a profile.
func PatternsFromProfile(profile *engagement.UserProfile) *engagement.InteractionPatterns {
	favorites := topTypeCounts(profile.InteractionTypeCounts, 5)

	frequency := "low"
	if profile.EventCount > 100 {
		frequency = "high"
	} else if profile.EventCount > 50 {
		frequency = "medium"
	}

	return &engagement.InteractionPatterns{
		UserID:               profile.UserID,
		FavoriteContentTypes: favorites,
		InteractionFrequency: frequency,
		SessionCount:         profile.SessionCount,
		AvgEventsPerSession:  profile.AvgEventsPerSession,
		LastActiveTime:       profile.LastActiveTime,
	}
}

// topTypeCounts returns the top-n interaction categories by count, with a
// stable alphabetical tie-break.
func topTypeCounts(counts map[string]int, n int) []engagement.TypeCount {
	out := make([]engagement.TypeCount, 0, len(counts))
	for typ, count := range counts {
		out = append(out, engagement.TypeCount{Type: typ, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// PredictLifetimeValue estimates LTV and churn risk from the engagement score.
func (s *EngagementService) PredictLifetimeValue(userID string) (*engagement.LifetimeValue, error) {
	score, err := s.ComputeScore(userID)
	if err != nil {
		return nil, err
	}

	const baseLTV = 100.0
	ltv := baseLTV * (float64(score.Total) / 50)

	result := &engagement.LifetimeValue{
		UserID:          userID,
		EstimatedLTV:    int(math.Round(ltv)),
		EngagementScore: score.Total,
		ChurnRiskScore:  math.Max(0, 1-float64(score.Total)/100),
		Recommendation:  "stable",
	}

	if score.Total < config.ThresholdCasual {
		churnDate := time.Now().UTC().Add(30 * 24 * time.Hour)
		result.PredictedChurn = &churnDate
		result.Recommendation = "re_engagement_needed"
	}

	return result, nil
}

// InvalidateUser drops the user's cached score and segment together.
func (s *EngagementService) InvalidateUser(userID string) {
	s.cache.InvalidateUser(userID)
}
