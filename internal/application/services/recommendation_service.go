// Package services provides hybrid recommendation ranking
package services

import (
	"math"
	"sort"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/personalization"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// RecommendationOptions shapes one recommendation request.
type RecommendationOptions struct {
	Context    string   `json:"context"`
	Limit      int      `json:"limit"`
	ExcludeIDs []string `json:"excludeIds,omitempty"`
}

// RecommendationService ranks catalog content for a user with the hybrid
// collaborative / content-based / popularity model.
type RecommendationService struct {
	similarity  *SimilarityService
	preferences *personalization.SQLPreferenceRepository
	catalog     *personalization.SQLContentRepository
	feedback    *telemetry.SQLFeedbackRepository
	cache       *manager.Manager
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewRecommendationService creates a new recommendation service with its dependencies.
func NewRecommendationService(
	similarity *SimilarityService,
	preferences *personalization.SQLPreferenceRepository,
	catalog *personalization.SQLContentRepository,
	feedback *telemetry.SQLFeedbackRepository,
	cache *manager.Manager,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *RecommendationService {
	return &RecommendationService{
		similarity:  similarity,
		preferences: preferences,
		catalog:     catalog,
		feedback:    feedback,
		cache:       cache,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetRecommendations returns the ranked recommendation list for a user.
// Identical (userId, context, limit) requests within the cache TTL return
// the identical list.
func (s *RecommendationService) GetRecommendations(userID string, opts RecommendationOptions) ([]content.Recommendation, error) {
	if opts.Context == "" {
		opts.Context = "discovery"
	}
	if opts.Limit <= 0 {
		opts.Limit = config.MaxRecommendations
	}

	if cached, found := s.cache.GetRecommendations(userID, opts.Context, opts.Limit); found {
		return cached, nil
	}

	marker := s.perfTracker.StartOperation("recommend:rank")
	defer s.perfTracker.CompleteOperation(marker)

	catalog, err := s.catalog.ListAll()
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	scorer, err := s.newHybridScorer(userID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	excluded := make(map[string]struct{}, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	type scoredItem struct {
		item  *content.Item
		score float64
		order int
	}

	var scored []scoredItem
	for i := range catalog {
		item := &catalog[i]
		if _, skip := excluded[item.ID]; skip {
			continue
		}

		score := scorer.Score(item)
		if score < config.MinRecommendationScore {
			continue
		}
		scored = append(scored, scoredItem{item: item, score: score, order: i})
	}

	// Descending by score; catalog order breaks ties.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].order < scored[j].order
	})

	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	recommendations := make([]content.Recommendation, 0, len(scored))
	for _, entry := range scored {
		recommendations = append(recommendations, content.Recommendation{
			ID:     entry.item.ID,
			Title:  entry.item.Title,
			Score:  int(math.Round(entry.score * 100)),
			Reason: "Based on your preferences and similar users",
		})
	}

	s.cache.SetRecommendations(userID, opts.Context, opts.Limit, recommendations)

	marker.AddMetadata("catalog", len(catalog))
	marker.AddMetadata("returned", len(recommendations))
	s.logger.Recommend().Info("Recommendations generated",
		"userId", logging.SanitizeUserID(userID),
		"context", opts.Context,
		"count", len(recommendations))
	return recommendations, nil
}

// hybridScorer holds the per-request state needed to score catalog items,
// so one request loads similar users and their histories once.
type hybridScorer struct {
	userVector    []float64
	similarUsers  []content.SimilarUser
	clickedByUser map[string]map[string]struct{}
}

// newHybridScorer loads the user's preference vector, neighbors, and the
// neighbors' clicked-content sets.
func (s *RecommendationService) newHybridScorer(userID string) (*hybridScorer, error) {
	prefs, err := s.preferences.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	similarUsers, err := s.similarity.SimilarUsers(userID, config.MaxSimilarUsers)
	if err != nil {
		return nil, err
	}

	clicked := make(map[string]map[string]struct{}, len(similarUsers))
	for _, neighbor := range similarUsers {
		records, err := s.feedback.FindByUser(neighbor.UserID, 500)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{})
		for _, record := range records {
			if record.Action == "clicked" {
				set[record.ContentID] = struct{}{}
			}
		}
		clicked[neighbor.UserID] = set
	}

	return &hybridScorer{
		userVector:    PreferenceVector(prefs),
		similarUsers:  similarUsers,
		clickedByUser: clicked,
	}, nil
}

// Score combines the collaborative, content-based, and popularity signals
// into one [0,1] score.
func (h *hybridScorer) Score(item *content.Item) float64 {
	collaborative := 0.0
	for _, neighbor := range h.similarUsers {
		if _, interacted := h.clickedByUser[neighbor.UserID][item.ID]; interacted {
			collaborative += neighbor.Score
		}
	}
	// No neighbors yields 0, never a divide-by-zero.
	collaborative = math.Min(1, collaborative/math.Max(1, float64(len(h.similarUsers))))

	contentBased := CosineSimilarity(h.userVector, ContentVector(item))

	popularity := math.Min(1, float64(item.Popularity)/config.PopularityCeiling)

	hybrid := collaborative*config.WeightCollaborative +
		contentBased*config.WeightContentBased +
		popularity*config.WeightPopularity
	return math.Min(1, math.Max(0, hybrid))
}

// ScoreContent scores one catalog item for a user on the 0-100 scale.
func (s *RecommendationService) ScoreContent(userID, contentID string) (int, error) {
	item, err := s.catalog.FindByID(contentID)
	if err != nil {
		return 0, err
	}
	if item == nil {
		item = &content.Item{ID: contentID, Rating: 3.5, Popularity: 100}
	}

	scorer, err := s.newHybridScorer(userID)
	if err != nil {
		return 0, err
	}
	return int(math.Round(scorer.Score(item) * 100)), nil
}

// PersonalizedOrder reorders an externally supplied content list by the
// user's hybrid scores, highest first. The input order breaks ties.
func (s *RecommendationService) PersonalizedOrder(userID string, items []content.Item) ([]content.Item, error) {
	scorer, err := s.newHybridScorer(userID)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		item  content.Item
		score float64
		order int
	}

	rankedItems := make([]ranked, len(items))
	for i := range items {
		rankedItems[i] = ranked{item: items[i], score: scorer.Score(&items[i]), order: i}
	}

	sort.Slice(rankedItems, func(i, j int) bool {
		if rankedItems[i].score != rankedItems[j].score {
			return rankedItems[i].score > rankedItems[j].score
		}
		return rankedItems[i].order < rankedItems[j].order
	})

	out := make([]content.Item, len(rankedItems))
	for i, entry := range rankedItems {
		out[i] = entry.item
	}
	return out, nil
}

// Explain reports why a content item would be recommended to a user.
func (s *RecommendationService) Explain(userID, contentID string) (*content.Explanation, error) {
	item, err := s.catalog.FindByID(contentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &content.Item{ID: contentID}
	}

	scorer, err := s.newHybridScorer(userID)
	if err != nil {
		return nil, err
	}

	return &content.Explanation{
		ContentID: contentID,
		UserID:    userID,
		Reasons: []string{
			"Matches your preferred content types",
			"Popular among similar users",
			"Highly rated by community",
		},
		SimilarUsers: len(scorer.similarUsers),
		Confidence:   int(math.Round(scorer.Score(item) * 100)),
	}, nil
}
