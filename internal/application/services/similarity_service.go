// Package services provides user and content similarity computation
package services

import (
	"math"
	"sort"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/personalization"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// SimilarityService computes user-user, content-content, and user-content
// similarity measures.
type SimilarityService struct {
	preferences *personalization.SQLPreferenceRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSimilarityService creates a new similarity service with its dependencies.
func NewSimilarityService(preferences *personalization.SQLPreferenceRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SimilarityService {
	return &SimilarityService{
		preferences: preferences,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// JaccardSimilarity computes |A∩B| / |A∪B| over two string sets. Two empty
// sets have no overlap to speak of and score 0.
func JaccardSimilarity(set1, set2 []string) float64 {
	union := make(map[string]struct{}, len(set1)+len(set2))
	members := make(map[string]struct{}, len(set1))

	for _, item := range set1 {
		union[item] = struct{}{}
		members[item] = struct{}{}
	}

	intersection := 0
	seen := make(map[string]struct{}, len(set2))
	for _, item := range set2 {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		union[item] = struct{}{}
		if _, ok := members[item]; ok {
			intersection++
		}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// CosineSimilarity computes the cosine of the angle between two vectors,
// truncated to the shorter length. A zero-magnitude vector scores 0.
func CosineSimilarity(vec1, vec2 []float64) float64 {
	n := len(vec1)
	if len(vec2) < n {
		n = len(vec2)
	}

	var dot, mag1, mag2 float64
	for i := 0; i < n; i++ {
		dot += vec1[i] * vec2[i]
		mag1 += vec1[i] * vec1[i]
		mag2 += vec2[i] * vec2[i]
	}

	mag1 = math.Sqrt(mag1)
	mag2 = math.Sqrt(mag2)
	if mag1 == 0 || mag2 == 0 {
		return 0
	}
	return dot / (mag1 * mag2)
}

// ContentSimilarity is the mean of the defined pairwise factors: category
// match, tag Jaccard, and rating proximity. Factors missing on either side
// are left out of the mean entirely.
func ContentSimilarity(item1, item2 *content.Item) float64 {
	similarity := 0.0
	factors := 0

	if item1.Category != "" && item2.Category != "" {
		if item1.Category == item2.Category {
			similarity += 1
		}
		factors++
	}

	if item1.Tags != nil && item2.Tags != nil {
		similarity += JaccardSimilarity(item1.Tags, item2.Tags)
		factors++
	}

	if item1.Rating > 0 && item2.Rating > 0 {
		ratingDiff := math.Abs(item1.Rating - item2.Rating)
		similarity += math.Max(0, 1-ratingDiff/5)
		factors++
	}

	if factors == 0 {
		return 0
	}
	return similarity / float64(factors)
}

// PreferenceVector projects a preference set onto the feature space shared
// with content vectors.
func PreferenceVector(prefs *content.PreferenceSet) []float64 {
	if prefs == nil {
		prefs = &content.PreferenceSet{InteractionStyle: "all"}
	}

	style := 0.5
	if prefs.InteractionStyle == "interactive" {
		style = 1
	}

	return []float64{
		float64(len(prefs.ContentTypes)) / 10,
		float64(len(prefs.Genres)) / 10,
		style,
	}
}

// ContentVector projects a content item onto the shared feature space.
// Missing attributes sit at the neutral midpoint.
func ContentVector(item *content.Item) []float64 {
	rating := 0.5
	if item.Rating > 0 {
		rating = item.Rating / 5
	}

	popularity := 0.5
	if item.Popularity > 0 {
		popularity = math.Min(1, float64(item.Popularity)/config.PopularityCeiling)
	}

	tags := 0.5
	if item.Tags != nil {
		tags = float64(len(item.Tags)) / 20
	}

	return []float64{rating, popularity, tags}
}

// SimilarUsers finds the top-limit users whose content type preferences
// exceed the similarity threshold, highest first with a stable user-id
// tie-break. A user with no stored preferences has no neighbors.
func (s *SimilarityService) SimilarUsers(userID string, limit int) ([]content.SimilarUser, error) {
	marker := s.perfTracker.StartOperation("recommend:similar_users")
	defer s.perfTracker.CompleteOperation(marker)

	userPrefs, err := s.preferences.FindByUser(userID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	if userPrefs == nil {
		return nil, nil
	}

	allPrefs, err := s.preferences.ListAll()
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	var similar []content.SimilarUser
	for i := range allPrefs {
		other := &allPrefs[i]
		if other.UserID == userID {
			continue
		}

		similarity := JaccardSimilarity(userPrefs.ContentTypes, other.ContentTypes)
		if similarity > config.SimilarityThreshold {
			similar = append(similar, content.SimilarUser{
				UserID: other.UserID,
				Score:  similarity,
			})
		}
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].Score != similar[j].Score {
			return similar[i].Score > similar[j].Score
		}
		return similar[i].UserID < similar[j].UserID
	})

	if len(similar) > limit {
		similar = similar[:limit]
	}

	marker.AddMetadata("candidates", len(allPrefs))
	marker.AddMetadata("matched", len(similar))
	s.logger.Recommend().Debug("Similar users computed",
		"userId", logging.SanitizeUserID(userID),
		"matched", len(similar))
	return similar, nil
}
