package services

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/personalization"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recommendationFixture wires the recommendation stack against a scratch
// sqlite database.
type recommendationFixture struct {
	recommendations *RecommendationService
	similarity      *SimilarityService
	feedback        *FeedbackService
	personalization *PersonalizationService
	cache           *manager.Manager
}

func newRecommendationFixture(t *testing.T) *recommendationFixture {
	t.Helper()
	logger := newTestLogger(t)
	perfTracker := performance.NewTracker(nil)

	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "pulse_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db, logger))

	preferenceRepo := personalization.NewSQLPreferenceRepository(db, logger)
	contentRepo := personalization.NewSQLContentRepository(db, logger)
	feedbackRepo := telemetry.NewSQLFeedbackRepository(db, logger)
	cache := manager.NewManager(logger)

	similarity := NewSimilarityService(preferenceRepo, logger, perfTracker)

	return &recommendationFixture{
		recommendations: NewRecommendationService(similarity, preferenceRepo, contentRepo, feedbackRepo, cache, logger, perfTracker),
		similarity:      similarity,
		feedback:        NewFeedbackService(feedbackRepo, cache, logger, perfTracker),
		personalization: NewPersonalizationService(preferenceRepo, contentRepo, cache, logger),
		cache:           cache,
	}
}

func (f *recommendationFixture) seedUsers(t *testing.T) {
	t.Helper()
	for userID, types := range map[string][]string{
		"alice": {"photo", "video"},
		"bob":   {"photo", "video"},
		"carol": {"music"},
	} {
		_, err := f.personalization.UpdatePreferences(userID, &content.PreferenceSet{ContentTypes: types})
		require.NoError(t, err)
	}
}

func (f *recommendationFixture) seedCatalog(t *testing.T) {
	t.Helper()
	items := []content.Item{
		{ID: "item-1", Title: "Macro gallery", Category: "photo", Tags: []string{"nature", "macro", "spring", "flowers"}, Rating: 4.5, Popularity: 900},
		{ID: "item-2", Title: "Obscure track", Category: "music", Rating: 1, Popularity: 0},
	}
	for i := range items {
		require.NoError(t, f.personalization.UpsertContent(&items[i]))
	}
}

func TestSimilarUsers_ThresholdAndOrdering(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)

	similar, err := f.similarity.SimilarUsers("alice", 5)
	require.NoError(t, err)

	// bob shares every content type; carol shares none and sits below the
	// 0.5 threshold.
	require.Len(t, similar, 1)
	assert.Equal(t, "bob", similar[0].UserID)
	assert.InDelta(t, 1.0, similar[0].Score, 1e-9)
}

func TestSimilarUsers_NoStoredPreferences(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)

	similar, err := f.similarity.SimilarUsers("stranger", 5)
	require.NoError(t, err)
	assert.Nil(t, similar)
}

func TestGetRecommendations_HybridRanking(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)
	f.seedCatalog(t)

	// bob clicked item-1, feeding the collaborative signal for alice.
	_, err := f.feedback.TrainModel("bob", FeedbackInput{ContentID: "item-1", Action: "clicked"})
	require.NoError(t, err)

	recs, err := f.recommendations.GetRecommendations("alice", RecommendationOptions{})
	require.NoError(t, err)

	// item-2 scores below the minimum and is filtered out.
	require.Len(t, recs, 1)
	assert.Equal(t, "item-1", recs[0].ID)
	assert.Equal(t, "Macro gallery", recs[0].Title)
	assert.Equal(t, "Based on your preferences and similar users", recs[0].Reason)
	assert.GreaterOrEqual(t, recs[0].Score, 50)
	assert.LessOrEqual(t, recs[0].Score, 100)
}

func TestGetRecommendations_CachedWithinTTL(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)
	f.seedCatalog(t)

	first, err := f.recommendations.GetRecommendations("alice", RecommendationOptions{Context: "home", Limit: 5})
	require.NoError(t, err)

	// A catalog change does not disturb an identical request inside the TTL.
	require.NoError(t, f.personalization.UpsertContent(&content.Item{
		ID: "item-3", Title: "New arrival", Category: "photo", Rating: 5, Popularity: 1000,
	}))

	second, err := f.recommendations.GetRecommendations("alice", RecommendationOptions{Context: "home", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Feedback invalidates the cached list, so the new item surfaces.
	_, err = f.feedback.TrainModel("alice", FeedbackInput{ContentID: "item-1"})
	require.NoError(t, err)

	third, err := f.recommendations.GetRecommendations("alice", RecommendationOptions{Context: "home", Limit: 5})
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestGetRecommendations_ExcludeIDs(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)
	f.seedCatalog(t)

	recs, err := f.recommendations.GetRecommendations("alice", RecommendationOptions{
		ExcludeIDs: []string{"item-1"},
	})
	require.NoError(t, err)

	for _, rec := range recs {
		assert.NotEqual(t, "item-1", rec.ID)
	}
}

func TestScoreContent_UnknownItemUsesNeutralDefaults(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)

	score, err := f.recommendations.ScoreContent("alice", "ghost-item")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestExplain_ReportsNeighborsAndReasons(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)
	f.seedCatalog(t)

	explanation, err := f.recommendations.Explain("alice", "item-1")
	require.NoError(t, err)

	assert.Equal(t, "item-1", explanation.ContentID)
	assert.Len(t, explanation.Reasons, 3)
	assert.Equal(t, 1, explanation.SimilarUsers)
	assert.GreaterOrEqual(t, explanation.Confidence, 0)
}

func TestPersonalizedOrder_TieBreaksByInputOrder(t *testing.T) {
	f := newRecommendationFixture(t)
	f.seedUsers(t)

	// Identical items score identically, so the input order must hold.
	items := []content.Item{
		{ID: "a", Category: "photo", Rating: 3, Popularity: 100},
		{ID: "b", Category: "photo", Rating: 3, Popularity: 100},
		{ID: "c", Category: "photo", Rating: 5, Popularity: 1000},
	}

	ordered, err := f.recommendations.PersonalizedOrder("alice", items)
	require.NoError(t, err)
	require.Len(t, ordered, 3)

	assert.Equal(t, "c", ordered[0].ID)
	assert.Equal(t, "a", ordered[1].ID)
	assert.Equal(t, "b", ordered[2].ID)
}

func TestTrainModel_DefaultsActionToViewed(t *testing.T) {
	f := newRecommendationFixture(t)

	record, err := f.feedback.TrainModel("alice", FeedbackInput{ContentID: "item-1"})
	require.NoError(t, err)
	assert.Equal(t, "viewed", record.Action)
	assert.NotEmpty(t, record.ID)

	history, err := f.feedback.History("alice", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "item-1", history[0].ContentID)
}

func TestTrainModel_RequiresContentID(t *testing.T) {
	f := newRecommendationFixture(t)

	_, err := f.feedback.TrainModel("alice", FeedbackInput{})
	assert.Error(t, err)
}

func TestGetPreferences_DefaultsWhenAbsent(t *testing.T) {
	f := newRecommendationFixture(t)

	prefs, err := f.personalization.GetPreferences("nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", prefs.UserID)
	assert.Empty(t, prefs.ContentTypes)
	assert.Equal(t, "all", prefs.InteractionStyle)
}

func TestUpdatePreferences_MergesFields(t *testing.T) {
	f := newRecommendationFixture(t)

	_, err := f.personalization.UpdatePreferences("alice", &content.PreferenceSet{
		ContentTypes: []string{"photo"},
		Genres:       []string{"nature"},
	})
	require.NoError(t, err)

	// Updating the style alone must not clobber the stored sets.
	updated, err := f.personalization.UpdatePreferences("alice", &content.PreferenceSet{
		InteractionStyle: "interactive",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"photo"}, updated.ContentTypes)
	assert.Equal(t, []string{"nature"}, updated.Genres)
	assert.Equal(t, "interactive", updated.InteractionStyle)
}

func TestUpdatePopularity_RejectsNegative(t *testing.T) {
	f := newRecommendationFixture(t)
	assert.Error(t, f.personalization.UpdatePopularity("item-1", -1))
}
