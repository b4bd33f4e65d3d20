package stores

import (
	"testing"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeScore(userID string, total int) *engagement.Score {
	return &engagement.Score{
		UserID:     userID,
		Total:      total,
		ComputedAt: time.Now().UTC(),
	}
}

func TestScoresStore_GetScoreRespectsTTL(t *testing.T) {
	store := NewScoresStore(100, nil)
	store.SetScore("user-1", makeScore("user-1", 60))

	cached, found := store.GetScore("user-1", time.Minute)
	require.True(t, found)
	assert.Equal(t, 60, cached.Total)

	// Age the entry past the TTL.
	store.mu.Lock()
	store.scores["user-1"].StoredAt = time.Now().Add(-2 * time.Minute)
	store.mu.Unlock()

	_, found = store.GetScore("user-1", time.Minute)
	assert.False(t, found)
}

func TestScoresStore_SetScoreAppendsHistoryAndCaps(t *testing.T) {
	store := NewScoresStore(3, nil)
	for i := 1; i <= 5; i++ {
		store.SetScore("user-1", makeScore("user-1", i*10))
	}

	history := store.GetHistory("user-1")
	require.Len(t, history, 3)

	// Oldest points fall off first.
	assert.Equal(t, 30, history[0].Score)
	assert.Equal(t, 40, history[1].Score)
	assert.Equal(t, 50, history[2].Score)
}

func TestScoresStore_InvalidateKeepsHistory(t *testing.T) {
	store := NewScoresStore(100, nil)
	store.SetScore("user-1", makeScore("user-1", 60))
	store.SetSegment("user-1", &engagement.Segment{UserID: "user-1", Segment: engagement.SegmentActive})

	store.Invalidate("user-1")

	_, found := store.GetScore("user-1", time.Minute)
	assert.False(t, found)
	_, found = store.GetSegment("user-1", time.Minute)
	assert.False(t, found)

	assert.Len(t, store.GetHistory("user-1"), 1)
}

func TestScoresStore_GetHistoryReturnsCopy(t *testing.T) {
	store := NewScoresStore(100, nil)
	store.SetScore("user-1", makeScore("user-1", 60))

	history := store.GetHistory("user-1")
	history[0].Score = -1

	assert.Equal(t, 60, store.GetHistory("user-1")[0].Score)
}

func TestScoresStore_PurgeExpired(t *testing.T) {
	store := NewScoresStore(100, nil)
	store.SetScore("user-1", makeScore("user-1", 60))
	store.SetScore("user-2", makeScore("user-2", 40))
	store.SetSegment("user-1", &engagement.Segment{UserID: "user-1", Segment: engagement.SegmentActive})

	store.mu.Lock()
	store.scores["user-1"].StoredAt = time.Now().Add(-time.Hour)
	store.segments["user-1"].StoredAt = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	removed := store.PurgeExpired(time.Minute, time.Minute)
	assert.Equal(t, 2, removed)

	_, found := store.GetScore("user-1", time.Hour)
	assert.False(t, found)
	_, found = store.GetScore("user-2", time.Hour)
	assert.True(t, found)
}

func TestRecommendationsStore_KeyFormat(t *testing.T) {
	store := NewRecommendationsStore(nil)
	assert.Equal(t, "user-1:discovery:10", store.Key("user-1", "discovery", 10))
}

func TestRecommendationsStore_GetRespectsTTL(t *testing.T) {
	store := NewRecommendationsStore(nil)
	key := store.Key("user-1", "home", 5)
	store.Set(key, []content.Recommendation{{ID: "item-1", Score: 80}})

	cached, found := store.Get(key, time.Minute)
	require.True(t, found)
	require.Len(t, cached, 1)
	assert.Equal(t, "item-1", cached[0].ID)

	store.mu.Lock()
	store.entries[key].StoredAt = time.Now().Add(-2 * time.Minute)
	store.mu.Unlock()

	_, found = store.Get(key, time.Minute)
	assert.False(t, found)
}

func TestRecommendationsStore_InvalidateUserIsScoped(t *testing.T) {
	store := NewRecommendationsStore(nil)
	store.Set(store.Key("user-1", "home", 5), []content.Recommendation{{ID: "a"}})
	store.Set(store.Key("user-1", "discovery", 10), []content.Recommendation{{ID: "b"}})
	store.Set(store.Key("user-10", "home", 5), []content.Recommendation{{ID: "c"}})

	store.InvalidateUser("user-1")

	_, found := store.Get(store.Key("user-1", "home", 5), time.Minute)
	assert.False(t, found)
	_, found = store.Get(store.Key("user-1", "discovery", 10), time.Minute)
	assert.False(t, found)

	// "user-10" shares a prefix but is a different user.
	_, found = store.Get(store.Key("user-10", "home", 5), time.Minute)
	assert.True(t, found)
}

func TestRecommendationsStore_PurgeExpired(t *testing.T) {
	store := NewRecommendationsStore(nil)
	store.Set("stale", []content.Recommendation{{ID: "a"}})
	store.Set("fresh", []content.Recommendation{{ID: "b"}})

	store.mu.Lock()
	store.entries["stale"].StoredAt = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	assert.Equal(t, 1, store.PurgeExpired(time.Minute))
	_, found := store.Get("fresh", time.Minute)
	assert.True(t, found)
}

func TestSessionsStore_SetGetDelete(t *testing.T) {
	store := NewSessionsStore(nil)
	store.Set(&types.SessionData{SessionID: "session-1", UserID: "user-1"})

	session, found := store.Get("session-1")
	require.True(t, found)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, 1, store.Count())

	store.Delete("session-1")
	_, found = store.Get("session-1")
	assert.False(t, found)
	assert.Equal(t, 0, store.Count())
}

func TestSessionsStore_PurgeExpiredUsesLastActivity(t *testing.T) {
	store := NewSessionsStore(nil)
	now := time.Now().UTC()
	store.Set(&types.SessionData{SessionID: "idle", LastActivityTime: now.Add(-2 * time.Hour)})
	store.Set(&types.SessionData{SessionID: "live", LastActivityTime: now})

	removed := store.PurgeExpired(time.Hour)
	assert.Equal(t, 1, removed)

	_, found := store.Get("idle")
	assert.False(t, found)
	_, found = store.Get("live")
	assert.True(t, found)
}
