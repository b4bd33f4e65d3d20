package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pulsekit/pulse-go/internal/domain/entities/engagement"
	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/pulsekit/pulse-go/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentMail records one fake email delivery.
type sentMail struct {
	To    string
	Score int
	Trend string
}

// fakeMailer captures sent emails on a channel; the send path runs in a
// goroutine, so tests receive with a deadline.
type fakeMailer struct {
	sent chan sentMail
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 1)}
}

func (m *fakeMailer) SendReengagementEmail(toEmail, name string, score int, trend string) error {
	m.sent <- sentMail{To: toEmail, Score: score, Trend: trend}
	return nil
}

// reengagementFixture wires the analytics stack against a scratch sqlite
// database so the sweep exercises the real event repository.
type reengagementFixture struct {
	reengagement *ReengagementService
	eventRepo    *telemetry.SQLEventRepository
	cache        *manager.Manager
	mailer       *fakeMailer
}

func newReengagementFixture(t *testing.T) *reengagementFixture {
	t.Helper()
	logger := newTestLogger(t)
	perfTracker := performance.NewTracker(nil)

	db, err := database.NewConnection("sqlite3", filepath.Join(t.TempDir(), "pulse_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(db, logger))

	eventRepo := telemetry.NewSQLEventRepository(db, logger)
	cache := manager.NewManager(logger)
	profiles := NewProfileService(eventRepo, logger, perfTracker)
	engagementSvc := NewEngagementService(profiles, cache, nil, logger, perfTracker)
	trends := NewTrendService(cache, logger, perfTracker)
	mailer := newFakeMailer()

	return &reengagementFixture{
		reengagement: NewReengagementService(engagementSvc, trends, eventRepo, mailer, logger),
		eventRepo:    eventRepo,
		cache:        cache,
		mailer:       mailer,
	}
}

// seedEvents stores n recent events for a user in a single session.
func (f *reengagementFixture) seedEvents(t *testing.T, userID string, n int) {
	t.Helper()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < n; i++ {
		require.NoError(t, f.eventRepo.Store(&events.Event{
			ID:        fmt.Sprintf("evt_%s_%d", userID, i),
			Name:      "navigation.page.view",
			SessionID: "session-" + userID,
			UserID:    userID,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

// seedDecliningHistory fills the user's score history with an older window
// averaging 50 and a recent window averaging 40, then drops the cached
// score and segment so classification recomputes from stored events.
func (f *reengagementFixture) seedDecliningHistory(userID string) {
	for i := 0; i < 10; i++ {
		f.cache.SetScore(userID, &engagement.Score{UserID: userID, Total: 50})
	}
	for i := 0; i < 10; i++ {
		f.cache.SetScore(userID, &engagement.Score{UserID: userID, Total: 40})
	}
	f.cache.InvalidateUser(userID)
}

func TestFindCandidates_DormantDecliningUsersOnly(t *testing.T) {
	f := newReengagementFixture(t)

	// One sparse user (dormant) and one busier user (casual), both with a
	// declining score history.
	f.seedEvents(t, "dormant-user", 1)
	f.seedEvents(t, "busy-user", 12)
	f.seedDecliningHistory("dormant-user")
	f.seedDecliningHistory("busy-user")

	// Anonymous events never produce a candidate.
	require.NoError(t, f.eventRepo.Store(&events.Event{
		ID:        "evt_anon",
		Name:      "content.view",
		SessionID: "session-anon",
		Timestamp: time.Now().UTC(),
	}))

	candidates, err := f.reengagement.FindCandidates()
	require.NoError(t, err)
	assert.Equal(t, []string{"dormant-user"}, candidates)
}

func TestFindCandidates_SkipsStableDormantUsers(t *testing.T) {
	f := newReengagementFixture(t)

	// Dormant but with a flat history: no decline, no candidate.
	f.seedEvents(t, "dormant-user", 1)
	for i := 0; i < 20; i++ {
		f.cache.SetScore("dormant-user", &engagement.Score{UserID: "dormant-user", Total: 10})
	}
	f.cache.InvalidateUser("dormant-user")

	candidates, err := f.reengagement.FindCandidates()
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCheckAndNotify_SendsForDormantDecliningUser(t *testing.T) {
	f := newReengagementFixture(t)
	f.seedEvents(t, "dormant-user", 1)
	f.seedDecliningHistory("dormant-user")

	config.ReengagementEnabled = true
	t.Cleanup(func() { config.ReengagementEnabled = false })

	require.True(t, f.reengagement.CheckAndNotify("dormant-user", "user@example.com", "Sam"))

	select {
	case mail := <-f.mailer.sent:
		assert.Equal(t, "user@example.com", mail.To)
		assert.Equal(t, engagement.TrendDeclining, mail.Trend)
		assert.Less(t, mail.Score, config.ThresholdCasual)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a re-engagement email")
	}
}

func TestCheckAndNotify_DisabledByConfig(t *testing.T) {
	f := newReengagementFixture(t)
	f.seedEvents(t, "dormant-user", 1)
	f.seedDecliningHistory("dormant-user")

	assert.False(t, f.reengagement.CheckAndNotify("dormant-user", "user@example.com", "Sam"))
}
