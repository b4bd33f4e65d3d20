package services

import (
	"testing"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/stretchr/testify/assert"
)

func TestBuildProfileFromEvents_Empty(t *testing.T) {
	profile := BuildProfileFromEvents("user-1", nil)

	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, 0, profile.EventCount)
	assert.Equal(t, 0, profile.SessionCount)
	assert.Equal(t, 0.0, profile.AvgEventsPerSession)
	assert.Empty(t, profile.InteractionTypeCounts)
	assert.True(t, profile.LastActiveTime.IsZero())
}

func TestBuildProfileFromEvents_Aggregates(t *testing.T) {
	base := time.Now().UTC().Add(-time.Hour)
	userEvents := []events.Event{
		{Name: "content.image.view", SessionID: "s1", Timestamp: base},
		{Name: "content.gallery.view", SessionID: "s1", Timestamp: base.Add(time.Minute)},
		{Name: "social.share", SessionID: "s2", Timestamp: base.Add(2 * time.Minute)},
		{Name: "navigation.page.view", SessionID: "s2", Timestamp: base.Add(3 * time.Minute)},
		{Name: "content.image.view", SessionID: "s2", Timestamp: base.Add(4 * time.Minute)},
		{Name: "heartbeat", SessionID: "s2", Timestamp: base.Add(5 * time.Minute)},
	}

	profile := BuildProfileFromEvents("user-1", userEvents)

	assert.Equal(t, 6, profile.EventCount)
	assert.Equal(t, 2, profile.SessionCount)
	assert.Equal(t, 3.0, profile.AvgEventsPerSession)
	assert.Equal(t, 3, profile.InteractionTypeCounts["content"])
	assert.Equal(t, 1, profile.InteractionTypeCounts["social"])
	assert.Equal(t, 1, profile.InteractionTypeCounts["navigation"])
	// An undotted event name is its own category.
	assert.Equal(t, 1, profile.InteractionTypeCounts["heartbeat"])
	assert.Equal(t, base.Add(5*time.Minute), profile.LastActiveTime)
}

func TestBuildProfileFromEvents_MissingSessionID(t *testing.T) {
	userEvents := []events.Event{
		{Name: "content.view", SessionID: "", Timestamp: time.Now()},
		{Name: "content.view", SessionID: "", Timestamp: time.Now()},
	}

	profile := BuildProfileFromEvents("user-1", userEvents)

	// Events with no session collapse into one synthetic bucket.
	assert.Equal(t, 1, profile.SessionCount)
	assert.Equal(t, 2.0, profile.AvgEventsPerSession)
}

func TestEventCategory(t *testing.T) {
	assert.Equal(t, "content", events.Event{Name: "content.image.view"}.Category())
	assert.Equal(t, "ping", events.Event{Name: "ping"}.Category())
}
