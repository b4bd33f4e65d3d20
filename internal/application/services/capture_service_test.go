package services

import (
	"context"
	"testing"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCapture(t *testing.T) (*CaptureService, *SessionService) {
	t.Helper()
	rec := newIngestionRecorder(t, 0)
	deliverySvc := newTestDelivery(t, rec)
	sessions, _ := newTestSessions(t, deliverySvc)
	capture := NewCaptureService(sessions, deliverySvc, nil, newTestLogger(t), performance.NewTracker(nil))
	return capture, sessions
}

func TestTrackEvent_RequiresName(t *testing.T) {
	capture, sessions := newTestCapture(t)
	session := sessions.Start("user-1")

	_, err := capture.TrackEvent("   ", nil, events.Context{}, session.SessionID)
	assert.Error(t, err)
}

func TestTrackEvent_RequiresActiveSession(t *testing.T) {
	capture, _ := newTestCapture(t)

	_, err := capture.TrackEvent("content.view", nil, events.Context{}, "missing-session")
	assert.Error(t, err)
}

func TestTrackEvent_RejectsEndedSession(t *testing.T) {
	capture, sessions := newTestCapture(t)
	session := sessions.Start("user-1")
	require.NoError(t, sessions.End(context.Background(), session.SessionID))

	_, err := capture.TrackEvent("content.view", nil, events.Context{}, session.SessionID)
	assert.Error(t, err)
}

func TestTrackEvent_NormalizesName(t *testing.T) {
	capture, sessions := newTestCapture(t)
	session := sessions.Start("user-1")

	// "  GALLERY.VIEW " is the configured gallery.view name; at 0.8 a draw
	// of 0.79 passes and 0.80 does not.
	capture.sample = func() float64 { return 0.79 }
	result, err := capture.TrackEvent("  GALLERY.VIEW ", nil, events.Context{}, session.SessionID)
	require.NoError(t, err)
	assert.True(t, result.Sampled)
	assert.True(t, result.Queued)
	assert.NotEmpty(t, result.EventID)

	capture.sample = func() float64 { return 0.80 }
	result, err = capture.TrackEvent("gallery.view", nil, events.Context{}, session.SessionID)
	require.NoError(t, err)
	assert.False(t, result.Sampled)
	assert.Empty(t, result.EventID)
}

func TestTrackEvent_UnconfiguredNamesAlwaysCapture(t *testing.T) {
	capture, sessions := newTestCapture(t)
	session := sessions.Start("user-1")

	capture.sample = func() float64 { return 0.9999 }
	result, err := capture.TrackEvent("custom.event", nil, events.Context{}, session.SessionID)
	require.NoError(t, err)
	assert.True(t, result.Sampled)
}

func TestTrackEvent_SamplingConverges(t *testing.T) {
	capture, sessions := newTestCapture(t)
	session := sessions.Start("user-1")

	// A uniform sweep over [0,1) makes the 0.8 rate exact: draws 0.000
	// through 0.799 pass, 0.800 through 0.999 do not.
	draw := 0
	capture.sample = func() float64 {
		value := float64(draw) / 1000
		draw++
		return value
	}

	captured := 0
	for i := 0; i < 1000; i++ {
		result, err := capture.TrackEvent("gallery.view", nil, events.Context{}, session.SessionID)
		require.NoError(t, err)
		if result.Sampled {
			captured++
		}
	}

	assert.Equal(t, 800, captured)
	assert.Equal(t, int64(200), capture.SampledOutCount())
}

func TestTrackEvent_StampsSessionUser(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	deliverySvc := newTestDelivery(t, rec)
	sessions, _ := newTestSessions(t, deliverySvc)
	capture := NewCaptureService(sessions, deliverySvc, nil, newTestLogger(t), performance.NewTracker(nil))
	capture.sample = func() float64 { return 0 }

	session := sessions.Start("user-42")
	_, err := capture.TrackEvent("content.view", map[string]any{"id": "img-1"}, events.Context{Source: "web"}, session.SessionID)
	require.NoError(t, err)

	require.True(t, deliverySvc.Flush(context.Background()))
	names := rec.receivedNames()
	require.Len(t, names, 1)
	assert.Equal(t, "content.view", names[0])

	// Session activity was recorded.
	got, found := sessions.Get(session.SessionID)
	require.True(t, found)
	assert.Equal(t, 1, got.EventCount)
}
