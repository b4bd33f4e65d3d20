package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	sessions, _ := newTestSessions(t, newTestDelivery(t, rec))

	session := sessions.Start("user-1")
	assert.Contains(t, session.SessionID, "session_")
	assert.Equal(t, "user-1", session.UserID)
	assert.False(t, session.StartTime.IsZero())

	got, found := sessions.Get(session.SessionID)
	require.True(t, found)
	assert.Equal(t, session.SessionID, got.SessionID)

	require.NoError(t, sessions.Touch(session.SessionID))
	require.NoError(t, sessions.Touch(session.SessionID))

	got, _ = sessions.Get(session.SessionID)
	assert.Equal(t, 2, got.EventCount)
	assert.False(t, got.LastActivityTime.Before(got.StartTime))
}

func TestSessionTouch_UnknownSession(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	sessions, _ := newTestSessions(t, newTestDelivery(t, rec))

	assert.Error(t, sessions.Touch("missing"))
}

func TestSessionEnd_IsTerminal(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	sessions, _ := newTestSessions(t, newTestDelivery(t, rec))

	session := sessions.Start("")
	require.NoError(t, sessions.End(context.Background(), session.SessionID))

	// Ended sessions reject further activity and a second end.
	assert.Error(t, sessions.Touch(session.SessionID))
	assert.Error(t, sessions.End(context.Background(), session.SessionID))

	got, found := sessions.Get(session.SessionID)
	require.True(t, found)
	assert.True(t, got.Ended)
	assert.False(t, got.EndTime.IsZero())
}

func TestSessionEnd_DrainsPendingEvents(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	deliverySvc := newTestDelivery(t, rec)
	sessions, _ := newTestSessions(t, deliverySvc)

	session := sessions.Start("user-1")
	deliverySvc.Enqueue(makeEvent("content.view"))
	deliverySvc.batchSize = 10

	require.NoError(t, sessions.End(context.Background(), session.SessionID))
	assert.Equal(t, 0, deliverySvc.QueueSize())
	assert.Len(t, rec.receivedNames(), 1)
}

func TestSessionMetrics_IncludesPipelineCounters(t *testing.T) {
	rec := newIngestionRecorder(t, 0)
	deliverySvc := newTestDelivery(t, rec)
	sessions, _ := newTestSessions(t, deliverySvc)

	session := sessions.Start("user-1")
	require.NoError(t, sessions.Touch(session.SessionID))
	deliverySvc.Enqueue(makeEvent("content.view"))

	metrics, err := sessions.Metrics(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, metrics.SessionID)
	assert.Equal(t, 1, metrics.EventCount)
	assert.Equal(t, 1, metrics.QueueSize)
	assert.False(t, metrics.Ended)

	_, err = sessions.Metrics("missing")
	assert.Error(t, err)
}
