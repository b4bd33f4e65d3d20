package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
)

// SessionHandlers contains session lifecycle HTTP handlers
type SessionHandlers struct {
	sessionService *services.SessionService
	captureService *services.CaptureService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewSessionHandlers creates session handlers with injected dependencies
func NewSessionHandlers(sessionService *services.SessionService, captureService *services.CaptureService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionHandlers {
	return &SessionHandlers{
		sessionService: sessionService,
		captureService: captureService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostSession handles POST /api/v1/sessions - starts a new tracked session
func (h *SessionHandlers) PostSession(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_session_request")
	defer marker.Complete()

	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	session := h.sessionService.Start(req.UserID)

	// The session open marker rides the same pipeline as every other event.
	h.trackLifecycleEvent("system.session.start", session.SessionID, c)

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": session.SessionID,
		"userId":    session.UserID,
		"startTime": session.StartTime,
	})
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandlers) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	session, found := h.sessionService.Get(sessionID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	session.Mu.RLock()
	defer session.Mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"sessionId":        session.SessionID,
		"userId":           session.UserID,
		"startTime":        session.StartTime,
		"lastActivityTime": session.LastActivityTime,
		"eventCount":       session.EventCount,
		"ended":            session.Ended,
	})
}

// PostSessionEnd handles POST /api/v1/sessions/:id/end
func (h *SessionHandlers) PostSessionEnd(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_session_end_request")
	defer marker.Complete()

	sessionID := c.Param("id")

	// Emit the close marker before the session stops accepting events.
	h.trackLifecycleEvent("system.session.end", sessionID, c)

	if err := h.sessionService.End(c.Request.Context(), sessionID); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	h.logger.Session().Debug("Session end request complete",
		"sessionId", sessionID, "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "ended": true})
}

// GetSessionMetrics handles GET /api/v1/sessions/:id/metrics
func (h *SessionHandlers) GetSessionMetrics(c *gin.Context) {
	metrics, err := h.sessionService.Metrics(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// trackLifecycleEvent pushes a session lifecycle marker through the capture
// pipeline. Failures are logged, never surfaced to the caller.
func (h *SessionHandlers) trackLifecycleEvent(name, sessionID string, c *gin.Context) {
	eventCtx := events.Context{
		Source:    "system",
		Referrer:  c.GetHeader("Referer"),
		UserAgent: c.GetHeader("User-Agent"),
	}
	if _, err := h.captureService.TrackEvent(name, nil, eventCtx, sessionID); err != nil {
		h.logger.Session().Warn("Failed to track lifecycle event",
			"name", name, "sessionId", sessionID, "error", err.Error())
	}
}
