package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/infrastructure/messaging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
)

// MetricsHandlers contains the pipeline metrics and live stream HTTP handlers
type MetricsHandlers struct {
	deliveryService *services.DeliveryService
	captureService  *services.CaptureService
	broadcaster     *messaging.MetricsBroadcaster
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
	upgrader        websocket.Upgrader
}

// NewMetricsHandlers creates metrics handlers with injected dependencies
func NewMetricsHandlers(
	deliveryService *services.DeliveryService,
	captureService *services.CaptureService,
	broadcaster *messaging.MetricsBroadcaster,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *MetricsHandlers {
	return &MetricsHandlers{
		deliveryService: deliveryService,
		captureService:  captureService,
		broadcaster:     broadcaster,
		logger:          logger,
		perfTracker:     perfTracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// GetMetrics handles GET /api/v1/metrics - pipeline counter snapshot
func (h *MetricsHandlers) GetMetrics(c *gin.Context) {
	metrics := h.deliveryService.Metrics()

	c.JSON(http.StatusOK, gin.H{
		"queueSize":         metrics.QueueSize,
		"delivered":         metrics.Delivered,
		"dropped":           metrics.Dropped,
		"errors":            metrics.Errors,
		"batchCount":        metrics.BatchCount,
		"avgProcessingTime": metrics.AvgProcessingTime.String(),
		"sampledOut":        h.captureService.SampledOutCount(),
		"streamClients":     h.broadcaster.ClientCount(),
	})
}

// GetPerformance handles GET /api/v1/metrics/performance - tracker snapshot
func (h *MetricsHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, h.perfTracker.TakeSnapshot())
}

// StreamMetrics handles GET /api/v1/metrics/stream - websocket live metrics
func (h *MetricsHandlers) StreamMetrics(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.System().Error("Websocket upgrade failed", "error", err.Error())
		return
	}

	h.broadcaster.AddClient(conn)

	// Reader loop detects client disconnects; inbound frames are ignored.
	go func() {
		defer h.broadcaster.RemoveClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Push the current counters immediately so new clients start with state.
	metrics := h.deliveryService.Metrics()
	h.broadcaster.BroadcastCounters(metrics.Delivered, metrics.Dropped, metrics.Errors, metrics.QueueSize)
}
