// Package performance provides performance monitoring data structures and
// utilities for tracking operation timing across the pulse pipeline.
package performance

import (
	"runtime"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation   string         `json:"operation"`       // e.g., "capture:track_event", "delivery:flush"
	StartTime   time.Time      `json:"startTime"`       // When the operation started
	EndTime     time.Time      `json:"endTime"`         // When the operation completed
	Duration    time.Duration  `json:"duration"`        // Total operation duration
	Success     bool           `json:"success"`         // Whether the operation completed successfully
	Error       string         `json:"error,omitempty"` // Error message if operation failed
	Metadata    map[string]any `json:"metadata"`        // Additional operation-specific data
	MemoryUsage int64          `json:"memoryUsage"`     // Memory allocated during operation (bytes)
	CacheHits   int            `json:"cacheHits"`       // Number of cache hits during operation
	CacheMisses int            `json:"cacheMisses"`     // Number of cache misses during operation
	Completed   bool           `json:"completed"`       // Whether Complete() has been called
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	if m.Completed {
		return // Prevent double completion
	}

	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.MemoryUsage = int64(memStats.Alloc)
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// AddCacheHit increments the cache hit counter
func (m *Marker) AddCacheHit() {
	m.CacheHits++
}

// AddCacheMiss increments the cache miss counter
func (m *Marker) AddCacheMiss() {
	m.CacheMisses++
}

// GetCacheHitRatio returns the cache hit ratio (0.0 to 1.0)
func (m *Marker) GetCacheHitRatio() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(total)
}

// CapturePerformanceTracker contains markers for the capture pipeline
type CapturePerformanceTracker struct {
	EventNormalization *Marker `json:"eventNormalization,omitempty"`
	SamplingDecision   *Marker `json:"samplingDecision,omitempty"`
	QueueEnqueue       *Marker `json:"queueEnqueue,omitempty"`
	SessionManagement  *Marker `json:"sessionManagement,omitempty"`
}

// DeliveryPerformanceTracker contains markers for batch delivery operations
type DeliveryPerformanceTracker struct {
	BatchFlush     *Marker `json:"batchFlush,omitempty"`
	EndpointPost   *Marker `json:"endpointPost,omitempty"`
	QueueRequeue   *Marker `json:"queueRequeue,omitempty"`
	SessionDrain   *Marker `json:"sessionDrain,omitempty"`
	CounterPersist *Marker `json:"counterPersist,omitempty"`
}

// AnalyticsPerformanceTracker contains markers for scoring and trend operations
type AnalyticsPerformanceTracker struct {
	ProfileBuild     *Marker `json:"profileBuild,omitempty"`
	ScoreComputation *Marker `json:"scoreComputation,omitempty"`
	Segmentation     *Marker `json:"segmentation,omitempty"`
	TrendAnalysis    *Marker `json:"trendAnalysis,omitempty"`
}

// RecommendPerformanceTracker contains markers for recommendation operations
type RecommendPerformanceTracker struct {
	SimilarityQuery *Marker `json:"similarityQuery,omitempty"`
	HybridRanking   *Marker `json:"hybridRanking,omitempty"`
	FeedbackWrite   *Marker `json:"feedbackWrite,omitempty"`
}

// SystemPerformanceTracker contains markers for system-wide operations
type SystemPerformanceTracker struct {
	ApplicationStartup   *Marker `json:"applicationStartup,omitempty"`
	DIContainerBuild     *Marker `json:"diContainerBuild,omitempty"`
	ServerInitialization *Marker `json:"serverInitialization,omitempty"`
	GracefulShutdown     *Marker `json:"gracefulShutdown,omitempty"`
}

// PerformanceSnapshot represents a point-in-time view of system performance
type PerformanceSnapshot struct {
	Timestamp           time.Time                    `json:"timestamp"`
	Capture             *CapturePerformanceTracker   `json:"capture,omitempty"`
	Delivery            *DeliveryPerformanceTracker  `json:"delivery,omitempty"`
	Analytics           *AnalyticsPerformanceTracker `json:"analytics,omitempty"`
	Recommend           *RecommendPerformanceTracker `json:"recommend,omitempty"`
	System              *SystemPerformanceTracker    `json:"system,omitempty"`
	OverallHealth       HealthStatus                 `json:"overallHealth"`
	ActiveOperations    int                          `json:"activeOperations"`
	CompletedOperations int                          `json:"completedOperations"`
}

// HealthStatus represents the overall health of a system component
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"   // All operations performing within normal parameters
	HealthDegraded  HealthStatus = "degraded"  // Some operations showing performance issues
	HealthUnhealthy HealthStatus = "unhealthy" // Significant performance problems detected
	HealthUnknown   HealthStatus = "unknown"   // Unable to determine health status
)

// PerformanceAlert represents a performance threshold violation
type PerformanceAlert struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Severity     AlertSeverity  `json:"severity"`
	Operation    string         `json:"operation"`
	Threshold    time.Duration  `json:"threshold"`
	Actual       time.Duration  `json:"actual"`
	Message      string         `json:"message"`
	Metadata     map[string]any `json:"metadata"`
	Acknowledged bool           `json:"acknowledged"`
}

// AlertSeverity represents the severity level of a performance alert
type AlertSeverity string

const (
	AlertInfo     AlertSeverity = "info"     // Informational alert
	AlertWarning  AlertSeverity = "warning"  // Performance degradation detected
	AlertCritical AlertSeverity = "critical" // Serious performance issue
	AlertFatal    AlertSeverity = "fatal"    // System-threatening performance problem
)
