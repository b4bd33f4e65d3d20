// Package delivery provides the outbound HTTP client for shipping event
// batches to the external ingestion endpoint.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// Result reports the outcome of a single batch delivery attempt. A failed
// attempt is a normal outcome, not an error; errors are reserved for
// request construction problems.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// batchEnvelope is the wire format the ingestion endpoint expects.
type batchEnvelope struct {
	BatchID   string         `json:"batchId"`
	Events    []events.Event `json:"events"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"sessionId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
}

// Client posts event batches to the configured ingestion endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.ChanneledLogger
}

// NewClient creates a delivery client with a bounded request timeout.
func NewClient(endpoint string, timeout time.Duration, logger *logging.ChanneledLogger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Send posts one batch to the ingestion endpoint. Transport failures and
// non-2xx statuses come back as an unsuccessful Result so the caller can
// requeue; only marshalling and request construction return an error.
func (c *Client) Send(ctx context.Context, batch *events.Batch) (Result, error) {
	start := time.Now()

	envelope := batchEnvelope{
		BatchID:   batch.ID,
		Events:    batch.Events,
		Timestamp: time.Now().UTC(),
	}
	if len(batch.Events) > 0 {
		envelope.SessionID = batch.Events[0].SessionID
		envelope.UserID = batch.Events[0].UserID
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode batch %s: %w", batch.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Delivery().Warn("Batch delivery failed",
			"batchId", batch.ID,
			"events", len(batch.Events),
			"error", err.Error(),
			"duration", time.Since(start))
		return Result{Success: false, Message: err.Error()}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Delivery().Warn("Ingestion endpoint rejected batch",
			"batchId", batch.ID,
			"status", resp.StatusCode,
			"duration", time.Since(start))
		return Result{Success: false, Message: fmt.Sprintf("endpoint returned status %d", resp.StatusCode)}, nil
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// A 2xx with an unreadable body still counts as accepted.
		result = Result{Success: true}
	}

	if result.Success {
		c.logger.Delivery().Debug("Batch delivered",
			"batchId", batch.ID,
			"events", len(batch.Events),
			"duration", time.Since(start))
	} else {
		c.logger.Delivery().Warn("Ingestion endpoint reported failure",
			"batchId", batch.ID,
			"message", result.Message,
			"duration", time.Since(start))
	}

	return result, nil
}
