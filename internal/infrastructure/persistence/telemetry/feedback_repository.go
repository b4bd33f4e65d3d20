// Package telemetry provides the concrete SQL-based implementations of
// the event and feedback repositories.
package telemetry

import (
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// SQLFeedbackRepository is the SQL-based implementation of the training log.
type SQLFeedbackRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLFeedbackRepository creates a new instance of the repository.
func NewSQLFeedbackRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLFeedbackRepository {
	return &SQLFeedbackRepository{
		db:     db,
		logger: logger,
	}
}

// Append adds a feedback record to the training log. The log is append-only.
func (r *SQLFeedbackRepository) Append(record *events.FeedbackRecord) error {
	const query = `
		INSERT INTO feedback (id, user_id, content_id, action, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Appending feedback record", "feedbackId", record.ID, "action", record.Action)

	_, err := r.db.Exec(query, record.ID, record.UserID, record.ContentID,
		record.Action, record.Duration.Milliseconds(), record.Timestamp)
	if err != nil {
		r.logger.Database().Error("Failed to append feedback", "error", err.Error(), "feedbackId", record.ID)
		return err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// FindByUser retrieves a user's feedback history, newest first.
func (r *SQLFeedbackRepository) FindByUser(userID string, limit int) ([]events.FeedbackRecord, error) {
	const query = `
		SELECT id, user_id, content_id, action, duration_ms, created_at
		FROM feedback
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	start := time.Now()

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		r.logger.Database().Error("Failed to load feedback history", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []events.FeedbackRecord
	for rows.Next() {
		var (
			record     events.FeedbackRecord
			durationMS int64
		)
		if err := rows.Scan(&record.ID, &record.UserID, &record.ContentID,
			&record.Action, &durationMS, &record.Timestamp); err != nil {
			return nil, err
		}
		record.Duration = time.Duration(durationMS) * time.Millisecond
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return result, nil
}

// ContentIDsByUser returns the distinct content ids a user gave feedback on.
func (r *SQLFeedbackRepository) ContentIDsByUser(userID string) ([]string, error) {
	const query = `
		SELECT DISTINCT content_id
		FROM feedback
		WHERE user_id = ?
		ORDER BY content_id ASC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
