// Package telemetry provides the concrete SQL-based implementations of
// the event and feedback repositories.
package telemetry

import (
	"encoding/json"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// SQLEventRepository is the SQL-based implementation of the event store.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		logger: logger,
	}
}

// Store saves a captured event to the database.
func (r *SQLEventRepository) Store(event *events.Event) error {
	const query = `
		INSERT INTO events (id, name, session_id, user_id, payload, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	context, err := json.Marshal(event.Context)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(query, event.ID, event.Name, event.SessionID, event.UserID,
		string(payload), string(context), event.Timestamp)
	if err != nil {
		r.logger.Database().Error("Failed to store event", "error", err.Error(), "eventId", event.ID)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Event stored", "eventId", event.ID, "name", event.Name, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// FindByUser retrieves all events for a user within the given time range,
// oldest first.
func (r *SQLEventRepository) FindByUser(userID string, since, until time.Time) ([]events.Event, error) {
	const query = `
		SELECT id, name, session_id, user_id, payload, context, created_at
		FROM events
		WHERE user_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at ASC`

	start := time.Now()
	r.logger.Database().Debug("Loading user events", "userId", logging.SanitizeUserID(userID))

	rows, err := r.db.Query(query, userID, since, until)
	if err != nil {
		r.logger.Database().Error("Failed to load user events", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		var (
			event       events.Event
			payloadJSON string
			contextJSON string
		)
		if err := rows.Scan(&event.ID, &event.Name, &event.SessionID, &event.UserID,
			&payloadJSON, &contextJSON, &event.Timestamp); err != nil {
			return nil, err
		}
		if payloadJSON != "" {
			if err := json.Unmarshal([]byte(payloadJSON), &event.Payload); err != nil {
				r.logger.Database().Warn("Skipping malformed event payload", "eventId", event.ID)
			}
		}
		if contextJSON != "" {
			if err := json.Unmarshal([]byte(contextJSON), &event.Context); err != nil {
				r.logger.Database().Warn("Skipping malformed event context", "eventId", event.ID)
			}
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Debug("User events loaded", "count", len(result), "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return result, nil
}

// ListActiveUsers returns the distinct user ids with events in the range.
func (r *SQLEventRepository) ListActiveUsers(since, until time.Time) ([]string, error) {
	const query = `
		SELECT DISTINCT user_id
		FROM events
		WHERE user_id != '' AND created_at >= ? AND created_at <= ?
		ORDER BY user_id ASC`

	rows, err := r.db.Query(query, since, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
