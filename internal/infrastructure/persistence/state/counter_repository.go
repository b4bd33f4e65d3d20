// Package state provides local ephemeral state persistence for pipeline
// counters. Snapshots are advisory; correctness never depends on them.
package state

import (
	"database/sql"
	"time"

	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
)

// Counter names persisted across restarts.
const (
	CounterDelivered = "events_delivered"
	CounterDropped   = "events_dropped"
	CounterErrors    = "delivery_errors"
)

// SQLCounterRepository is the SQL-based implementation of the counter store.
type SQLCounterRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLCounterRepository creates a new instance of the repository.
func NewSQLCounterRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLCounterRepository {
	return &SQLCounterRepository{
		db:     db,
		logger: logger,
	}
}

// Save stores a counter snapshot.
func (r *SQLCounterRepository) Save(name string, value int64) error {
	const query = `
		INSERT INTO counters (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`

	_, err := r.db.Exec(query, name, value, time.Now().UTC())
	if err != nil {
		r.logger.Database().Error("Failed to save counter", "error", err.Error(), "counter", name)
		return err
	}
	return nil
}

// Load retrieves a counter snapshot. Missing counters restore to zero.
func (r *SQLCounterRepository) Load(name string) (int64, error) {
	const query = `SELECT value FROM counters WHERE name = ?`

	var value int64
	err := r.db.QueryRow(query, name).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		r.logger.Database().Error("Failed to load counter", "error", err.Error(), "counter", name)
		return 0, err
	}
	return value, nil
}

// LoadAll restores every persisted counter snapshot.
func (r *SQLCounterRepository) LoadAll() (map[string]int64, error) {
	const query = `SELECT name, value FROM counters`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[string]int64)
	for rows.Next() {
		var (
			name  string
			value int64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		counters[name] = value
	}
	return counters, rows.Err()
}
