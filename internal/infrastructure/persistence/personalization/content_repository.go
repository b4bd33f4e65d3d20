// Package personalization provides the concrete SQL-based implementations of
// the preference and content catalog repositories.
package personalization

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// SQLContentRepository is the SQL-based implementation of the content catalog.
type SQLContentRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLContentRepository creates a new instance of the repository.
func NewSQLContentRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLContentRepository {
	return &SQLContentRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a content item by id. Returns nil when none exists.
func (r *SQLContentRepository) FindByID(id string) (*content.Item, error) {
	const query = `
		SELECT id, title, category, tags, rating, popularity, updated_at
		FROM content_items
		WHERE id = ?`

	start := time.Now()

	row := r.db.QueryRow(query, id)
	item, err := scanItem(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load content item", "error", err.Error(), "contentId", id)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return item, nil
}

// ListAll returns the full catalog in insertion order.
func (r *SQLContentRepository) ListAll() ([]content.Item, error) {
	const query = `
		SELECT id, title, category, tags, rating, popularity, updated_at
		FROM content_items
		ORDER BY rowid ASC`

	start := time.Now()

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return result, nil
}

// Upsert stores or replaces a content item's metadata.
func (r *SQLContentRepository) Upsert(item *content.Item) error {
	const query = `
		INSERT INTO content_items (id, title, category, tags, rating, popularity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			tags = excluded.tags,
			rating = excluded.rating,
			popularity = excluded.popularity,
			updated_at = excluded.updated_at`

	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(query, item.ID, item.Title, item.Category, string(tags),
		item.Rating, item.Popularity, item.UpdatedAt)
	if err != nil {
		r.logger.Database().Error("Failed to upsert content item", "error", err.Error(), "contentId", item.ID)
		return err
	}

	r.logger.Database().Debug("Content item stored", "contentId", item.ID)
	return nil
}

// UpdatePopularity sets the popularity counter for a content item.
func (r *SQLContentRepository) UpdatePopularity(id string, popularity int) error {
	const query = `
		UPDATE content_items
		SET popularity = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.Exec(query, popularity, time.Now().UTC(), id)
	if err != nil {
		r.logger.Database().Error("Failed to update popularity", "error", err.Error(), "contentId", id)
		return err
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanItem(scan func(...any) error) (*content.Item, error) {
	var (
		item     content.Item
		tagsJSON string
	)
	if err := scan(&item.ID, &item.Title, &item.Category, &tagsJSON,
		&item.Rating, &item.Popularity, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
			return nil, err
		}
	}
	return &item, nil
}
