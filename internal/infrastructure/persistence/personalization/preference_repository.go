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

// SQLPreferenceRepository is the SQL-based implementation of the preference store.
type SQLPreferenceRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLPreferenceRepository creates a new instance of the repository.
func NewSQLPreferenceRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLPreferenceRepository {
	return &SQLPreferenceRepository{
		db:     db,
		logger: logger,
	}
}

// FindByUser retrieves a user's preference set. Returns nil when none exists.
func (r *SQLPreferenceRepository) FindByUser(userID string) (*content.PreferenceSet, error) {
	const query = `
		SELECT user_id, content_types, genres, interaction_style, updated_at
		FROM preferences
		WHERE user_id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading preferences", "userId", logging.SanitizeUserID(userID))

	var (
		prefs            content.PreferenceSet
		contentTypesJSON string
		genresJSON       string
	)
	err := r.db.QueryRow(query, userID).Scan(&prefs.UserID, &contentTypesJSON,
		&genresJSON, &prefs.InteractionStyle, &prefs.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Preferences not found", "userId", logging.SanitizeUserID(userID))
			return nil, nil
		}
		r.logger.Database().Error("Failed to load preferences", "error", err.Error())
		return nil, err
	}

	if contentTypesJSON != "" {
		if err := json.Unmarshal([]byte(contentTypesJSON), &prefs.ContentTypes); err != nil {
			return nil, err
		}
	}
	if genresJSON != "" {
		if err := json.Unmarshal([]byte(genresJSON), &prefs.Genres); err != nil {
			return nil, err
		}
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return &prefs, nil
}

// Upsert stores or replaces a user's preference set.
func (r *SQLPreferenceRepository) Upsert(prefs *content.PreferenceSet) error {
	const query = `
		INSERT INTO preferences (user_id, content_types, genres, interaction_style, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			content_types = excluded.content_types,
			genres = excluded.genres,
			interaction_style = excluded.interaction_style,
			updated_at = excluded.updated_at`

	start := time.Now()

	contentTypes, err := json.Marshal(prefs.ContentTypes)
	if err != nil {
		return err
	}
	genres, err := json.Marshal(prefs.Genres)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(query, prefs.UserID, string(contentTypes), string(genres),
		prefs.InteractionStyle, prefs.UpdatedAt)
	if err != nil {
		r.logger.Database().Error("Failed to upsert preferences", "error", err.Error())
		return err
	}

	r.logger.Database().Debug("Preferences stored", "userId", logging.SanitizeUserID(prefs.UserID), "duration", time.Since(start))
	return nil
}

// ListAll returns every stored preference set, used by the similarity engine.
func (r *SQLPreferenceRepository) ListAll() ([]content.PreferenceSet, error) {
	const query = `
		SELECT user_id, content_types, genres, interaction_style, updated_at
		FROM preferences
		ORDER BY user_id ASC`

	start := time.Now()

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []content.PreferenceSet
	for rows.Next() {
		var (
			prefs            content.PreferenceSet
			contentTypesJSON string
			genresJSON       string
		)
		if err := rows.Scan(&prefs.UserID, &contentTypesJSON, &genresJSON,
			&prefs.InteractionStyle, &prefs.UpdatedAt); err != nil {
			return nil, err
		}
		if contentTypesJSON != "" {
			if err := json.Unmarshal([]byte(contentTypesJSON), &prefs.ContentTypes); err != nil {
				continue
			}
		}
		if genresJSON != "" {
			if err := json.Unmarshal([]byte(genresJSON), &prefs.Genres); err != nil {
				continue
			}
		}
		result = append(result, prefs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return result, nil
}
