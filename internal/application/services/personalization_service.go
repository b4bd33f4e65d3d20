// Package services provides preference and catalog management
package services

import (
	"fmt"
	"time"

	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/personalization"
)

// PersonalizationService manages user preference sets and catalog metadata.
type PersonalizationService struct {
	preferences *personalization.SQLPreferenceRepository
	catalog     *personalization.SQLContentRepository
	cache       *manager.Manager
	logger      *logging.ChanneledLogger
}

// NewPersonalizationService creates a new personalization service with its dependencies.
func NewPersonalizationService(
	preferences *personalization.SQLPreferenceRepository,
	catalog *personalization.SQLContentRepository,
	cache *manager.Manager,
	logger *logging.ChanneledLogger,
) *PersonalizationService {
	return &PersonalizationService{
		preferences: preferences,
		catalog:     catalog,
		cache:       cache,
		logger:      logger,
	}
}

// GetPreferences returns a user's preference set, or an empty default when
// none has been stored.
func (s *PersonalizationService) GetPreferences(userID string) (*content.PreferenceSet, error) {
	prefs, err := s.preferences.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return &content.PreferenceSet{
			UserID:           userID,
			ContentTypes:     []string{},
			Genres:           []string{},
			InteractionStyle: "all",
		}, nil
	}
	return prefs, nil
}

// UpdatePreferences merges the supplied fields into the stored preference
// set and invalidates the user's cached recommendations.
func (s *PersonalizationService) UpdatePreferences(userID string, update *content.PreferenceSet) (*content.PreferenceSet, error) {
	existing, err := s.GetPreferences(userID)
	if err != nil {
		return nil, err
	}

	if update.ContentTypes != nil {
		existing.ContentTypes = update.ContentTypes
	}
	if update.Genres != nil {
		existing.Genres = update.Genres
	}
	if update.InteractionStyle != "" {
		existing.InteractionStyle = update.InteractionStyle
	}
	existing.UserID = userID
	existing.UpdatedAt = time.Now().UTC()

	if err := s.preferences.Upsert(existing); err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	s.logger.Recommend().Info("Preferences updated", "userId", logging.SanitizeUserID(userID))
	return existing, nil
}

// UpsertContent stores or replaces a catalog item's metadata.
func (s *PersonalizationService) UpsertContent(item *content.Item) error {
	if item.ID == "" {
		return fmt.Errorf("content id is required")
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.catalog.Upsert(item); err != nil {
		return err
	}

	s.logger.Recommend().Info("Catalog item upserted", "contentId", item.ID)
	return nil
}

// UpdatePopularity sets the popularity counter for a catalog item.
func (s *PersonalizationService) UpdatePopularity(contentID string, popularity int) error {
	if popularity < 0 {
		return fmt.Errorf("popularity must be non-negative")
	}
	return s.catalog.UpdatePopularity(contentID, popularity)
}
