// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/delivery"
	"github.com/pulsekit/pulse-go/internal/infrastructure/email"
	"github.com/pulsekit/pulse-go/internal/infrastructure/messaging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/personalization"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/state"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/telemetry"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Observability
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker

	// Infrastructure
	DB             *database.DB
	CacheManager   *manager.Manager
	Broadcaster    *messaging.MetricsBroadcaster
	DeliveryClient *delivery.Client
	EmailService   email.Service

	// Repositories
	EventRepo      *telemetry.SQLEventRepository
	FeedbackRepo   *telemetry.SQLFeedbackRepository
	PreferenceRepo *personalization.SQLPreferenceRepository
	ContentRepo    *personalization.SQLContentRepository
	CounterRepo    *state.SQLCounterRepository

	// Application services (singletons)
	DeliveryService        *services.DeliveryService
	SessionService         *services.SessionService
	CaptureService         *services.CaptureService
	ProfileService         *services.ProfileService
	EngagementService      *services.EngagementService
	TrendService           *services.TrendService
	SimilarityService      *services.SimilarityService
	RecommendationService  *services.RecommendationService
	FeedbackService        *services.FeedbackService
	PersonalizationService *services.PersonalizationService
	ReengagementService    *services.ReengagementService
}

// NewContainer creates and wires all singleton services
func NewContainer() (*Container, error) {
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	perfTracker := performance.NewTracker(nil)

	driverName, dsn := database.ResolveDriver(config.DatabaseURL, config.DatabaseAuthToken)
	db, err := database.NewConnectionWithLogger(driverName, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.CreateTables(db, logger); err != nil {
		return nil, err
	}

	cacheManager := manager.NewManager(logger)
	broadcaster := messaging.NewMetricsBroadcaster(logger)
	deliveryClient := delivery.NewClient(config.DeliveryEndpoint, config.DeliveryTimeout, logger)

	// Repositories
	eventRepo := telemetry.NewSQLEventRepository(db, logger)
	feedbackRepo := telemetry.NewSQLFeedbackRepository(db, logger)
	preferenceRepo := personalization.NewSQLPreferenceRepository(db, logger)
	contentRepo := personalization.NewSQLContentRepository(db, logger)
	counterRepo := state.NewSQLCounterRepository(db, logger)

	// Email is optional; the pipeline runs without it.
	var emailService email.Service
	if config.ReengagementEnabled {
		emailService, err = email.NewService()
		if err != nil {
			logger.Startup().Warn("Email service unavailable, re-engagement disabled", "error", err.Error())
		}
	}

	// Application services
	deliveryService := services.NewDeliveryService(deliveryClient, counterRepo, broadcaster, logger, perfTracker)
	sessionService := services.NewSessionService(cacheManager, deliveryService, logger)
	captureService := services.NewCaptureService(sessionService, deliveryService, eventRepo, logger, perfTracker)
	profileService := services.NewProfileService(eventRepo, logger, perfTracker)
	engagementService := services.NewEngagementService(profileService, cacheManager, broadcaster, logger, perfTracker)
	trendService := services.NewTrendService(cacheManager, logger, perfTracker)
	similarityService := services.NewSimilarityService(preferenceRepo, logger, perfTracker)
	recommendationService := services.NewRecommendationService(similarityService, preferenceRepo, contentRepo, feedbackRepo, cacheManager, logger, perfTracker)
	feedbackService := services.NewFeedbackService(feedbackRepo, cacheManager, logger, perfTracker)
	personalizationService := services.NewPersonalizationService(preferenceRepo, contentRepo, cacheManager, logger)
	reengagementService := services.NewReengagementService(engagementService, trendService, eventRepo, emailService, logger)

	return &Container{
		Logger:      logger,
		PerfTracker: perfTracker,

		DB:             db,
		CacheManager:   cacheManager,
		Broadcaster:    broadcaster,
		DeliveryClient: deliveryClient,
		EmailService:   emailService,

		EventRepo:      eventRepo,
		FeedbackRepo:   feedbackRepo,
		PreferenceRepo: preferenceRepo,
		ContentRepo:    contentRepo,
		CounterRepo:    counterRepo,

		DeliveryService:        deliveryService,
		SessionService:         sessionService,
		CaptureService:         captureService,
		ProfileService:         profileService,
		EngagementService:      engagementService,
		TrendService:           trendService,
		SimilarityService:      similarityService,
		RecommendationService:  recommendationService,
		FeedbackService:        feedbackService,
		PersonalizationService: personalizationService,
		ReengagementService:    reengagementService,
	}, nil
}

// Close releases infrastructure resources
func (c *Container) Close() error {
	c.Broadcaster.Close()
	if err := c.DB.Close(); err != nil {
		return err
	}
	return c.Logger.Close()
}
