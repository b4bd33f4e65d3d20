package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
)

// RecommendationHandlers contains the recommendation and feedback HTTP handlers
type RecommendationHandlers struct {
	recommendationService  *services.RecommendationService
	feedbackService        *services.FeedbackService
	personalizationService *services.PersonalizationService
	logger                 *logging.ChanneledLogger
	perfTracker            *performance.Tracker
}

// NewRecommendationHandlers creates recommendation handlers with injected dependencies
func NewRecommendationHandlers(
	recommendationService *services.RecommendationService,
	feedbackService *services.FeedbackService,
	personalizationService *services.PersonalizationService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *RecommendationHandlers {
	return &RecommendationHandlers{
		recommendationService:  recommendationService,
		feedbackService:        feedbackService,
		personalizationService: personalizationService,
		logger:                 logger,
		perfTracker:            perfTracker,
	}
}

// GetRecommendations handles GET /api/v1/users/:id/recommendations
func (h *RecommendationHandlers) GetRecommendations(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_recommendations_request")
	defer marker.Complete()

	opts := services.RecommendationOptions{
		Context: c.Query("context"),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		opts.Limit = limit
	}
	if exclude := c.Query("exclude"); exclude != "" {
		opts.ExcludeIDs = strings.Split(exclude, ",")
	}

	recommendations, err := h.recommendationService.GetRecommendations(c.Param("id"), opts)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	marker.AddMetadata("results", len(recommendations))
	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}

// GetRecommendationExplanation handles GET /api/v1/users/:id/recommendations/:contentId/explain
func (h *RecommendationHandlers) GetRecommendationExplanation(c *gin.Context) {
	explanation, err := h.recommendationService.Explain(c.Param("id"), c.Param("contentId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, explanation)
}

// GetContentScore handles GET /api/v1/users/:id/score/:contentId
func (h *RecommendationHandlers) GetContentScore(c *gin.Context) {
	score, err := h.recommendationService.ScoreContent(c.Param("id"), c.Param("contentId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contentId": c.Param("contentId"), "score": score})
}

// PostFeedback handles POST /api/v1/users/:id/feedback
func (h *RecommendationHandlers) PostFeedback(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_feedback_request")
	defer marker.Complete()

	var input services.FeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	record, err := h.feedbackService.TrainModel(c.Param("id"), input)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, record)
}

// GetFeedback handles GET /api/v1/users/:id/feedback
func (h *RecommendationHandlers) GetFeedback(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := h.feedbackService.History(c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": records})
}

// GetPreferences handles GET /api/v1/users/:id/preferences
func (h *RecommendationHandlers) GetPreferences(c *gin.Context) {
	prefs, err := h.personalizationService.GetPreferences(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// PutPreferences handles PUT /api/v1/users/:id/preferences
func (h *RecommendationHandlers) PutPreferences(c *gin.Context) {
	var update struct {
		ContentTypes     []string `json:"contentTypes"`
		Genres           []string `json:"genres"`
		InteractionStyle string   `json:"interactionStyle"`
	}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	prefs, err := h.personalizationService.UpdatePreferences(c.Param("id"), &content.PreferenceSet{
		ContentTypes:     update.ContentTypes,
		Genres:           update.Genres,
		InteractionStyle: update.InteractionStyle,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
