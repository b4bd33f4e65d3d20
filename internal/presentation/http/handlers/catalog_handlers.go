package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/domain/entities/content"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// CatalogHandlers contains the content catalog admin HTTP handlers
type CatalogHandlers struct {
	personalizationService *services.PersonalizationService
	logger                 *logging.ChanneledLogger
}

// NewCatalogHandlers creates catalog handlers with injected dependencies
func NewCatalogHandlers(personalizationService *services.PersonalizationService, logger *logging.ChanneledLogger) *CatalogHandlers {
	return &CatalogHandlers{
		personalizationService: personalizationService,
		logger:                 logger,
	}
}

// PutContent handles PUT /api/v1/catalog/:id - creates or replaces a catalog item
func (h *CatalogHandlers) PutContent(c *gin.Context) {
	var item content.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	item.ID = c.Param("id")

	if err := h.personalizationService.UpsertContent(&item); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	h.logger.System().Info("Catalog item upserted", "contentId", item.ID)
	c.JSON(http.StatusOK, item)
}

// PostPopularity handles POST /api/v1/catalog/:id/popularity
func (h *CatalogHandlers) PostPopularity(c *gin.Context) {
	var req struct {
		Popularity int `json:"popularity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.personalizationService.UpdatePopularity(c.Param("id"), req.Popularity); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contentId": c.Param("id"), "popularity": req.Popularity})
}
