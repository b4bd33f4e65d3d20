// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/security"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLogin handles POST /api/v1/auth/login - admin authentication
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_login_request")
	defer marker.Complete()

	var loginReq struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		h.logger.Auth().Error("Login request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if config.AdminPasswordHash == "" || config.JWTSecret == "" {
		h.logger.Auth().Error("Admin authentication is not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication not configured"})
		return
	}

	if err := security.VerifyPassword(config.AdminPasswordHash, loginReq.Password); err != nil {
		h.logger.Auth().Warn("Login attempt failed", "duration", time.Since(start))
		marker.SetSuccess(false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := security.GenerateAccessToken("admin", "admin", config.JWTSecret, config.TokenTTL)
	if err != nil {
		h.logger.Auth().Error("Failed to generate access token", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.SetCookie(
		"admin_auth",                        // name
		token,                               // value
		int(config.TokenTTL/time.Second),    // maxAge
		"/",                                 // path
		"",                                  // domain (empty for current domain)
		false,                               // secure (set to true in production)
		true,                                // httpOnly
	)

	marker.SetSuccess(true)
	h.logger.Auth().Info("Admin login successful", "duration", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"role":      "admin",
		"expiresIn": int(config.TokenTTL / time.Second),
	})
}

// GetAuthStatus handles GET /api/v1/auth/status - reports token validity
func (h *AuthHandlers) GetAuthStatus(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	claims, err := security.ValidateJWT(authHeader[7:], config.JWTSecret)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"role":          claims["role"],
	})
}
