package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priceview/backend/internal/domain"
	"github.com/priceview/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	retail    *usecase.CatalogService
	para      *usecase.CatalogService
	analytics *usecase.AnalyticsService
	auth      *usecase.AuthService
}

// NewHandler creates a new HTTP handler.
func NewHandler(retail, para *usecase.CatalogService, analytics *usecase.AnalyticsService, auth *usecase.AuthService) *Handler {
	return &Handler{retail: retail, para: para, analytics: analytics, auth: auth}
}

// HealthCheck returns the health status of the API.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "priceview-backend",
	})
}

// abortWithError translates a service error into an HTTP status.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrAnalyticsNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
