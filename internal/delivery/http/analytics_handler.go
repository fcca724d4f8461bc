package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShopPrices returns the average price per shop across both catalogs.
func (h *Handler) ShopPrices(c *gin.Context) {
	shops, err := h.analytics.ShopPrices(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

// MergeStatsOverview returns merge statistics for both catalogs.
func (h *Handler) MergeStatsOverview(c *gin.Context) {
	stats, err := h.analytics.MergeStats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ShopDetails returns per-shop metrics for both catalogs.
func (h *Handler) ShopDetails(c *gin.Context) {
	details, err := h.analytics.ShopDetails(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
