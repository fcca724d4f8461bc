package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/priceview/backend/internal/domain"
	"github.com/priceview/backend/internal/usecase"
)

// registerCatalogRoutes mounts the shared catalog route set for one
// catalog service. The /:id route is registered last so static segments
// take precedence.
func (h *Handler) registerCatalogRoutes(rg *gin.RouterGroup, svc *usecase.CatalogService) {
	rg.GET("/random", h.randomProducts(svc))
	rg.GET("/by-sku/:sku", h.productBySKU(svc))
	rg.GET("/categories", h.categories(svc))
	rg.GET("/low-categories", h.lowCategories(svc))
	rg.GET("/search", h.searchProducts(svc))
	rg.GET("/listing", h.listing(svc))
	rg.GET("/analytics/categories", h.analyticsCategories(svc))
	rg.GET("/analytics/by-category", h.categoryAnalytics(svc))
	rg.GET("/:id", h.productByID(svc))
}

func (h *Handler) randomProducts(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Query("category")
		if category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
			return
		}
		limit, err := intQuery(c, "limit", 10)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}

		products, err := svc.RandomProducts(c.Request.Context(), category, c.Query("category_type"), limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func (h *Handler) productBySKU(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.ProductBySKU(c.Request.Context(), c.Param("sku"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func (h *Handler) productByID(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.ProductByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func (h *Handler) categories(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.Categories(c.Request.Context(), c.Query("type"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func (h *Handler) lowCategories(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.Categories(c.Request.Context(), "low_category")
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func (h *Handler) searchProducts(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
			return
		}
		limit, err := intQuery(c, "limit", 10)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}

		results, err := svc.Search(c.Request.Context(), query, limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

func (h *Handler) listing(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := listingFilterFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		page, err := svc.Listing(c.Request.Context(), *filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func (h *Handler) analyticsCategories(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := h.analytics.CategoryNames(c.Request.Context(), svc.Catalog())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, names)
	}
}

func (h *Handler) categoryAnalytics(svc *usecase.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Query("category")
		if category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
			return
		}
		analytics, err := h.analytics.CategoryAnalytics(c.Request.Context(), svc.Catalog(), category)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, analytics)
	}
}

// listingFilterFromQuery parses and validates listing query parameters.
// Out-of-range paging is rejected here, before the query builder runs.
func listingFilterFromQuery(c *gin.Context) (*domain.ListingFilter, error) {
	page, err := intQuery(c, "page", 1)
	if err != nil || page < 1 {
		return nil, errInvalidParam("page must be an integer >= 1")
	}
	limit, err := intQuery(c, "limit", 20)
	if err != nil || limit < 1 || limit > 100 {
		return nil, errInvalidParam("limit must be an integer between 1 and 100")
	}

	filter := &domain.ListingFilter{
		Category:     c.Query("category"),
		CategoryType: c.Query("category_type"),
		Search:       c.Query("search"),
		InStockOnly:  c.Query("in_stock") == "true",
		Page:         page,
		Limit:        limit,
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errInvalidParam("min_price must be a number")
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errInvalidParam("max_price must be a number")
		}
		filter.MaxPrice = &v
	}
	return filter, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return string(e) }
