package usecase

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/priceview/backend/internal/domain"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	maxRandomResults = 10
	minSearchLength  = 2
)

// CatalogService exposes the product pipeline for one catalog: listings,
// lookups, search and category access. It is stateless; every query is an
// independent single-attempt read.
type CatalogService struct {
	store domain.ProductStore
	cat   domain.Catalog
	log   zerolog.Logger
}

// NewCatalogService creates a catalog service bound to one catalog.
func NewCatalogService(store domain.ProductStore, cat domain.Catalog, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		store: store,
		cat:   cat,
		log:   log.With().Str("catalog", cat.Name).Logger(),
	}
}

// Catalog returns the catalog this service serves.
func (s *CatalogService) Catalog() domain.Catalog { return s.cat }

// Categories returns the sorted distinct values of a taxonomy field.
func (s *CatalogService) Categories(ctx context.Context, categoryType string) ([]string, error) {
	field := s.cat.CategoryField(categoryType)
	categories, err := s.store.DistinctCategories(ctx, s.cat, field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	return categories, nil
}

// RandomProducts samples up to limit products from a category. The limit
// is capped at 10.
func (s *CatalogService) RandomProducts(ctx context.Context, category, categoryType string, limit int) ([]domain.Product, error) {
	if limit < 1 || limit > maxRandomResults {
		limit = maxRandomResults
	}
	field := s.cat.CategoryField(categoryType)

	raws, err := s.store.SampleByCategory(ctx, s.cat, field, category, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}

	products := make([]domain.Product, 0, len(raws))
	for i := range raws {
		products = append(products, NormalizeProduct(&raws[i], s.cat, category, false))
	}
	return products, nil
}

// ProductByID fetches a product by its opaque id with specifications
// included, trying the merged collection first and then each single-shop
// collection in priority order. A malformed id is a miss, not an error.
func (s *CatalogService) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := s.store.FindMergedByID(ctx, s.cat, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if raw != nil {
		p := NormalizeProduct(raw, s.cat, "", true)
		return &p, nil
	}

	for _, shop := range s.cat.Shops {
		doc, err := s.store.FindShopByID(ctx, s.cat, shop, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
		}
		if doc != nil {
			p := NormalizeSingleShop(doc, s.cat, shop)
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// ProductBySKU fetches a product by SKU with specifications included,
// with the same merged-then-fallback source order as ProductByID.
func (s *CatalogService) ProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	raw, err := s.store.FindMergedBySKU(ctx, s.cat, sku)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if raw != nil {
		p := NormalizeProduct(raw, s.cat, "", true)
		return &p, nil
	}

	for _, shop := range s.cat.Shops {
		doc, err := s.store.FindShopBySKU(ctx, s.cat, shop, sku)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
		}
		if doc != nil {
			p := NormalizeSingleShop(doc, s.cat, shop)
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// Search runs autocomplete search over the merged collection, topping up
// from single-shop collections until limit results are found. Results are
// deduplicated by SKU; entries without a SKU have no dedup key and are
// kept as-is. Queries shorter than two characters return an empty list
// without touching the store.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if utf8.RuneCountInString(query) < minSearchLength {
		return []domain.SearchResult{}, nil
	}
	if limit < 1 {
		limit = maxRandomResults
	}

	results := make([]domain.SearchResult, 0, limit)
	seen := map[string]bool{}

	raws, err := s.store.SearchMerged(ctx, s.cat, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	for i := range raws {
		if sku := raws[i].SKU; sku != "" {
			if seen[sku] {
				continue
			}
			seen[sku] = true
		}
		product := NormalizeProduct(&raws[i], s.cat, "", false)
		results = append(results, toSearchResult(product))
		if len(results) >= limit {
			return results, nil
		}
	}

	for _, shop := range s.cat.Shops {
		if len(results) >= limit {
			break
		}
		docs, err := s.store.SearchShop(ctx, s.cat, shop, query, limit-len(results))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
		}
		for i := range docs {
			if sku := docs[i].SKU; sku != "" {
				if seen[sku] {
					continue
				}
				seen[sku] = true
			}
			product := NormalizeSingleShop(&docs[i], s.cat, shop)
			results = append(results, toSearchResult(product))
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// Listing returns one page of the filtered product listing. The total
// count and the page slice come from a single aggregation, so they always
// reflect the same filter set. A store failure propagates as
// ErrQueryFailed; empty results and failed queries are distinct outcomes.
func (s *CatalogService) Listing(ctx context.Context, filter domain.ListingFilter) (*domain.ListingPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	raws, total, err := s.store.ListMerged(ctx, s.cat, filter)
	if err != nil {
		s.log.Error().Err(err).Msg("listing aggregation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}

	products := make([]domain.Product, 0, len(raws))
	for i := range raws {
		products = append(products, NormalizeProduct(&raws[i], s.cat, filter.Category, false))
	}

	totalPages := 1
	if total > 0 {
		totalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}

	return &domain.ListingPage{
		Products:   products,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func toSearchResult(p domain.Product) domain.SearchResult {
	return domain.SearchResult{
		ID:        p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		BestPrice: p.BestPrice,
		Image:     p.Image,
		InStock:   p.InStock,
	}
}
