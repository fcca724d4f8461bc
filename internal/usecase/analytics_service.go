package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/priceview/backend/internal/domain"
)

// shopTotalSuffix is the key naming convention the merge process uses for
// per-shop document counts inside merge_stats.
const shopTotalSuffix = "_total"

// analyticsPrecision is the fixed presentation rounding for shop rankings.
const analyticsPrecision = 2

// AnalyticsService reshapes precomputed analytics documents. It performs
// no computation beyond field renaming, rounding and key filtering.
type AnalyticsService struct {
	store  domain.AnalyticsStore
	retail domain.Catalog
	para   domain.Catalog
	log    zerolog.Logger
}

// NewAnalyticsService creates an analytics service over both catalogs.
func NewAnalyticsService(store domain.AnalyticsStore, retail, para domain.Catalog, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, retail: retail, para: para, log: log}
}

// CategoryNames returns the sorted categories that have analytics documents.
func (s *AnalyticsService) CategoryNames(ctx context.Context, cat domain.Catalog) ([]string, error) {
	names, err := s.store.CategoryNames(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	sort.Strings(names)
	return names, nil
}

// CategoryAnalytics returns the shop rankings for one category with fixed
// two-decimal rounding applied for presentation.
func (s *AnalyticsService) CategoryAnalytics(ctx context.Context, cat domain.Catalog, category string) (*domain.CategoryAnalytics, error) {
	doc, err := s.store.CategoryAnalytics(ctx, cat, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if doc == nil {
		return nil, domain.ErrAnalyticsNotFound
	}

	doc.CheapestAvgPrice = roundTo(doc.CheapestAvgPrice, analyticsPrecision)
	for i := range doc.ShopRankings {
		doc.ShopRankings[i].AvgPrice = roundTo(doc.ShopRankings[i].AvgPrice, analyticsPrecision)
		doc.ShopRankings[i].MinPrice = roundTo(doc.ShopRankings[i].MinPrice, analyticsPrecision)
		doc.ShopRankings[i].MaxPrice = roundTo(doc.ShopRankings[i].MaxPrice, analyticsPrecision)
	}
	return doc, nil
}

// ShopPrices returns the average price per shop across both catalogs. A
// catalog with no merged_analytics document contributes nothing; a failing
// catalog is logged and skipped so one bad database does not blank the
// whole overview.
func (s *AnalyticsService) ShopPrices(ctx context.Context) ([]domain.ShopAnalytics, error) {
	shops := []domain.ShopAnalytics{}
	for _, cat := range []domain.Catalog{s.retail, s.para} {
		doc, err := s.store.MergedAnalytics(ctx, cat)
		if err != nil {
			s.log.Error().Err(err).Str("catalog", cat.Name).Msg("fetching merged analytics failed")
			continue
		}
		if doc == nil {
			continue
		}

		names := make([]string, 0, len(doc.Analytics.Shops))
		for name := range doc.Analytics.Shops {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			shops = append(shops, domain.ShopAnalytics{
				Name:         name,
				AveragePrice: doc.Analytics.Shops[name].AveragePrice,
			})
		}
	}
	return shops, nil
}

// MergeStats returns merge statistics for both catalogs, extracting shop
// totals by the "<shop>_total" key convention. Catalogs without a
// merged_analytics document yield a nil section.
func (s *AnalyticsService) MergeStats(ctx context.Context) (*domain.MergeStatsResponse, error) {
	return &domain.MergeStatsResponse{
		Para:    s.mergeStatsFor(ctx, s.para),
		Retails: s.mergeStatsFor(ctx, s.retail),
	}, nil
}

func (s *AnalyticsService) mergeStatsFor(ctx context.Context, cat domain.Catalog) *domain.MergeStats {
	doc, err := s.store.MergedAnalytics(ctx, cat)
	if err != nil {
		s.log.Error().Err(err).Str("catalog", cat.Name).Msg("fetching merge stats failed")
		return nil
	}
	if doc == nil || doc.MergeStats == nil {
		return nil
	}

	totals := map[string]int64{}
	for key, value := range doc.MergeStats {
		if !strings.HasSuffix(key, shopTotalSuffix) {
			continue
		}
		if n, ok := intValue(value); ok {
			totals[key] = n
		}
	}
	common, _ := intValue(doc.MergeStats["common_products"])

	return &domain.MergeStats{ShopTotals: totals, CommonProducts: common}
}

// ShopDetails returns the full per-shop metric set for both catalogs.
func (s *AnalyticsService) ShopDetails(ctx context.Context) (*domain.DetailedAnalyticsResponse, error) {
	return &domain.DetailedAnalyticsResponse{
		ParaShops:    s.shopDetailsFor(ctx, s.para),
		RetailsShops: s.shopDetailsFor(ctx, s.retail),
	}, nil
}

func (s *AnalyticsService) shopDetailsFor(ctx context.Context, cat domain.Catalog) []domain.ShopDetailedAnalytics {
	details := []domain.ShopDetailedAnalytics{}
	doc, err := s.store.MergedAnalytics(ctx, cat)
	if err != nil {
		s.log.Error().Err(err).Str("catalog", cat.Name).Msg("fetching shop details failed")
		return details
	}
	if doc == nil {
		return details
	}

	names := make([]string, 0, len(doc.Analytics.Shops))
	for name := range doc.Analytics.Shops {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := doc.Analytics.Shops[name]
		details = append(details, domain.ShopDetailedAnalytics{
			Name:                   name,
			ProductCount:           m.ProductCount,
			AvailableCount:         m.AvailableCount,
			TotalPrice:             m.TotalPrice,
			AveragePrice:           m.AveragePrice,
			CheapestProductCount:   m.CheapestProductCount,
			DiscountCount:          m.DiscountCount,
			TotalDiscountValue:     m.TotalDiscountValue,
			AverageDiscountPercent: m.AverageDiscountPercent,
		})
	}
	return details
}

// intValue coerces a loosely typed bson number into an int64.
func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
