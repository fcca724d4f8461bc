package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/priceview/backend/internal/domain"
)

const (
	categoryAnalyticsCollection = "analytics_cheapest_by_category"
	mergedAnalyticsCollection   = "merged_analytics"
)

// AnalyticsStore implements domain.AnalyticsStore over the precomputed
// analytics collections written by the external merge process.
type AnalyticsStore struct {
	client *mongo.Client
}

// NewAnalyticsStore creates an analytics store sharing the process-wide
// client.
func NewAnalyticsStore(client *mongo.Client) *AnalyticsStore {
	return &AnalyticsStore{client: client}
}

// CategoryNames returns the categories that have analytics documents.
func (s *AnalyticsStore) CategoryNames(ctx context.Context, cat domain.Catalog) ([]string, error) {
	coll := s.client.Database(cat.Database).Collection(categoryAnalyticsCollection)
	values, err := coll.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct analytics categories: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok && str != "" {
			names = append(names, str)
		}
	}
	return names, nil
}

// CategoryAnalytics returns one category's shop-ranking document, or
// (nil, nil) when the category has none.
func (s *AnalyticsStore) CategoryAnalytics(ctx context.Context, cat domain.Catalog, category string) (*domain.CategoryAnalytics, error) {
	coll := s.client.Database(cat.Database).Collection(categoryAnalyticsCollection)
	var doc domain.CategoryAnalytics
	err := coll.FindOne(ctx, bson.M{"category": category}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding analytics for %s: %w", category, err)
	}
	return &doc, nil
}

// MergedAnalytics returns the catalog's merged_analytics document, or
// (nil, nil) when none has been written yet.
func (s *AnalyticsStore) MergedAnalytics(ctx context.Context, cat domain.Catalog) (*domain.MergedAnalyticsDoc, error) {
	coll := s.client.Database(cat.Database).Collection(mergedAnalyticsCollection)
	var doc domain.MergedAnalyticsDoc
	err := coll.FindOne(ctx, bson.M{}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding merged analytics: %w", err)
	}
	return &doc, nil
}
