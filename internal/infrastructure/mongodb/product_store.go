package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/priceview/backend/internal/domain"
)

const mergedCollection = "merged_products"

// missingPriceSentinel stands in for a missing or non-numeric shop price
// inside the listing pipeline, so such shops fail max-price filters and
// never win the derived minimum without breaking the computation.
const missingPriceSentinel = 9999999

// ProductStore implements domain.ProductStore over MongoDB collections.
type ProductStore struct {
	client *mongo.Client
}

// NewProductStore creates a product store sharing the process-wide client.
func NewProductStore(client *mongo.Client) *ProductStore {
	return &ProductStore{client: client}
}

func (s *ProductStore) merged(cat domain.Catalog) *mongo.Collection {
	return s.client.Database(cat.Database).Collection(mergedCollection)
}

func (s *ProductStore) shop(cat domain.Catalog, shop string) *mongo.Collection {
	return s.client.Database(cat.Database).Collection(cat.ShopCollection(shop))
}

// DistinctCategories returns the distinct non-empty values of a taxonomy
// field, sorted lexicographically.
func (s *ProductStore) DistinctCategories(ctx context.Context, cat domain.Catalog, field string) ([]string, error) {
	values, err := s.merged(cat).Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok && str != "" {
			categories = append(categories, str)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// SampleByCategory returns up to limit random merged documents matching a
// taxonomy field value.
func (s *ProductStore) SampleByCategory(ctx context.Context, cat domain.Catalog, field, value string, limit int) ([]domain.RawProduct, error) {
	pipeline := []bson.M{
		{"$match": bson.M{field: value}},
		{"$sample": bson.M{"size": limit}},
	}
	cursor, err := s.merged(cat).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sampling %s=%s: %w", field, value, err)
	}
	var products []domain.RawProduct
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decoding sample: %w", err)
	}
	return products, nil
}

// FindMergedByID looks up a merged document by hex ObjectID. A malformed
// id or a missing document is a miss, not an error.
func (s *ProductStore) FindMergedByID(ctx context.Context, cat domain.Catalog, id string) (*domain.RawProduct, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var product domain.RawProduct
	err = s.merged(cat).FindOne(ctx, bson.M{"_id": objectID}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding merged product %s: %w", id, err)
	}
	return &product, nil
}

// FindMergedBySKU looks up a merged document by SKU.
func (s *ProductStore) FindMergedBySKU(ctx context.Context, cat domain.Catalog, sku string) (*domain.RawProduct, error) {
	var product domain.RawProduct
	err := s.merged(cat).FindOne(ctx, bson.M{"sku": sku}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding merged product by sku %s: %w", sku, err)
	}
	return &product, nil
}

// FindShopByID looks up a single-shop details document by hex ObjectID.
func (s *ProductStore) FindShopByID(ctx context.Context, cat domain.Catalog, shop, id string) (*domain.RawShopDocument, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc domain.RawShopDocument
	err = s.shop(cat, shop).FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding %s product %s: %w", shop, id, err)
	}
	return &doc, nil
}

// FindShopBySKU looks up a single-shop details document by SKU.
func (s *ProductStore) FindShopBySKU(ctx context.Context, cat domain.Catalog, shop, sku string) (*domain.RawShopDocument, error) {
	var doc domain.RawShopDocument
	err := s.shop(cat, shop).FindOne(ctx, bson.M{"sku": sku}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding %s product by sku %s: %w", shop, sku, err)
	}
	return &doc, nil
}

// SearchMerged runs the autocomplete substring match over the merged
// collection.
func (s *ProductStore) SearchMerged(ctx context.Context, cat domain.Catalog, query string, limit int) ([]domain.RawProduct, error) {
	cursor, err := s.merged(cat).Find(ctx, searchFilter(query), options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("searching merged products: %w", err)
	}
	var products []domain.RawProduct
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return products, nil
}

// SearchShop runs the autocomplete substring match over one shop's
// details collection.
func (s *ProductStore) SearchShop(ctx context.Context, cat domain.Catalog, shop, query string, limit int) ([]domain.RawShopDocument, error) {
	cursor, err := s.shop(cat, shop).Find(ctx, searchFilter(query), options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("searching %s products: %w", shop, err)
	}
	var docs []domain.RawShopDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding %s search results: %w", shop, err)
	}
	return docs, nil
}

// ListMerged executes the listing aggregation. The $facet stage computes
// the total matching count and the page slice in one pass, so both always
// reflect the same filter set.
func (s *ProductStore) ListMerged(ctx context.Context, cat domain.Catalog, filter domain.ListingFilter) ([]domain.RawProduct, int64, error) {
	field := cat.CategoryField(filter.CategoryType)
	cursor, err := s.merged(cat).Aggregate(ctx, listingPipeline(field, filter))
	if err != nil {
		return nil, 0, fmt.Errorf("listing aggregation: %w", err)
	}

	var results []struct {
		Metadata []struct {
			Total int64 `bson:"total"`
		} `bson:"metadata"`
		Products []domain.RawProduct `bson:"products"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, fmt.Errorf("decoding listing results: %w", err)
	}
	if len(results) == 0 {
		return nil, 0, nil
	}

	var total int64
	if len(results[0].Metadata) > 0 {
		total = results[0].Metadata[0].Total
	}
	return results[0].Products, total, nil
}

// listingPipeline builds the multi-stage listing query: a cheap match on
// category and text first, then derived best-price/stock fields computed
// from the nested shops mapping, a second match on the derived fields and
// a $facet pairing the count with the page slice.
func listingPipeline(categoryField string, filter domain.ListingFilter) []bson.M {
	match := bson.M{}
	if filter.Category != "" {
		match[categoryField] = filter.Category
	}
	if filter.Search != "" {
		match["$or"] = searchFilter(filter.Search)["$or"]
	}

	pipeline := []bson.M{
		{"$match": match},
		{"$addFields": bson.M{
			"shops_array": bson.M{"$objectToArray": "$shops"},
		}},
		{"$addFields": bson.M{
			"derived_best_price": bson.M{"$min": bson.M{"$map": bson.M{
				"input": "$shops_array",
				"as":    "shop",
				"in": bson.M{"$convert": bson.M{
					"input":   "$$shop.v.price",
					"to":      "double",
					"onError": missingPriceSentinel,
					"onNull":  missingPriceSentinel,
				}},
			}}},
			"derived_in_stock": bson.M{"$anyElementTrue": bson.M{"$map": bson.M{
				"input": "$shops_array",
				"as":    "shop",
				"in":    "$$shop.v.available",
			}}},
		}},
	}

	derived := bson.M{}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		priceRange := bson.M{}
		if filter.MinPrice != nil {
			priceRange["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			priceRange["$lte"] = *filter.MaxPrice
		}
		derived["derived_best_price"] = priceRange
	}
	if filter.InStockOnly {
		derived["derived_in_stock"] = true
	}
	if len(derived) > 0 {
		pipeline = append(pipeline, bson.M{"$match": derived})
	}

	pipeline = append(pipeline, bson.M{"$facet": bson.M{
		"metadata": []bson.M{{"$count": "total"}},
		"products": []bson.M{
			{"$skip": (filter.Page - 1) * filter.Limit},
			{"$limit": filter.Limit},
		},
	}})
	return pipeline
}

// searchFilter matches the query as a case-insensitive substring of the
// title or SKU. The query is escaped so regex metacharacters in user
// input keep substring semantics.
func searchFilter(query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": []bson.M{
		{"title": pattern},
		{"sku": pattern},
	}}
}
