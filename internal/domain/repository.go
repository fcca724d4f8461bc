package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStore defines read access to a catalog's product collections.
// Lookup methods return (nil, nil) on a miss; a malformed id counts as a
// miss, not an error.
type ProductStore interface {
	DistinctCategories(ctx context.Context, cat Catalog, field string) ([]string, error)
	SampleByCategory(ctx context.Context, cat Catalog, field, value string, limit int) ([]RawProduct, error)
	FindMergedByID(ctx context.Context, cat Catalog, id string) (*RawProduct, error)
	FindMergedBySKU(ctx context.Context, cat Catalog, sku string) (*RawProduct, error)
	FindShopByID(ctx context.Context, cat Catalog, shop, id string) (*RawShopDocument, error)
	FindShopBySKU(ctx context.Context, cat Catalog, shop, sku string) (*RawShopDocument, error)
	SearchMerged(ctx context.Context, cat Catalog, query string, limit int) ([]RawProduct, error)
	SearchShop(ctx context.Context, cat Catalog, shop, query string, limit int) ([]RawShopDocument, error)

	// ListMerged runs the filtered listing aggregation and returns the
	// requested page slice together with the total matching count, both
	// computed by the same query.
	ListMerged(ctx context.Context, cat Catalog, filter ListingFilter) ([]RawProduct, int64, error)
}

// AnalyticsStore defines read access to precomputed analytics documents.
type AnalyticsStore interface {
	CategoryNames(ctx context.Context, cat Catalog) ([]string, error)
	CategoryAnalytics(ctx context.Context, cat Catalog, category string) (*CategoryAnalytics, error)
	MergedAnalytics(ctx context.Context, cat Catalog) (*MergedAnalyticsDoc, error)
}

// UserStore defines persistence for auth accounts. FindByEmail and
// FindByID return (nil, nil) on a miss.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	Insert(ctx context.Context, u *User) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) error
}

// Mailer delivers account emails.
type Mailer interface {
	SendVerificationCode(email, code string) error
	SendPasswordResetCode(email, code string) error
}

// GoogleVerifier validates a Google ID token credential.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}
