package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// PlaceholderImage is returned when no shop offers a usable product image.
const PlaceholderImage = "/placeholder.svg"

// RawShopOffer is one retailer's data for a product, nested under its shop
// identifier inside a merged document. Price fields are loosely typed:
// upstream scrapers store numbers or strings, and malformed values are
// treated as "no offer" rather than an error.
type RawShopOffer struct {
	Price          any            `bson:"price"`
	OldPrice       any            `bson:"old_price"`
	Available      bool           `bson:"available"`
	URL            string         `bson:"url"`
	Images         []string       `bson:"images"`
	Brand          string         `bson:"brand"`
	Specifications map[string]any `bson:"specifications"`
}

// RawProduct is a merged cross-shop document as stored in merged_products.
// It is owned by the external ingestion process; this service only reads it.
type RawProduct struct {
	ID          primitive.ObjectID      `bson:"_id"`
	SKU         string                  `bson:"sku"`
	Title       string                  `bson:"title"`
	TopCategory string                  `bson:"top_category"`
	LowCategory string                  `bson:"low_category"`
	Subcategory string                  `bson:"subcategory"`
	Shops       map[string]RawShopOffer `bson:"shops"`
}

// CategoryValue returns the value of a raw taxonomy field by name.
func (p *RawProduct) CategoryValue(field string) string {
	switch field {
	case "top_category":
		return p.TopCategory
	case "low_category":
		return p.LowCategory
	case "subcategory":
		return p.Subcategory
	}
	return ""
}

// RawShopDocument is a document from a single-shop <shop>_details
// collection: the same offer data as RawShopOffer but flat, used as a
// fallback when a product never made it into the merged collection.
type RawShopDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	SKU            string             `bson:"sku"`
	Title          string             `bson:"title"`
	Brand          string             `bson:"brand"`
	Price          any                `bson:"price"`
	OldPrice       any                `bson:"old_price"`
	Available      bool               `bson:"available"`
	URL            string             `bson:"url"`
	Images         []string           `bson:"images"`
	Specifications map[string]any     `bson:"specifications"`
	Overview       string             `bson:"overview"`
	Description    string             `bson:"description"`
	TopCategory    string             `bson:"top_category"`
	LowCategory    string             `bson:"low_category"`
	Subcategory    string             `bson:"subcategory"`
}

// CategoryValue returns the value of a raw taxonomy field by name.
func (d *RawShopDocument) CategoryValue(field string) string {
	switch field {
	case "top_category":
		return d.TopCategory
	case "low_category":
		return d.LowCategory
	case "subcategory":
		return d.Subcategory
	}
	return ""
}

// ShopPrice is one shop's entry in a normalized product's price list.
type ShopPrice struct {
	Shop      string   `json:"shop"`
	Price     float64  `json:"price"`
	OldPrice  *float64 `json:"oldPrice,omitempty"`
	Available bool     `json:"available"`
	URL       string   `json:"url,omitempty"`
}

// Product is the canonical cross-shop view of a product.
//
// Invariants: ShopPrices is sorted ascending by price (index 0 is the
// cheapest offer), BestPrice equals ShopPrices[0].Price when the list is
// non-empty and 0.0 otherwise, and InStock is true iff at least one entry
// is available.
type Product struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Brand          string         `json:"brand"`
	BestPrice      float64        `json:"bestPrice"`
	OriginalPrice  *float64       `json:"originalPrice,omitempty"`
	Image          string         `json:"image"`
	Description    string         `json:"description"`
	InStock        bool           `json:"inStock"`
	Category       string         `json:"category,omitempty"`
	TopCategory    string         `json:"topCategory,omitempty"`
	ShopPrices     []ShopPrice    `json:"shopPrices"`
	Specifications map[string]any `json:"specifications,omitempty"`
}

// SearchResult is the lightweight projection returned by autocomplete
// search. It never carries specifications.
type SearchResult struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	BestPrice float64 `json:"bestPrice"`
	Image     string  `json:"image"`
	InStock   bool    `json:"inStock"`
}

// ListingFilter holds the parameters of a paginated listing query.
type ListingFilter struct {
	Category     string
	CategoryType string
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	InStockOnly  bool
	Page         int
	Limit        int
}

// ListingPage is one page of a filtered product listing.
type ListingPage struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}
