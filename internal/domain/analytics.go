package domain

// ShopRanking is one shop's precomputed price statistics within a category.
type ShopRanking struct {
	Shop         string  `json:"shop" bson:"shop"`
	AvgPrice     float64 `json:"avg_price" bson:"avg_price"`
	MinPrice     float64 `json:"min_price" bson:"min_price"`
	MaxPrice     float64 `json:"max_price" bson:"max_price"`
	ProductCount int     `json:"product_count" bson:"product_count"`
}

// CategoryAnalytics is a precomputed cheapest-shop-per-category document.
type CategoryAnalytics struct {
	Category         string        `json:"category" bson:"category"`
	CheapestShop     string        `json:"cheapest_shop" bson:"cheapest_shop"`
	CheapestAvgPrice float64       `json:"cheapest_avg_price" bson:"cheapest_avg_price"`
	ShopRankings     []ShopRanking `json:"shop_rankings" bson:"shop_rankings"`
	OnlyAvailable    bool          `json:"only_available" bson:"only_available"`
}

// ShopMetrics is one shop's section of the merged_analytics document.
type ShopMetrics struct {
	ProductCount           int     `bson:"product_count"`
	AvailableCount         int     `bson:"available_count"`
	TotalPrice             float64 `bson:"total_price"`
	AveragePrice           float64 `bson:"average_price"`
	CheapestProductCount   int     `bson:"cheapest_product_count"`
	DiscountCount          int     `bson:"discount_count"`
	TotalDiscountValue     float64 `bson:"total_discount_value"`
	AverageDiscountPercent float64 `bson:"average_discount_percent"`
}

// MergedAnalyticsDoc is the raw merged_analytics document written by the
// external merge process. MergeStats is kept loosely typed because shop
// total keys follow a "<shop>_total" naming convention and vary per catalog.
type MergedAnalyticsDoc struct {
	Analytics struct {
		Shops map[string]ShopMetrics `bson:"shops"`
	} `bson:"analytics"`
	MergeStats map[string]any `bson:"merge_stats"`
}

// ShopAnalytics is a shop's average price, used by the price overview.
type ShopAnalytics struct {
	Name         string  `json:"name"`
	AveragePrice float64 `json:"average_price"`
	LogoURL      string  `json:"logo_url,omitempty"`
}

// MergeStats summarizes one catalog's merge run: per-shop document totals
// plus the count of products found in more than one shop.
type MergeStats struct {
	ShopTotals     map[string]int64 `json:"shop_totals"`
	CommonProducts int64            `json:"common_products"`
}

// MergeStatsResponse carries merge statistics for both catalogs. A nil
// section means the catalog has no merged_analytics document yet.
type MergeStatsResponse struct {
	Para    *MergeStats `json:"para"`
	Retails *MergeStats `json:"retails"`
}

// ShopDetailedAnalytics is the per-shop detail view of merged_analytics.
type ShopDetailedAnalytics struct {
	Name                   string  `json:"name"`
	ProductCount           int     `json:"product_count"`
	AvailableCount         int     `json:"available_count"`
	TotalPrice             float64 `json:"total_price"`
	AveragePrice           float64 `json:"average_price"`
	CheapestProductCount   int     `json:"cheapest_product_count"`
	DiscountCount          int     `json:"discount_count"`
	TotalDiscountValue     float64 `json:"total_discount_value"`
	AverageDiscountPercent float64 `json:"average_discount_percent"`
}

// DetailedAnalyticsResponse groups detailed shop analytics per catalog.
type DetailedAnalyticsResponse struct {
	ParaShops    []ShopDetailedAnalytics `json:"para_shops"`
	RetailsShops []ShopDetailedAnalytics `json:"retails_shops"`
}
