package usecase

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/priceview/backend/internal/domain"
)

// defaultBrand is used when no shop reports a brand.
const defaultBrand = "Generic"

// NormalizeProduct converts a merged cross-shop document into the canonical
// product view: price list sorted ascending, best price, canonical
// brand/image, derived stock flag and, when requested, merged
// specifications. It is a pure transform; a record with zero valid shop
// offers still yields a valid product with BestPrice 0 and InStock false.
func NormalizeProduct(raw *domain.RawProduct, cat domain.Catalog, defaultCategory string, includeSpecs bool) domain.Product {
	prices := collectShopPrices(raw.Shops, cat)

	bestPrice := 0.0
	if len(prices) > 0 {
		bestPrice = prices[0].Price
	}

	product := domain.Product{
		ID:            raw.ID.Hex(),
		Name:          displayTitle(raw.Title),
		Brand:         resolveBrand(raw.Shops, cat),
		BestPrice:     bestPrice,
		OriginalPrice: lowestOldPrice(prices),
		Image:         resolveImage(raw.Shops, cat),
		Description:   displayTitle(raw.Title),
		InStock:       anyAvailable(prices),
		Category:      resolveCategory(raw, cat, defaultCategory),
		TopCategory:   raw.TopCategory,
		ShopPrices:    prices,
	}

	if includeSpecs {
		product.Specifications = mergeSpecifications(raw.Shops, cat)
	}
	return product
}

// NormalizeSingleShop builds the same canonical shape from a document that
// is already scoped to one shop: a single-entry price list and
// specifications taken verbatim.
func NormalizeSingleShop(doc *domain.RawShopDocument, cat domain.Catalog, shop string) domain.Product {
	price, _ := priceValue(doc.Price)
	price = roundTo(price, cat.PricePrecision)

	var oldPrice *float64
	if v, ok := priceValue(doc.OldPrice); ok && v != 0 {
		rounded := roundTo(v, cat.PricePrecision)
		oldPrice = &rounded
	}

	brand := defaultBrand
	if doc.Brand != "" {
		brand = strings.ToUpper(doc.Brand)
	}

	category := ""
	for _, field := range cat.CategoryPreference {
		if v := doc.CategoryValue(field); v != "" {
			category = v
			break
		}
	}

	description := doc.Description
	if description == "" {
		description = doc.Overview
	}
	if description == "" {
		description = doc.Title
	}

	return domain.Product{
		ID:            doc.ID.Hex(),
		Name:          displayTitle(doc.Title),
		Brand:         brand,
		BestPrice:     price,
		OriginalPrice: oldPrice,
		Image:         firstUsableImage(doc.Images, cat.ImageExclude),
		Description:   description,
		InStock:       doc.Available,
		Category:      category,
		TopCategory:   doc.TopCategory,
		ShopPrices: []domain.ShopPrice{{
			Shop:      DisplayShopName(shop),
			Price:     price,
			OldPrice:  oldPrice,
			Available: doc.Available,
			URL:       doc.URL,
		}},
		Specifications: doc.Specifications,
	}
}

// collectShopPrices gathers offers with a usable price in shop-priority
// order, then sorts ascending by price. The sort is stable so ties keep
// priority order.
func collectShopPrices(shops map[string]domain.RawShopOffer, cat domain.Catalog) []domain.ShopPrice {
	prices := make([]domain.ShopPrice, 0, len(cat.Shops))
	for _, shop := range cat.Shops {
		offer, ok := shops[shop]
		if !ok {
			continue
		}
		price, ok := priceValue(offer.Price)
		if !ok || price == 0 {
			continue
		}

		entry := domain.ShopPrice{
			Shop:      DisplayShopName(shop),
			Price:     roundTo(price, cat.PricePrecision),
			Available: offer.Available,
			URL:       offer.URL,
		}
		if old, ok := priceValue(offer.OldPrice); ok && old != 0 {
			rounded := roundTo(old, cat.PricePrecision)
			entry.OldPrice = &rounded
		}
		prices = append(prices, entry)
	}

	sort.SliceStable(prices, func(i, j int) bool { return prices[i].Price < prices[j].Price })
	return prices
}

// lowestOldPrice returns the minimum old price across entries that carry
// one, or nil when no shop reported a previous price.
func lowestOldPrice(prices []domain.ShopPrice) *float64 {
	var min *float64
	for _, p := range prices {
		if p.OldPrice == nil {
			continue
		}
		if min == nil || *p.OldPrice < *min {
			v := *p.OldPrice
			min = &v
		}
	}
	return min
}

func anyAvailable(prices []domain.ShopPrice) bool {
	for _, p := range prices {
		if p.Available {
			return true
		}
	}
	return false
}

// resolveImage walks shops in image-priority order and returns the first
// image not matching the catalog's exclusion pattern, or the placeholder.
func resolveImage(shops map[string]domain.RawShopOffer, cat domain.Catalog) string {
	for _, shop := range cat.ImageShops {
		offer, ok := shops[shop]
		if !ok {
			continue
		}
		if img := firstUsableImage(offer.Images, cat.ImageExclude); img != domain.PlaceholderImage {
			return img
		}
	}
	return domain.PlaceholderImage
}

func firstUsableImage(images []string, exclude string) string {
	for _, img := range images {
		if img == "" {
			continue
		}
		if exclude != "" && strings.Contains(img, exclude) {
			continue
		}
		return img
	}
	return domain.PlaceholderImage
}

func resolveBrand(shops map[string]domain.RawShopOffer, cat domain.Catalog) string {
	for _, shop := range cat.Shops {
		if offer, ok := shops[shop]; ok && offer.Brand != "" {
			return strings.ToUpper(offer.Brand)
		}
	}
	return defaultBrand
}

func resolveCategory(raw *domain.RawProduct, cat domain.Catalog, defaultCategory string) string {
	for _, field := range cat.CategoryPreference {
		if v := raw.CategoryValue(field); v != "" {
			return v
		}
	}
	return defaultCategory
}

// mergeSpecifications unions specification maps across shops in priority
// order; the first shop to define a key wins.
func mergeSpecifications(shops map[string]domain.RawShopOffer, cat domain.Catalog) map[string]any {
	merged := map[string]any{}
	for _, shop := range cat.Shops {
		offer, ok := shops[shop]
		if !ok {
			continue
		}
		for key, value := range offer.Specifications {
			if _, seen := merged[key]; !seen {
				merged[key] = value
			}
		}
	}
	return merged
}

func displayTitle(title string) string {
	if title == "" {
		return "Unknown Product"
	}
	return title
}

// DisplayShopName formats a shop identifier for presentation:
// "mytek" -> "Mytek", "pharma-shop" -> "Pharma Shop".
func DisplayShopName(shop string) string {
	words := strings.Split(strings.ReplaceAll(shop, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// priceValue coerces a loosely typed raw price into a float64. Missing or
// malformed values report ok=false and are treated as "no offer".
func priceValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow10(places)
	return math.Round(v*factor) / factor
}
