package usecase

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/priceview/backend/internal/domain"
)

func retailCatalog() domain.Catalog { return domain.RetailCatalog("Retails") }
func paraCatalog() domain.Catalog   { return domain.ParaCatalog("PARA") }

func TestNormalizeProduct_PriceList(t *testing.T) {
	t.Run("sorted ascending with best price first", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Laptop X",
			Shops: map[string]domain.RawShopOffer{
				"mytek":      {Price: 100.0, Available: true},
				"spacenet":   {Price: 80.0, Available: false},
				"tunisianet": {Price: 120.0, Available: true},
			},
		}

		p := NormalizeProduct(raw, retailCatalog(), "", false)

		if len(p.ShopPrices) != 3 {
			t.Fatalf("expected 3 shop prices, got %d", len(p.ShopPrices))
		}
		if p.ShopPrices[0].Shop != "Spacenet" || p.ShopPrices[0].Price != 80.0 {
			t.Errorf("cheapest entry = %+v, want Spacenet at 80.0", p.ShopPrices[0])
		}
		if p.ShopPrices[2].Price != 120.0 {
			t.Errorf("most expensive price = %v, want 120.0", p.ShopPrices[2].Price)
		}
		if p.BestPrice != 80.0 {
			t.Errorf("BestPrice = %v, want 80.0", p.BestPrice)
		}
		if !p.InStock {
			t.Error("InStock = false, want true (mytek and tunisianet available)")
		}
	})

	t.Run("zero and missing prices are skipped", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Ghost",
			Shops: map[string]domain.RawShopOffer{
				"mytek":      {Price: 0.0, Available: true},
				"spacenet":   {Available: true},
				"tunisianet": {Price: "not a number", Available: true},
			},
		}

		p := NormalizeProduct(raw, retailCatalog(), "", false)

		if len(p.ShopPrices) != 0 {
			t.Fatalf("expected empty price list, got %+v", p.ShopPrices)
		}
		if p.BestPrice != 0.0 {
			t.Errorf("BestPrice = %v, want 0.0", p.BestPrice)
		}
		if p.InStock {
			t.Error("InStock = true, want false for zero valid offers")
		}
	})

	t.Run("string prices are parsed", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Mouse",
			Shops: map[string]domain.RawShopOffer{
				"mytek": {Price: " 49.90 ", Available: true},
			},
		}

		p := NormalizeProduct(raw, retailCatalog(), "", false)

		if p.BestPrice != 49.9 {
			t.Errorf("BestPrice = %v, want 49.9", p.BestPrice)
		}
	})

	t.Run("rounding follows catalog precision", func(t *testing.T) {
		retail := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Screen",
			Shops: map[string]domain.RawShopOffer{
				"mytek": {Price: 10.567, Available: true},
			},
		}
		para := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Cream",
			Shops: map[string]domain.RawShopOffer{
				"parashop": {Price: 10.5678, Available: true},
			},
		}

		if got := NormalizeProduct(retail, retailCatalog(), "", false).BestPrice; got != 10.57 {
			t.Errorf("retail BestPrice = %v, want 10.57 (2 decimal places)", got)
		}
		if got := NormalizeProduct(para, paraCatalog(), "", false).BestPrice; got != 10.568 {
			t.Errorf("para BestPrice = %v, want 10.568 (3 decimal places)", got)
		}
	})

	t.Run("original price is lowest old price", func(t *testing.T) {
		old1, old2 := 150.0, 130.0
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Discounted",
			Shops: map[string]domain.RawShopOffer{
				"mytek":    {Price: 100.0, OldPrice: old1, Available: true},
				"spacenet": {Price: 95.0, OldPrice: old2, Available: true},
			},
		}

		p := NormalizeProduct(raw, retailCatalog(), "", false)

		if p.OriginalPrice == nil || *p.OriginalPrice != 130.0 {
			t.Errorf("OriginalPrice = %v, want 130.0", p.OriginalPrice)
		}
	})
}

func TestNormalizeProduct_Image(t *testing.T) {
	t.Run("image priority order differs from shop order", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Camera",
			Shops: map[string]domain.RawShopOffer{
				"spacenet":   {Price: 50.0, Images: []string{"spacenet.jpg"}},
				"tunisianet": {Price: 60.0, Images: []string{"tunisianet.jpg"}},
			},
		}

		p := NormalizeProduct(raw, retailCatalog(), "", false)

		// Retail image priority is mytek, tunisianet, spacenet.
		if p.Image != "tunisianet.jpg" {
			t.Errorf("Image = %q, want tunisianet.jpg", p.Image)
		}
	})

	t.Run("promotional banners are excluded", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Promo Item",
			Shops: map[string]domain.RawShopOffer{
				"mytek": {Price: 50.0, Images: []string{
					"https://cdn/livraison-gratuite-banner.png",
					"https://cdn/real-product.jpg",
				}},
			},
		}

		p := NormalizeProduct(raw, retailCatalog(), "", false)

		if p.Image != "https://cdn/real-product.jpg" {
			t.Errorf("Image = %q, want the non-banner image", p.Image)
		}
	})

	t.Run("placeholder when nothing usable", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "No Image",
			Shops: map[string]domain.RawShopOffer{
				"mytek": {Price: 50.0, Images: []string{"", "banner-livraison-gratuite.jpg"}},
			},
		}

		p := NormalizeProduct(raw, retailCatalog(), "", false)

		if p.Image != domain.PlaceholderImage {
			t.Errorf("Image = %q, want placeholder", p.Image)
		}
	})
}

func TestNormalizeProduct_Brand(t *testing.T) {
	t.Run("first shop with a brand wins and is uppercased", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Phone",
			Shops: map[string]domain.RawShopOffer{
				"mytek":    {Price: 50.0, Brand: ""},
				"spacenet": {Price: 60.0, Brand: "samsung"},
			},
		}

		if got := NormalizeProduct(raw, retailCatalog(), "", false).Brand; got != "SAMSUNG" {
			t.Errorf("Brand = %q, want SAMSUNG", got)
		}
	})

	t.Run("generic when no shop reports one", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:    primitive.NewObjectID(),
			Title: "Unbranded",
			Shops: map[string]domain.RawShopOffer{
				"mytek": {Price: 50.0},
			},
		}

		if got := NormalizeProduct(raw, retailCatalog(), "", false).Brand; got != "Generic" {
			t.Errorf("Brand = %q, want Generic", got)
		}
	})
}

func TestNormalizeProduct_Category(t *testing.T) {
	t.Run("retail prefers subcategory", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:          primitive.NewObjectID(),
			Title:       "Laptop",
			LowCategory: "gaming",
			Subcategory: "laptops",
		}

		if got := NormalizeProduct(raw, retailCatalog(), "fallback", false).Category; got != "laptops" {
			t.Errorf("Category = %q, want laptops", got)
		}
	})

	t.Run("para prefers low category", func(t *testing.T) {
		raw := &domain.RawProduct{
			ID:          primitive.NewObjectID(),
			Title:       "Serum",
			LowCategory: "visage",
			Subcategory: "soins",
		}

		if got := NormalizeProduct(raw, paraCatalog(), "fallback", false).Category; got != "visage" {
			t.Errorf("Category = %q, want visage", got)
		}
	})

	t.Run("falls back to requested category", func(t *testing.T) {
		raw := &domain.RawProduct{ID: primitive.NewObjectID(), Title: "Bare"}

		if got := NormalizeProduct(raw, retailCatalog(), "requested", false).Category; got != "requested" {
			t.Errorf("Category = %q, want requested", got)
		}
	})
}

func TestNormalizeProduct_Specifications(t *testing.T) {
	raw := &domain.RawProduct{
		ID:    primitive.NewObjectID(),
		Title: "Spec Product",
		Shops: map[string]domain.RawShopOffer{
			"mytek": {Price: 10.0, Specifications: map[string]any{
				"ram": "16GB", "cpu": "i7",
			}},
			"spacenet": {Price: 12.0, Specifications: map[string]any{
				"ram": "8GB", "gpu": "RTX",
			}},
		},
	}

	t.Run("merged with first shop winning conflicts", func(t *testing.T) {
		p := NormalizeProduct(raw, retailCatalog(), "", true)

		if p.Specifications["ram"] != "16GB" {
			t.Errorf("ram = %v, want 16GB from the priority shop", p.Specifications["ram"])
		}
		if p.Specifications["cpu"] != "i7" || p.Specifications["gpu"] != "RTX" {
			t.Errorf("merged specs missing keys: %+v", p.Specifications)
		}
	})

	t.Run("omitted when not requested", func(t *testing.T) {
		p := NormalizeProduct(raw, retailCatalog(), "", false)

		if p.Specifications != nil {
			t.Errorf("Specifications = %+v, want nil", p.Specifications)
		}
	})
}

func TestNormalizeProduct_Title(t *testing.T) {
	raw := &domain.RawProduct{ID: primitive.NewObjectID()}

	p := NormalizeProduct(raw, retailCatalog(), "", false)

	if p.Name != "Unknown Product" {
		t.Errorf("Name = %q, want Unknown Product", p.Name)
	}
}

func TestNormalizeSingleShop(t *testing.T) {
	doc := &domain.RawShopDocument{
		ID:          primitive.NewObjectID(),
		SKU:         "SKU-1",
		Title:       "Vitamin C",
		Brand:       "laroche",
		Price:       25.4567,
		OldPrice:    30.0,
		Available:   true,
		URL:         "https://pharma-shop.tn/vitamin-c",
		Images:      []string{"vitc.jpg"},
		LowCategory: "complements",
		Specifications: map[string]any{
			"dosage": "500mg",
		},
	}

	p := NormalizeSingleShop(doc, paraCatalog(), "pharma-shop")

	if len(p.ShopPrices) != 1 {
		t.Fatalf("expected single-entry price list, got %d entries", len(p.ShopPrices))
	}
	if p.ShopPrices[0].Shop != "Pharma Shop" {
		t.Errorf("Shop = %q, want Pharma Shop", p.ShopPrices[0].Shop)
	}
	if p.BestPrice != 25.457 {
		t.Errorf("BestPrice = %v, want 25.457 (3 decimal places)", p.BestPrice)
	}
	if p.OriginalPrice == nil || *p.OriginalPrice != 30.0 {
		t.Errorf("OriginalPrice = %v, want 30.0", p.OriginalPrice)
	}
	if p.Brand != "LAROCHE" {
		t.Errorf("Brand = %q, want LAROCHE", p.Brand)
	}
	if p.Category != "complements" {
		t.Errorf("Category = %q, want complements", p.Category)
	}
	if p.Specifications["dosage"] != "500mg" {
		t.Errorf("Specifications = %+v, want dosage kept verbatim", p.Specifications)
	}
	if !p.InStock {
		t.Error("InStock = false, want true")
	}
}

func TestDisplayShopName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"mytek", "Mytek"},
		{"spacenet", "Spacenet"},
		{"pharma-shop", "Pharma Shop"},
		{"parafendri", "Parafendri"},
	}
	for _, tt := range tests {
		if got := DisplayShopName(tt.in); got != tt.want {
			t.Errorf("DisplayShopName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(1.005, 2); got != 1.0 && got != 1.01 {
		// Binary float artifacts aside, the result must stay within one cent.
		t.Errorf("roundTo(1.005, 2) = %v", got)
	}
	if got := roundTo(12.3456, 3); got != 12.346 {
		t.Errorf("roundTo(12.3456, 3) = %v, want 12.346", got)
	}
	if got := roundTo(12.3456, 2); got != 12.35 {
		t.Errorf("roundTo(12.3456, 2) = %v, want 12.35", got)
	}
}
