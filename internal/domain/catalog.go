package domain

// Catalog describes one merchandise catalog: its database, shop set and
// category taxonomy. Everything that differs between the retail and
// parapharmacy pipelines lives here as data, so the product pipeline
// itself is written once.
type Catalog struct {
	// Name identifies the catalog in logs and responses ("retail", "para").
	Name string

	// Database is the MongoDB database holding this catalog's collections.
	Database string

	// Shops is the fixed priority order used for price collection, brand
	// resolution and specification merging.
	Shops []string

	// ImageShops is the priority order for canonical image resolution.
	// It may differ from Shops.
	ImageShops []string

	// ImageExclude is a substring marking promotional banner images that
	// must never be picked as the canonical image. Empty disables the check.
	ImageExclude string

	// PricePrecision is the number of decimal places prices are rounded to.
	PricePrecision int

	// CategoryPreference is the ordered list of raw taxonomy fields
	// consulted when resolving a product's display category.
	CategoryPreference []string

	// DefaultCategoryField is the taxonomy field used when a caller passes
	// an unknown category_type.
	DefaultCategoryField string

	// CategoryFields maps accepted category_type query values to raw
	// taxonomy field names.
	CategoryFields map[string]string
}

// CategoryField resolves a caller-supplied category_type to a raw taxonomy
// field name, falling back to the catalog default.
func (c Catalog) CategoryField(categoryType string) string {
	if field, ok := c.CategoryFields[categoryType]; ok {
		return field
	}
	return c.DefaultCategoryField
}

// ShopCollection returns the single-shop details collection name for a shop.
func (c Catalog) ShopCollection(shop string) string {
	return shop + "_details"
}

// RetailCatalog returns the general-retail catalog configuration.
func RetailCatalog(database string) Catalog {
	return Catalog{
		Name:               "retail",
		Database:           database,
		Shops:              []string{"mytek", "spacenet", "tunisianet"},
		ImageShops:         []string{"mytek", "tunisianet", "spacenet"},
		ImageExclude:       "livraison-gratuite",
		PricePrecision:     2,
		CategoryPreference: []string{"subcategory", "low_category"},
		DefaultCategoryField: "subcategory",
		CategoryFields: map[string]string{
			"subcategory":  "subcategory",
			"low_category": "low_category",
		},
	}
}

// ParaCatalog returns the parapharmacy catalog configuration.
func ParaCatalog(database string) Catalog {
	return Catalog{
		Name:               "para",
		Database:           database,
		Shops:              []string{"parashop", "pharma-shop", "parafendri"},
		ImageShops:         []string{"parashop", "pharma-shop", "parafendri"},
		PricePrecision:     3,
		CategoryPreference: []string{"low_category", "subcategory"},
		DefaultCategoryField: "top_category",
		CategoryFields: map[string]string{
			"top":          "top_category",
			"low":          "low_category",
			"top_category": "top_category",
			"low_category": "low_category",
			"subcategory":  "subcategory",
		},
	}
}
