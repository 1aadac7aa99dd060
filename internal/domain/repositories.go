package domain

import (
	"context"
)

// ItemRepository provides read access to warehouse items
type ItemRepository interface {
	// SearchItems matches the query against name, custom code and description
	SearchItems(ctx context.Context, query string) ([]Item, error)

	// GetItem returns a single item with its images
	GetItem(ctx context.Context, id int64) (*Item, error)

	// ListItems returns one page of all items, newest first
	ListItems(ctx context.Context, offset, limit int) (*ItemPage, error)

	// ItemsByBrand returns all items of a brand
	ItemsByBrand(ctx context.Context, brandID int64) ([]Item, error)

	// ItemsByCategory returns all items of a category
	ItemsByCategory(ctx context.Context, categoryID int64) ([]Item, error)

	// ItemsBySubcategory returns all items of a subcategory
	ItemsBySubcategory(ctx context.Context, subcategoryID int64) ([]Item, error)

	// LowStockItems returns items at or below their measure type threshold
	LowStockItems(ctx context.Context) ([]Item, error)
}

// StockRepository updates stock levels
type StockRepository interface {
	UpdateStock(ctx context.Context, id int64, available float64) error
}

// CatalogRepository provides the lookup lists items refer to
type CatalogRepository interface {
	GetBrands(ctx context.Context) ([]Brand, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetSubcategories(ctx context.Context, categoryID int64) ([]Subcategory, error)
	GetMeasureTypes(ctx context.Context) ([]MeasureType, error)
	GetStats(ctx context.Context) (*Stats, error)
}

// InitDataProvider returns the platform init data token, or "" when none is available.
// It is called once per outbound request.
type InitDataProvider func() string
