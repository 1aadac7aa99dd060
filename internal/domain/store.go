package domain

// CatalogStore caches catalog lookups locally (bbolt + memory).
// Search results are never stored.
type CatalogStore interface {
	GetBrands() ([]Brand, bool)
	SaveBrands(brands []Brand) error

	GetCategories() ([]Category, bool)
	SaveCategories(categories []Category) error

	GetSubcategories(categoryID int64) ([]Subcategory, bool)
	SaveSubcategories(categoryID int64, subs []Subcategory) error

	GetMeasureTypes() ([]MeasureType, bool)
	SaveMeasureTypes(types []MeasureType) error

	GetStats() (*Stats, bool)
	SaveStats(stats *Stats) error

	// InvalidateCategory drops a category's subcategories and the category list
	InvalidateCategory(categoryID int64) error
	// InvalidateAll drops every list; the stats snapshot is kept for offline use
	InvalidateAll() error

	Close() error
}
