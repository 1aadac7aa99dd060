package tui

import (
	"github.com/mmcdole/anbar/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SearchStateMsg carries a new snapshot from the search orchestrator
type SearchStateMsg struct {
	State domain.SearchState
}

// StatsLoadedMsg signals that the home screen stats have been loaded
type StatsLoadedMsg struct {
	Stats *domain.Stats
}

// LowStockLoadedMsg signals that the low stock list has been loaded
type LowStockLoadedMsg struct {
	Items        []domain.Item
	MeasureTypes []domain.MeasureType // nil when they could not be loaded
}

// BrandsLoadedMsg signals that the brand list has been loaded
type BrandsLoadedMsg struct {
	Brands []domain.Brand
}

// BrandItemsLoadedMsg signals that one brand's items have been loaded
type BrandItemsLoadedMsg struct {
	Brand domain.Brand
	Items []domain.Item
}

// CategoriesLoadedMsg signals that the category list has been loaded
type CategoriesLoadedMsg struct {
	Categories []domain.Category
}

// SubcategoriesLoadedMsg signals that one category's subcategories have been loaded
type SubcategoriesLoadedMsg struct {
	Category      domain.Category
	Subcategories []domain.Subcategory
}

// CategoryItemsLoadedMsg carries the items of a subcategory, or of the whole
// category when SubcategoryID is zero
type CategoryItemsLoadedMsg struct {
	CategoryID    int64
	SubcategoryID int64
	Items         []domain.Item
}

// ItemLoadedMsg signals that an item's full details have been loaded
type ItemLoadedMsg struct {
	Item *domain.Item
}

// StockUpdatedMsg signals that an item's stock count was saved
type StockUpdatedMsg struct {
	ItemID    int64
	Available float64
}

// URLOpenedMsg signals that an external viewer was started
type URLOpenedMsg struct {
	URL string
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}
