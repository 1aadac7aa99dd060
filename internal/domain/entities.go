package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Item is a warehouse stock item as returned by the backend
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	CustomCode  string `json:"custom_code,omitempty"`
	Description string `json:"description,omitempty"`
	ImagePath   string `json:"image_path,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`

	BrandID         int64  `json:"brand_id,omitempty"`
	BrandName       string `json:"brand_name,omitempty"`
	CategoryID      int64  `json:"category_id,omitempty"`
	CategoryName    string `json:"category_name,omitempty"`
	SubcategoryID   int64  `json:"subcategory_id,omitempty"`
	SubcategoryName string `json:"subcategory_name,omitempty"`
	MeasureTypeID   int64  `json:"measure_type_id,omitempty"`
	MeasureTypeName string `json:"measure_type_name,omitempty"`

	// Stock fields are optional; nil means the backend did not send them
	AvailableCount    *float64 `json:"available_count,omitempty"`
	LowStockThreshold *float64 `json:"low_stock_threshold,omitempty"`

	// Timestamps are server-formatted strings (Jalali calendar)
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`

	Images []ItemImage `json:"images,omitempty"`
}

// ItemImage is an image attached to an item
type ItemImage struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Available returns the stock count, 0 when unknown
func (i Item) Available() float64 {
	if i.AvailableCount == nil {
		return 0
	}
	return *i.AvailableCount
}

// Threshold returns the low-stock threshold, 0 when unknown
func (i Item) Threshold() float64 {
	if i.LowStockThreshold == nil {
		return 0
	}
	return *i.LowStockThreshold
}

// IsLowStock reports whether the item has stock left but no more than its threshold.
// Items with nothing available are out of stock, not low.
func (i Item) IsLowStock() bool {
	available := i.Available()
	return available > 0 && available <= i.Threshold()
}

// IsOutOfStock reports whether the backend sent a stock count of zero or less
func (i Item) IsOutOfStock() bool {
	return i.AvailableCount != nil && *i.AvailableCount <= 0
}

// ImageURL returns the URL of the item image under the given API base, or "" if it has none
func (i Item) ImageURL(apiBase string) string {
	path := i.ImagePath
	if path == "" && len(i.Images) > 0 {
		path = i.Images[0].Path
	}
	if path == "" {
		return ""
	}
	return strings.TrimRight(apiBase, "/") + "/images/" + strings.TrimLeft(path, "/")
}

// FormattedCount returns the stock count with its measure type, e.g. "12 pcs"
func (i Item) FormattedCount() string {
	if i.AvailableCount == nil {
		return ""
	}
	count := strconv.FormatFloat(*i.AvailableCount, 'f', -1, 64)
	if i.MeasureTypeName != "" {
		return count + " " + i.MeasureTypeName
	}
	return count
}

// DisplayCode returns the custom code if set, otherwise the generated code
func (i Item) DisplayCode() string {
	if i.CustomCode != "" {
		return i.CustomCode
	}
	return i.Code
}

// Breadcrumb returns "Category › Subcategory › Brand" for the parts that are known
func (i Item) Breadcrumb() string {
	var parts []string
	for _, p := range []string{i.CategoryName, i.SubcategoryName, i.BrandName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " › ")
}

func (i Item) String() string {
	return fmt.Sprintf("#%d %s", i.ID, i.Name)
}

// Brand is an item manufacturer
type Brand struct {
	ID        int64  `json:"id"`
	Code      string `json:"code,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Category groups items at the top level
type Category struct {
	ID        int64  `json:"id"`
	Code      string `json:"code,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Subcategory belongs to exactly one category
type Subcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Code       string `json:"code,omitempty"`
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// MeasureType is a unit of stock (pieces, meters, ...) with its low-stock threshold
type MeasureType struct {
	ID                int64   `json:"id"`
	Code              string  `json:"code,omitempty"`
	Name              string  `json:"name"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
	CreatedAt         string  `json:"created_at,omitempty"`
}

// Stats is the warehouse summary shown on the home screen
type Stats struct {
	TotalItems      int `json:"total_items"`
	TotalCategories int `json:"total_categories"`
	TotalBrands     int `json:"total_brands"`
	LowStockItems   int `json:"low_stock_items"`
}

// ItemPage is one page of a list endpoint
type ItemPage struct {
	Items []Item
	Total int
}
