package api

// ItemDTO is an item as the warehouse API serializes it. The search and list
// endpoints send related names as "brand"/"category"; the mini app model uses
// "brand_name"/"category_name". Both are accepted.
type ItemDTO struct {
	ID          int64   `json:"id"`
	Code        *string `json:"code"`
	CustomCode  *string `json:"custom_code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImagePath   *string `json:"image_path"`
	VideoURL    *string `json:"video_url"`

	BrandID       int64  `json:"brand_id,omitempty"`
	BrandName     string `json:"brand_name,omitempty"`
	Brand         string `json:"brand,omitempty"`
	CategoryID    int64  `json:"category_id,omitempty"`
	CategoryName  string `json:"category_name,omitempty"`
	Category      string `json:"category,omitempty"`
	SubcategoryID int64  `json:"subcategory_id,omitempty"`
	SubcatName    string `json:"subcategory_name,omitempty"`
	Subcategory   string `json:"subcategory,omitempty"`
	MeasureTypeID int64  `json:"measure_type_id,omitempty"`
	MeasureName   string `json:"measure_type_name,omitempty"`
	MeasureType   string `json:"measure_type,omitempty"`

	AvailableCount    *float64 `json:"available_count"`
	LowStockThreshold *float64 `json:"low_stock_threshold"`

	CreatedAt *string `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`

	Images []ImageDTO `json:"images,omitempty"`
}

// ImageDTO is an item image reference
type ImageDTO struct {
	ID        int64   `json:"id"`
	Path      string  `json:"path"`
	CreatedAt *string `json:"created_at"`
}

// ItemsResponse is the shape shared by search and all list endpoints
type ItemsResponse struct {
	Items  []ItemDTO `json:"items"`
	Total  int       `json:"total"`
	Query  string    `json:"query,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// ItemEnvelope decodes GET /items/{id}. The response is either {"item": {...}}
// or the item itself at top level.
type ItemEnvelope struct {
	Item *ItemDTO `json:"item"`
	ItemDTO
}

// BrandDTO is a brand list entry
type BrandDTO struct {
	ID        int64   `json:"id"`
	Code      *string `json:"code"`
	Name      string  `json:"name"`
	CreatedAt *string `json:"created_at"`
}

// BrandsResponse is the GET /brands payload
type BrandsResponse struct {
	Brands []BrandDTO `json:"brands"`
	Total  int        `json:"total"`
}

// CategoriesResponse is the GET /categories payload
type CategoriesResponse struct {
	Categories []BrandDTO `json:"categories"`
	Total      int        `json:"total"`
}

// SubcategoriesResponse is the GET /categories/{id}/subcategories payload
type SubcategoriesResponse struct {
	CategoryID    int64      `json:"category_id"`
	Subcategories []BrandDTO `json:"subcategories"`
	Total         int        `json:"total"`
}

// MeasureTypeDTO is a measure type list entry
type MeasureTypeDTO struct {
	ID                int64    `json:"id"`
	Code              *string  `json:"code"`
	Name              string   `json:"name"`
	LowStockThreshold *float64 `json:"low_stock_threshold"`
	CreatedAt         *string  `json:"created_at"`
}

// MeasureTypesResponse is the GET /measure-types payload
type MeasureTypesResponse struct {
	MeasureTypes []MeasureTypeDTO `json:"measure_types"`
	Total        int              `json:"total"`
}

// StatsResponse is the GET /stats payload
type StatsResponse struct {
	TotalItems      int `json:"total_items"`
	TotalCategories int `json:"total_categories"`
	TotalBrands     int `json:"total_brands"`
	LowStockItems   int `json:"low_stock_items"`
}

// StockUpdateRequest is the PATCH /items/{id}/stock body
type StockUpdateRequest struct {
	AvailableCount float64 `json:"available_count"`
}

// ErrorResponse is the error body returned with non-2xx statuses
type ErrorResponse struct {
	Detail string `json:"detail"`
}
