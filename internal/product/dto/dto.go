package dto

type ProductFilters struct {
	CategoryID        string `json:"category_id,omitempty"`
	IsActive          *bool  `json:"is_active,omitempty"`
	IsFeatured        *bool  `json:"is_featured,omitempty"`
	LowStockThreshold int    `json:"low_stock_threshold,omitempty"` // If > 0, stock_quantity <= threshold
	SearchQuery       string `json:"search,omitempty"`              // For name, sku search
	SortBy            string `json:"sort_by,omitempty"`             // name, price, stock, created_at
	SortOrder         string `json:"sort_order,omitempty"`          // asc, desc
	Page              int    `json:"page,omitempty"`
	PageSize          int    `json:"page_size,omitempty"`
}
