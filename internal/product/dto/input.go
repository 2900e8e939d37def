package dto

import (
	"io"

	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	StockQuantity   int              `json:"stock_quantity"`
	CategoryID      *string          `json:"category_id"`
	SKU             *string          `json:"sku"`
	IsActive        *bool            `json:"is_active"` // Nil means active
	IsFeatured      bool             `json:"is_featured"`
	Weight          *decimal.Decimal `json:"weight"`
	Dimensions      *string          `json:"dimensions"`
	Brand           *string          `json:"brand"`
	MetaTitle       *string          `json:"meta_title"`
	MetaDescription *string          `json:"meta_description"`
}

type UpdateProductInput struct {
	ID              string           `json:"-"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	StockQuantity   int              `json:"stock_quantity"`
	CategoryID      *string          `json:"category_id"`
	SKU             *string          `json:"sku"`
	IsActive        *bool            `json:"is_active"`   // Nil keeps the current value
	IsFeatured      *bool            `json:"is_featured"` // Nil keeps the current value
	Weight          *decimal.Decimal `json:"weight"`
	Dimensions      *string          `json:"dimensions"`
	Brand           *string          `json:"brand"`
	MetaTitle       *string          `json:"meta_title"`
	MetaDescription *string          `json:"meta_description"`
}

// AddImageInput either carries a file to upload (Body) or an already hosted
// ImageURL.
type AddImageInput struct {
	ProductID    string
	FileName     string
	ContentType  string
	Body         io.Reader
	ImageURL     string
	AltText      string
	DisplayOrder int
	IsPrimary    bool
}
