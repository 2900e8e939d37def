package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name            string           `db:"name" json:"name"`
	Slug            string           `db:"slug" json:"slug"`
	Description     string           `db:"description" json:"description"`
	Price           decimal.Decimal  `db:"price" json:"price"`
	SalePrice       *decimal.Decimal `db:"sale_price" json:"sale_price"`
	StockQuantity   int              `db:"stock_quantity" json:"stock_quantity"`
	CategoryID      *string          `db:"category_id" json:"category_id"` // Nullable
	SKU             *string          `db:"sku" json:"sku"`
	IsActive        bool             `db:"is_active" json:"is_active"`
	IsFeatured      bool             `db:"is_featured" json:"is_featured"`
	Weight          *decimal.Decimal `db:"weight" json:"weight"`
	Dimensions      *string          `db:"dimensions" json:"dimensions"`
	Brand           *string          `db:"brand" json:"brand"`
	MetaTitle       *string          `db:"meta_title" json:"meta_title"`
	MetaDescription *string          `db:"meta_description" json:"meta_description"`
	Images          []ProductImage   `db:"-" json:"images"`   // Fetched separately
	Category        *CategorySummary `db:"-" json:"category"` // Joined in memory
}

// PrimaryImage returns the image flagged primary, falling back to the first.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

type ProductImage struct {
	BaseModel
	ProductID    string `db:"product_id" json:"product_id"`
	ImageURL     string `db:"image_url" json:"image_url"`
	AltText      string `db:"alt_text" json:"alt_text"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
	IsPrimary    bool   `db:"is_primary" json:"is_primary"`
}
