package model

type Category struct {
	BaseModel
	Name            string      `db:"name" json:"name"`
	Slug            string      `db:"slug" json:"slug"`
	Description     *string     `db:"description" json:"description"`
	ParentID        *string     `db:"parent_id" json:"parent_id"` // Nullable
	IsActive        bool        `db:"is_active" json:"is_active"`
	DisplayOrder    int         `db:"display_order" json:"display_order"`
	MetaTitle       *string     `db:"meta_title" json:"meta_title"`
	MetaDescription *string     `db:"meta_description" json:"meta_description"`
	Children        []*Category `db:"-" json:"children,omitempty"` // Populated by the tree builder only
	Parent          *Category   `db:"-" json:"parent,omitempty"`   // Populated by single-item fetch only
}

// CategorySummary is the slice of a category attached to a product.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
