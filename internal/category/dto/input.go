package dto

type CreateCategoryInput struct {
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Description     *string `json:"description"`
	ParentID        *string `json:"parent_id"`
	ParentSlug      string  `json:"parent_slug"` // Used when ParentID is empty
	IsActive        *bool   `json:"is_active"`   // Nil means active
	DisplayOrder    int     `json:"display_order"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}

type UpdateCategoryInput struct {
	ID              string  `json:"-"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Description     *string `json:"description"`
	ParentID        *string `json:"parent_id"` // Nil detaches the category to the root
	IsActive        *bool   `json:"is_active"` // Nil keeps the current value
	DisplayOrder    int     `json:"display_order"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}
