package category

import (
	"context"

	"github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
)

// Invalidator clears a cache that holds category data.
type Invalidator func(ctx context.Context) error

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	CreateCategoriesAtomic(ctx context.Context, inputs []*dto.CreateCategoryInput) ([]*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	GetCategoryTree(ctx context.Context) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	InvalidateTree(ctx context.Context) error
}
