package product

import (
	"context"

	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	CreateBatch(ctx context.Context, products []*model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error

	// Check slug/SKU uniqueness
	IsSlugUnique(ctx context.Context, slug, excludeID string) (bool, error)
	IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error)

	// Images
	ListImages(ctx context.Context, productIDs []string) ([]model.ProductImage, error)
	FindImage(ctx context.Context, id string) (*model.ProductImage, error)
	CreateImage(ctx context.Context, image *model.ProductImage) error
	DeleteImage(ctx context.Context, id string) error
	SetPrimaryImage(ctx context.Context, productID, imageID string) error
}
