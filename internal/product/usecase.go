package product

import (
	"context"

	"github.com/fekuna/omnipos-admin-service/internal/bulk"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	CreateProductsAtomic(ctx context.Context, inputs []*dto.CreateProductInput) ([]*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	BulkDeleteProducts(ctx context.Context, ids []string) bulk.Summary

	// Image ops
	AddImage(ctx context.Context, input *dto.AddImageInput) (*model.ProductImage, error)
	RemoveImage(ctx context.Context, productID, imageID string) error
	SetPrimaryImage(ctx context.Context, productID, imageID string) error

	InvalidateListCache(ctx context.Context) error
}
