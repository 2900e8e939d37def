package usecase

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/product/dto"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AddImage stores the file (when given) and records the image. The first
// image of a product, or one flagged primary, becomes the only primary.
func (uc *productUseCase) AddImage(ctx context.Context, input *dto.AddImageInput) (*model.ProductImage, error) {
	p, err := uc.repo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("product.AddImage", "product not found")
	}

	existing, err := uc.repo.ListImages(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}

	url := strings.TrimSpace(input.ImageURL)
	uploadedKey := ""
	if input.Body != nil {
		if uc.storage == nil {
			return nil, apperr.Validationf("product.AddImage", "image storage is not configured")
		}
		ext, ok := allowedImageTypes[input.ContentType]
		if !ok {
			return nil, apperr.Validationf("product.AddImage", "unsupported image type %q", input.ContentType)
		}
		if e := strings.ToLower(path.Ext(input.FileName)); e != "" {
			ext = e
		}
		uploadedKey = "products/" + p.ID + "/" + uuid.New().String() + ext
		if err := uc.storage.Upload(ctx, uploadedKey, input.Body, input.ContentType); err != nil {
			return nil, apperr.Classify("product.AddImage", err)
		}
		url = uc.storage.PublicURL(uploadedKey)
	}
	if url == "" {
		return nil, apperr.Validationf("product.AddImage", "an image file or image_url is required")
	}

	now := uc.now()
	img := &model.ProductImage{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:    p.ID,
		ImageURL:     url,
		AltText:      input.AltText,
		DisplayOrder: input.DisplayOrder,
		IsPrimary:    input.IsPrimary || len(existing) == 0,
	}
	if img.DisplayOrder == 0 {
		img.DisplayOrder = len(existing)
	}

	if err := uc.repo.CreateImage(ctx, img); err != nil {
		if uploadedKey != "" {
			go func() {
				if err := uc.storage.Remove(context.Background(), uploadedKey); err != nil {
					uc.logger.Warn("failed to clean up uploaded image", zap.String("key", uploadedKey), zap.Error(err))
				}
			}()
		}
		return nil, err
	}

	if img.IsPrimary && len(existing) > 0 {
		if err := uc.repo.SetPrimaryImage(ctx, p.ID, img.ID); err != nil {
			return nil, err
		}
	}

	uc.afterImageMutation(changefeed.Insert, img.ID)
	return img, nil
}

func (uc *productUseCase) RemoveImage(ctx context.Context, productID, imageID string) error {
	img, err := uc.findOwnedImage(ctx, productID, imageID)
	if err != nil {
		return err
	}

	if err := uc.repo.DeleteImage(ctx, img.ID); err != nil {
		return err
	}
	uc.removeObject(ctx, img.ImageURL)

	uc.afterImageMutation(changefeed.Delete, img.ID)
	return nil
}

func (uc *productUseCase) SetPrimaryImage(ctx context.Context, productID, imageID string) error {
	img, err := uc.findOwnedImage(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if err := uc.repo.SetPrimaryImage(ctx, productID, img.ID); err != nil {
		return err
	}
	uc.afterImageMutation(changefeed.Update, img.ID)
	return nil
}

func (uc *productUseCase) findOwnedImage(ctx context.Context, productID, imageID string) (*model.ProductImage, error) {
	img, err := uc.repo.FindImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img == nil || img.ProductID != productID {
		return nil, apperr.NotFoundf("product.image", "image not found")
	}
	return img, nil
}

// removeObject deletes the stored file behind url when it lives in our
// bucket. Failures are logged only.
func (uc *productUseCase) removeObject(ctx context.Context, url string) {
	if uc.storage == nil {
		return
	}
	key, ok := uc.storage.KeyFromURL(url)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := uc.storage.Remove(ctx, key); err != nil {
		uc.logger.Warn("failed to remove image object", zap.String("key", key), zap.Error(err))
	}
}

func (uc *productUseCase) afterImageMutation(typ changefeed.EventType, imageID string) {
	if err := uc.InvalidateListCache(context.Background()); err != nil {
		uc.logger.Warn("failed to invalidate product list cache", zap.Error(err))
	}
	changefeed.Notify(uc.publisher, uc.logger, changefeed.TableProductImages, typ, imageID)
}
