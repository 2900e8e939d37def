package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/mapper"
	"github.com/fekuna/omnipos-admin-service/internal/model"
)

func (r *PGRepository) ListImages(ctx context.Context, productIDs []string) ([]model.ProductImage, error) {
	if len(productIDs) == 0 {
		return []model.ProductImage{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT * FROM product_images
        WHERE product_id IN (?)
        ORDER BY product_id, display_order ASC, created_at ASC
    `, productIDs)
	if err != nil {
		return nil, apperr.Classify("product.ListImages", err)
	}

	rows, err := r.DB.QueryxContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		err = apperr.Classify("product.ListImages", err)
		if apperr.IsRelationMissing(err) {
			return []model.ProductImage{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	images, err := mapper.MapRows(rows, mapper.ProductImage)
	if err != nil {
		return nil, apperr.Classify("product.ListImages", err)
	}
	return images, nil
}

func (r *PGRepository) FindImage(ctx context.Context, id string) (*model.ProductImage, error) {
	rows, err := r.DB.QueryxContext(ctx, `SELECT * FROM product_images WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		err = apperr.Classify("product.FindImage", err)
		if apperr.IsRelationMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	images, err := mapper.MapRows(rows, mapper.ProductImage)
	if err != nil {
		return nil, apperr.Classify("product.FindImage", err)
	}
	if len(images) == 0 {
		return nil, nil
	}
	return &images[0], nil
}

func (r *PGRepository) CreateImage(ctx context.Context, img *model.ProductImage) error {
	query := `
        INSERT INTO product_images (id, product_id, image_url, alt_text, display_order, is_primary, created_at, updated_at)
        VALUES (:id, :product_id, :image_url, :alt_text, :display_order, :is_primary, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, img)
	return apperr.Classify("product.CreateImage", err)
}

func (r *PGRepository) DeleteImage(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM product_images WHERE id = $1", id)
	return apperr.Classify("product.DeleteImage", err)
}

// SetPrimaryImage flags one image primary and clears the flag on the rest of
// the product's images in the same transaction.
func (r *PGRepository) SetPrimaryImage(ctx context.Context, productID, imageID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Classify("product.SetPrimaryImage", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE product_images SET is_primary = false, updated_at = NOW() WHERE product_id = $1 AND id != $2`,
		productID, imageID,
	); err != nil {
		return apperr.Classify("product.SetPrimaryImage", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE product_images SET is_primary = true, updated_at = NOW() WHERE product_id = $1 AND id = $2`,
		productID, imageID,
	)
	if err != nil {
		return apperr.Classify("product.SetPrimaryImage", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFoundf("product.SetPrimaryImage", "image not found")
	}

	return apperr.Classify("product.SetPrimaryImage", tx.Commit())
}
