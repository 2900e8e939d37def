package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/mapper"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/product/dto"
)

const insertProduct = `
        INSERT INTO products (
            id, name, slug, description, price, sale_price, stock_quantity,
            category_id, sku, is_active, is_featured, weight, dimensions, brand,
            meta_title, meta_description, created_at, updated_at
        )
        VALUES (
            :id, :name, :slug, :description, :price, :sale_price, :stock_quantity,
            :category_id, :sku, :is_active, :is_featured, :weight, :dimensions, :brand,
            :meta_title, :meta_description, :created_at, :updated_at
        )
    `

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	_, err := r.DB.NamedExecContext(ctx, insertProduct, p)
	return apperr.Classify("product.Create", err)
}

// CreateBatch inserts every product or none.
func (r *PGRepository) CreateBatch(ctx context.Context, products []*model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Classify("product.CreateBatch", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if _, err := tx.NamedExecContext(ctx, insertProduct, p); err != nil {
			return apperr.Classify("product.CreateBatch", fmt.Errorf("product %q: %w", p.Name, err))
		}
	}

	return apperr.Classify("product.CreateBatch", tx.Commit())
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	rows, err := r.DB.QueryxContext(ctx, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		err = apperr.Classify("product.FindByID", err)
		if apperr.IsRelationMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	products, err := mapper.MapRows(rows, mapper.Product)
	if err != nil {
		return nil, apperr.Classify("product.FindByID", err)
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.IsFeatured != nil {
		conditions = append(conditions, "is_featured = :is_featured")
		args["is_featured"] = *f.IsFeatured
	}
	if f.LowStockThreshold > 0 {
		conditions = append(conditions, "stock_quantity <= :low_stock")
		args["low_stock"] = f.LowStockThreshold
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR sku ILIKE :search OR slug ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Count
	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, apperr.Classify("product.FindAll", err)
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		err = apperr.Classify("product.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Product{}, 0, nil
		}
		return nil, 0, err
	}

	// List
	orderBy := "created_at DESC"
	if f.SortBy != "" {
		// Prevent SQL injection by whitelisting fields
		switch f.SortBy {
		case "name":
			orderBy = "name"
		case "price":
			orderBy = "price"
		case "stock":
			orderBy = "stock_quantity"
		default:
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := r.DB.NamedQueryContext(ctx, query, args)
	if err != nil {
		err = apperr.Classify("product.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Product{}, 0, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	products, err := mapper.MapRows(rows, mapper.Product)
	if err != nil {
		return nil, 0, apperr.Classify("product.FindAll", err)
	}
	return products, count, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            slug = :slug,
            description = :description,
            price = :price,
            sale_price = :sale_price,
            stock_quantity = :stock_quantity,
            category_id = :category_id,
            sku = :sku,
            is_active = :is_active,
            is_featured = :is_featured,
            weight = :weight,
            dimensions = :dimensions,
            brand = :brand,
            meta_title = :meta_title,
            meta_description = :meta_description,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return apperr.Classify("product.Update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFoundf("product.Update", "product not found")
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return apperr.Classify("product.Delete", err)
}

func (r *PGRepository) IsSlugUnique(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.isUnique(ctx, "slug", slug, excludeID)
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, sku, excludeID string) (bool, error) {
	if sku == "" {
		return true, nil
	}
	return r.isUnique(ctx, "sku", sku, excludeID)
}

// isUnique is only called with the column names above.
func (r *PGRepository) isUnique(ctx context.Context, column, value, excludeID string) (bool, error) {
	var count int
	query := fmt.Sprintf(`SELECT count(*) FROM products WHERE %s = $1`, column)
	args := []interface{}{value}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}

	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, apperr.Classify("product.isUnique", err)
	}
	return count == 0, nil
}
