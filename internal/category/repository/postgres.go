package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/category/dto"
	"github.com/fekuna/omnipos-admin-service/internal/mapper"
	"github.com/fekuna/omnipos-admin-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertCategory = `
        INSERT INTO categories (id, name, slug, description, parent_id, is_active, display_order, meta_title, meta_description, created_at, updated_at)
        VALUES (:id, :name, :slug, :description, :parent_id, :is_active, :display_order, :meta_title, :meta_description, :created_at, :updated_at)
    `

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	_, err := r.DB.NamedExecContext(ctx, insertCategory, c)
	return apperr.Classify("category.Create", err)
}

// CreateBatch inserts in slice order, so parents must precede children.
func (r *PGRepository) CreateBatch(ctx context.Context, categories []*model.Category) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Classify("category.CreateBatch", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		if _, err := tx.NamedExecContext(ctx, insertCategory, c); err != nil {
			return apperr.Classify("category.CreateBatch", fmt.Errorf("category %q: %w", c.Name, err))
		}
	}
	return apperr.Classify("category.CreateBatch", tx.Commit())
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findOne(ctx, "category.FindByID", `SELECT * FROM categories WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.findOne(ctx, "category.FindBySlug", `SELECT * FROM categories WHERE slug = $1 LIMIT 1`, slug)
}

// findOne returns nil, nil when no row matches or the table does not exist.
func (r *PGRepository) findOne(ctx context.Context, op, query string, args ...any) (*model.Category, error) {
	rows, err := r.DB.QueryxContext(ctx, query, args...)
	if err != nil {
		err = apperr.Classify(op, err)
		if apperr.IsRelationMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	categories, err := mapper.MapRows(rows, mapper.Category)
	if err != nil {
		return nil, apperr.Classify(op, err)
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return &categories[0], nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	// ParentID filtering logic
	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.Search != "" {
		conditions = append(conditions, "(name ILIKE :search OR slug ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM categories"+whereClause, args)
	if err != nil {
		return nil, 0, apperr.Classify("category.FindAll", err)
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		err = apperr.Classify("category.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Category{}, 0, nil
		}
		return nil, 0, err
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY name ASC, display_order ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := r.DB.NamedQueryContext(ctx, query, args)
	if err != nil {
		err = apperr.Classify("category.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Category{}, 0, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	categories, err := mapper.MapRows(rows, mapper.Category)
	if err != nil {
		return nil, 0, apperr.Classify("category.FindAll", err)
	}
	return categories, count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET name = :name,
            slug = :slug,
            description = :description,
            parent_id = :parent_id,
            is_active = :is_active,
            display_order = :display_order,
            meta_title = :meta_title,
            meta_description = :meta_description,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, c)
	if err != nil {
		return apperr.Classify("category.Update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFoundf("category.Update", "category not found")
	}
	return nil
}

// Delete removes only the row. Children keep their parent_id and surface as
// roots on the next tree build.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return apperr.Classify("category.Delete", err)
}
