package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/customer/dto"
	"github.com/fekuna/omnipos-admin-service/internal/mapper"
	"github.com/fekuna/omnipos-admin-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Search != "" {
		conditions = append(conditions, "(full_name ILIKE :search OR email ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.Role != "" {
		conditions = append(conditions, "role = :role")
		args["role"] = f.Role
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM profiles"+whereClause, args)
	if err != nil {
		return nil, 0, apperr.Classify("customer.FindAll", err)
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		err = apperr.Classify("customer.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Customer{}, 0, nil
		}
		return nil, 0, err
	}

	query := "SELECT * FROM profiles" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := r.DB.NamedQueryContext(ctx, query, args)
	if err != nil {
		err = apperr.Classify("customer.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Customer{}, 0, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	customers, err := mapper.MapRows(rows, mapper.Customer)
	if err != nil {
		return nil, 0, apperr.Classify("customer.FindAll", err)
	}
	return customers, count, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	customers, err := r.FindByIDs(ctx, []string{id})
	if err != nil || len(customers) == 0 {
		return nil, err
	}
	return &customers[0], nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	if len(ids) == 0 {
		return []model.Customer{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM profiles WHERE id IN (?)`, ids)
	if err != nil {
		return nil, apperr.Classify("customer.FindByIDs", err)
	}

	rows, err := r.DB.QueryxContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		err = apperr.Classify("customer.FindByIDs", err)
		if apperr.IsRelationMissing(err) {
			return []model.Customer{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	customers, err := mapper.MapRows(rows, mapper.Customer)
	if err != nil {
		return nil, apperr.Classify("customer.FindByIDs", err)
	}
	return customers, nil
}
