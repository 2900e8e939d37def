package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/mapper"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/order/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		conditions = append(conditions, "payment_status = :payment_status")
		args["payment_status"] = f.PaymentStatus
	}
	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if len(f.UserIDs) > 0 {
		conditions = append(conditions, "user_id IN (:user_ids)")
		args["user_ids"] = f.UserIDs
	}
	if f.DateFrom != nil {
		conditions = append(conditions, "created_at >= :date_from")
		args["date_from"] = *f.DateFrom
	}
	if f.DateTo != nil {
		conditions = append(conditions, "created_at < :date_to")
		args["date_to"] = *f.DateTo
	}
	if f.Search != "" {
		conditions = append(conditions, "(id::text ILIKE :search OR payment_method ILIKE :search OR notes ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Count
	var count int
	countQuery, countArgs, err := r.bind("SELECT count(*) FROM orders"+whereClause, args)
	if err != nil {
		return nil, 0, apperr.Classify("order.FindAll", err)
	}
	if err := r.DB.GetContext(ctx, &count, countQuery, countArgs...); err != nil {
		err = apperr.Classify("order.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Order{}, 0, nil
		}
		return nil, 0, err
	}

	// List
	orderBy := "created_at"
	switch f.SortBy {
	case "total":
		orderBy = "total_amount"
	case "status":
		orderBy = "status"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		orderBy += " ASC"
	} else {
		orderBy += " DESC"
	}

	query := fmt.Sprintf("SELECT * FROM orders%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := r.bind(query, args)
	if err != nil {
		return nil, 0, apperr.Classify("order.FindAll", err)
	}
	rows, err := r.DB.QueryxContext(ctx, listQuery, listArgs...)
	if err != nil {
		err = apperr.Classify("order.FindAll", err)
		if apperr.IsRelationMissing(err) {
			return []model.Order{}, 0, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := mapper.MapRows(rows, mapper.Order)
	if err != nil {
		return nil, 0, apperr.Classify("order.FindAll", err)
	}
	return orders, count, nil
}

// bind expands named args and IN lists into positional postgres args.
func (r *PGRepository) bind(query string, args map[string]interface{}) (string, []interface{}, error) {
	q, a, err := sqlx.Named(query, args)
	if err != nil {
		return "", nil, err
	}
	q, a, err = sqlx.In(q, a...)
	if err != nil {
		return "", nil, err
	}
	return r.DB.Rebind(q), a, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	rows, err := r.DB.QueryxContext(ctx, `SELECT * FROM orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		err = apperr.Classify("order.FindByID", err)
		if apperr.IsRelationMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	orders, err := mapper.MapRows(rows, mapper.Order)
	if err != nil {
		return nil, apperr.Classify("order.FindByID", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

func (r *PGRepository) ItemsByOrderIDs(ctx context.Context, orderIDs []string) ([]model.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []model.OrderItem{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM order_items WHERE order_id IN (?) ORDER BY order_id`, orderIDs)
	if err != nil {
		return nil, apperr.Classify("order.ItemsByOrderIDs", err)
	}

	rows, err := r.DB.QueryxContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		err = apperr.Classify("order.ItemsByOrderIDs", err)
		if apperr.IsRelationMissing(err) {
			return []model.OrderItem{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	items, err := mapper.MapRows(rows, mapper.OrderItem)
	if err != nil {
		return nil, apperr.Classify("order.ItemsByOrderIDs", err)
	}
	return items, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) error {
	return r.updateColumn(ctx, "order.UpdateStatus", "status", string(status), id, at)
}

func (r *PGRepository) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus, at time.Time) error {
	return r.updateColumn(ctx, "order.UpdatePaymentStatus", "payment_status", string(status), id, at)
}

// updateColumn is only called with the column names above.
func (r *PGRepository) updateColumn(ctx context.Context, op, column, value, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE orders SET %s = $1, updated_at = $2 WHERE id = $3`, column)
	res, err := r.DB.ExecContext(ctx, query, value, at, id)
	if err != nil {
		return apperr.Classify(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFoundf(op, "order not found")
	}
	return nil
}

// Delete removes the order and its items together.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Classify("order.Delete", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", id); err != nil {
		if err = apperr.Classify("order.Delete", err); !apperr.IsRelationMissing(err) {
			return err
		}
		// The failed statement aborted the transaction; start over without items.
		tx.Rollback()
		_, err := r.DB.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
		return apperr.Classify("order.Delete", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id); err != nil {
		return apperr.Classify("order.Delete", err)
	}
	return apperr.Classify("order.Delete", tx.Commit())
}
