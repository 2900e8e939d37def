package dto

import "time"

type OrderFilters struct {
	Status        string     `json:"status,omitempty"`
	PaymentStatus string     `json:"payment_status,omitempty"`
	UserID        string     `json:"user_id,omitempty"`
	UserIDs       []string   `json:"user_ids,omitempty"` // Used by the customer pages
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"` // Exclusive
	Search        string     `json:"search,omitempty"`  // Matches id, payment method and notes
	SortBy        string     `json:"sort_by,omitempty"` // created_at, total, status
	SortOrder     string     `json:"sort_order,omitempty"`
	Page          int        `json:"page,omitempty"`
	PageSize      int        `json:"page_size,omitempty"` // 0 returns every match
}

type UpdateStatusInput struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type UpdatePaymentStatusInput struct {
	ID            string `json:"-"`
	PaymentStatus string `json:"payment_status"`
}
