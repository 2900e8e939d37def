package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a profile row plus figures computed from the orders table.
type Customer struct {
	ID          string          `json:"id"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	Phone       *string         `json:"phone"`
	AvatarURL   *string         `json:"avatar_url"`
	Role        string          `json:"role"`
	CreatedAt   time.Time       `json:"created_at"`
	OrdersCount int             `json:"orders_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
}
