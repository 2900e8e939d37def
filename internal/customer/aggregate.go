package customer

import (
	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-admin-service/internal/model"
)

// Aggregate returns copies of customers with OrdersCount and TotalSpent
// filled in. Every order counts towards OrdersCount; only completed orders
// add to TotalSpent. Orders without a user id are ignored. The result does
// not depend on the order of either input.
func Aggregate(customers []model.Customer, orders []model.Order) []model.Customer {
	counts := make(map[string]int)
	spent := make(map[string]decimal.Decimal)

	for _, o := range orders {
		if o.UserID == nil || *o.UserID == "" {
			continue
		}
		uid := *o.UserID
		counts[uid]++
		if o.Status == model.OrderStatusCompleted {
			spent[uid] = spent[uid].Add(o.TotalAmount)
		}
	}

	out := make([]model.Customer, len(customers))
	for i, c := range customers {
		c.OrdersCount = counts[c.ID]
		c.TotalSpent = spent[c.ID] // zero value when absent
		out[i] = c
	}
	return out
}
