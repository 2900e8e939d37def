// Package mapper turns raw rows into fully populated view models. Optional
// columns that are missing from the row get documented defaults; nothing here
// fails on schema drift.
package mapper

import (
	"strings"

	"github.com/fekuna/omnipos-admin-service/internal/model"
)

func Category(r Row) model.Category {
	return model.Category{
		BaseModel:       base(r),
		Name:            r.String("name"),
		Slug:            r.String("slug"),
		Description:     r.OptString("description"),
		ParentID:        r.OptString("parent_id"),
		IsActive:        r.Bool(true, "is_active"),
		DisplayOrder:    r.Int("display_order", "sort_order"),
		MetaTitle:       r.OptString("meta_title"),
		MetaDescription: r.OptString("meta_description"),
		Children:        []*model.Category{},
	}
}

func Product(r Row) model.Product {
	return model.Product{
		BaseModel:       base(r),
		Name:            r.String("name"),
		Slug:            r.String("slug"),
		Description:     r.String("description"),
		Price:           r.Decimal("price", "base_price"),
		SalePrice:       r.OptDecimal("sale_price"),
		StockQuantity:   r.Int("stock_quantity", "stock"),
		CategoryID:      r.OptString("category_id"),
		SKU:             r.OptString("sku"),
		IsActive:        r.Bool(true, "is_active"),
		IsFeatured:      r.Bool(false, "is_featured"),
		Weight:          r.OptDecimal("weight"),
		Dimensions:      r.OptString("dimensions"),
		Brand:           r.OptString("brand"),
		MetaTitle:       r.OptString("meta_title"),
		MetaDescription: r.OptString("meta_description"),
		Images:          []model.ProductImage{},
	}
}

func ProductImage(r Row) model.ProductImage {
	return model.ProductImage{
		BaseModel:    base(r),
		ProductID:    r.String("product_id"),
		ImageURL:     r.String("image_url"),
		AltText:      r.String("alt_text"),
		DisplayOrder: r.Int("display_order"),
		IsPrimary:    r.Bool(false, "is_primary"),
	}
}

func Order(r Row) model.Order {
	status := model.OrderStatus(r.String("status"))
	if status == "" {
		status = model.OrderStatusPending
	}
	payment := model.PaymentStatus(r.String("payment_status"))
	if payment == "" {
		payment = model.PaymentStatusPending
	}

	return model.Order{
		ID:              r.String("id"),
		UserID:          r.OptString("user_id"),
		Status:          status,
		PaymentStatus:   payment,
		PaymentMethod:   r.String("payment_method"),
		TotalAmount:     r.Decimal("total_amount"),
		ShippingAddress: ShippingAddress(r),
		Notes:           r.String("notes"),
		CreatedAt:       r.Time("created_at"),
		UpdatedAt:       r.Time("updated_at"),
		Items:           []model.OrderItem{},
	}
}

// ShippingAddress joins the shipping columns into one display line.
func ShippingAddress(r Row) string {
	parts := make([]string, 0, 5)
	for _, col := range []string{"shipping_address", "shipping_city", "shipping_state", "shipping_postal_code", "shipping_country"} {
		if v := strings.TrimSpace(r.String(col)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func OrderItem(r Row) model.OrderItem {
	item := model.OrderItem{
		ID:          r.String("id"),
		OrderID:     r.String("order_id"),
		ProductID:   r.OptString("product_id"),
		ProductName: r.String("product_name", "name"),
		Quantity:    r.Int("quantity"),
		UnitPrice:   r.Decimal("unit_price", "price"),
		Subtotal:    r.Decimal("subtotal"),
	}
	if item.Subtotal.IsZero() {
		item.Subtotal = item.UnitPrice.Mul(decimalInt(item.Quantity))
	}
	return item
}

func Customer(r Row) model.Customer {
	name := r.String("full_name")
	if name == "" {
		name = strings.TrimSpace(r.String("first_name") + " " + r.String("last_name"))
	}
	role := r.String("role")
	if role == "" {
		role = "customer"
	}

	return model.Customer{
		ID:        r.String("id"),
		FullName:  name,
		Email:     r.String("email"),
		Phone:     r.OptString("phone"),
		AvatarURL: r.OptString("avatar_url"),
		Role:      role,
		CreatedAt: r.Time("created_at"),
	}
}

func base(r Row) model.BaseModel {
	return model.BaseModel{
		ID:        r.String("id"),
		CreatedAt: r.Time("created_at"),
		UpdatedAt: r.Time("updated_at"),
	}
}
