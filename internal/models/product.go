package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable item owned by exactly one supplier.
type Product struct {
	ID         string          `db:"id" json:"id"`
	SupplierID string          `db:"supplier_id" json:"supplier_id"`
	Type       string          `db:"type" json:"type"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// ProductFilter constrains product listing queries.
type ProductFilter struct {
	Type       string
	SupplierID string
	Limit      int
	Offset     int
}
