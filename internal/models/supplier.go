package models

import "time"

// Supplier extends a User account with supplier profile data.
type Supplier struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	CompanyName    string    `db:"company_name" json:"company_name"`
	CompanyAddress string    `db:"company_address" json:"company_address"`
	ProductType    string    `db:"product_type" json:"product_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SupplierPayment aggregates completed request costs owed to a supplier for one month.
type SupplierPayment struct {
	SupplierID   string `db:"supplier_id" json:"supplier_id"`
	CompanyName  string `db:"company_name" json:"company_name"`
	TotalPayment string `db:"total_payment" json:"total_payment"`
}
