package dto

// CreateSupplierRequest registers a supplier together with its user account.
type CreateSupplierRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required"`
	CompanyName    string `json:"company_name" validate:"required"`
	CompanyAddress string `json:"company_address" validate:"required"`
	ProductType    string `json:"product_type" validate:"required"`
}

// UpdateSupplierRequest mutates the acting supplier's profile.
type UpdateSupplierRequest struct {
	FullName       string `json:"full_name"`
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	ProductType    string `json:"product_type"`
}
