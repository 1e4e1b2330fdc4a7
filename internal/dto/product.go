package dto

// CreateProductRequest adds a product to the acting supplier's catalogue.
// The product type is inherited from the supplier profile.
type CreateProductRequest struct {
	Name  string `json:"name" validate:"required"`
	Price string `json:"price" validate:"required"`
}

// UpdateProductRequest mutates an owned product.
type UpdateProductRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// ProductQuery filters product listings.
type ProductQuery struct {
	Type   string `form:"type"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
