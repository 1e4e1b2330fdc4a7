package dto

// CreateLogistRequest registers a logist together with its user account.
type CreateLogistRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Region   string `json:"region"`
}

// UpdateLogistRequest mutates the acting logist's profile.
type UpdateLogistRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Region   string `json:"region"`
}
