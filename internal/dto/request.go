package dto

import "github.com/optilog/procurement-api/internal/models"

// RequestLine is one product/quantity pair of a create payload.
type RequestLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateRequestRequest is the payload for creating a procurement request.
type CreateRequestRequest struct {
	Lines           []RequestLine `json:"product_info" validate:"required,min=1,dive"`
	DeliveryMonth   string        `json:"delivery_month" validate:"required"`
	DeliveryAddress string        `json:"delivery_address"`
}

// ReplyRequest carries a supplier's confirm/reject decision.
type ReplyRequest struct {
	Confirm *bool `json:"confirm" validate:"required"`
}

// ReplyResponse reports the status resulting from a supplier reply.
type ReplyResponse struct {
	NewStatus models.RequestStatus `json:"new_status"`
}

// ChangeStatusRequest is the administrative status override payload.
type ChangeStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required"`
}

// StatusChangeResponse acknowledges a successful transition.
type StatusChangeResponse struct {
	Success bool `json:"success"`
}
