package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus captures the lifecycle state of a procurement request.
type RequestStatus string

const (
	StatusInProcess         RequestStatus = "IN_PROCESS"
	StatusConfirmed         RequestStatus = "CONFIRMED"
	StatusWaitingForPayment RequestStatus = "WAITING_FOR_PAYMENT"
	StatusCompleted         RequestStatus = "COMPLETED"
	StatusRejected          RequestStatus = "REJECTED"
)

// LifecycleAction identifies an operation that may move a request between statuses.
type LifecycleAction string

const (
	ActionSupplierConfirm LifecycleAction = "SUPPLIER_CONFIRM"
	ActionSupplierReject  LifecycleAction = "SUPPLIER_REJECT"
	ActionAdminAdvance    LifecycleAction = "ADMIN_ADVANCE"
	ActionLogistConfirm   LifecycleAction = "LOGIST_CONFIRM"
)

// transitions is the single source of truth for legal status changes.
// A (status, action) pair absent from the table is an illegal transition.
var transitions = map[RequestStatus]map[LifecycleAction]RequestStatus{
	StatusInProcess: {
		ActionSupplierConfirm: StatusConfirmed,
		ActionSupplierReject:  StatusRejected,
		ActionAdminAdvance:    StatusConfirmed,
	},
	StatusConfirmed: {
		ActionAdminAdvance: StatusWaitingForPayment,
	},
	StatusWaitingForPayment: {
		ActionAdminAdvance:  StatusCompleted,
		ActionLogistConfirm: StatusCompleted,
	},
}

// Transition resolves the next status for an action applied to the current
// status. The boolean reports whether the transition is legal.
func Transition(current RequestStatus, action LifecycleAction) (RequestStatus, bool) {
	next, ok := transitions[current][action]
	return next, ok
}

// Valid reports whether the value is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusInProcess, StatusConfirmed, StatusWaitingForPayment, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s RequestStatus) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// Request tracks one procurement transaction through its status lifecycle.
// Supplier, logist, and product lines are fixed at creation; only the
// status field is mutated afterwards.
type Request struct {
	ID              string          `db:"id" json:"id"`
	Status          RequestStatus   `db:"status" json:"status"`
	SupplierID      string          `db:"supplier_id" json:"supplier_id"`
	LogistID        string          `db:"logist_id" json:"logist_id"`
	Cost            decimal.Decimal `db:"cost" json:"cost"`
	DeliveryMonth   string          `db:"delivery_month" json:"delivery_month"`
	DeliveryAddress string          `db:"delivery_address" json:"delivery_address"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`

	// Relations, populated by the read path.
	Supplier *Supplier     `db:"-" json:"supplier,omitempty"`
	Logist   *Logist       `db:"-" json:"logist,omitempty"`
	Items    []RequestItem `db:"-" json:"items,omitempty"`
}

// RequestItem is one ordered product line of a request.
type RequestItem struct {
	RequestID string `db:"request_id" json:"-"`
	ProductID string `db:"product_id" json:"product_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Position  int    `db:"position" json:"-"`

	Product *Product `db:"-" json:"product,omitempty"`
}

// RequestFilter constrains request listing queries.
type RequestFilter struct {
	Month      string
	Status     RequestStatus
	SupplierID string
	LogistID   string
	Limit      int
	Offset     int
}
