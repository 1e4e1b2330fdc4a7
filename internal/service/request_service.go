package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	UpdateStatus(ctx context.Context, id string, expected, next models.RequestStatus) error
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
}

type productStore interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type logistResolver interface {
	GetByID(ctx context.Context, id string) (*models.Logist, error)
}

type supplierResolver interface {
	GetByID(ctx context.Context, id string) (*models.Supplier, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RequestService owns the request lifecycle state machine. Every transition
// is validated in a fixed order (existence, actor authority, current status)
// before any write; the status write itself is a compare-and-swap so
// concurrent attempts on the same request resolve to one winner.
type RequestService struct {
	repo      requestStore
	products  productStore
	logists   logistResolver
	suppliers supplierResolver
	audit     auditLogger
	logger    *zap.Logger
}

// NewRequestService constructs the lifecycle engine.
func NewRequestService(repo requestStore, products productStore, logists logistResolver, suppliers supplierResolver, audit auditLogger, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:      repo,
		products:  products,
		logists:   logists,
		suppliers: suppliers,
		audit:     audit,
		logger:    logger,
	}
}

// Create validates the product lines and persists a new request in
// IN_PROCESS. All referenced products must belong to a single supplier.
func (s *RequestService) Create(ctx context.Context, actorLogistID string, req dto.CreateRequestRequest) (*models.Request, error) {
	logist, err := s.logists.GetByID(ctx, actorLogistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "logist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve logist")
	}

	if len(req.Lines) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one product line is required")
	}

	ids := make([]string, 0, len(req.Lines))
	seen := make(map[string]struct{}, len(req.Lines))
	for _, line := range req.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve products")
	}
	if len(products) != len(ids) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
	}

	byID := make(map[string]*models.Product, len(products))
	supplierID := products[0].SupplierID
	for i := range products {
		if products[i].SupplierID != supplierID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "all products must have the same supplier")
		}
		byID[products[i].ID] = &products[i]
	}

	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supplier not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve supplier")
	}

	cost := decimal.Zero
	items := make([]models.RequestItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		product := byID[line.ProductID]
		cost = cost.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, models.RequestItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	request := &models.Request{
		Status:          models.StatusInProcess,
		SupplierID:      supplier.ID,
		LogistID:        logist.ID,
		Cost:            cost,
		DeliveryMonth:   req.DeliveryMonth,
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	request.Supplier = supplier
	request.Logist = logist

	s.emitAudit(ctx, logist.UserID, models.AuditActionRequestCreate, request.ID, map[string]interface{}{
		"status": request.Status,
		"cost":   request.Cost.String(),
	})
	return request, nil
}

// SupplierReply records the owning supplier's confirm or reject decision on
// an IN_PROCESS request and returns the resulting status.
func (s *RequestService) SupplierReply(ctx context.Context, requestID, actorSupplierID string, confirm bool) (models.RequestStatus, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return "", err
	}

	if !canSupplierReply(actorSupplierID, request) {
		return "", appErrors.Clone(appErrors.ErrConflict, "request belongs to another supplier")
	}

	action := models.ActionSupplierConfirm
	if !confirm {
		action = models.ActionSupplierReject
	}
	next, ok := models.Transition(request.Status, action)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("request is not awaiting supplier reply (status %s)", request.Status))
	}

	if err := s.transition(ctx, request, next); err != nil {
		return "", err
	}
	return next, nil
}

// ChangeStatus is the administrative override. Only the immediate successor
// in the canonical forward order is a legal target; REJECTED is reachable
// solely through SupplierReply.
func (s *RequestService) ChangeStatus(ctx context.Context, requestID string, target models.RequestStatus) (bool, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return false, err
	}

	if !target.Valid() {
		return false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", target))
	}
	next, ok := models.Transition(request.Status, models.ActionAdminAdvance)
	if !ok || next != target {
		return false, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("invalid status change %s -> %s", request.Status, target))
	}

	if err := s.transition(ctx, request, next); err != nil {
		return false, err
	}
	return true, nil
}

// ConfirmDelivery moves a WAITING_FOR_PAYMENT request to COMPLETED. The
// confirming logist must differ from the request's creator; the rule is
// carried over from the legacy system verbatim.
func (s *RequestService) ConfirmDelivery(ctx context.Context, actorLogistID, requestID string) (bool, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return false, err
	}

	logist, err := s.logists.GetByID(ctx, actorLogistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "logist not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve logist")
	}

	if !canLogistConfirm(logist.ID, request) {
		return false, appErrors.Clone(appErrors.ErrConflict, "logist may not confirm this request")
	}

	next, ok := models.Transition(request.Status, models.ActionLogistConfirm)
	if !ok {
		return false, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("request is not awaiting delivery confirmation (status %s)", request.Status))
	}

	if err := s.transition(ctx, request, next); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns a request with supplier and logist relations populated.
func (s *RequestService) Get(ctx context.Context, requestID string) (*models.Request, error) {
	return s.getRequest(ctx, requestID)
}

// List returns requests matching the filter.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

func (s *RequestService) getRequest(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// transition persists the status change through the repository's
// compare-and-swap update. A lost race surfaces as a conflict.
func (s *RequestService) transition(ctx context.Context, request *models.Request, next models.RequestStatus) error {
	if err := s.repo.UpdateStatus(ctx, request.ID, request.Status, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "request was updated concurrently")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}
	previous := request.Status
	request.Status = next

	s.emitAudit(ctx, "", models.AuditActionRequestTransition, request.ID, map[string]interface{}{
		"from": previous,
		"to":   next,
	})
	return nil
}

func (s *RequestService) emitAudit(ctx context.Context, userID, action, requestID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		payload = []byte("{}")
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "request",
		ResourceID: &requestID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "request-service",
	}
	if userID != "" {
		log.UserID = &userID
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
