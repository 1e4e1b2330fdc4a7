package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
)

type supplierRepository interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, id string) (*models.Supplier, error)
	FindByUserID(ctx context.Context, userID string) (*models.Supplier, error)
	List(ctx context.Context) ([]models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
}

type accountCreator interface {
	CreateAccount(ctx context.Context, email, password, fullName string, role models.UserRole) (*models.User, error)
	UpdateFullName(ctx context.Context, id, fullName string) error
}

// SupplierService manages supplier registration and profile maintenance.
type SupplierService struct {
	repo      supplierRepository
	users     accountCreator
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSupplierService creates an instance of SupplierService.
func NewSupplierService(repo supplierRepository, users accountCreator, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SupplierService{repo: repo, users: users, audit: audit, validator: validate, logger: logger}
}

// Register creates a supplier user account together with its profile.
func (s *SupplierService) Register(ctx context.Context, req dto.CreateSupplierRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid supplier payload")
	}

	user, err := s.users.CreateAccount(ctx, req.Email, req.Password, req.FullName, models.RoleSupplier)
	if err != nil {
		return nil, err
	}

	supplier := &models.Supplier{
		UserID:         user.ID,
		CompanyName:    req.CompanyName,
		CompanyAddress: req.CompanyAddress,
		ProductType:    strings.ToUpper(strings.TrimSpace(req.ProductType)),
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create supplier profile")
	}
	user.Supplier = supplier

	if s.audit != nil {
		log := &models.AuditLog{
			UserID:     &user.ID,
			Action:     models.AuditActionUserCreate,
			Resource:   "supplier",
			ResourceID: &supplier.ID,
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to persist audit log", zap.Error(err))
		}
	}
	s.logger.Info("supplier registered",
		zap.String("supplier_id", supplier.ID),
		zap.String("user_id", user.ID))
	return user, nil
}

// Get returns a supplier profile by ID.
func (s *SupplierService) Get(ctx context.Context, id string) (*models.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supplier not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supplier")
	}
	return supplier, nil
}

// GetByUserID resolves the supplier profile behind a user account.
func (s *SupplierService) GetByUserID(ctx context.Context, userID string) (*models.Supplier, error) {
	supplier, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supplier profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supplier")
	}
	return supplier, nil
}

// List returns all supplier profiles.
func (s *SupplierService) List(ctx context.Context) ([]models.Supplier, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list suppliers")
	}
	return suppliers, nil
}

// UpdateProfile mutates the acting supplier's own profile.
func (s *SupplierService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateSupplierRequest) (*models.Supplier, error) {
	supplier, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != "" {
		supplier.CompanyName = req.CompanyName
	}
	if req.CompanyAddress != "" {
		supplier.CompanyAddress = req.CompanyAddress
	}
	if req.ProductType != "" {
		supplier.ProductType = strings.ToUpper(strings.TrimSpace(req.ProductType))
	}
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update supplier")
	}
	if err := s.users.UpdateFullName(ctx, userID, req.FullName); err != nil {
		return nil, err
	}
	return supplier, nil
}
