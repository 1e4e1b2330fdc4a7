package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
)

type logistRepository interface {
	Create(ctx context.Context, logist *models.Logist) error
	GetByID(ctx context.Context, id string) (*models.Logist, error)
	FindByUserID(ctx context.Context, userID string) (*models.Logist, error)
	Update(ctx context.Context, logist *models.Logist) error
}

// LogistService manages logist registration and profile maintenance.
type LogistService struct {
	repo      logistRepository
	users     accountCreator
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLogistService creates an instance of LogistService.
func NewLogistService(repo logistRepository, users accountCreator, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *LogistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LogistService{repo: repo, users: users, audit: audit, validator: validate, logger: logger}
}

// Register creates a logist user account together with its profile.
func (s *LogistService) Register(ctx context.Context, req dto.CreateLogistRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid logist payload")
	}

	user, err := s.users.CreateAccount(ctx, req.Email, req.Password, req.FullName, models.RoleLogist)
	if err != nil {
		return nil, err
	}

	logist := &models.Logist{
		UserID: user.ID,
		Phone:  req.Phone,
		Region: req.Region,
	}
	if err := s.repo.Create(ctx, logist); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create logist profile")
	}
	user.Logist = logist

	if s.audit != nil {
		log := &models.AuditLog{
			UserID:     &user.ID,
			Action:     models.AuditActionUserCreate,
			Resource:   "logist",
			ResourceID: &logist.ID,
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to persist audit log", zap.Error(err))
		}
	}
	s.logger.Info("logist registered",
		zap.String("logist_id", logist.ID),
		zap.String("user_id", user.ID))
	return user, nil
}

// Get returns a logist profile by ID.
func (s *LogistService) Get(ctx context.Context, id string) (*models.Logist, error) {
	logist, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "logist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load logist")
	}
	return logist, nil
}

// GetByUserID resolves the logist profile behind a user account.
func (s *LogistService) GetByUserID(ctx context.Context, userID string) (*models.Logist, error) {
	logist, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "logist profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load logist")
	}
	return logist, nil
}

// UpdateProfile mutates the acting logist's own profile.
func (s *LogistService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateLogistRequest) (*models.Logist, error) {
	logist, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Phone != "" {
		logist.Phone = req.Phone
	}
	if req.Region != "" {
		logist.Region = req.Region
	}
	if err := s.repo.Update(ctx, logist); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update logist")
	}
	if err := s.users.UpdateFullName(ctx, userID, req.FullName); err != nil {
		return nil, err
	}
	return logist, nil
}
