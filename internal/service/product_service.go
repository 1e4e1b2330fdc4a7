package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
)

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
}

type supplierProfileResolver interface {
	FindByUserID(ctx context.Context, userID string) (*models.Supplier, error)
}

// ProductService manages supplier product catalogues. Products inherit their
// type from the owning supplier's profile and only the owner may change them.
type ProductService struct {
	repo      productRepository
	suppliers supplierProfileResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProductService creates an instance of ProductService.
func NewProductService(repo productRepository, suppliers supplierProfileResolver, validate *validator.Validate, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProductService{repo: repo, suppliers: suppliers, validator: validate, logger: logger}
}

func (s *ProductService) ownerProfile(ctx context.Context, userID string) (*models.Supplier, error) {
	supplier, err := s.suppliers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "supplier profile required")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supplier profile")
	}
	return supplier, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, appErrors.Clone(appErrors.ErrValidation, "invalid price")
	}
	if price.IsNegative() {
		return decimal.Zero, appErrors.Clone(appErrors.ErrValidation, "price must not be negative")
	}
	return price, nil
}

// Create adds a product to the acting supplier's catalogue.
func (s *ProductService) Create(ctx context.Context, userID string, req dto.CreateProductRequest) (*models.Product, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid product payload")
	}
	supplier, err := s.ownerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		SupplierID: supplier.ID,
		Type:       supplier.ProductType,
		Name:       req.Name,
		Price:      price,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create product")
	}
	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("supplier_id", supplier.ID))
	return product, nil
}

// Get returns a product by ID.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
	}
	return product, nil
}

// List returns products matching the filter.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list products")
	}
	return products, nil
}

// ListOwn returns the acting supplier's own catalogue.
func (s *ProductService) ListOwn(ctx context.Context, userID string, filter models.ProductFilter) ([]models.Product, error) {
	supplier, err := s.ownerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	filter.SupplierID = supplier.ID
	return s.List(ctx, filter)
}

// Update mutates a product owned by the acting supplier.
func (s *ProductService) Update(ctx context.Context, userID, productID string, req dto.UpdateProductRequest) (*models.Product, error) {
	supplier, err := s.ownerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SupplierID != supplier.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "product belongs to another supplier")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Price != "" {
		price, err := parsePrice(req.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update product")
	}
	return product, nil
}
