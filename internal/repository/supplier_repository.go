package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/optilog/procurement-api/internal/models"
)

// SupplierRepository persists supplier profiles.
type SupplierRepository struct {
	db *sqlx.DB
}

// NewSupplierRepository constructs the repository.
func NewSupplierRepository(db *sqlx.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

const supplierColumns = `id, user_id, company_name, company_address, product_type, created_at, updated_at`

// Create inserts a new supplier profile row.
func (r *SupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	if supplier.ID == "" {
		supplier.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = now
	}
	supplier.UpdatedAt = now

	const query = `INSERT INTO suppliers (id, user_id, company_name, company_address, product_type, created_at, updated_at)
	VALUES (:id, :user_id, :company_name, :company_address, :product_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, supplier); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

// GetByID fetches a supplier by identifier.
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	query := fmt.Sprintf(`SELECT %s FROM suppliers WHERE id = $1 LIMIT 1`, supplierColumns)
	var supplier models.Supplier
	if err := r.db.GetContext(ctx, &supplier, query, id); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// FindByUserID fetches the supplier profile owned by a user account.
func (r *SupplierRepository) FindByUserID(ctx context.Context, userID string) (*models.Supplier, error) {
	query := fmt.Sprintf(`SELECT %s FROM suppliers WHERE user_id = $1 LIMIT 1`, supplierColumns)
	var supplier models.Supplier
	if err := r.db.GetContext(ctx, &supplier, query, userID); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// List returns all suppliers ordered by company name.
func (r *SupplierRepository) List(ctx context.Context) ([]models.Supplier, error) {
	query := fmt.Sprintf(`SELECT %s FROM suppliers ORDER BY company_name`, supplierColumns)
	var suppliers []models.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// Update persists mutable profile fields.
func (r *SupplierRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	supplier.UpdatedAt = time.Now().UTC()
	const query = `UPDATE suppliers SET company_name = :company_name, company_address = :company_address,
	product_type = :product_type, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, supplier); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}
