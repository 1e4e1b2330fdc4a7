package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/optilog/procurement-api/internal/models"
)

// LogistRepository persists logist profiles.
type LogistRepository struct {
	db *sqlx.DB
}

// NewLogistRepository constructs the repository.
func NewLogistRepository(db *sqlx.DB) *LogistRepository {
	return &LogistRepository{db: db}
}

const logistColumns = `id, user_id, phone, region, created_at, updated_at`

// Create inserts a new logist profile row.
func (r *LogistRepository) Create(ctx context.Context, logist *models.Logist) error {
	if logist.ID == "" {
		logist.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if logist.CreatedAt.IsZero() {
		logist.CreatedAt = now
	}
	logist.UpdatedAt = now

	const query = `INSERT INTO logists (id, user_id, phone, region, created_at, updated_at)
	VALUES (:id, :user_id, :phone, :region, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, logist); err != nil {
		return fmt.Errorf("create logist: %w", err)
	}
	return nil
}

// GetByID fetches a logist by identifier.
func (r *LogistRepository) GetByID(ctx context.Context, id string) (*models.Logist, error) {
	query := fmt.Sprintf(`SELECT %s FROM logists WHERE id = $1 LIMIT 1`, logistColumns)
	var logist models.Logist
	if err := r.db.GetContext(ctx, &logist, query, id); err != nil {
		return nil, err
	}
	return &logist, nil
}

// FindByUserID fetches the logist profile owned by a user account.
func (r *LogistRepository) FindByUserID(ctx context.Context, userID string) (*models.Logist, error) {
	query := fmt.Sprintf(`SELECT %s FROM logists WHERE user_id = $1 LIMIT 1`, logistColumns)
	var logist models.Logist
	if err := r.db.GetContext(ctx, &logist, query, userID); err != nil {
		return nil, err
	}
	return &logist, nil
}

// Update persists mutable profile fields.
func (r *LogistRepository) Update(ctx context.Context, logist *models.Logist) error {
	logist.UpdatedAt = time.Now().UTC()
	const query = `UPDATE logists SET phone = :phone, region = :region, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, logist); err != nil {
		return fmt.Errorf("update logist: %w", err)
	}
	return nil
}
