package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/optilog/procurement-api/internal/models"
)

// RequestRepository persists procurement requests and their product lines.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, status, supplier_id, logist_id, cost, delivery_month, delivery_address, created_at, updated_at`

// Create inserts the request and its items in one transaction.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create request: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertRequest = `INSERT INTO requests (id, status, supplier_id, logist_id, cost, delivery_month, delivery_address, created_at, updated_at)
	VALUES (:id, :status, :supplier_id, :logist_id, :cost, :delivery_month, :delivery_address, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertRequest, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	const insertItem = `INSERT INTO request_items (request_id, product_id, quantity, position)
	VALUES ($1, $2, $3, $4)`
	for i := range request.Items {
		item := &request.Items[i]
		item.RequestID = request.ID
		item.Position = i
		if _, err := tx.ExecContext(ctx, insertItem, item.RequestID, item.ProductID, item.Quantity, item.Position); err != nil {
			return fmt.Errorf("create request item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create request: %w", err)
	}
	return nil
}

// GetByID fetches a request with its supplier, logist, and item relations.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1 LIMIT 1`, requestColumns)
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}

	supplierQuery := fmt.Sprintf(`SELECT %s FROM suppliers WHERE id = $1`, supplierColumns)
	var supplier models.Supplier
	if err := r.db.GetContext(ctx, &supplier, supplierQuery, request.SupplierID); err == nil {
		request.Supplier = &supplier
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("load request supplier: %w", err)
	}

	logistQuery := fmt.Sprintf(`SELECT %s FROM logists WHERE id = $1`, logistColumns)
	var logist models.Logist
	if err := r.db.GetContext(ctx, &logist, logistQuery, request.LogistID); err == nil {
		request.Logist = &logist
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("load request logist: %w", err)
	}

	const itemsQuery = `SELECT request_id, product_id, quantity, position FROM request_items WHERE request_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &request.Items, itemsQuery, id); err != nil {
		return nil, fmt.Errorf("load request items: %w", err)
	}

	return &request, nil
}

// UpdateStatus performs a compare-and-swap status transition. It returns
// sql.ErrNoRows when the request no longer holds the expected status, so
// concurrent transition attempts resolve to exactly one winner.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, expected, next models.RequestStatus) error {
	const query = `UPDATE requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, expected, next, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check request status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns requests matching the filter ordered latest first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM requests`, requestColumns))

	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	if filter.Month != "" {
		args = append(args, filter.Month)
		conditions = append(conditions, fmt.Sprintf("delivery_month = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SupplierID != "" {
		args = append(args, filter.SupplierID)
		conditions = append(conditions, fmt.Sprintf("supplier_id = $%d", len(args)))
	}
	if filter.LogistID != "" {
		args = append(args, filter.LogistID)
		conditions = append(conditions, fmt.Sprintf("logist_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}
