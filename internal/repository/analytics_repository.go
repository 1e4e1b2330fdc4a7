package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/optilog/procurement-api/internal/models"
)

// AnalyticsRepository exposes read-optimised monthly projections over
// persisted requests. It never mutates request state.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CountForMonth counts requests for a delivery month, optionally narrowed to one status.
func (r *AnalyticsRepository) CountForMonth(ctx context.Context, month string, status models.RequestStatus) (int, error) {
	query := `SELECT COUNT(*) FROM requests WHERE delivery_month = $1`
	args := []interface{}{month}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count requests for month: %w", err)
	}
	return count, nil
}

// SupplierPayments sums the cost of completed requests per supplier for a month.
func (r *AnalyticsRepository) SupplierPayments(ctx context.Context, month string) ([]models.SupplierPayment, error) {
	const query = `SELECT s.id AS supplier_id, s.company_name, COALESCE(SUM(r.cost), 0)::TEXT AS total_payment
	FROM suppliers s
	LEFT JOIN requests r ON r.supplier_id = s.id AND r.delivery_month = $1 AND r.status = $2
	GROUP BY s.id, s.company_name
	ORDER BY s.company_name`
	var payments []models.SupplierPayment
	if err := r.db.SelectContext(ctx, &payments, query, month, models.StatusCompleted); err != nil {
		return nil, fmt.Errorf("sum supplier payments: %w", err)
	}
	return payments, nil
}

// MonthlyRequestRow is one joined row of the monthly report dataset.
type MonthlyRequestRow struct {
	ID              string               `db:"id"`
	Status          models.RequestStatus `db:"status"`
	Cost            string               `db:"cost"`
	DeliveryMonth   string               `db:"delivery_month"`
	DeliveryAddress string               `db:"delivery_address"`
	SupplierName    string               `db:"supplier_name"`
	LogistName      string               `db:"logist_name"`
}

// RequestsForMonth returns the joined report rows for a delivery month.
func (r *AnalyticsRepository) RequestsForMonth(ctx context.Context, month string) ([]MonthlyRequestRow, error) {
	const query = `SELECT r.id, r.status, r.cost::TEXT AS cost, r.delivery_month, r.delivery_address,
	s.company_name AS supplier_name, u.full_name AS logist_name
	FROM requests r
	JOIN suppliers s ON s.id = r.supplier_id
	JOIN logists l ON l.id = r.logist_id
	JOIN users u ON u.id = l.user_id
	WHERE r.delivery_month = $1
	ORDER BY r.created_at`
	var rows []MonthlyRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, month); err != nil {
		return nil, fmt.Errorf("query requests for month: %w", err)
	}
	return rows, nil
}
