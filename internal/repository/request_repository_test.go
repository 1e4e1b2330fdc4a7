package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/optilog/procurement-api/internal/models"
)

func newRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO request_items")).
		WithArgs(sqlmock.AnyArg(), "prod-1", 2, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO request_items")).
		WithArgs(sqlmock.AnyArg(), "prod-2", 1, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	request := &models.Request{
		Status:          models.StatusInProcess,
		SupplierID:      "sup-1",
		LogistID:        "log-1",
		Cost:            decimal.RequireFromString("30.00"),
		DeliveryMonth:   "2025-06",
		DeliveryAddress: "1 Depot Way",
		Items: []models.RequestItem{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 1},
		},
	}
	require.NoError(t, repo.Create(context.Background(), request))
	require.NotEmpty(t, request.ID)
	require.Equal(t, 1, request.Items[1].Position)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCreateRollsBackOnItemFailure(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO request_items")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	request := &models.Request{
		Status:     models.StatusInProcess,
		SupplierID: "sup-1",
		LogistID:   "log-1",
		Items:      []models.RequestItem{{ProductID: "prod-1", Quantity: 2}},
	}
	require.Error(t, repo.Create(context.Background(), request))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, supplier_id, logist_id, cost, delivery_month, delivery_address, created_at, updated_at FROM requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "supplier_id", "logist_id", "cost", "delivery_month", "delivery_address", "created_at", "updated_at"}).
			AddRow("req-1", "IN_PROCESS", "sup-1", "log-1", "30.00", "2025-06", "1 Depot Way", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM suppliers WHERE id = $1")).
		WithArgs("sup-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "company_name", "company_address", "product_type", "created_at", "updated_at"}).
			AddRow("sup-1", "user-1", "Acme", "2 Mill Rd", "HARDWARE", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM logists WHERE id = $1")).
		WithArgs("log-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "phone", "region", "created_at", "updated_at"}).
			AddRow("log-1", "user-2", "+15550100", "north", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM request_items WHERE request_id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "product_id", "quantity", "position"}).
			AddRow("req-1", "prod-1", 2, 0).
			AddRow("req-1", "prod-2", 1, 1))

	request, err := repo.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	require.Equal(t, models.StatusInProcess, request.Status)
	require.NotNil(t, request.Supplier)
	require.Equal(t, "Acme", request.Supplier.CompanyName)
	require.NotNil(t, request.Logist)
	require.Len(t, request.Items, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectQuery("SELECT .+ FROM requests WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRequestRepositoryUpdateStatusCAS(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")).
		WithArgs("req-1", models.StatusInProcess, models.StatusConfirmed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "req-1", models.StatusInProcess, models.StatusConfirmed))

	// Lost race: another writer already moved the row off the expected status.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status")).
		WithArgs("req-1", models.StatusInProcess, models.StatusConfirmed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), "req-1", models.StatusInProcess, models.StatusConfirmed)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM requests WHERE delivery_month = $1 AND status = $2 AND supplier_id = $3 ORDER BY created_at DESC LIMIT 50 OFFSET 0")).
		WithArgs("2025-06", models.StatusConfirmed, "sup-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "supplier_id", "logist_id", "cost", "delivery_month", "delivery_address", "created_at", "updated_at"}).
			AddRow("req-1", "CONFIRMED", "sup-1", "log-1", "30.00", "2025-06", "1 Depot Way", now, now))

	requests, err := repo.List(context.Background(), models.RequestFilter{
		Month:      "2025-06",
		Status:     models.StatusConfirmed,
		SupplierID: "sup-1",
	})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, "req-1", requests[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
