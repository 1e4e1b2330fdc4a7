package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
)

type mockRequestRepo struct {
	requests map[string]*models.Request
	casFail  bool
}

func (m *mockRequestRepo) Create(ctx context.Context, request *models.Request) error {
	if m.requests == nil {
		m.requests = make(map[string]*models.Request)
	}
	if request.ID == "" {
		request.ID = "req-1"
	}
	stored := *request
	m.requests[request.ID] = &stored
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id string) (*models.Request, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id string, expected, next models.RequestStatus) error {
	if m.casFail {
		return sql.ErrNoRows
	}
	request, ok := m.requests[id]
	if !ok || request.Status != expected {
		return sql.ErrNoRows
	}
	request.Status = next
	return nil
}

func (m *mockRequestRepo) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	var result []models.Request
	for _, r := range m.requests {
		if filter.SupplierID != "" && filter.SupplierID != r.SupplierID {
			continue
		}
		if filter.LogistID != "" && filter.LogistID != r.LogistID {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

type mockProductStore struct {
	products map[string]models.Product
}

func (m *mockProductStore) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var result []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

type mockLogistResolver struct {
	logists map[string]*models.Logist
}

func (m *mockLogistResolver) GetByID(ctx context.Context, id string) (*models.Logist, error) {
	logist, ok := m.logists[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return logist, nil
}

type mockSupplierResolver struct {
	suppliers map[string]*models.Supplier
}

func (m *mockSupplierResolver) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	supplier, ok := m.suppliers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return supplier, nil
}

type mockAudit struct {
	logs []models.AuditLog
}

func (m *mockAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func price(raw string) decimal.Decimal {
	d, _ := decimal.NewFromString(raw)
	return d
}

func newLifecycleFixture() (*RequestService, *mockRequestRepo, *mockAudit) {
	repo := &mockRequestRepo{}
	products := &mockProductStore{products: map[string]models.Product{
		"prod-1": {ID: "prod-1", SupplierID: "sup-1", Name: "Bolts", Price: price("10.50")},
		"prod-2": {ID: "prod-2", SupplierID: "sup-1", Name: "Nuts", Price: price("2.25")},
		"prod-3": {ID: "prod-3", SupplierID: "sup-2", Name: "Washers", Price: price("0.75")},
	}}
	logists := &mockLogistResolver{logists: map[string]*models.Logist{
		"log-1": {ID: "log-1", UserID: "user-log-1"},
		"log-2": {ID: "log-2", UserID: "user-log-2"},
	}}
	suppliers := &mockSupplierResolver{suppliers: map[string]*models.Supplier{
		"sup-1": {ID: "sup-1", CompanyName: "Acme"},
		"sup-2": {ID: "sup-2", CompanyName: "Globex"},
	}}
	audit := &mockAudit{}
	return NewRequestService(repo, products, logists, suppliers, audit, nil), repo, audit
}

func TestCreateRequest(t *testing.T) {
	svc, _, audit := newLifecycleFixture()

	request, err := svc.Create(context.Background(), "log-1", dto.CreateRequestRequest{
		Lines: []dto.RequestLine{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 4},
		},
		DeliveryMonth:   "2025-06",
		DeliveryAddress: "Dock 4",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProcess, request.Status)
	assert.Equal(t, "sup-1", request.SupplierID)
	assert.Equal(t, "log-1", request.LogistID)
	assert.True(t, request.Cost.Equal(price("30.00")), "cost was %s", request.Cost)
	assert.Len(t, request.Items, 2)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionRequestCreate, audit.logs[0].Action)
}

func TestCreateRequestUnknownLogist(t *testing.T) {
	svc, _, _ := newLifecycleFixture()

	_, err := svc.Create(context.Background(), "log-404", dto.CreateRequestRequest{
		Lines: []dto.RequestLine{{ProductID: "prod-1", Quantity: 1}},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCreateRequestEmptyLines(t *testing.T) {
	svc, _, _ := newLifecycleFixture()

	_, err := svc.Create(context.Background(), "log-1", dto.CreateRequestRequest{})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateRequestUnknownProduct(t *testing.T) {
	svc, _, _ := newLifecycleFixture()

	_, err := svc.Create(context.Background(), "log-1", dto.CreateRequestRequest{
		Lines: []dto.RequestLine{{ProductID: "prod-404", Quantity: 1}},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCreateRequestMixedSuppliers(t *testing.T) {
	svc, _, _ := newLifecycleFixture()

	_, err := svc.Create(context.Background(), "log-1", dto.CreateRequestRequest{
		Lines: []dto.RequestLine{
			{ProductID: "prod-1", Quantity: 1},
			{ProductID: "prod-3", Quantity: 1},
		},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "same supplier")
}

func seedRequest(repo *mockRequestRepo, status models.RequestStatus) *models.Request {
	request := &models.Request{
		ID:         "req-1",
		Status:     status,
		SupplierID: "sup-1",
		LogistID:   "log-1",
		Cost:       price("30.00"),
	}
	if repo.requests == nil {
		repo.requests = make(map[string]*models.Request)
	}
	repo.requests[request.ID] = request
	return request
}

func TestSupplierReplyConfirm(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	status, err := svc.SupplierReply(context.Background(), "req-1", "sup-1", true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, status)
	assert.Equal(t, models.StatusConfirmed, repo.requests["req-1"].Status)
}

func TestSupplierReplyReject(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	status, err := svc.SupplierReply(context.Background(), "req-1", "sup-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, status)
}

func TestSupplierReplyWrongSupplier(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	_, err := svc.SupplierReply(context.Background(), "req-1", "sup-2", true)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestSupplierReplyRepeatedReply(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	_, err := svc.SupplierReply(context.Background(), "req-1", "sup-1", true)
	require.NoError(t, err)

	_, err = svc.SupplierReply(context.Background(), "req-1", "sup-1", false)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, models.StatusConfirmed, repo.requests["req-1"].Status)
}

func TestSupplierReplyNotFound(t *testing.T) {
	svc, _, _ := newLifecycleFixture()

	_, err := svc.SupplierReply(context.Background(), "req-404", "sup-1", true)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestChangeStatusForwardWalk(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	for _, target := range []models.RequestStatus{
		models.StatusConfirmed,
		models.StatusWaitingForPayment,
		models.StatusCompleted,
	} {
		ok, err := svc.ChangeStatus(context.Background(), "req-1", target)
		require.NoError(t, err, "target %s", target)
		assert.True(t, ok)
		assert.Equal(t, target, repo.requests["req-1"].Status)
	}
}

func TestChangeStatusSkipRejected(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	cases := []struct {
		name   string
		target models.RequestStatus
	}{
		{"skip ahead", models.StatusWaitingForPayment},
		{"straight to completed", models.StatusCompleted},
		{"reject via override", models.StatusRejected},
		{"no-op to same status", models.StatusInProcess},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ChangeStatus(context.Background(), "req-1", tc.target)
			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
		})
	}
	assert.Equal(t, models.StatusInProcess, repo.requests["req-1"].Status)
}

func TestChangeStatusUnknownTarget(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	_, err := svc.ChangeStatus(context.Background(), "req-1", "SHIPPED")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestChangeStatusTerminal(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusCompleted)

	_, err := svc.ChangeStatus(context.Background(), "req-1", models.StatusCompleted)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestConfirmDelivery(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusWaitingForPayment)

	ok, err := svc.ConfirmDelivery(context.Background(), "log-2", "req-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StatusCompleted, repo.requests["req-1"].Status)
}

func TestConfirmDeliveryByCreator(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusWaitingForPayment)

	// The request's own logist may not confirm delivery.
	_, err := svc.ConfirmDelivery(context.Background(), "log-1", "req-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, models.StatusWaitingForPayment, repo.requests["req-1"].Status)
}

func TestConfirmDeliveryWrongStatus(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	_, err := svc.ConfirmDelivery(context.Background(), "log-2", "req-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestTransitionLostRace(t *testing.T) {
	svc, repo, _ := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)
	repo.casFail = true

	_, err := svc.SupplierReply(context.Background(), "req-1", "sup-1", true)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "concurrently")
}

func TestTransitionEmitsAudit(t *testing.T) {
	svc, repo, audit := newLifecycleFixture()
	seedRequest(repo, models.StatusInProcess)

	_, err := svc.SupplierReply(context.Background(), "req-1", "sup-1", true)
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionRequestTransition, audit.logs[0].Action)
}

func TestGetRequestInternalError(t *testing.T) {
	svc := NewRequestService(&failingRequestRepo{}, nil, nil, nil, nil, nil)

	_, err := svc.Get(context.Background(), "req-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

type failingRequestRepo struct{ mockRequestRepo }

func (f *failingRequestRepo) GetByID(ctx context.Context, id string) (*models.Request, error) {
	return nil, errors.New("connection reset")
}
