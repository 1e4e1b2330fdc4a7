package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	"github.com/optilog/procurement-api/internal/repository"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
	"github.com/optilog/procurement-api/pkg/jobs"
	"github.com/optilog/procurement-api/pkg/storage"
)

type mockReportStore struct {
	jobs map[string]*models.ReportJob
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{jobs: map[string]*models.ReportJob{}}
}

func (m *mockReportStore) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *mockReportStore) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *mockReportStore) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *mockReportStore) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (m *mockReportStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type mockDispatcher struct {
	enqueued []jobs.Job
	fail     bool
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.fail {
		return errors.New("queue full")
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

type mockGenerator struct {
	result *ExportResult
	err    error
	calls  int
}

func (m *mockGenerator) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestCreateReportJob(t *testing.T) {
	store := newMockReportStore()
	queue := &mockDispatcher{}
	svc := NewReportService(store, queue, nil, nil, ReportServiceConfig{})

	job, err := svc.CreateJob(context.Background(), dto.MonthlyReportRequest{Month: "2025-06"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatPDF, job.Format, "format defaults to pdf")
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.Equal(t, "admin-1", job.RequestedBy)

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, job.ID, queue.enqueued[0].ID)
	assert.Equal(t, "monthly_report", queue.enqueued[0].Type)
}

func TestCreateReportJobRejectsBadInput(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store, &mockDispatcher{}, nil, nil, ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.MonthlyReportRequest{Month: "soon"}, "admin-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.CreateJob(context.Background(), dto.MonthlyReportRequest{Month: "2025-06", Format: "xlsx"}, "admin-1")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, store.jobs)
}

func TestCreateReportJobEnqueueFailure(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store, &mockDispatcher{fail: true}, nil, nil, ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.MonthlyReportRequest{Month: "2025-06"}, "admin-1")
	require.Error(t, err)

	require.Len(t, store.jobs, 1)
	for _, job := range store.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
		assert.Contains(t, *job.ErrorMessage, "enqueue")
	}
}

func TestGetStatusNotFound(t *testing.T) {
	svc := NewReportService(newMockReportStore(), &mockDispatcher{}, nil, nil, ReportServiceConfig{})

	_, err := svc.GetStatus(context.Background(), "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRecoverPendingJobs(t *testing.T) {
	store := newMockReportStore()
	queue := &mockDispatcher{}
	svc := NewReportService(store, queue, nil, nil, ReportServiceConfig{})

	queuedJob := &models.ReportJob{Month: "2025-06", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	require.NoError(t, store.Create(context.Background(), queuedJob))
	finished := models.ReportStatusFinished
	doneJob := &models.ReportJob{Month: "2025-05", Format: models.ReportFormatCSV, Status: finished}
	require.NoError(t, store.Create(context.Background(), doneJob))

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, queuedJob.ID, queue.enqueued[0].ID)
}

func TestReportWorkerFinishesJob(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{Month: "2025-06", Format: models.ReportFormatCSV}
	require.NoError(t, store.Create(context.Background(), job))

	generator := &mockGenerator{result: &ExportResult{
		URL:    "/api/v1/export/tok123",
		Format: models.ReportFormatCSV,
	}}
	worker := NewReportWorker(store, generator, 3, nil)

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID, Type: "monthly_report"}))

	stored := store.jobs[job.ID]
	assert.Equal(t, models.ReportStatusFinished, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.ResultURL)
	assert.Equal(t, "/api/v1/export/tok123", *stored.ResultURL)
	require.NotNil(t, stored.FinishedAt)
}

func TestReportWorkerRequeuesBeforeMaxRetries(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{Month: "2025-06", Format: models.ReportFormatCSV}
	require.NoError(t, store.Create(context.Background(), job))

	generator := &mockGenerator{err: errors.New("render failed")}
	worker := NewReportWorker(store, generator, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 1})
	require.Error(t, err)

	stored := store.jobs[job.ID]
	assert.Equal(t, models.ReportStatusQueued, stored.Status, "job goes back to the queue")
	assert.Equal(t, 0, stored.Progress)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "render failed", *stored.ErrorMessage)
	assert.Nil(t, stored.FinishedAt)
}

func TestReportWorkerFailsAfterMaxRetries(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{Month: "2025-06", Format: models.ReportFormatCSV}
	require.NoError(t, store.Create(context.Background(), job))

	generator := &mockGenerator{err: errors.New("render failed")}
	worker := NewReportWorker(store, generator, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 3})
	require.Error(t, err)

	stored := store.jobs[job.ID]
	assert.Equal(t, models.ReportStatusFailed, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.FinishedAt)
}

type staticReportSource struct {
	rows     []repository.MonthlyRequestRow
	payments []models.SupplierPayment
}

func (s *staticReportSource) RequestsForMonth(ctx context.Context, month string) ([]repository.MonthlyRequestRow, error) {
	return s.rows, nil
}

func (s *staticReportSource) SupplierPayments(ctx context.Context, month string) ([]models.SupplierPayment, error) {
	return s.payments, nil
}

func newExportFixture(t *testing.T) (*ExportService, *mockReportStore) {
	t.Helper()
	localStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	source := &staticReportSource{
		rows: []repository.MonthlyRequestRow{
			{
				ID:              "req-1",
				Status:          models.StatusCompleted,
				Cost:            "30.00",
				DeliveryMonth:   "2025-06",
				DeliveryAddress: "1 Depot Way",
				SupplierName:    "Acme",
				LogistName:      "Pat Hauler",
			},
		},
		payments: []models.SupplierPayment{
			{SupplierID: "sup-1", CompanyName: "Acme", TotalPayment: "30.00"},
		},
	}
	exporter := NewExportService(source, localStorage, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
	return exporter, newMockReportStore()
}

func TestExportGenerateAndDownloadRoundTrip(t *testing.T) {
	exporter, store := newExportFixture(t)

	job := &models.ReportJob{Month: "2025-06", Format: models.ReportFormatCSV, RequestedBy: "admin-1"}
	require.NoError(t, store.Create(context.Background(), job))

	worker := NewReportWorker(store, exporter, 3, nil)
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID}))

	stored := store.jobs[job.ID]
	require.Equal(t, models.ReportStatusFinished, stored.Status)
	require.NotNil(t, stored.ResultURL)
	assert.True(t, strings.HasPrefix(*stored.ResultURL, "/api/v1/export/"), *stored.ResultURL)

	svc := NewReportService(store, &mockDispatcher{}, exporter, nil, ReportServiceConfig{})
	token := extractToken(*stored.ResultURL)
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, models.ReportFormatCSV, download.Format)
	payload, err := io.ReadAll(download.File)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Request ID")
	assert.Contains(t, content, "req-1")
	assert.Contains(t, content, "Acme")
	assert.Contains(t, content, "30.00")
}

func TestResolveDownloadRejectsBadToken(t *testing.T) {
	exporter, store := newExportFixture(t)
	svc := NewReportService(store, &mockDispatcher{}, exporter, nil, ReportServiceConfig{})

	_, err := svc.ResolveDownload(context.Background(), "garbage-token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestResolveDownloadRequiresFinishedJob(t *testing.T) {
	exporter, store := newExportFixture(t)

	job := &models.ReportJob{Month: "2025-06", Format: models.ReportFormatCSV}
	require.NoError(t, store.Create(context.Background(), job))

	result, err := exporter.Generate(context.Background(), store.jobs[job.ID])
	require.NoError(t, err)
	url := result.URL
	store.jobs[job.ID].ResultURL = &url

	svc := NewReportService(store, &mockDispatcher{}, exporter, nil, ReportServiceConfig{})
	_, err = svc.ResolveDownload(context.Background(), result.Token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code, "job still queued must not be downloadable")
}
