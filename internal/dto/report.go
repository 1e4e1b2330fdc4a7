package dto

import "github.com/optilog/procurement-api/internal/models"

// MonthlyReportRequest enqueues a monthly report generation job.
type MonthlyReportRequest struct {
	Month  string              `json:"month" validate:"required"`
	Format models.ReportFormat `json:"format"`
}
