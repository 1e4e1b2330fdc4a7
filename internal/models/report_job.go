package models

import "time"

// ReportFormat enumerates supported report output formats.
type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

// ReportStatus tracks the lifecycle of an asynchronous report job.
type ReportStatus string

const (
	ReportStatusQueued   ReportStatus = "QUEUED"
	ReportStatusRunning  ReportStatus = "RUNNING"
	ReportStatusFinished ReportStatus = "FINISHED"
	ReportStatusFailed   ReportStatus = "FAILED"
)

// ReportJob describes one queued monthly report generation.
type ReportJob struct {
	ID           string       `db:"id" json:"id"`
	Month        string       `db:"month" json:"month"`
	Format       ReportFormat `db:"format" json:"format"`
	Status       ReportStatus `db:"status" json:"status"`
	Progress     int          `db:"progress" json:"progress"`
	ResultURL    *string      `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string      `db:"error_message" json:"error,omitempty"`
	RequestedBy  string       `db:"requested_by" json:"requested_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
}
