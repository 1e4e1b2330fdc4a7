package models

import "time"

// MonthlyOverview summarises request activity for one delivery month.
type MonthlyOverview struct {
	Month             string            `json:"month"`
	TotalRequests     int               `json:"total_requests"`
	RejectedRequests  int               `json:"rejected_requests"`
	CompletedRequests int               `json:"completed_requests"`
	SupplierPayments  []SupplierPayment `json:"supplier_payments"`
}

// MonthlyCount is the response body for single-counter analytics endpoints.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// SystemMetrics is a lightweight aggregate of runtime metrics for API consumption.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
