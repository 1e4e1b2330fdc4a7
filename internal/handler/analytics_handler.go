package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/optilog/procurement-api/internal/middleware"
	"github.com/optilog/procurement-api/internal/models"
	"github.com/optilog/procurement-api/internal/service"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
	"github.com/optilog/procurement-api/pkg/response"
)

// AnalyticsHandler exposes monthly procurement analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

type monthlyCountFn func(ctx *gin.Context, month string) (models.MonthlyCount, bool, error)

func (h *AnalyticsHandler) serveCount(c *gin.Context, fetch monthlyCountFn) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	month := c.Query("month")
	start := time.Now()
	count, cacheHit, err := fetch(c, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, count, nil, meta)
}

// TotalRequests godoc
// @Summary Total requests for a month
// @Tags Analytics
// @Produce json
// @Param month query string true "Delivery month YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /analytics/total-requests [get]
func (h *AnalyticsHandler) TotalRequests(c *gin.Context) {
	h.serveCount(c, func(ctx *gin.Context, month string) (models.MonthlyCount, bool, error) {
		return h.analytics.TotalRequests(ctx.Request.Context(), month)
	})
}

// RejectedRequests godoc
// @Summary Rejected requests for a month
// @Tags Analytics
// @Produce json
// @Param month query string true "Delivery month YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /analytics/rejected-requests [get]
func (h *AnalyticsHandler) RejectedRequests(c *gin.Context) {
	h.serveCount(c, func(ctx *gin.Context, month string) (models.MonthlyCount, bool, error) {
		return h.analytics.RejectedRequests(ctx.Request.Context(), month)
	})
}

// CompletedRequests godoc
// @Summary Completed requests for a month
// @Tags Analytics
// @Produce json
// @Param month query string true "Delivery month YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /analytics/completed-requests [get]
func (h *AnalyticsHandler) CompletedRequests(c *gin.Context) {
	h.serveCount(c, func(ctx *gin.Context, month string) (models.MonthlyCount, bool, error) {
		return h.analytics.CompletedRequests(ctx.Request.Context(), month)
	})
}

// SupplierPayments godoc
// @Summary Completed payment totals per supplier
// @Tags Analytics
// @Produce json
// @Param month query string true "Delivery month YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /analytics/supplier-payments [get]
func (h *AnalyticsHandler) SupplierPayments(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	payments, cacheHit, err := h.analytics.SupplierPayments(c.Request.Context(), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, payments, nil, meta)
}

// Overview godoc
// @Summary Monthly procurement overview
// @Tags Analytics
// @Produce json
// @Param month query string true "Delivery month YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.analytics.MonthlyOverview(c.Request.Context(), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, overview, nil, meta)
}

// SystemMetrics godoc
// @Summary Runtime metrics snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) SystemMetrics(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), nil)
}
