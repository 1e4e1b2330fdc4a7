package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/models"
	"github.com/optilog/procurement-api/internal/service"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
	"github.com/optilog/procurement-api/pkg/response"
)

// RequestHandler exposes the procurement request lifecycle endpoints.
type RequestHandler struct {
	service   *service.RequestService
	logists   *service.LogistService
	suppliers *service.SupplierService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(svc *service.RequestService, logists *service.LogistService, suppliers *service.SupplierService) *RequestHandler {
	return &RequestHandler{service: svc, logists: logists, suppliers: suppliers}
}

// Create godoc
// @Summary Create procurement request
// @Description Create a request from product lines; all lines must belong to one supplier
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	logist, err := h.logists.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	request, err := h.service.Create(c.Request.Context(), logist.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil)
}

// Get godoc
// @Summary Get request by ID
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// List godoc
// @Summary List requests
// @Tags Requests
// @Produce json
// @Param month query string false "Delivery month YYYY-MM"
// @Param status query string false "Request status"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.RequestFilter{
		Month:  c.Query("month"),
		Status: models.RequestStatus(c.Query("status")),
	}
	// Non-admin actors only ever see their own requests.
	switch claims.Role {
	case models.RoleSupplier:
		supplier, err := h.suppliers.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.SupplierID = supplier.ID
	case models.RoleLogist:
		logist, err := h.logists.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.LogistID = logist.ID
	}
	requests, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Reply godoc
// @Summary Supplier reply
// @Description Confirm or reject a pending request addressed to the acting supplier
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ReplyRequest true "Reply payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/reply [post]
func (h *RequestHandler) Reply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "confirm flag is required"))
		return
	}
	supplier, err := h.suppliers.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	newStatus, err := h.service.SupplierReply(c.Request.Context(), c.Param("id"), supplier.ID, *req.Confirm)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ReplyResponse{NewStatus: newStatus}, nil)
}

// ChangeStatus godoc
// @Summary Administrative status change
// @Description Advance a request one step along the lifecycle
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ChangeStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/status [put]
func (h *RequestHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	ok, err := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.StatusChangeResponse{Success: ok}, nil)
}

// ConfirmDelivery godoc
// @Summary Logist delivery confirmation
// @Description Complete a request awaiting payment
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/confirm [post]
func (h *RequestHandler) ConfirmDelivery(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	logist, err := h.logists.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	ok, err := h.service.ConfirmDelivery(c.Request.Context(), logist.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.StatusChangeResponse{Success: ok}, nil)
}
