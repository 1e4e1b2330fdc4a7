package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/service"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
	"github.com/optilog/procurement-api/pkg/response"
)

// SupplierHandler exposes supplier registration and profile endpoints.
type SupplierHandler struct {
	service *service.SupplierService
}

// NewSupplierHandler constructs the handler.
func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: svc}
}

// Register godoc
// @Summary Register supplier
// @Description Create a supplier account with its company profile
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param payload body dto.CreateSupplierRequest true "Supplier registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /suppliers [post]
func (h *SupplierHandler) Register(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid supplier payload"))
		return
	}
	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, user, nil)
}

// List godoc
// @Summary List suppliers
// @Tags Suppliers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suppliers, nil)
}

// Get godoc
// @Summary Get supplier by ID
// @Tags Suppliers
// @Produce json
// @Param id path string true "Supplier ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /suppliers/{id} [get]
func (h *SupplierHandler) Get(c *gin.Context) {
	supplier, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, supplier, nil)
}

// UpdateMe godoc
// @Summary Update own supplier profile
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSupplierRequest true "Profile changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /suppliers/me [put]
func (h *SupplierHandler) UpdateMe(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid supplier payload"))
		return
	}
	supplier, err := h.service.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, supplier, nil)
}
