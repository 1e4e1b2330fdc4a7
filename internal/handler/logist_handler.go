package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/optilog/procurement-api/internal/dto"
	"github.com/optilog/procurement-api/internal/service"
	appErrors "github.com/optilog/procurement-api/pkg/errors"
	"github.com/optilog/procurement-api/pkg/response"
)

// LogistHandler exposes logist registration and profile endpoints.
type LogistHandler struct {
	service *service.LogistService
}

// NewLogistHandler constructs the handler.
func NewLogistHandler(svc *service.LogistService) *LogistHandler {
	return &LogistHandler{service: svc}
}

// Register godoc
// @Summary Register logist
// @Description Create a logist account with its profile
// @Tags Logists
// @Accept json
// @Produce json
// @Param payload body dto.CreateLogistRequest true "Logist registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /logists [post]
func (h *LogistHandler) Register(c *gin.Context) {
	var req dto.CreateLogistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid logist payload"))
		return
	}
	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, user, nil)
}

// Get godoc
// @Summary Get logist by ID
// @Tags Logists
// @Produce json
// @Param id path string true "Logist ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /logists/{id} [get]
func (h *LogistHandler) Get(c *gin.Context) {
	logist, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logist, nil)
}

// UpdateMe godoc
// @Summary Update own logist profile
// @Tags Logists
// @Accept json
// @Produce json
// @Param payload body dto.UpdateLogistRequest true "Profile changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /logists/me [put]
func (h *LogistHandler) UpdateMe(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateLogistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid logist payload"))
		return
	}
	logist, err := h.service.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logist, nil)
}
