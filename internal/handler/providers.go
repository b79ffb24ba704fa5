package handler

import (
	"errors"
	"net/http"

	"supplierledger/internal/apierror"
	"supplierledger/internal/dto"
	"supplierledger/internal/service"

	"github.com/gin-gonic/gin"
)

type ProvidersHandler struct{ svc service.ProviderService }

func NewProvidersHandler(svc service.ProviderService) *ProvidersHandler {
	return &ProvidersHandler{svc: svc}
}

// writeServiceError maps service sentinels to status codes; anything else is
// pushed to c.Errors so ErrorHandler logs it and answers a generic 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProviderNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Proveedor no encontrado"))
	case errors.Is(err, service.ErrDocumentTaken):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}

// Create godoc
// @Summary Alta de proveedor
// @Tags providers
// @Accept json
// @Produce json
// @Param body body dto.ProviderRequest true "Proveedor"
// @Success 201 {object} dto.ProviderResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/providers [post]
func (h *ProvidersHandler) Create(c *gin.Context) {
	var req dto.ProviderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List GET /v1/providers
func (h *ProvidersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListActive GET /v1/providers/active
func (h *ProvidersHandler) ListActive(c *gin.Context) {
	resp, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search GET /v1/providers/search?q=
func (h *ProvidersHandler) Search(c *gin.Context) {
	var q dto.ProviderSearch
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Search(c.Request.Context(), q.Q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID GET /v1/providers/:id
func (h *ProvidersHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update PUT /v1/providers/:id
func (h *ProvidersHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ProviderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate DELETE /v1/providers/:id is a logical delete; returns the updated record.
func (h *ProvidersHandler) Deactivate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Deactivate(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Activate PATCH /v1/providers/:id/activate
func (h *ProvidersHandler) Activate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Activate(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cities GET /v1/providers/cities
func (h *ProvidersHandler) Cities(c *gin.Context) {
	resp, err := h.svc.Cities(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Countries GET /v1/providers/countries
func (h *ProvidersHandler) Countries(c *gin.Context) {
	resp, err := h.svc.Countries(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
