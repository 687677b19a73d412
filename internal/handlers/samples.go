package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cgdb-project/cgdb/internal/middleware"
	"github.com/cgdb-project/cgdb/internal/services"
	"github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/response"
)

// SampleHandler exposes HTTP endpoints for samples.
type SampleHandler struct {
	svc *services.SampleService
}

// NewSampleHandler constructs a sample handler.
func NewSampleHandler(svc *services.SampleService) *SampleHandler {
	return &SampleHandler{svc: svc}
}

// List returns the samples visible to the current user.
func (h *SampleHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 0)

	samples, total, err := h.svc.List(requestContext(c), userID, page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, samples, &response.Meta{
		Page:  page,
		Total: int(total),
	})
}

// Create registers a new sample.
func (h *SampleHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateSampleInput
	if !bindAndValidate(c, &payload) {
		return
	}

	sample, err := h.svc.Create(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sample)
}

// Get returns a single sample.
func (h *SampleHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	sample, err := h.svc.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, sample)
}

// Update modifies sample metadata.
func (h *SampleHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.UpdateSampleInput
	if !bindAndValidate(c, &payload) {
		return
	}

	sample, err := h.svc.Update(requestContext(c), userID, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, sample)
}

// Delete removes a sample.
func (h *SampleHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.svc.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
