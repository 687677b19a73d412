package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cgdb-project/cgdb/internal/middleware"
	"github.com/cgdb-project/cgdb/internal/services"
	"github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/response"
)

// LocationHandler exposes HTTP endpoints for field locations.
type LocationHandler struct {
	svc *services.LocationService
}

// NewLocationHandler constructs a location handler.
func NewLocationHandler(svc *services.LocationService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

// List returns the locations visible to the current user.
func (h *LocationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 0)

	locations, total, err := h.svc.List(requestContext(c), userID, page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, locations, &response.Meta{
		Page:  page,
		Total: int(total),
	})
}

// Create registers a new location.
func (h *LocationHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateLocationInput
	if !bindAndValidate(c, &payload) {
		return
	}

	location, err := h.svc.Create(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, location)
}

// Get returns a single location.
func (h *LocationHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	location, err := h.svc.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, location)
}

// Update modifies location metadata.
func (h *LocationHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.UpdateLocationInput
	if !bindAndValidate(c, &payload) {
		return
	}

	location, err := h.svc.Update(requestContext(c), userID, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, location)
}

// Delete removes a location.
func (h *LocationHandler) Delete(c *gin.Context) {
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
