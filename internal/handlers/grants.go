package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cgdb-project/cgdb/internal/middleware"
	"github.com/cgdb-project/cgdb/internal/services"
	"github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/response"
)

// GrantHandler exposes grant administration endpoints.
type GrantHandler struct {
	svc *services.GrantService
}

// NewGrantHandler constructs a grant handler.
func NewGrantHandler(svc *services.GrantService) *GrantHandler {
	return &GrantHandler{svc: svc}
}

// GrantProject adds project permissions for a user or group.
func (h *GrantHandler) GrantProject(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.GrantProjectInput
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.svc.GrantProject(requestContext(c), userID, c.Param("id"), payload); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"granted": true})
}

// ListProjectGrants returns the grants held on a project.
func (h *GrantHandler) ListProjectGrants(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	grants, err := h.svc.ListProjectGrants(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, grants)
}

// GrantRecord adds per-record permissions on an unowned record kind.
func (h *GrantHandler) GrantRecord(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.GrantProjectInput
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.svc.GrantRecord(requestContext(c), userID, c.Param("kind"), c.Param("id"), payload); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"granted": true})
}
