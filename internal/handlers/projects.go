package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cgdb-project/cgdb/internal/middleware"
	"github.com/cgdb-project/cgdb/internal/services"
	"github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/response"
)

// ProjectHandler exposes HTTP endpoints for projects.
type ProjectHandler struct {
	svc *services.ProjectService
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List returns the projects visible to the current user.
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 0)

	projects, total, err := h.svc.List(requestContext(c), userID, page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, projects, &response.Meta{
		Page:  page,
		Total: int(total),
	})
}

// Create registers a new project owned by the current user.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.CreateProjectInput
	if !bindAndValidate(c, &payload) {
		return
	}

	project, err := h.svc.Create(requestContext(c), userID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, project)
}

// Get returns a single project.
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	project, err := h.svc.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// Update modifies project metadata.
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var payload services.UpdateProjectInput
	if !bindAndValidate(c, &payload) {
		return
	}

	project, err := h.svc.Update(requestContext(c), userID, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// Delete removes a project.
func (h *ProjectHandler) Delete(c *gin.Context) {
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
