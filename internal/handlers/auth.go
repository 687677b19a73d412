package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/cgdb-project/cgdb/internal/auth"
	"github.com/cgdb-project/cgdb/internal/middleware"
	"github.com/cgdb-project/cgdb/internal/models"
	"github.com/cgdb-project/cgdb/pkg/errors"
	"github.com/cgdb-project/cgdb/pkg/response"
)

// AuthHandler exposes login and identity endpoints.
type AuthHandler struct {
	db  *gorm.DB
	svc *iauth.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, svc *iauth.AuthService) *AuthHandler {
	return &AuthHandler{db: db, svc: svc}
}

// Login authenticates local credentials and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload iauth.LoginInput
	if !bindAndValidate(c, &payload) {
		return
	}

	result, err := h.svc.Login(requestContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Me returns the authenticated user's profile with group memberships.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var user models.User
	if err := h.db.WithContext(requestContext(c)).
		Preload("Groups").
		First(&user, "id = ?", userID).Error; err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, &user)
}
