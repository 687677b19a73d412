package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	iauth "github.com/cgdb-project/cgdb/internal/auth"
	"github.com/cgdb-project/cgdb/internal/database"
	"github.com/cgdb-project/cgdb/internal/models"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)
	r, err := NewRouter(db, jwt)
	require.NoError(t, err)
	return r, db
}

func seedAccount(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	hash, err := iauth.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.org",
		Password: hash,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Data.Token)
	return payload.Data.Token
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresAuthentication(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectFlowOverHTTP(t *testing.T) {
	r, db := setupRouter(t)

	seedAccount(t, db, "alice", "password-one")
	seedAccount(t, db, "mallory", "password-two")
	alice := login(t, r, "alice", "password-one")
	mallory := login(t, r, "mallory", "password-two")

	// Alice creates a project and immediately owns it.
	w := doJSON(t, r, http.MethodPost, "/api/projects", alice, gin.H{
		"title": "Glacial Lakes",
		"label": "GL",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Project `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	projectID := created.Data.ID
	require.NotEmpty(t, projectID)

	w = doJSON(t, r, http.MethodGet, "/api/projects/"+projectID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Mallory gets the same generic denial for view and change.
	w = doJSON(t, r, http.MethodGet, "/api/projects/"+projectID, mallory, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	viewDenial := w.Body.String()

	w = doJSON(t, r, http.MethodPatch, "/api/projects/"+projectID, mallory, gin.H{"title": "Stolen"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, viewDenial, w.Body.String())

	// Mallory's listing does not contain the project.
	w = doJSON(t, r, http.MethodGet, "/api/projects", mallory, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), projectID)

	// Alice grants Mallory view through the grants endpoint.
	var malloryUser models.User
	require.NoError(t, db.First(&malloryUser, "username = ?", "mallory").Error)
	w = doJSON(t, r, http.MethodPost, "/api/projects/"+projectID+"/grants", alice, gin.H{
		"subject_type": "user",
		"subject_id":   malloryUser.ID,
		"permissions":  []string{"view"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/projects/"+projectID, mallory, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, db := setupRouter(t)
	seedAccount(t, db, "alice", "password-one")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
