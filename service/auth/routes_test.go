package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KBoadi/Ripple-server/cmd/models"
	"github.com/KBoadi/Ripple-server/cmd/utils"
)

func setupServer(t *testing.T) (*gorm.DB, *mux.Router) {
	t.Helper()
	t.Setenv("SECRET_KEY", "test-secret")

	path := filepath.Join(t.TempDir(), "auth_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api").Subrouter()
	NewHandler(db).RegisterRoutes(subrouter)
	return db, router
}

func postJSON(t *testing.T, router *mux.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	_, router := setupServer(t)

	rec := postJSON(t, router, "/api/auth/register", map[string]string{
		"email":    "new@example.com",
		"password": "long-enough-password",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User models.UserRef `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, utils.AuthCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, router := setupServer(t)

	payload := map[string]string{"email": "dup@example.com", "password": "long-enough-password"}
	rec := postJSON(t, router, "/api/auth/register", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/api/auth/register", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_Validation(t *testing.T) {
	_, router := setupServer(t)

	rec := postJSON(t, router, "/api/auth/register", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "password")
}

func TestLogin(t *testing.T) {
	_, router := setupServer(t)

	payload := map[string]string{"email": "user@example.com", "password": "long-enough-password"}
	rec := postJSON(t, router, "/api/auth/register", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/api/auth/login", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Result().Cookies(), 1)

	rec = postJSON(t, router, "/api/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password-here",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	db, router := setupServer(t)

	user := models.User{Email: "me@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.CreateToken(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: utils.AuthCookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User models.UserRef `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.User.ID)

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
