package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	service, _, _ := newTestService(t)
	h := NewHandler(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	return r
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterSuccess(t *testing.T) {
	r := setupTestRouter(t)

	w := postJSON(r, "/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Password@123",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("$2a$")) {
		t.Fatal("password hash leaked in response")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	r := setupTestRouter(t)

	w := postJSON(r, "/auth/register", map[string]string{
		"email": "test@example.com",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupTestRouter(t)

	payload := map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Password@123",
	}

	postJSON(r, "/auth/register", payload)
	w := postJSON(r, "/auth/register", payload)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
}

func TestLoginReturnsToken(t *testing.T) {
	r := setupTestRouter(t)

	postJSON(r, "/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Password@123",
	})

	w := postJSON(r, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "Password@123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Token == "" {
		t.Fatal("missing token")
	}

	w = postJSON(r, "/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}
