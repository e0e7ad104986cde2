package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/attendance-tracker/internal/auth"
	"github.com/iliyamo/attendance-tracker/internal/config"
	"github.com/iliyamo/attendance-tracker/internal/middleware"
	"github.com/iliyamo/attendance-tracker/internal/repository"
)

// fakeUsers is an in-memory PrincipalStore keyed by username.
type fakeUsers map[string]repository.User

func (f fakeUsers) GetByUsername(_ context.Context, username string) (repository.User, error) {
	u, ok := f[username]
	if !ok {
		return repository.User{}, repository.ErrPrincipalNotFound
	}
	return u, nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:     "handler-secret",
		SessionTTLMin: 60,
		BcryptCost:    bcrypt.MinCost,
		TZOffsetHours: 7,
		CutoffHour:    7,
		CutoffMinute:  30,
	}
}

func seedUsers(t *testing.T) fakeUsers {
	t.Helper()
	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return fakeUsers{
		"mrfu": {
			ID:           1,
			Username:     "mrfu",
			PasswordHash: hash,
			FullName:     "Mr Fu",
			Role:         repository.RoleUser,
			TokenVersion: 1,
		},
	}
}

func postJSON(path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"success", `{"username":"mrfu","password":"password123"}`, http.StatusOK},
		{"wrong password", `{"username":"mrfu","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"ghost","password":"password123"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"mrfu"}`, http.StatusBadRequest},
		{"empty body", `{}`, http.StatusBadRequest},
	}
	h := NewAuthHandler(testConfig(), seedUsers(t))
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := postJSON("/api/login", tt.body)
			if err := h.Login(e.NewContext(req, rec)); err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			claims, err := auth.Verify("handler-secret", resp.Token)
			if err != nil {
				t.Fatalf("issued token does not verify: %v", err)
			}
			if claims.Username != "mrfu" || claims.Version != 1 {
				t.Errorf("claims = %+v, want username mrfu version 1", claims)
			}
		})
	}
}

// TestLoginThenAuthorize covers the roundtrip: a token from login passes
// the guard and yields the same username.
func TestLoginThenAuthorize(t *testing.T) {
	cfg := testConfig()
	h := NewAuthHandler(cfg, seedUsers(t))
	e := echo.New()

	req, rec := postJSON("/api/login", `{"username":"mrfu","password":"password123"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	greq := httptest.NewRequest(http.MethodGet, "/api/cek_login", nil)
	greq.Header.Set("Authorization", "Bearer "+resp.Token)
	grec := httptest.NewRecorder()
	c := e.NewContext(greq, grec)
	guarded := middleware.TokenGuard(cfg.JWTSecret, nil)(h.CheckLogin)
	if err := guarded(c); err != nil {
		t.Fatalf("guard error = %v", err)
	}
	if grec.Code != http.StatusOK {
		t.Fatalf("guarded status = %d, want 200", grec.Code)
	}
	if got, _ := c.Get("username").(string); got != "mrfu" {
		t.Errorf("authorized username = %q, want mrfu", got)
	}
}

func TestRefreshToken(t *testing.T) {
	cfg := testConfig()
	h := NewAuthHandler(cfg, seedUsers(t))
	e := echo.New()

	old, err := auth.Issue(cfg.JWTSecret, "mrfu", repository.RoleUser, 1, time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer "+old.Value)
	rec := httptest.NewRecorder()
	if err := h.RefreshToken(e.NewContext(req, rec)); err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	claims, err := auth.Verify(cfg.JWTSecret, resp.Token)
	if err != nil {
		t.Fatalf("renewed token does not verify: %v", err)
	}
	if claims.Username != "mrfu" {
		t.Errorf("renewed subject = %q, want mrfu", claims.Username)
	}
	// The old token is a separate artifact and still verifies.
	if _, err := auth.Verify(cfg.JWTSecret, old.Value); err != nil {
		t.Errorf("old token stopped verifying: %v", err)
	}
}

func TestDashboardData(t *testing.T) {
	h := NewAuthHandler(testConfig(), seedUsers(t))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard_data", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "mrfu")
	if err := h.DashboardData(c); err != nil {
		t.Fatalf("DashboardData() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
		Role    string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Message != "Welcome Mr Fu" || resp.Role != repository.RoleUser {
		t.Errorf("response = %+v", resp)
	}
}

func TestDashboardDataUnknownPrincipal(t *testing.T) {
	h := NewAuthHandler(testConfig(), seedUsers(t))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard_data", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "deleted.user")
	if err := h.DashboardData(c); err != nil {
		t.Fatalf("DashboardData() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
