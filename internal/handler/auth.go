package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // errors.Is comparisons against sentinel errors
    "net/http" // HTTP status codes and primitives
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/attendance-tracker/internal/auth"       // token issuing and password checks
    "github.com/iliyamo/attendance-tracker/internal/config"     // app configuration
    "github.com/iliyamo/attendance-tracker/internal/middleware" // bearer extraction for token renewal
    "github.com/iliyamo/attendance-tracker/internal/repository" // DB repositories
)

// PrincipalStore is the slice of the user repository the handlers need.
// Satisfied by repository.UserRepo.
type PrincipalStore interface {
    GetByUsername(ctx context.Context, username string) (repository.User, error)
}

// dummyHash is a bcrypt hash compared against when the username does not
// exist, so a failed login takes the same time either way and the response
// never betrays which half of the credentials was wrong.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg   config.Config
    Users PrincipalStore
}

func NewAuthHandler(cfg config.Config, users PrincipalStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

type tokenResp struct {
    Token string `json:"token"`
}

// Login verifies a username/password pair and returns a fresh session
// token. Unknown username and wrong password produce the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing username or password"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, req.Username)
    if err != nil {
        if errors.Is(err, repository.ErrPrincipalNotFound) {
            auth.VerifyPassword(dummyHash, req.Password) // equalize timing
            return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
    }
    if !auth.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
    }

    tok, err := auth.Issue(h.Cfg.JWTSecret, u.Username, u.Role, u.TokenVersion, h.Cfg.SessionTTL())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
    }
    return c.JSON(http.StatusOK, tokenResp{Token: tok.Value})
}

// RefreshToken issues a brand-new token for the already-authenticated
// subject. The old token is untouched and stays valid until its own
// expiry; renewal produces a distinct artifact, not an extension.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
    raw, err := middleware.ParseBearer(c.Request().Header.Get("Authorization"))
    if err != nil {
        // The guard already accepted this request, so this only fires when
        // the handler is called outside its normal route setup.
        return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
    }
    tok, err := auth.Renew(h.Cfg.JWTSecret, raw, h.Cfg.SessionTTL())
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
    }
    return c.JSON(http.StatusOK, tokenResp{Token: tok.Value})
}

// DashboardData returns the greeting and role for the authenticated
// principal.
func (h *AuthHandler) DashboardData(c echo.Context) error {
    username, _ := c.Get("username").(string)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, username)
    if err != nil {
        if errors.Is(err, repository.ErrPrincipalNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message": "Welcome " + u.FullName,
        "role":    u.Role,
    })
}

// CheckLogin lets a client confirm its stored token is still accepted.
// Reaching the handler at all means the guard passed.
func (h *AuthHandler) CheckLogin(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"message": "logged_in"})
}
