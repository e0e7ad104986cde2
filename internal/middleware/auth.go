package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"  // context type for the version checker interface
    "errors"   // sentinel errors and errors.Is
    "net/http" // HTTP status codes for responses
    "strings"  // splitting the Authorization header

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/attendance-tracker/internal/auth" // token verification
)

// Credential extraction failures.  Distinct from the token failures in the
// auth package: these describe the Authorization header itself, before any
// token is even parsed.
var (
    // ErrMissingCredential is returned when no Authorization header is present.
    ErrMissingCredential = errors.New("authorization header is missing")
    // ErrMalformedCredential is returned when the header is present but is
    // not exactly "Bearer <token>".
    ErrMalformedCredential = errors.New("invalid authorization header")
)

// VersionChecker yields the current token version for a username so the
// guard can reject tokens issued before a password reset.
type VersionChecker interface {
    Get(ctx context.Context, username string) (int, error)
}

// ParseBearer extracts the raw token from an Authorization header value.
// The header must consist of exactly two space-separated parts with the
// first literally "Bearer"; anything else, including a different scheme,
// is a malformed credential rather than a malformed token.
func ParseBearer(header string) (string, error) {
    if header == "" {
        return "", ErrMissingCredential
    }
    parts := strings.Split(header, " ")
    if len(parts) != 2 || parts[0] != "Bearer" {
        return "", ErrMalformedCredential
    }
    return parts[1], nil
}

// TokenGuard returns an Echo middleware that authorizes every protected
// request: it extracts the bearer credential, verifies the session token
// with the given secret, checks the token's version claim against the
// principal's current version, and stores the subject and role in the
// request context under "username" and "role".  Rejections happen before
// the wrapped handler runs, so no protected operation has side effects on
// an unauthorized request.  versions may be nil to skip the version check.
func TokenGuard(secret string, versions VersionChecker) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, err := ParseBearer(c.Request().Header.Get("Authorization"))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
            }
            claims, err := auth.Verify(secret, raw)
            if err != nil {
                if errors.Is(err, auth.ErrTokenExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token has expired"})
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
            }
            if versions != nil {
                current, err := versions.Get(c.Request().Context(), claims.Username)
                if err != nil || current != claims.Version {
                    // A version mismatch means the password was reset after
                    // this token was issued; treat it like an expired session.
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token has expired"})
                }
            }
            c.Set("username", claims.Username)
            c.Set("role", claims.Role)
            return next(c)
        }
    }
}
