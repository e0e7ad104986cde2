package auth // package auth implements the session token service and password hashing

import (
    "errors" // errors.Is comparisons against jwt sentinel errors
    "time"   // expiry computation

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Session token failures.  Handlers and middleware compare with errors.Is
// and map each to an HTTP 401 with a distinct message.
var (
    // ErrTokenExpired is returned when a structurally valid, correctly
    // signed token is past its expiry.
    ErrTokenExpired = errors.New("token expired")
    // ErrTokenMalformed covers every other verification failure: bad
    // structure, wrong signing method, invalid signature, missing claims.
    ErrTokenMalformed = errors.New("token malformed")
    // ErrInvalidCredentials is returned by the login path when the username
    // does not exist or the password does not match.  The two cases are
    // deliberately indistinguishable to the caller.
    ErrInvalidCredentials = errors.New("invalid credentials")
)

// Token is a signed session token along with its expiry.  Tokens are
// stateless: nothing is persisted, everything needed to verify one is in
// its signed payload.
type Token struct {
    Value string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the decoded identity carried by a verified token.
type Claims struct {
    Username string // token subject
    Role     string // principal role at issue time
    Version  int    // principal token_version at issue time
}

// Issue builds and signs an HS256 session token for a principal.  The
// payload carries the username as subject, the role, the principal's
// current token version and the issued-at/expiry pair.  The version claim
// is what makes revocation-on-password-reset work: bumping the stored
// version invalidates every outstanding token at its next verification.
func Issue(secret, username, role string, version int, ttl time.Duration) (Token, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  username,
        "role": role,
        "ver":  version,
        "iat":  now.Unix(),
        "exp":  exp.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return Token{}, err
    }
    return Token{Value: signed, Exp: exp}, nil
}

// Verify parses and validates a raw token string.  It returns
// ErrTokenExpired when the only problem is expiry and ErrTokenMalformed for
// any structural or signature problem.  On success it returns the decoded
// claims.  Verification is pure computation over the token and the current
// time; it is safe from any number of concurrent callers.
func Verify(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject any signing method other than HMAC before touching the key.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenMalformed
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return Claims{}, ErrTokenExpired
        }
        return Claims{}, ErrTokenMalformed
    }
    if !tok.Valid {
        return Claims{}, ErrTokenMalformed
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrTokenMalformed
    }
    sub, ok := mc["sub"].(string)
    if !ok || sub == "" {
        return Claims{}, ErrTokenMalformed
    }
    role, _ := mc["role"].(string)
    ver := 0
    if v, ok := mc["ver"].(float64); ok { // JSON numbers decode as float64
        ver = int(v)
    }
    return Claims{Username: sub, Role: role, Version: ver}, nil
}

// Renew verifies a still-valid token and issues a brand-new one for the
// same subject with a fresh expiry.  The old token is not touched and
// remains valid until its own expiry.
func Renew(secret, raw string, ttl time.Duration) (Token, error) {
    claims, err := Verify(secret, raw)
    if err != nil {
        return Token{}, err
    }
    return Issue(secret, claims.Username, claims.Role, claims.Version, ttl)
}
