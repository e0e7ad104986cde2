package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/attendance-tracker/internal/auth"
)

// Role values stored in the users table. The original deployment kept
// admins in a separate table; here a single principal table carries a role
// column instead.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors the 'users' table. It holds both regular users and admins,
// distinguished by Role. Division is only meaningful for regular users.
type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	FullName     string
	Role         string
	Division     sql.NullString
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a principal and returns its ID. The password is hashed
// here so that no caller ever passes a hash around.
func (r *UserRepo) Create(ctx context.Context, username, password, fullName, role, division string, cost int) (uint64, error) {
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var div sql.NullString
	if division != "" {
		div = sql.NullString{String: division, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, full_name, role, division) VALUES (?,?,?,?,?)",
		username, hash, fullName, role, div)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a principal by exact, case-sensitive username.
// MySQL collations are case-insensitive by default, so the lookup compares
// against the BINARY form of the column.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,full_name,role,division,token_version,created_at,updated_at FROM users WHERE BINARY username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.Division, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrPrincipalNotFound
	}
	return u, err
}

// GetByID fetches a principal by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,full_name,role,division,token_version,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.Division, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrPrincipalNotFound
	}
	return u, err
}

// TokenVersion returns the current token version for a username. The
// access guard compares this against the version claim baked into each
// session token.
func (r *UserRepo) TokenVersion(ctx context.Context, username string) (int, error) {
	var v int
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_version FROM users WHERE BINARY username=? LIMIT 1",
		username).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPrincipalNotFound
	}
	return v, err
}

// SetPassword replaces the stored hash and bumps token_version in one
// statement, so every token issued before the reset fails its next
// version check.
func (r *UserRepo) SetPassword(ctx context.Context, username, newPassword string, cost int) error {
	hash, err := auth.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, token_version=token_version+1 WHERE BINARY username=?",
		hash, username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}
