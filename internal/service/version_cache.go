package service

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// VersionSource yields the authoritative token version for a principal.
// Satisfied by repository.UserRepo.
type VersionSource interface {
	TokenVersion(ctx context.Context, username string) (int, error)
}

// TokenVersions answers the access guard's per-request version check
// without hitting the database every time. Versions are cached in Redis
// under a per-username key; a password reset deletes the key so the next
// check sees the bumped version immediately. A nil Redis client degrades
// to direct database reads.
type TokenVersions struct {
	Source VersionSource
	RDB    *redis.Client
	TTL    time.Duration
}

// NewTokenVersions constructs the cache. Source must be non-nil; rdb may
// be nil when Redis is unavailable.
func NewTokenVersions(source VersionSource, rdb *redis.Client, ttl time.Duration) *TokenVersions {
	if source == nil {
		panic("nil source passed to NewTokenVersions")
	}
	return &TokenVersions{Source: source, RDB: rdb, TTL: ttl}
}

func versionKey(username string) string { return "tokver:" + username }

// Get returns the current token version for a username, consulting the
// cache first. Cache errors fall through to the source so Redis outages
// never reject valid requests.
func (t *TokenVersions) Get(ctx context.Context, username string) (int, error) {
	if t.RDB != nil {
		if s, err := t.RDB.Get(ctx, versionKey(username)).Result(); err == nil {
			if v, convErr := strconv.Atoi(s); convErr == nil {
				return v, nil
			}
		}
	}
	v, err := t.Source.TokenVersion(ctx, username)
	if err != nil {
		return 0, err
	}
	if t.RDB != nil {
		_ = t.RDB.Set(ctx, versionKey(username), strconv.Itoa(v), t.TTL).Err()
	}
	return v, nil
}

// Invalidate drops the cached version for a username. Called after a
// password reset so outstanding tokens die at their next verification
// instead of at cache expiry.
func (t *TokenVersions) Invalidate(ctx context.Context, username string) {
	if t.RDB != nil {
		_ = t.RDB.Del(ctx, versionKey(username)).Err()
	}
}
