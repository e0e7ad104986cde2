package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig controls the token-bucket limiter applied to the login
// endpoint.  Login is the only route worth limiting here: everything else
// requires a valid session token already, while login accepts guesses.
// When Enabled is false or no Redis client is configured the limiter is a
// pass-through.
type RateLimitConfig struct {
    Enabled  bool          // master switch
    Capacity int           // bucket size (burst allowance)
    Refill   int           // tokens added per interval
    Interval time.Duration // refill interval
    TTL      time.Duration // idle expiry of a client's bucket state
    Prefix   string        // redis key namespace
}

// LoadRateLimitConfig reads environment variables to build a RateLimitConfig.
// Defaults allow 10 login attempts with a refill of 1 per 6 seconds, which
// is generous for humans and hostile to credential stuffing.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled:  strings.EqualFold(getenv("LOGIN_RATELIMIT_ENABLED", "true"), "true"),
        Capacity: atoi(getenv("LOGIN_RATELIMIT_CAPACITY", "10")),
        Refill:   atoi(getenv("LOGIN_RATELIMIT_REFILL", "1")),
        Interval: parseDur(getenv("LOGIN_RATELIMIT_INTERVAL", "6s")),
        TTL:      parseDur(getenv("LOGIN_RATELIMIT_TTL", "15m")),
        Prefix:   getenv("LOGIN_RATELIMIT_PREFIX", "rl:login"),
    }
}

// CacheConfig controls Redis caching of the permitted-locations listing.
// The location table is static reference data, so a short TTL cache removes
// nearly all of its read traffic without a manual invalidation path.
type CacheConfig struct {
    Enabled bool          // master switch
    TTL     time.Duration // lifetime of the cached listing
    Prefix  string        // redis key namespace
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: strings.EqualFold(getenv("LOCATION_CACHE_ENABLED", "true"), "true"),
        TTL:     parseDur(getenv("LOCATION_CACHE_TTL", "5m")),
        Prefix:  getenv("LOCATION_CACHE_PREFIX", "cache:locations"),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
