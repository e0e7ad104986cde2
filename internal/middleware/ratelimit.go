package middleware

import (
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/attendance-tracker/internal/config"
)

// LoginRateLimit returns a middleware that throttles login attempts with a
// Redis-backed token bucket keyed by client IP.  Login is the only
// unauthenticated endpoint that accepts secrets, so it is the only one
// worth limiting.  The bucket state lives in a Redis hash and is refilled
// atomically by a Lua script, which keeps the limit correct across
// multiple server instances.  When the limiter is disabled, Redis is
// unavailable, or the script errors, requests pass through unthrottled.
func LoginRateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    bucketScript := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])
        if tokens == nil then
            tokens = capacity
            last_refill = now_ms
        end

        local elapsed = now_ms - last_refill
        if elapsed >= interval_ms then
            local intervals = math.floor(elapsed / interval_ms)
            tokens = math.min(capacity, tokens + intervals * refill_tokens)
            last_refill = last_refill + intervals * interval_ms
        end

        local allowed = 0
        if tokens >= 1 then
            tokens = tokens - 1
            allowed = 1
        end

        redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)
        return allowed
    `)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := fmt.Sprintf("%s:%s", cfg.Prefix, c.RealIP())
            nowMs := time.Now().UnixMilli()
            res, err := bucketScript.Run(c.Request().Context(), rdb,
                []string{key},
                nowMs,
                cfg.Capacity,
                cfg.Refill,
                cfg.Interval.Milliseconds(),
                int(cfg.TTL.Seconds()),
            ).Int()
            if err != nil {
                // Fail open: a broken limiter must not lock everyone out.
                return next(c)
            }
            if res != 1 {
                c.Response().Header().Set("Retry-After", fmt.Sprintf("%.0f", cfg.Interval.Seconds()))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many login attempts"})
            }
            return next(c)
        }
    }
}
