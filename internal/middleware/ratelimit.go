package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    log "github.com/sirupsen/logrus"

    "github.com/iliyamo/tenseconds/internal/config"
)

// tokenBucket keeps {tokens, refilled_at} in a hash per key.  Whole refill
// intervals elapsed since refilled_at are credited before one token is
// taken.  It returns {allowed, tokens left, ms until the next refill}.
var tokenBucket = redis.NewScript(`
local now, capacity, refill, interval, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local refilled_at = tonumber(redis.call('HGET', KEYS[1], 'refilled_at'))
if not tokens or not refilled_at then
    tokens, refilled_at = capacity, now
end

local steps = 0
if interval > 0 then
    steps = math.floor(math.max(0, now - refilled_at) / interval)
end
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    refilled_at = refilled_at + steps * interval
end

local allowed, wait = 0, 0
if tokens >= 1 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, interval - (now - refilled_at))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_at', refilled_at)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket limits requests per key with a token bucket kept in Redis.
// The key is built from cfg.KeyStrategy.  Redis failures let the request
// through.  With cfg.Debug the key is echoed in X-RateLimit-Key and every
// rejection is logged.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger log.FieldLogger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttlSecs := int64(cfg.TTL / time.Second)
    limit := strconv.Itoa(cfg.Capacity)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            res, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens, cfg.RefillInterval.Milliseconds(), ttlSecs,
            ).Int64Slice()
            if err != nil || len(res) != 3 {
                logger.WithError(err).WithField("key", key).Warn("ratelimit: script failed")
                return next(c)
            }
            allowed, remaining, waitMs := res[0] == 1, res[1], res[2]

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", limit)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }

            if !allowed {
                secs := (waitMs + 999) / 1000
                h.Set("Retry-After", strconv.FormatInt(secs, 10))
                if cfg.Debug {
                    logger.WithFields(log.Fields{"key": key, "retry_ms": waitMs}).Info("ratelimit: blocked")
                }
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// rateKey builds the bucket key: "ip", "user", or by default ip, user and
// route together.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        return cfg.Prefix + ":ip:" + ip
    case "user":
        return cfg.Prefix + ":user:" + userID(c)
    default:
        return cfg.Prefix + ":ip:" + ip + ":user:" + userID(c) + ":route:" + c.Request().Method + " " + c.Path()
    }
}
