package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    log "github.com/sirupsen/logrus"

    "github.com/iliyamo/tenseconds/internal/config"
)

// cachedResponse is what a cache entry holds in Redis.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// bodyRecorder tees the response to the client and keeps a copy of the
// first limit bytes.  overflow is set once the body outgrows limit.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    body     bytes.Buffer
    limit    int
    overflow bool
}

func (br *bodyRecorder) WriteHeader(code int) {
    br.status = code
    br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
    if !br.overflow {
        if br.limit > 0 && br.body.Len()+len(b) > br.limit {
            br.overflow = true
            br.body.Reset()
        } else {
            br.body.Write(b)
        }
    }
    return br.ResponseWriter.Write(b)
}

// cacheKey hashes the request path, plus the sorted query string unless
// cfg.KeyStrategy is "path".  The path is used instead of the route
// pattern so /v1/analytics/user/1 and /v1/analytics/user/2 never share an
// entry.
func cacheKey(cfg config.CacheConfig, r *http.Request) string {
    id := r.URL.Path
    if !strings.EqualFold(cfg.KeyStrategy, "path") {
        id += "?" + r.URL.Query().Encode()
    }
    sum := sha1.Sum([]byte(id))
    return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// replay writes a cached response.  Content-Length is left to echo.
func replay(c echo.Context, cr cachedResponse) error {
    h := c.Response().Header()
    for k, vals := range cr.Header {
        if strings.EqualFold(k, echo.HeaderContentLength) {
            continue
        }
        h[k] = append([]string(nil), vals...)
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(cr.Status)
    _, err := c.Response().Write(cr.Body)
    return err
}

// NewRedisCache caches 200 responses of the configured methods in Redis
// for cfg.TTL.  Headers are stored with the body so a hit is byte for byte
// what the handler produced.  Redis failures are logged and the request is
// served by the handler.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, logger log.FieldLogger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if !cfg.Caches(req.Method) {
                return next(c)
            }
            ctx := req.Context()
            key := cacheKey(cfg, req)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var cr cachedResponse
                if json.Unmarshal(raw, &cr) == nil && cr.Status != 0 {
                    return replay(c, cr)
                }
            } else if err != redis.Nil {
                logger.WithError(err).WithField("path", req.URL.Path).Warn("cache lookup failed")
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            // oversized bodies are served but never cached
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            payload, err := json.Marshal(cachedResponse{
                Status: rec.status,
                Header: c.Response().Header().Clone(),
                Body:   rec.body.Bytes(),
            })
            if err == nil {
                err = rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err()
            }
            if err != nil {
                logger.WithError(err).WithField("path", req.URL.Path).Warn("cache store failed")
            }
            return nil
        }
    }
}
