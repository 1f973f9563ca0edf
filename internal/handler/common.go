package handler // handler defines http handlers

import (
    "context"
    "errors"  // errors provides sentinel values used in getUserID
    "strconv" // strconv converts strings to numeric types
    "time"

    "github.com/labstack/echo/v4" // echo defines request context types
)

// dbTimeout bounds the storage work done by a single request.
const dbTimeout = 5 * time.Second

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int64:
        if t > 0 {
            return uint64(t), nil
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// queryInt parses an optional integer query parameter; def is returned when
// the parameter is absent.
func queryInt(c echo.Context, name string, def int) (int, bool) {
    raw := c.QueryParam(name)
    if raw == "" {
        return def, true
    }
    n, err := strconv.Atoi(raw)
    if err != nil {
        return 0, false
    }
    return n, true
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}
