package middleware

// identity.go defines helpers shared across middleware files. userID pulls
// the authenticated user id stored by JWTAuth out of the Echo context. When
// no token was presented, "anon" is returned.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

const anonymous = "anon"

// userID returns the authenticated user's id as a string, or "anon".
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case uint64:
        return strconv.FormatUint(v, 10)
    case string:
        if v != "" {
            return v
        }
    }
    return anonymous
}
