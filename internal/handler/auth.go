package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"   // sentinel comparisons
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"
    "unicode/utf8"

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    log "github.com/sirupsen/logrus"

    "github.com/iliyamo/tenseconds/internal/config"     // app configuration
    "github.com/iliyamo/tenseconds/internal/model"      // user record
    "github.com/iliyamo/tenseconds/internal/repository" // sentinel errors
    "github.com/iliyamo/tenseconds/internal/utils"      // helper functions (hashing, token issuing)
)

// UserStore is the persistence needed by the auth endpoints.
type UserStore interface {
    Create(ctx context.Context, username, email, password string, cost int) (uint64, error)
    GetByUsername(ctx context.Context, username string) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg   config.Config
    Users UserStore
    Log   log.FieldLogger
}

func NewAuthHandler(cfg config.Config, u UserStore, logger log.FieldLogger) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Log: logger}
}

// ----- DTOs -----

type registerReq struct {
    Username string `json:"username" form:"username"`
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
}

// loginReq accepts both an OAuth2 style password form and a JSON body.
type loginReq struct {
    Username string `json:"username" form:"username"`
    Password string `json:"password" form:"password"`
}

type userResp struct {
    ID       uint64 `json:"id"`
    Username string `json:"username"`
    Email    string `json:"email"`
}

type tokenResp struct {
    AccessToken string    `json:"access_token"`
    TokenType   string    `json:"token_type"`
    Expires     time.Time `json:"expires"`
}

func (r registerReq) validate() string {
    switch n := utf8.RuneCountInString(r.Username); {
    case n < 3 || n > 50:
        return "username must be between 3 and 50 characters"
    case !strings.Contains(r.Email, "@"):
        return "email is invalid"
    case utf8.RuneCountInString(r.Password) < 8:
        return "password must be at least 8 characters"
    }
    return ""
}

// Register creates a user account.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
    switch {
    case errors.Is(err, repository.ErrUsernameExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "username already registered"})
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
    case err != nil:
        h.Log.WithError(err).WithField("username", req.Username).Error("create user failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    return c.JSON(http.StatusCreated, userResp{ID: uid, Username: req.Username, Email: req.Email})
}

// Login verifies credentials and returns a bearer access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
    }

    ctx, cancel := requestContext(c)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, req.Username)
    if err != nil && !errors.Is(err, repository.ErrNotFound) {
        h.Log.WithError(err).Error("load user failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTLMin)
    if err != nil {
        h.Log.WithError(err).Error("issue access token failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, tokenResp{AccessToken: access.Token, TokenType: "bearer", Expires: access.Exp})
}

// Me returns the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    username, _ := c.Get("username").(string)
    return c.JSON(http.StatusOK, echo.Map{"user_id": uid, "username": username})
}
