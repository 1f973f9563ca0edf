package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tenseconds/internal/config"
	"github.com/iliyamo/tenseconds/internal/handler"
	"github.com/iliyamo/tenseconds/internal/model"
	"github.com/iliyamo/tenseconds/internal/utils"
)

const secret = "router-secret"

type stubGames struct{}

func (stubGames) Start(_ context.Context, uid uint64) (model.GameSession, error) {
	return model.GameSession{ID: 1, UserID: uid, Status: model.StatusActive}, nil
}

func (stubGames) Stop(_ context.Context, sid, uid uint64) (model.GameSession, error) {
	return model.GameSession{ID: sid, UserID: uid, Status: model.StatusStopped}, nil
}

type stubStats struct{}

func (stubStats) Leaderboard(context.Context, int, int) ([]model.LeaderboardEntry, error) {
	return []model.LeaderboardEntry{}, nil
}

func (stubStats) UserHistory(context.Context, uint64) (model.UserHistory, error) {
	return model.UserHistory{}, nil
}

type stubUsers struct{}

func (stubUsers) Create(context.Context, string, string, string, int) (uint64, error) { return 1, nil }

func (stubUsers) GetByUsername(context.Context, string) (model.User, error) { return model.User{}, nil }

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer() *echo.Echo {
	logger, _ := test.NewNullLogger()
	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(config.Config{JWTSecret: secret}, stubUsers{}, logger), secret, passthrough)
	RegisterGame(e, handler.NewGameHandler(stubGames{}, logger), secret, passthrough)
	RegisterStats(e, handler.NewStatsHandler(stubStats{}, logger), passthrough)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer()
	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /health-check",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"GET /v1/me",
		"POST /v1/games/start",
		"POST /v1/games/:id/stop",
		"GET /v1/leaderboard",
		"GET /v1/analytics/user/:id",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestGameRoutesRequireToken(t *testing.T) {
	e := newServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/games/start", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken(secret, 4, "edygg_1", 5)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/games/7/stop", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)
	assert.Contains(t, rec.Body.String(), `"user_id":4`)
}

func TestPublicRoutesOpen(t *testing.T) {
	e := newServer()
	for _, path := range []string{"/healthz", "/health-check", "/v1/leaderboard"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
