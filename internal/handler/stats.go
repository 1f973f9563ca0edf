package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"

    "github.com/iliyamo/tenseconds/internal/game"
    "github.com/iliyamo/tenseconds/internal/model"
)

// StatsService answers the read-only aggregate views; *game.Stats
// implements it.
type StatsService interface {
    Leaderboard(ctx context.Context, page, perPage int) ([]model.LeaderboardEntry, error)
    UserHistory(ctx context.Context, userID uint64) (model.UserHistory, error)
}

// StatsHandler serves the public leaderboard and analytics endpoints.
type StatsHandler struct {
    Stats StatsService
    Log   log.FieldLogger
}

func NewStatsHandler(stats StatsService, logger log.FieldLogger) *StatsHandler {
    if stats == nil {
        panic("nil stats service passed to NewStatsHandler")
    }
    return &StatsHandler{Stats: stats, Log: logger}
}

// Leaderboard lists players by ascending average deviation.  Paging values
// out of range are normalised by the stats service; non-numeric ones are
// rejected.
func (h *StatsHandler) Leaderboard(c echo.Context) error {
    page, ok := queryInt(c, "page", 1)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page"})
    }
    perPage, ok := queryInt(c, "per_page", 0)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid per_page"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    rows, err := h.Stats.Leaderboard(ctx, page, perPage)
    if err != nil {
        h.Log.WithError(err).Error("leaderboard failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leaderboard failed"})
    }
    return c.JSON(http.StatusOK, rows)
}

// UserHistory returns a player's aggregates and every session they played.
func (h *StatsHandler) UserHistory(c echo.Context) error {
    uid, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    out, err := h.Stats.UserHistory(ctx, uid)
    switch {
    case errors.Is(err, game.ErrUserNotFound), errors.Is(err, game.ErrNoHistory):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case err != nil:
        h.Log.WithError(err).WithField("user_id", uid).Error("user history failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user history failed"})
    }
    return c.JSON(http.StatusOK, out)
}
