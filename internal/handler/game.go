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

// GameService starts and stops sessions; *game.Engine implements it.
type GameService interface {
    Start(ctx context.Context, userID uint64) (model.GameSession, error)
    Stop(ctx context.Context, sessionID, userID uint64) (model.GameSession, error)
}

// GameHandler serves the session lifecycle endpoints.  All routes require
// JWTAuth.
type GameHandler struct {
    Games GameService
    Log   log.FieldLogger
}

func NewGameHandler(games GameService, logger log.FieldLogger) *GameHandler {
    if games == nil {
        panic("nil game service passed to NewGameHandler")
    }
    return &GameHandler{Games: games, Log: logger}
}

// StartGame returns the caller's running session, starting one if needed.
func (h *GameHandler) StartGame(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    s, err := h.Games.Start(ctx, uid)
    if err != nil {
        h.Log.WithError(err).WithField("user_id", uid).Error("start game failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "start game failed"})
    }
    return c.JSON(http.StatusOK, s)
}

// StopGame stops the session named in the path.
func (h *GameHandler) StopGame(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    sid, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    s, err := h.Games.Stop(ctx, sid, uid)
    if errors.Is(err, game.ErrSessionNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    }
    if err != nil {
        h.Log.WithError(err).WithFields(log.Fields{"user_id": uid, "session_id": sid}).Error("stop game failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stop game failed"})
    }
    return c.JSON(http.StatusOK, s)
}
