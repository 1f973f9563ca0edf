// Package game implements the game-session lifecycle and the statistics
// derived from finished sessions.
//
// A session is started by Engine.Start and stopped by Engine.Stop.  The
// objective is to stop as close as possible to ten seconds after the start;
// the distance from that target is stored as the session's deviation and
// drives both the leaderboard and the per-user history served by Stats.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/tenseconds/internal/model"
	"github.com/iliyamo/tenseconds/internal/repository"
)

const publishTimeout = 3 * time.Second

// Engine owns session state transitions.
type Engine struct {
	store     SessionStore
	clock     Clock
	threshold time.Duration
	events    EventPublisher
	log       log.FieldLogger
}

// NewEngine builds an Engine.  threshold is the elapsed time from which a
// stopped session counts as EXPIRED.  A nil publisher drops events and a
// nil logger discards output.
func NewEngine(store SessionStore, threshold time.Duration, events EventPublisher, logger log.FieldLogger) *Engine {
	if store == nil {
		panic("nil session store passed to NewEngine")
	}
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		l := log.New()
		l.SetLevel(log.PanicLevel)
		logger = l
	}
	return &Engine{store: store, clock: SystemClock{}, threshold: threshold, events: events, log: logger}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(c Clock) *Engine {
	e.clock = c
	return e
}

// Threshold returns the configured expiry threshold.
func (e *Engine) Threshold() time.Duration { return e.threshold }

// Start returns the user's running session, creating one when there is
// none.  Calling Start again before Stop returns the same session.
func (e *Engine) Start(ctx context.Context, userID uint64) (model.GameSession, error) {
	s, err := e.store.FindActiveByUser(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.GameSession{}, fmt.Errorf("find active session: %w", err)
	}

	s, err = e.store.Create(ctx, model.GameSession{
		UserID:    userID,
		StartTime: e.clock.Now(),
		Status:    model.StatusActive,
	})
	if errors.Is(err, repository.ErrActiveSessionExists) {
		// a concurrent Start for the same user won the insert
		s, err = e.store.FindActiveByUser(ctx, userID)
		if err != nil {
			return model.GameSession{}, fmt.Errorf("find active session: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return model.GameSession{}, fmt.Errorf("create session: %w", err)
	}

	e.log.WithFields(log.Fields{"session_id": s.ID, "user_id": userID}).Info("game session started")
	return s, nil
}

// Stop finishes an ACTIVE session owned by userID and records its
// duration, deviation and final status.  ErrSessionNotFound is returned
// when there is no such session.
func (e *Engine) Stop(ctx context.Context, sessionID, userID uint64) (model.GameSession, error) {
	s, err := e.store.FindActiveByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.GameSession{}, ErrSessionNotFound
	}
	if err != nil {
		return model.GameSession{}, fmt.Errorf("find session: %w", err)
	}
	if s.UserID != userID {
		e.log.WithFields(log.Fields{"session_id": sessionID, "user_id": userID, "owner_id": s.UserID}).
			Warn("stop rejected for foreign session")
		return model.GameSession{}, ErrSessionNotFound
	}

	now := e.clock.Now()
	res := Score(s.StartTime, now, e.threshold)
	s.StopTime = &now
	s.Status = res.Status
	s.Duration = res.Duration
	s.Deviation = res.Deviation

	if err := e.store.Finish(ctx, s); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.GameSession{}, ErrSessionNotFound
		}
		return model.GameSession{}, fmt.Errorf("finish session: %w", err)
	}

	e.log.WithFields(log.Fields{
		"session_id": s.ID,
		"user_id":    userID,
		"status":     s.Status,
		"duration":   s.Duration,
		"deviation":  s.Deviation,
	}).Info("game session stopped")

	e.publish(ctx, s)
	return s, nil
}

func (e *Engine) publish(ctx context.Context, s model.GameSession) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.events.PublishGameFinished(ctx, s); err != nil {
		e.log.WithError(err).WithField("session_id", s.ID).Warn("publish game finished failed")
	}
}
