package game

import (
	"context"
	"time"

	"github.com/iliyamo/tenseconds/internal/model"
)

// Clock supplies the current time.  Implementations must return UTC.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// SessionStore persists game sessions.  Lookups that match nothing return
// repository.ErrNotFound.
type SessionStore interface {
	// FindActiveByUser returns the user's ACTIVE session.
	FindActiveByUser(ctx context.Context, userID uint64) (model.GameSession, error)
	// FindActiveByID returns the session with the given id if it is ACTIVE.
	FindActiveByID(ctx context.Context, id uint64) (model.GameSession, error)
	// Create inserts an ACTIVE session and returns it with its id.  It
	// returns repository.ErrActiveSessionExists when the user already has one.
	Create(ctx context.Context, s model.GameSession) (model.GameSession, error)
	// Finish writes stop_time, status, duration and deviation of a session
	// that is still ACTIVE, and returns repository.ErrNotFound otherwise.
	Finish(ctx context.Context, s model.GameSession) error
	// Leaderboard aggregates sessions per user, best average first.
	Leaderboard(ctx context.Context, offset, limit int, finishedOnly bool) ([]model.LeaderboardEntry, error)
	// AggregateForUser computes the leaderboard figures of a single user.
	AggregateForUser(ctx context.Context, userID uint64, finishedOnly bool) (model.PlayerStats, error)
	// ListByUser returns every session of the user in insertion order.
	ListByUser(ctx context.Context, userID uint64) ([]model.GameSession, error)
	// CountByUser returns how many sessions the user has.
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}

// UserDirectory resolves users.
type UserDirectory interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// EventPublisher announces finished sessions to other services.
type EventPublisher interface {
	PublishGameFinished(ctx context.Context, s model.GameSession) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// PublishGameFinished implements EventPublisher.
func (NopPublisher) PublishGameFinished(context.Context, model.GameSession) error { return nil }
