package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/tenseconds/internal/model"
	"github.com/iliyamo/tenseconds/internal/repository"
)

// Stats serves read-only views over stored sessions.
type Stats struct {
	store          SessionStore
	users          UserDirectory
	finishedOnly   bool
	defaultPerPage int
	maxPerPage     int
}

// StatsOptions tunes aggregation.  FinishedOnly leaves ACTIVE sessions out
// of every aggregate.  Zero page sizes fall back to 10 and 100.
type StatsOptions struct {
	FinishedOnly   bool
	DefaultPerPage int
	MaxPerPage     int
}

// NewStats builds a Stats over the given store and user directory.
func NewStats(store SessionStore, users UserDirectory, opts StatsOptions) *Stats {
	if store == nil || users == nil {
		panic("nil dependency passed to NewStats")
	}
	if opts.MaxPerPage < 1 {
		opts.MaxPerPage = 100
	}
	if opts.DefaultPerPage < 1 || opts.DefaultPerPage > opts.MaxPerPage {
		opts.DefaultPerPage = min(10, opts.MaxPerPage)
	}
	return &Stats{
		store:          store,
		users:          users,
		finishedOnly:   opts.FinishedOnly,
		defaultPerPage: opts.DefaultPerPage,
		maxPerPage:     opts.MaxPerPage,
	}
}

// Page normalizes caller supplied pagination: page starts at 1, perPage
// defaults when not positive and is capped at the configured maximum.
func (st *Stats) Page(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = st.defaultPerPage
	}
	if perPage > st.maxPerPage {
		perPage = st.maxPerPage
	}
	return page, perPage
}

// Leaderboard returns one page of players ordered by ascending average
// deviation.
func (st *Stats) Leaderboard(ctx context.Context, page, perPage int) ([]model.LeaderboardEntry, error) {
	page, perPage = st.Page(page, perPage)
	rows, err := st.store.Leaderboard(ctx, (page-1)*perPage, perPage, st.finishedOnly)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if rows == nil {
		rows = []model.LeaderboardEntry{}
	}
	return rows, nil
}

// HasHistory reports whether the user has played at least one session.
func (st *Stats) HasHistory(ctx context.Context, userID uint64) (bool, error) {
	n, err := st.store.CountByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count sessions: %w", err)
	}
	return n > 0, nil
}

// UserHistory returns the user's aggregates and every session they played.
// Unknown users yield ErrUserNotFound and users without sessions
// ErrNoHistory.
func (st *Stats) UserHistory(ctx context.Context, userID uint64) (model.UserHistory, error) {
	u, err := st.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.UserHistory{}, ErrUserNotFound
	}
	if err != nil {
		return model.UserHistory{}, fmt.Errorf("load user: %w", err)
	}

	history, err := st.store.ListByUser(ctx, userID)
	if err != nil {
		return model.UserHistory{}, fmt.Errorf("list sessions: %w", err)
	}
	if len(history) == 0 {
		return model.UserHistory{}, ErrNoHistory
	}

	stats, err := st.store.AggregateForUser(ctx, userID, st.finishedOnly)
	switch {
	case errors.Is(err, repository.ErrNotFound) && st.finishedOnly:
		// only ACTIVE sessions so far
		stats = model.PlayerStats{Username: u.Username}
	case errors.Is(err, repository.ErrNotFound):
		return model.UserHistory{}, ErrNoHistory
	case err != nil:
		return model.UserHistory{}, fmt.Errorf("aggregate sessions: %w", err)
	}

	return model.UserHistory{PlayerStats: stats, History: history}, nil
}
