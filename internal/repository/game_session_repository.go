package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/tenseconds/internal/model"
)

const sessionColumns = "id, user_id, start_time, stop_time, status, duration, deviation"

// GameSessionRepo provides data access to the game_sessions table.  All
// timestamps are written and read in UTC.
type GameSessionRepo struct {
	db *sql.DB
}

// NewGameSessionRepo returns a GameSessionRepo bound to the provided database.
func NewGameSessionRepo(db *sql.DB) *GameSessionRepo { return &GameSessionRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(sc rowScanner) (model.GameSession, error) {
	var (
		s    model.GameSession
		stop sql.NullTime
	)
	if err := sc.Scan(&s.ID, &s.UserID, &s.StartTime, &stop, &s.Status, &s.Duration, &s.Deviation); err != nil {
		return model.GameSession{}, err
	}
	s.StartTime = s.StartTime.UTC()
	if stop.Valid {
		t := stop.Time.UTC()
		s.StopTime = &t
	}
	return s, nil
}

func (r *GameSessionRepo) findOne(ctx context.Context, query string, args ...any) (model.GameSession, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.GameSession{}, ErrNotFound
	}
	if err != nil {
		return model.GameSession{}, fmt.Errorf("query game session: %w", err)
	}
	return s, nil
}

// FindActiveByUser returns the ACTIVE session of the user.
func (r *GameSessionRepo) FindActiveByUser(ctx context.Context, userID uint64) (model.GameSession, error) {
	return r.findOne(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE user_id = ? AND status = ? LIMIT 1`,
		userID, model.StatusActive)
}

// FindActiveByID returns the session with the given id when it is ACTIVE.
func (r *GameSessionRepo) FindActiveByID(ctx context.Context, id uint64) (model.GameSession, error) {
	return r.findOne(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = ? AND status = ? LIMIT 1`,
		id, model.StatusActive)
}

// Create inserts a new session and returns it with the assigned id.  The
// unique key on active_user_id rejects a second ACTIVE row for the same
// user; that case is reported as ErrActiveSessionExists.
func (r *GameSessionRepo) Create(ctx context.Context, s model.GameSession) (model.GameSession, error) {
	s.StartTime = s.StartTime.UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO game_sessions (user_id, start_time, status, duration, deviation) VALUES (?, ?, ?, ?, ?)`,
		s.UserID, s.StartTime, s.Status, s.Duration, s.Deviation)
	if err != nil {
		if _, ok := duplicateKey(err); ok {
			return model.GameSession{}, ErrActiveSessionExists
		}
		return model.GameSession{}, fmt.Errorf("insert game session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.GameSession{}, err
	}
	s.ID = uint64(id)
	return s, nil
}

// Finish records the outcome of a session in one statement.  The status
// guard makes concurrent stops of the same session race-free: only the
// first one matches a row, later ones get ErrNotFound.
func (r *GameSessionRepo) Finish(ctx context.Context, s model.GameSession) error {
	if s.StopTime == nil {
		return errors.New("finish game session: stop time is required")
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE game_sessions SET stop_time = ?, status = ?, duration = ?, deviation = ?
         WHERE id = ? AND status = ?`,
		s.StopTime.UTC(), s.Status, s.Duration, s.Deviation, s.ID, model.StatusActive)
	if err != nil {
		return fmt.Errorf("update game session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Leaderboard groups sessions by user and orders them by ascending average
// deviation; user id breaks ties so pages never overlap.  With
// finishedOnly, ACTIVE sessions are left out of the aggregates.
func (r *GameSessionRepo) Leaderboard(ctx context.Context, offset, limit int, finishedOnly bool) ([]model.LeaderboardEntry, error) {
	where, args := statusFilter("WHERE", finishedOnly)
	query := `SELECT u.username, COUNT(g.id), AVG(g.deviation), MIN(g.deviation)
              FROM game_sessions g
              JOIN users u ON u.id = g.user_id` + where + `
              GROUP BY g.user_id, u.username
              ORDER BY AVG(g.deviation) ASC, g.user_id ASC
              LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.TotalGames, &e.AverageDeviation, &e.BestDeviation); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregateForUser computes the leaderboard figures for one user.  It
// returns ErrNotFound when no session matches.
func (r *GameSessionRepo) AggregateForUser(ctx context.Context, userID uint64, finishedOnly bool) (model.PlayerStats, error) {
	where, args := statusFilter("AND", finishedOnly)
	query := `SELECT u.username, COUNT(g.id), AVG(g.deviation), MIN(g.deviation)
              FROM game_sessions g
              JOIN users u ON u.id = g.user_id
              WHERE g.user_id = ?` + where + `
              GROUP BY g.user_id, u.username`
	args = append([]any{userID}, args...)

	var st model.PlayerStats
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&st.Username, &st.TotalGames, &st.AverageDeviation, &st.BestDeviation)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlayerStats{}, ErrNotFound
	}
	if err != nil {
		return model.PlayerStats{}, fmt.Errorf("aggregate game sessions: %w", err)
	}
	return st, nil
}

// ListByUser returns every session of the user in insertion order.
func (r *GameSessionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.GameSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list game sessions: %w", err)
	}
	defer rows.Close()

	out := []model.GameSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByUser returns the number of sessions the user has.
func (r *GameSessionRepo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_sessions WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count game sessions: %w", err)
	}
	return n, nil
}

// statusFilter returns the optional " <kw> g.status <> ?" clause.
func statusFilter(keyword string, finishedOnly bool) (string, []any) {
	if !finishedOnly {
		return "", nil
	}
	return " " + keyword + " g.status <> ?", []any{model.StatusActive}
}
