package model

import "time"

// Session statuses.  ACTIVE is the only non-terminal state; a session
// moves to STOPPED or EXPIRED exactly once, when it is stopped.
const (
    StatusActive  = "ACTIVE"
    StatusStopped = "STOPPED"
    StatusExpired = "EXPIRED"
)

// TargetDuration is the duration a player tries to hit when stopping a session.
const TargetDuration = 10 * time.Second

// GameSession is one timed attempt by one user, stored in the
// `game_sessions` table.
//
// Fields:
//  ID        – primary key identifier, assigned on insert.
//  UserID    – owner of the session.
//  StartTime – UTC time the session was started.
//  StopTime  – UTC time the session was stopped (nil while ACTIVE).
//  Status    – ACTIVE, STOPPED or EXPIRED.
//  Duration  – elapsed milliseconds between start and stop (0 while ACTIVE).
//  Deviation – absolute distance in milliseconds from TargetDuration.
type GameSession struct {
    ID        uint64     `json:"id"`         // game_sessions.id
    UserID    uint64     `json:"user_id"`    // game_sessions.user_id
    StartTime time.Time  `json:"start_time"` // game_sessions.start_time
    StopTime  *time.Time `json:"stop_time"`  // game_sessions.stop_time (nullable)
    Status    string     `json:"status"`     // game_sessions.status
    Duration  int64      `json:"duration"`   // game_sessions.duration
    Deviation int64      `json:"deviation"`  // game_sessions.deviation
}

// Active reports whether the session is still running.
func (s GameSession) Active() bool { return s.Status == StatusActive }

// PlayerStats holds the aggregate figures shown for one player.
type PlayerStats struct {
    Username         string  `json:"username"`
    TotalGames       int64   `json:"total_games"`
    AverageDeviation float64 `json:"average_deviation"`
    BestDeviation    int64   `json:"best_deviation"`
}

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry = PlayerStats

// UserHistory combines a player's aggregates with every session they played.
type UserHistory struct {
    PlayerStats
    History []GameSession `json:"history"`
}
