// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
    "time"

    "github.com/iliyamo/tenseconds/internal/model"
)

// GameFinishedEvent is published when a game session is stopped. It
// carries the final figures of the session so downstream consumers can log,
// notify, or trigger analytics without querying the primary database.
type GameFinishedEvent struct {
    SessionID   uint64 `json:"session_id"`
    UserID      uint64 `json:"user_id"`
    Status      string `json:"status"`
    DurationMS  int64  `json:"duration_ms"`
    DeviationMS int64  `json:"deviation_ms"`
    StartedAt   string `json:"started_at"`
    StoppedAt   string `json:"stopped_at"`
}

// NewGameFinishedEvent builds the event for a stopped session. Timestamps
// are RFC 3339 in UTC; StoppedAt is empty if the session has no stop time.
func NewGameFinishedEvent(s model.GameSession) GameFinishedEvent {
    ev := GameFinishedEvent{
        SessionID:   s.ID,
        UserID:      s.UserID,
        Status:      s.Status,
        DurationMS:  s.Duration,
        DeviationMS: s.Deviation,
        StartedAt:   s.StartTime.UTC().Format(time.RFC3339Nano),
    }
    if s.StopTime != nil {
        ev.StoppedAt = s.StopTime.UTC().Format(time.RFC3339Nano)
    }
    return ev
}
