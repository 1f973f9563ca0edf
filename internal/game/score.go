package game

import (
	"time"

	"github.com/iliyamo/tenseconds/internal/model"
)

// Result is the outcome of stopping a session.
type Result struct {
	Status    string
	Duration  int64 // milliseconds
	Deviation int64 // milliseconds from model.TargetDuration
}

// Score classifies a session that ran from start to stop.  The full elapsed
// time is compared with threshold: below it the session is STOPPED, at or
// above it EXPIRED.  A stop time before the start time counts as zero
// elapsed time.
func Score(start, stop time.Time, threshold time.Duration) Result {
	elapsed := stop.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}

	status := model.StatusStopped
	if elapsed >= threshold {
		status = model.StatusExpired
	}

	duration := elapsed.Milliseconds()
	deviation := duration - model.TargetDuration.Milliseconds()
	if deviation < 0 {
		deviation = -deviation
	}
	return Result{Status: status, Duration: duration, Deviation: deviation}
}
