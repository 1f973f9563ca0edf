package config

import "time"

// GameConfig holds the tunable game rules.
//
// ExpiryThreshold is the elapsed time at or above which a stopped session is
// recorded as EXPIRED instead of STOPPED.  LeaderboardFinishedOnly excludes
// ACTIVE sessions (whose deviation is still 0) from the leaderboard and user
// aggregates.  DefaultPerPage and MaxPerPage bound leaderboard pagination.
type GameConfig struct {
	ExpiryThreshold         time.Duration `env:"GAME_EXPIRY_THRESHOLD" envDefault:"30m"`
	LeaderboardFinishedOnly bool          `env:"GAME_LEADERBOARD_FINISHED_ONLY" envDefault:"false"`
	DefaultPerPage          int           `env:"GAME_LEADERBOARD_DEFAULT_PER_PAGE" envDefault:"10"`
	MaxPerPage              int           `env:"GAME_LEADERBOARD_MAX_PER_PAGE" envDefault:"100"`
}

func (g *GameConfig) normalize() {
	if g.ExpiryThreshold <= 0 {
		g.ExpiryThreshold = 30 * time.Minute
	}
	if g.MaxPerPage < 1 {
		g.MaxPerPage = 100
	}
	if g.DefaultPerPage < 1 {
		g.DefaultPerPage = 10
	}
	if g.DefaultPerPage > g.MaxPerPage {
		g.DefaultPerPage = g.MaxPerPage
	}
}
