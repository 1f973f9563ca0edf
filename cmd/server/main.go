package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                    // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's bundled middleware
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/tenseconds/internal/config"   // Internal config loader
	"github.com/iliyamo/tenseconds/internal/database" // MySQL connection and migrations
	"github.com/iliyamo/tenseconds/internal/game"
	"github.com/iliyamo/tenseconds/internal/handler"
	"github.com/iliyamo/tenseconds/internal/logging"
	"github.com/iliyamo/tenseconds/internal/middleware"
	"github.com/iliyamo/tenseconds/internal/queue"
	"github.com/iliyamo/tenseconds/internal/repository"
	"github.com/iliyamo/tenseconds/internal/router" // Internal router setup
	queue_publisher "github.com/iliyamo/tenseconds/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("run migrations")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.WithField("addr", cfg.Redis.Address()).Warn("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var events game.EventPublisher = game.NopPublisher{}
	if cfg.Broker.Enabled {
		events = queue_publisher.NewAMQPPublisher(cfg.Broker, logger)
	}
	if cfg.Broker.Enabled && cfg.Broker.ConsumerEnabled {
		go func() {
			if err := queue.StartGameConsumer(ctx, cfg.Broker, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("game consumer stopped")
			}
		}()
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewGameSessionRepo(db)
	engine := game.NewEngine(sessions, cfg.Game.ExpiryThreshold, events, logger)
	stats := game.NewStats(sessions, users, game.StatsOptions{
		FinishedOnly:   cfg.Game.LeaderboardFinishedOnly,
		DefaultPerPage: cfg.Game.DefaultPerPage,
		MaxPerPage:     cfg.Game.MaxPerPage,
	})

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover(), middleware.RequestID(), middleware.RequestLogger(logger))

	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb, logger)
	cache := middleware.NewRedisCache(cfg.Cache, rdb, logger)

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, logger), cfg.JWTSecret, limit)
	router.RegisterGame(e, handler.NewGameHandler(engine, logger), cfg.JWTSecret, limit)
	router.RegisterStats(e, handler.NewStatsHandler(stats, logger), cache)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		logger.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
