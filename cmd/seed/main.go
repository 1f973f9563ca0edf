// Command seed creates the demo accounts.  It is safe to run repeatedly.
package main

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/tenseconds/internal/config"
	"github.com/iliyamo/tenseconds/internal/database"
	"github.com/iliyamo/tenseconds/internal/logging"
	"github.com/iliyamo/tenseconds/internal/repository"
	"github.com/iliyamo/tenseconds/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("run migrations")
	}

	res, err := seed.Run(ctx, repository.NewUserRepo(db), seed.DemoAccounts, cfg.BcryptCost, logger)
	logger.WithFields(log.Fields{
		"created": len(res.Created),
		"skipped": len(res.Skipped),
		"failed":  len(res.Failed),
	}).Info("seed finished")
	if err != nil {
		db.Close()
		os.Exit(1)
	}
}
