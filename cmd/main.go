package main

import (
	"context"
	"fmt"
	"os"

	"GolfSync/internal/adapter"
	"GolfSync/internal/config"
	_ "GolfSync/internal/gist"
	"GolfSync/internal/repository"
	"GolfSync/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app everything a command needs, wired from config
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB
	engine *service.Engine
}

// bootstrap config -> logger -> local cache -> remote store -> engine -> settings -> load
func bootstrap(ctx context.Context, opts *RootOptions) (*app, error) {
	// 1. configuration
	cfg, err := config.LoadConfig(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. logger
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	logger.Info("configuration loaded")

	// 3. local cache (creates the database/table when missing)
	db, err := repository.OpenDB(&cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	cache := repository.NewCacheRepository(db)

	// 4. remote store selected by remote.backend
	remote, err := adapter.NewRemoteStore(cfg, logger)
	if err != nil {
		closeDB(db, logger)
		return nil, err
	}

	// 5. engine; notices are surfaced in the log as well as through the API
	engine := service.NewEngine(cache, remote, logger,
		service.WithSitePassword(cfg.Auth.SitePassword),
		service.WithNoticeHook(func(n service.Notice) {
			logger.WithField("kind", n.Kind).WithField("detail", n.Detail).Warn(n.Message)
		}),
	)

	// 6. saved settings, then the load state machine
	if err := engine.LoadSettings(ctx); err != nil {
		closeDB(db, logger)
		return nil, err
	}
	result, err := engine.Load(ctx)
	if err != nil {
		closeDB(db, logger)
		return nil, fmt.Errorf("load club data: %w", err)
	}
	logger.WithField("source", result.Source).WithField("fallback", result.Fallback).Info("club data ready")

	return &app{cfg: cfg, logger: logger, db: db, engine: engine}, nil
}

func (a *app) Close() {
	closeDB(a.db, a.logger)
}

func closeDB(db *gorm.DB, logger *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Warn("closing local cache failed")
	}
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
