package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/printmarket/internal/app"
	"github.com/phenrril/printmarket/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := connect(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to database")
	}

	application, err := app.NewApp(db, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}
	if err := application.MigrateAndSeed(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate and seed database")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("addr", server.Addr).Str("env", cfg.AppEnv).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info().Msg("bye")
}

// connect opens the database, retrying with exponential backoff until
// DB_CONNECT_TIMEOUT elapses.
func connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true}
	if cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Error)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.DBConnectTimeout
	bo.MaxInterval = 5 * time.Second

	var db *gorm.DB
	op := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		return sqlDB.PingContext(ctx)
	}
	notify := func(err error, next time.Duration) {
		zlog.Warn().Err(err).Dur("retry_in", next).Msg("database not ready")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return db, nil
}
