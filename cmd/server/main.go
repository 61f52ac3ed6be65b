package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"nub.ac.bd/transport/internal/bootstrap"
	"nub.ac.bd/transport/internal/config"
	"nub.ac.bd/transport/internal/server"
	"nub.ac.bd/transport/pkg/cache"
	"nub.ac.bd/transport/pkg/database"
	"nub.ac.bd/transport/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFile)

	db, err := database.Connect(database.Config{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    !cfg.IsProduction(),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedAdminUser(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logrus.Fatalf("failed to seed admin user: %v", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logrus.WithError(err).Warn("continuing without redis")
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(ctx, cfg, db, redisClient)
	defer srv.Close()

	go func() {
		logrus.Infof("server listening on :%s", cfg.Port)
		if err := srv.Run(":" + cfg.Port); err != nil {
			logrus.Errorf("server exited with error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
}
