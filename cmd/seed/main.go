package main

import (
	"context"

	"omcis-store/internal/config"
	"omcis-store/internal/db"
	"omcis-store/internal/seed"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		config.Config{}.NewLogger("seed").WithError(err).Fatal("load config")
	}
	logger := cfg.NewLogger("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool); err != nil {
		logger.WithError(err).Fatal("seed apply")
	}

	logger.Info("seed applied")
}
