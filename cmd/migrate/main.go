package main

import (
	"os"

	"omcis-store/internal/config"
	"omcis-store/internal/db"
	"omcis-store/internal/migrate"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "apply or roll back schema migrations",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "down",
				Usage: "roll back this many steps instead of migrating up",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("migrate failed")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger("migrate")
	ctx := c.Context

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return cli.Exit("connect db: "+err.Error(), 1)
	}
	defer pool.Close()

	if steps := c.Int("down"); steps > 0 {
		if err := migrate.Rollback(ctx, pool, steps); err != nil {
			return cli.Exit("rollback: "+err.Error(), 1)
		}
		logger.WithField("steps", steps).Info("migrations rolled back")
		return nil
	}

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		return cli.Exit("apply migrations: "+err.Error(), 1)
	}
	logger.WithField("version", version).Info("migrations applied")
	return nil
}
