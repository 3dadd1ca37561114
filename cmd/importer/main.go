package main

import (
	"os"
	"time"

	"omcis-store/internal/config"
	"omcis-store/internal/db"
	"omcis-store/internal/importer"
	"omcis-store/internal/repository/category"
	"omcis-store/internal/repository/product"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "importer",
		Usage: "import products from a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "path to the product CSV (id,name,category,price,cost,stock,min_stock,status,sizes,image)",
				Required: true,
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("importer failed")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger("importer")
	ctx := c.Context

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return cli.Exit("connect db: "+err.Error(), 1)
	}
	defer pool.Close()

	f, err := os.Open(c.String("file"))
	if err != nil {
		return cli.Exit("open file: "+err.Error(), 1)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), category.NewPostgres(pool), logger)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		return cli.Exit("import failed: "+err.Error(), 1)
	}

	logger.WithFields(logrus.Fields{
		"products":   res.Products,
		"categories": res.Categories,
		"took":       time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("import complete")
	return nil
}
