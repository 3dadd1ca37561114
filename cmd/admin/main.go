package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"omcis-store/internal/config"
	"omcis-store/internal/db"
	adminrepo "omcis-store/internal/repository/admin"
	userrepo "omcis-store/internal/repository/user"
	adminsvc "omcis-store/internal/service/admin"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "admin",
		Usage: "manage back-office administrators",
		Commands: []*cli.Command{
			{
				Name:  "grant-master",
				Usage: "make an existing user the master administrator",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "email of a registered user"},
				},
				Action: withService(func(c *cli.Context, svc *adminsvc.Service) error {
					rec, err := svc.GrantMaster(c.Context, c.String("email"))
					if err != nil {
						return cli.Exit("grant master: "+err.Error(), 1)
					}
					fmt.Fprintf(c.App.Writer, "%s (%s) is now %s\n", rec.Email, rec.UID, rec.Role)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list delegated administrators (the master is not listed)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "filter by email substring"},
				},
				Action: withService(func(c *cli.Context, svc *adminsvc.Service) error {
					ov, err := svc.Overview(c.Context, c.String("search"))
					if err != nil {
						return cli.Exit("list admins: "+err.Error(), 1)
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "UID\tEMAIL\tROLE")
					for _, a := range ov.Admins {
						fmt.Fprintf(w, "%s\t%s\t%s\n", a.UID, a.Email, a.Role)
					}
					return w.Flush()
				}),
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("admin command failed")
	}
}

func withService(fn func(*cli.Context, *adminsvc.Service) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		logger := cfg.NewLogger("admin")
		pool, err := db.Connect(c.Context, cfg.DBConnString)
		if err != nil {
			return cli.Exit("connect db: "+err.Error(), 1)
		}
		defer pool.Close()

		svc := adminsvc.New(adminrepo.NewPostgres(pool, logger), userrepo.NewPostgres(pool, logger), logger)
		return fn(c, svc)
	}
}
