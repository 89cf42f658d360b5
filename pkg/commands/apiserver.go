package commands

import (
	"context"

	"github.com/kesav2003/dns-czds-sync/pkg/apiserver"
	"github.com/kesav2003/dns-czds-sync/pkg/db"
	"github.com/kesav2003/dns-czds-sync/pkg/version"
	"github.com/rancher/wrangler/pkg/signals"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

type apiServerCommand struct{}

func (s *apiServerCommand) Execute(c *cli.Context) error {
	ctx := signals.SetupSignalHandler(context.Background())

	log := logrus.WithField("command", "api-server")

	log.Infof("version: %v", version.Get())

	database, err := db.New(ctx, c.String("sql-dialect"), c.String("sql-dsn"), &gorm.Config{
		Logger: db.NewLogger(c.String("log-level")),
	})
	if err != nil {
		return err
	}

	apiServer := apiserver.NewAPIServer(ctx, log, c.Int("port"))

	if err := apiServer.Start(database); err != nil {
		return err
	}

	return nil
}

func serverCommand() *cli.Command {
	cmd := apiServerCommand{}

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Usage:   "Port for the HTTP Server Port",
			EnvVars: []string{"PORT"},
			Value:   4315,
		},
		&cli.StringFlag{
			Name:    "sql-dialect",
			Usage:   "The type of sql to use, sqlite, mysql or postgres",
			EnvVars: []string{"SQL_DIALECT"},
			Value:   "postgres",
		},
		&cli.StringFlag{
			Name:     "sql-dsn",
			Usage:    "The DSN to use to connect to",
			EnvVars:  []string{"SQL_DSN", "DATABASE_URL"},
			Required: true,
		},
	}

	return &cli.Command{
		Name:   "api-server",
		Usage:  "serve the synced zone data over HTTP",
		Action: cmd.Execute,
		Flags:  append(flags, GlobalFlags()...),
		Before: Before,
	}
}
