package commands

import (
	"context"

	"github.com/kesav2003/dns-czds-sync/pkg/czds"
	"github.com/kesav2003/dns-czds-sync/pkg/db"
	"github.com/kesav2003/dns-czds-sync/pkg/syncer"
	"github.com/kesav2003/dns-czds-sync/pkg/version"
	"github.com/rancher/wrangler/pkg/signals"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
	"k8s.io/apimachinery/pkg/util/wait"
)

type syncCmd struct{}

func (s *syncCmd) Execute(c *cli.Context) error {
	ctx := signals.SetupSignalHandler(context.Background())

	log := logrus.WithField("command", "sync")

	log.Infof("version: %v", version.Get())

	database, err := db.New(ctx, c.String("sql-dialect"), c.String("sql-dsn"), &gorm.Config{
		Logger: db.NewLogger(c.String("log-level")),
	})
	if err != nil {
		return err
	}

	client := czds.NewClient(c.String("czds-username"), c.String("czds-password"))

	sync := syncer.New(log, client, database, syncer.Options{
		MaxZones:  c.Int("max-zones"),
		BatchSize: c.Int("batch-size"),
		Allowlist: c.StringSlice("zones"),
		WorkDir:   c.String("work-dir"),
	})

	interval := c.Duration("interval")
	if interval <= 0 {
		return sync.Run(ctx)
	}

	log.Infof("running every %v", interval)
	wait.JitterUntil(func() {
		if err := sync.Run(ctx); err != nil {
			log.WithError(err).Error("sync run failed")
		}
	}, interval, .002, true, ctx.Done())

	return nil
}

func syncCommand() *cli.Command {
	cmd := syncCmd{}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "czds-username",
			Usage:    "CZDS account username",
			EnvVars:  []string{"CZDS_USERNAME"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     "czds-password",
			Usage:    "CZDS account password",
			EnvVars:  []string{"CZDS_PASSWORD"},
			Required: true,
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
		&cli.IntFlag{
			Name:    "max-zones",
			Usage:   "Max number of zones to process per run",
			EnvVars: []string{"MAX_TLDS"},
			Value:   syncer.DefaultMaxZones,
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Usage:   "Rows per insert batch",
			EnvVars: []string{"BATCH_SIZE"},
			Value:   syncer.DefaultBatchSize,
		},
		&cli.StringSliceFlag{
			Name:    "zones",
			Usage:   "Only process these TLDs (comma-separated); overrides max-zones",
			EnvVars: []string{"TLD_ALLOWLIST", "TLD_WHITELIST"},
		},
		&cli.StringFlag{
			Name:    "work-dir",
			Usage:   "Scratch directory for downloads (default: a temp dir)",
			EnvVars: []string{"WORK_DIR"},
		},
		&cli.DurationFlag{
			Name:    "interval",
			Usage:   "Re-run the sync on this interval instead of exiting (0 = run once)",
			EnvVars: []string{"SYNC_INTERVAL"},
		},
	}

	return &cli.Command{
		Name:   "sync",
		Usage:  "download approved CZDS zone files and sync them into the database",
		Action: cmd.Execute,
		Flags:  append(flags, GlobalFlags()...),
		Before: Before,
	}
}
