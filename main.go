package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/leadscout/techscan/config"
	"github.com/leadscout/techscan/internal/cron"
	"github.com/leadscout/techscan/internal/database"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/server"
	"github.com/leadscout/techscan/services"
)

func main() {
	app := &cli.App{
		Name:  "techscan",
		Usage: "website technology scanner and outreach engine",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "start the application server",
				Action: runServer,
			},
			{
				Name:   "migrate",
				Usage:  "run database migrations",
				Action: runMigrate,
			},
			{
				Name:  "scan",
				Usage: "scan domains and optionally send outreach",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "domain", Aliases: []string{"d"}, Usage: "domain to scan, repeatable"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "file with one domain per line"},
					&cli.BoolFlag{Name: "send", Usage: "send outreach emails for qualifying scans"},
				},
				Action: runScan,
			},
			{
				Name:   "calendly-sync",
				Usage:  "sync calendly bookings against emailed leads",
				Action: runCalendlySync,
			},
			{
				Name:  "test-send",
				Usage: "send a test email through the inbox rotation",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Required: true, Usage: "recipient address"},
				},
				Action: runTestSend,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.NewConnection(&database.DatabaseConfig{
		DBName:          cfg.DatabaseConfig.DBName,
		Host:            cfg.DatabaseConfig.Host,
		Port:            cfg.DatabaseConfig.Port,
		User:            cfg.DatabaseConfig.User,
		Password:        cfg.DatabaseConfig.Password,
		MaxConn:         cfg.DatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.DatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.DatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.DatabaseConfig.LogLevel,
		SSLMode:         cfg.DatabaseConfig.SSLMode,
	})
}

// bootstrap wires everything a CLI command needs outside the server
// lifecycle.
func bootstrap(ctx context.Context) (*config.Config, *services.Services, *repository.Repositories, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "database initialization failed")
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	repos := repository.InitRepositories(db)
	svcs, err := services.InitServices(ctx, cfg, appLogger, repos)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, svcs, repos, nil
}

func runServer(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return errors.Wrap(err, "config initialization failed")
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "database initialization failed")
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("TechScan starting up...")

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return errors.Wrap(err, "server setup failed")
	}

	if err := srv.Run(); err != nil {
		return errors.Wrap(err, "server startup failed")
	}

	log.Println("Shutdown complete")
	return nil
}

func runMigrate(c *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return errors.Wrap(err, "config initialization failed")
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "database initialization failed")
	}

	err = repository.MigrateDB(db, cfg.DatabaseConfig.MaxConn, cfg.DatabaseConfig.MaxIdleConn, cfg.DatabaseConfig.ConnMaxLifetime)
	if err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	log.Println("Database migration completed successfully")
	return nil
}

func runScan(c *cli.Context) error {
	ctx := c.Context

	cfg, svcs, _, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	domains := c.StringSlice("domain")
	if file := c.String("file"); file != "" {
		fromFile, err := cron.ReadDomainsFile(file)
		if err != nil {
			return errors.Wrapf(err, "cannot read domains file %s", file)
		}
		domains = append(domains, fromFile...)
	}
	if len(domains) == 0 && cfg.ScannerConfig.DomainsFile != "" {
		fromFile, err := cron.ReadDomainsFile(cfg.ScannerConfig.DomainsFile)
		if err != nil {
			return errors.Wrapf(err, "cannot read domains file %s", cfg.ScannerConfig.DomainsFile)
		}
		domains = fromFile
	}
	if len(domains) == 0 {
		return errors.New("no domains given, use --domain or --file")
	}

	outcomes := svcs.PipelineService.ProcessDomains(ctx, domains, c.Bool("send"))
	for _, outcome := range outcomes {
		switch {
		case outcome.Error != "":
			fmt.Printf("%-40s ERROR   %s\n", outcome.Domain, outcome.Error)
		case outcome.Skipped:
			fmt.Printf("%-40s SKIP    %s\n", outcome.Domain, outcome.SkipReason)
		case outcome.Emailed:
			fmt.Printf("%-40s EMAILED top=%s\n", outcome.Domain, outcome.TopTechnology)
		default:
			fmt.Printf("%-40s SCANNED top=%s\n", outcome.Domain, outcome.TopTechnology)
		}
	}
	return nil
}

func runCalendlySync(c *cli.Context) error {
	ctx := c.Context

	_, svcs, _, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	if svcs.CalendlyService == nil {
		return errors.New("calendly is not configured, set CALENDLY_API_TOKEN")
	}

	stats, err := svcs.CalendlyService.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("events: %d, bookings: %d, matched: %d, updated: %d, new: %d\n",
		stats.EventsProcessed, stats.BookingsFound, stats.LeadsMatched, stats.LeadsUpdated, stats.NewBookings)
	return nil
}

func runTestSend(c *cli.Context) error {
	ctx := c.Context

	_, svcs, _, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	persona, err := svcs.Rotation.SelectPersona()
	if err != nil {
		return err
	}

	email := &models.GeneratedEmail{
		Subject:      "TechScan delivery test",
		Body:         "This is a delivery test from the techscan inbox rotation. No action needed.",
		MainTech:     "none",
		PersonaID:    persona.ID,
		Persona:      persona.DisplayName,
		PersonaEmail: persona.Email,
		PersonaRole:  persona.Role,
		VariantID:    "test_send",
	}

	from, err := svcs.SenderService.Send(ctx, c.String("to"), email)
	if err != nil {
		return err
	}
	fmt.Printf("sent from %s to %s\n", from, c.String("to"))
	return nil
}
