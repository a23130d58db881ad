package di

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/config"
	"github.com/aristath/stockboard/internal/events"
	"github.com/aristath/stockboard/internal/modules/menu"
	"github.com/aristath/stockboard/internal/modules/portfolio"
	"github.com/aristath/stockboard/internal/modules/session"
	"github.com/aristath/stockboard/internal/modules/settings"
	"github.com/aristath/stockboard/internal/modules/watchlist"
	"github.com/aristath/stockboard/internal/reliability"
)

// Version is stamped at build time with -ldflags "-X ...di.Version=..."
var Version = "dev"

// InitializeServices builds the event bus, the domain services and the optional
// backup service, then restores persisted state.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	// The menu is validated once at startup; a broken menu file is fatal
	tree, err := menu.Load(cfg.MenuConfigPath)
	if err != nil {
		return err
	}
	container.Menu = tree

	container.Ledger = portfolio.NewLedger(container.Storage, container.EventManager, portfolio.Options{
		Latency: cfg.LedgerLatency,
	}, log)
	if err := container.Ledger.Load(ctx); err != nil {
		return fmt.Errorf("failed to restore portfolios: %w", err)
	}

	environment := "production"
	if cfg.DevMode {
		environment = "development"
	}
	container.Settings = settings.NewService(container.Storage, container.EventManager, settings.AppInfo{
		Version:     Version,
		BuildTime:   time.Now().UTC().Format(time.RFC3339),
		Environment: environment,
	}, scheduleInterval(cfg.SyncSchedule), log)
	if err := container.Settings.Load(); err != nil {
		return fmt.Errorf("failed to restore settings: %w", err)
	}

	container.Session = session.NewService(container.Storage, container.EventManager, log)
	if err := container.Session.Load(); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	container.Watchlist = watchlist.NewService(container.EventManager, log)

	if cfg.Backup.Enabled() {
		client, err := reliability.NewR2Client(ctx, cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to create backup client: %w", err)
		}
		container.Backup = reliability.NewBackupService(
			client,
			container.StateDB,
			cfg.Backup.Prefix,
			cfg.Backup.RetentionDays,
			cfg.StorageCodec,
			log,
		)
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Backups enabled")
	}

	return nil
}

// scheduleInterval returns the gap between two consecutive runs of a cron
// expression, or 0 if it does not parse.
func scheduleInterval(expr string) time.Duration {
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return 0
	}
	first := schedule.Next(time.Now())
	return schedule.Next(first).Sub(first)
}
