package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"pricewatch/internal/alerting"
	"pricewatch/internal/config"
	"pricewatch/internal/dataset"
	"pricewatch/internal/scheduler"
	"pricewatch/internal/service"
	"pricewatch/internal/storage"
	"pricewatch/internal/volatility"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives reports. Logs go through Logger.
	Out io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

// NewSource builds the dataset source described by cfg.
func NewSource(cfg *config.Config) (dataset.Source, error) {
	opts := dataset.TableOptions{GroupAliases: cfg.Dataset.GroupAliases}
	switch cfg.Dataset.ResolveSource() {
	case config.SourceXLSX:
		return &dataset.XLSXSource{Path: cfg.Dataset.Path, Sheet: cfg.Dataset.Sheet, Options: opts}, nil
	case config.SourceCSV:
		return &dataset.CSVSource{Path: cfg.Dataset.Path, Options: opts}, nil
	case config.SourceSQLite:
		return &storage.SQLiteSource{Path: cfg.Dataset.Path, Table: cfg.Database.Table, Options: opts}, nil
	case config.SourcePostgres:
		return &storage.PostgresSource{Config: cfg.Database, Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset source %q", cfg.Dataset.Source)
	}
}

func (a *App) newEngine() *volatility.Engine {
	r := a.Config.Report
	return volatility.NewEngine(volatility.NewBuilder(r.ProductURLTemplate, r.NoData, r.CurrencySymbol))
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return nil
}

// alertCriteria is the configured digest selection.
func (a *App) alertCriteria() volatility.Criteria {
	al := a.Config.Alerting
	return volatility.Criteria{
		Group:    volatility.Group(al.Group),
		Mode:     volatility.Mode(al.Volatility),
		Category: al.Category,
		Subtype:  al.Subtype,
	}
}

func (a *App) newService() (*service.Service, error) {
	src, err := NewSource(a.Config)
	if err != nil {
		return nil, err
	}
	opts := service.Options{
		CacheTTL:      a.Config.Report.CacheTTL,
		AlertsEnabled: a.Config.Alerting.Enabled,
		AlertCriteria: a.alertCriteria(),
		MaxAlertRows:  a.Config.Alerting.MaxRows,
		UpdateTime:    a.Config.Report.UpdateTime,
	}
	return service.New(src, a.newEngine(), a.newNotifier(), opts, a.Logger), nil
}

// loadService builds the service and performs the initial load.
func (a *App) loadService(ctx context.Context) (*service.Service, error) {
	svc, err := a.newService()
	if err != nil {
		return nil, err
	}
	if _, err := svc.Reload(ctx); err != nil {
		return nil, loadFailed(err)
	}
	return svc, nil
}

func loadFailed(err error) error {
	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		return fmt.Errorf("data load failed: %w", err)
	}
	return err
}

// Watch reloads the dataset on schedule and pushes digests until interrupted.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := a.newService()
	if err != nil {
		return err
	}
	if a.Config.Alerting.Enabled && a.newNotifier() == nil {
		a.Logger.Warn().Msg("alerting enabled but no channel configured; digests disabled")
	}

	at, err := a.Config.Scheduler.Offset()
	if err != nil {
		return err
	}
	loc, err := a.Config.Scheduler.Location()
	if err != nil {
		return err
	}
	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignDaily:   a.Config.Scheduler.At != "",
		At:           at,
		Location:     loc,
		StartupDelay: a.Config.Scheduler.StartupDelay,
		RunOnStart:   a.Config.Scheduler.RunOnStart,
	}, a.Logger)

	a.Logger.Info().Str("at", a.Config.Scheduler.At).Dur("interval", a.Config.Scheduler.Interval).Msg("starting watch")
	err = svc.Run(ctx, sched)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch stopped")
	return nil
}

// QueryOptions select the report rows.
type QueryOptions struct {
	Criteria volatility.Criteria
}

// OptionsOptions select the filter context for the options listing.
type OptionsOptions struct {
	Criteria volatility.Criteria
}

// ExportOptions hold parameters for exporting the summary table.
type ExportOptions struct {
	Criteria volatility.Criteria
	CSVPath  string
	XLSXPath string
}

// ChartOptions configure the price history chart.
type ChartOptions struct {
	ASIN    string
	PNGPath string
}

// NotifyOptions override the configured digest selection.
type NotifyOptions struct {
	Criteria *volatility.Criteria
}

// ImportOptions configure copying a file dataset into a database table.
type ImportOptions struct {
	// To is a SQLite file path, or "postgres" for database.dsn.
	To     string
	DryRun bool
}
