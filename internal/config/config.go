package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pricewatch/internal/logging"
)

// Supported dataset sources.
const (
	SourceXLSX     = "xlsx"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Report    ReportConfig    `mapstructure:"report"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatasetConfig locates the price observation table.
type DatasetConfig struct {
	// Source is one of xlsx, csv, postgres, sqlite. Empty means infer from Path.
	Source       string            `mapstructure:"source"`
	Path         string            `mapstructure:"path"`
	Sheet        string            `mapstructure:"sheet"`
	GroupAliases map[string]string `mapstructure:"group_aliases"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Table           string        `mapstructure:"table"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ReportConfig shapes summary rows.
type ReportConfig struct {
	ProductURLTemplate string        `mapstructure:"product_url_template"`
	NoData             string        `mapstructure:"no_data"`
	CurrencySymbol     string        `mapstructure:"currency_symbol"`
	UpdateTime         string        `mapstructure:"update_time"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
}

// SchedulerConfig governs the daily reload of the dataset.
type SchedulerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	At           string        `mapstructure:"at"`
	Timezone     string        `mapstructure:"timezone"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
	RunOnStart   bool          `mapstructure:"run_on_start"`
}

// AlertingConfig defines the digest pushed after each reload.
type AlertingConfig struct {
	Enabled    bool           `mapstructure:"enabled"`
	MaxRows    int            `mapstructure:"max_rows"`
	Group      string         `mapstructure:"group"`
	Volatility string         `mapstructure:"volatility"`
	Category   string         `mapstructure:"category"`
	Subtype    string         `mapstructure:"subtype"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	BOM         bool `mapstructure:"bom"`
	ChartWidth  int  `mapstructure:"chart_width"`
	ChartHeight int  `mapstructure:"chart_height"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("PRICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv exports variables from ./.env when present. Existing variables win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pricewatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("dataset.path", "processed_price_data.xlsx")
	v.SetDefault("dataset.group_aliases", map[string]string{
		"照明": "Lighting",
		"电工": "Electrical",
	})

	v.SetDefault("database.table", "price_observations")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("report.product_url_template", "https://www.amazon.com/dp/%s")
	v.SetDefault("report.no_data", "no data")
	v.SetDefault("report.currency_symbol", "$")
	v.SetDefault("report.update_time", "14:30")
	v.SetDefault("report.cache_ttl", "15m")

	v.SetDefault("scheduler.interval", "24h")
	v.SetDefault("scheduler.at", "14:30")
	v.SetDefault("scheduler.timezone", "Local")
	v.SetDefault("scheduler.startup_delay", "0s")
	v.SetDefault("scheduler.run_on_start", true)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.max_rows", 20)
	v.SetDefault("alerting.volatility", "All")
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")

	v.SetDefault("export.bom", true)
	v.SetDefault("export.chart_width", 1280)
	v.SetDefault("export.chart_height", 720)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Dataset.ResolveSource() {
	case SourceXLSX, SourceCSV, SourceSQLite:
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path must be configured")
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn must be configured for the postgres source")
		}
	default:
		return fmt.Errorf("dataset.source %q is not supported", c.Dataset.Source)
	}
	if !strings.Contains(c.Report.ProductURLTemplate, "%s") {
		return fmt.Errorf("report.product_url_template must contain %%s")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if _, err := c.Scheduler.Offset(); err != nil {
		return err
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return err
	}
	if c.Alerting.MaxRows <= 0 {
		return fmt.Errorf("alerting.max_rows must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// ResolveSource returns the configured source or infers it from the path extension.
func (d DatasetConfig) ResolveSource() string {
	if d.Source != "" {
		return strings.ToLower(d.Source)
	}
	lower := strings.ToLower(d.Path)
	switch {
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".tsv"):
		return SourceCSV
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return SourceSQLite
	default:
		return SourceXLSX
	}
}

// Offset parses scheduler.at ("HH:MM") into an offset from midnight. Empty disables alignment.
func (s SchedulerConfig) Offset() (time.Duration, error) {
	if s.At == "" {
		return 0, nil
	}
	t, err := time.Parse("15:04", s.At)
	if err != nil {
		return 0, fmt.Errorf("scheduler.at must be HH:MM: %w", err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Location resolves scheduler.timezone.
func (s SchedulerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler.timezone: %w", err)
	}
	return loc, nil
}
