package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Steam     SteamConfig     `mapstructure:"steam"`
	Collector CollectorConfig `mapstructure:"collector"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
}

type SteamConfig struct {
	ChartsBaseURL string        `mapstructure:"charts_base_url"` // e.g., "https://api.steampowered.com"
	StoreBaseURL  string        `mapstructure:"store_base_url"`  // e.g., "https://store.steampowered.com"
	CountryCode   string        `mapstructure:"country_code"`    // price region, e.g., "us"
	Timeout       time.Duration `mapstructure:"timeout"`
}

type CollectorConfig struct {
	TopN       int           `mapstructure:"top_n"`      // how many ranked apps to keep per snapshot
	Exclusions []string      `mapstructure:"exclusions"` // display names to drop during ingestion
	Interval   time.Duration `mapstructure:"interval"`   // 0 means run once and exit
}

type StoreConfig struct {
	CSVPath         string `mapstructure:"csv_path"`
	BackupCSVPath   string `mapstructure:"backup_csv_path"` // optional secondary file merged on read
	PostgresEnabled bool   `mapstructure:"postgres_enabled"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	// TODO: env path
	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Support environment variables with dot notation (e.g., STEAM_CHARTS_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
