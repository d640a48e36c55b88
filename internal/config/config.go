// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Google GoogleConfig `yaml:"google" mapstructure:"google"`
	Quota  QuotaConfig  `yaml:"quota" mapstructure:"quota"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run history and quota ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GoogleConfig holds Google Custom Search settings. APIKey and CX are
// secrets supplied via environment (GTIN_GOOGLE_API_KEY, GTIN_GOOGLE_CX).
type GoogleConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	CX          string `yaml:"cx" mapstructure:"cx"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Num         int    `yaml:"num" mapstructure:"num"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// QuotaConfig bounds external search calls per day.
type QuotaConfig struct {
	DailyLimit int `yaml:"daily_limit" mapstructure:"daily_limit"`
}

// SearchConfig configures lookup behavior.
type SearchConfig struct {
	Mode       string  `yaml:"mode" mapstructure:"mode"`               // "sku" or "name"
	FetchPages bool    `yaml:"fetch_pages" mapstructure:"fetch_pages"` // also scan hit pages
	Rate       float64 `yaml:"rate" mapstructure:"rate"`               // calls per second pacing
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GTIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default empty so their env keys are registered.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "gtin.db")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.cx", "")
	v.SetDefault("google.base_url", "https://www.googleapis.com")
	v.SetDefault("google.num", 5)
	v.SetDefault("google.timeout_secs", 12)
	v.SetDefault("quota.daily_limit", 100)
	v.SetDefault("search.mode", "sku")
	v.SetDefault("search.fetch_pages", false)
	v.SetDefault("search.rate", 5.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
