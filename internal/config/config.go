// Package config loads the tool's configuration from a YAML file and
// EDINET_* environment variables, and owns global logger setup.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	EDINET   EDINETConfig   `yaml:"edinet" mapstructure:"edinet"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	Exchange ExchangeConfig `yaml:"exchange" mapstructure:"exchange"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// EDINETConfig configures the disclosure API client. The API key also
// binds to the bare EDINET_API_KEY environment variable.
type EDINETConfig struct {
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ResolverConfig configures metric resolution.
type ResolverConfig struct {
	OverridesPath string `yaml:"overrides_path" mapstructure:"overrides_path"`
}

// ExchangeConfig configures the listing-exchange directory.
type ExchangeConfig struct {
	SpreadsheetPath string `yaml:"spreadsheet_path" mapstructure:"spreadsheet_path"`
}

// FetchConfig configures the fetch pipeline.
type FetchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// Load reads configuration from the given file (or, when path is empty,
// from .edinet-cli.yaml in the working directory or home) and from the
// environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".edinet-cli")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	// Environment
	v.SetEnvPrefix("EDINET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("edinet.api_key", "EDINET_API_KEY")

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("edinet.base_url", "https://disclosure.edinet-fsa.go.jp/api/v2")
	v.SetDefault("edinet.requests_per_second", 1.0)
	v.SetDefault("edinet.max_retries", 3)
	v.SetDefault("edinet.timeout_secs", 60)
	v.SetDefault("edinet.user_agent", "edinet-cli/1.0")
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.output_dir", "output")
	v.SetDefault("store.sqlite_path", "edinet.db")
	v.SetDefault("fetch.concurrency", 4)

	// Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields the given command needs. Modes: "fetch"
// talks to the API and persists, "parse" only persists, "inspect" works
// entirely from local files.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "fetch":
		if c.EDINET.APIKey == "" {
			problems = append(problems, "edinet.api_key is required (EDINET_API_KEY)")
		}
		if c.Fetch.Concurrency < 1 || c.Fetch.Concurrency > 32 {
			problems = append(problems, "fetch.concurrency must be between 1 and 32")
		}
		problems = append(problems, c.storeProblems()...)
	case "parse":
		problems = append(problems, c.storeProblems()...)
	case "inspect":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	var problems []string
	switch c.Store.Driver {
	case "json":
		if c.Store.OutputDir == "" {
			problems = append(problems, "store.output_dir is required for the json driver")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be json, sqlite, or postgres")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Level == "" {
		cfg.Level = "info"
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
