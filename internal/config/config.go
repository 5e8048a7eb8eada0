package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MENUSTATS"

// Store drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLitePath is used when the sqlite driver has no database_url.
const DefaultSQLitePath = "menustats.db"

// Config holds the full application configuration.
type Config struct {
	Input      InputConfig    `yaml:"input" mapstructure:"input"`
	Output     OutputConfig   `yaml:"output" mapstructure:"output"`
	Validation ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Store      StoreConfig    `yaml:"store" mapstructure:"store"`
	Log        LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the menu document and its schema.
type InputConfig struct {
	Document string `yaml:"document" mapstructure:"document"`
	Schema   string `yaml:"schema" mapstructure:"schema"`
}

// OutputConfig configures the transformed document.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Indent int    `yaml:"indent" mapstructure:"indent"`
}

// ValidateConfig tunes schema validation.
type ValidateConfig struct {
	MaxErrors int `yaml:"max_errors" mapstructure:"max_errors"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.document", "ex7.xml")
	v.SetDefault("input.schema", "restaurant_schema.xsd")
	v.SetDefault("output.path", "ex7-out.xml")
	v.SetDefault("output.indent", 2)
	v.SetDefault("validate.max_errors", 0)
	v.SetDefault("store.driver", DriverNone)
	v.SetDefault("store.database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks that the configuration is usable. All problems are
// reported together.
func (c *Config) Validate() error {
	var problems []string

	if c.Input.Document == "" {
		problems = append(problems, "input.document is required")
	}
	if c.Input.Schema == "" {
		problems = append(problems, "input.schema is required")
	}
	if c.Output.Path == "" {
		problems = append(problems, "output.path is required")
	}
	if c.Output.Indent < 0 || c.Output.Indent > 16 {
		problems = append(problems, "output.indent must be between 0 and 16")
	}
	if c.Validation.MaxErrors < 0 {
		problems = append(problems, "validate.max_errors must not be negative")
	}

	switch c.Store.Driver {
	case DriverNone, DriverSQLite:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be one of none, sqlite, postgres")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, "log.format must be console or json")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
