package config

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/viper"

	"goeda/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. GOEDA_SERVER_PORT
const EnvPrefix = "GOEDA"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string `mapstructure:"port" yaml:"port"`
	GinMode        string `mapstructure:"gin_mode" yaml:"gin_mode"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// AnalysisConfig holds the tunable parts of the relationship engine
type AnalysisConfig struct {
	StrongThreshold float64 `mapstructure:"strong_threshold" yaml:"strong_threshold"`
	StrictOrdinal   bool    `mapstructure:"strict_ordinal" yaml:"strict_ordinal"`
	Parallel        bool    `mapstructure:"parallel" yaml:"parallel"`
	MaxConcurrent   int64   `mapstructure:"max_concurrent" yaml:"max_concurrent"` // report builds in flight
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Load reads configuration from defaults, an optional config file and the
// environment. Precedence: env > config file > defaults. An empty cfgFile looks
// for goeda.yaml in the working directory; a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names kept for hosting platforms that inject them.
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.gin_mode", EnvPrefix+"_SERVER_GIN_MODE", "GIN_MODE")
	_ = v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("goeda")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read config file")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode configuration")
	}

	if err := validateConfig(&c); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("analysis.strong_threshold", 0.6)
	v.SetDefault("analysis.strict_ordinal", false)
	v.SetDefault("analysis.parallel", true)
	v.SetDefault("analysis.max_concurrent", 4)
	v.SetDefault("log.level", "INFO")
}

func validateConfig(c *Config) error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	if c.Analysis.StrongThreshold <= 0 || c.Analysis.StrongThreshold >= 1 {
		return errors.ConfigInvalid("strong correlation threshold must be in (0, 1)")
	}
	if c.Analysis.MaxConcurrent < 1 {
		return errors.ConfigInvalid("max concurrent reports must be at least 1")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("gin mode must be debug, release or test")
	}
	return nil
}
