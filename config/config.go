package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName   = "rethinking"
	EnvPrefix = "RETHINKING"
)

type Config struct {
	Interpreter string        `mapstructure:"interpreter"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Seed        uint64        `mapstructure:"seed"`
	Workers     int           `mapstructure:"workers"`
	LogLevel    string        `mapstructure:"log_level"`
	Variable    string        `mapstructure:"variable"`
}

func DefaultConfig() Config {
	return Config{
		Interpreter: "R --vanilla --no-echo",
		Timeout:     5 * time.Minute,
		Seed:        4,
		Workers:     0,
		LogLevel:    "info",
		Variable:    "d",
	}
}

// Load reads rethinking.yaml from path, or from the working directory when
// path is empty, then applies RETHINKING_* environment overrides. A missing
// default file is not an error.
func Load(path string) (Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (Config, error) {

	defaults := DefaultConfig()
	v.SetDefault("interpreter", defaults.Interpreter)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("variable", defaults.Variable)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("unable to read config: %w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Interpreter) == "" {
		return errors.New("interpreter must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Variable == "" {
		return errors.New("variable must not be empty")
	}
	return nil
}
