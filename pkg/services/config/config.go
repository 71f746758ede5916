package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "PRICEATLAS"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Forecast ForecastConfig `mapstructure:"forecast"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
}

type ForecastConfig struct {
	HorizonYear    int    `mapstructure:"horizon_year" validate:"required,min=2000,max=2200"`
	CutoverMonth   int    `mapstructure:"cutover_month" validate:"required,min=1,max=12"`
	ActivationDate string `mapstructure:"activation_date" validate:"required,datetime=2006-01-02"`
}

type StorageConfig struct {
	DuckDBPath    string `mapstructure:"duckdb_path" validate:"required"`
	ReferenceData string `mapstructure:"reference_data"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	DB       int    `mapstructure:"db" validate:"min=0"`
	Password string `mapstructure:"password"`
}

type CacheConfig struct {
	Size int `mapstructure:"size" validate:"min=1"`
}

type ServerConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReloadSchedule string `mapstructure:"reload_schedule"`
}

// Activation parses Forecast.ActivationDate; it is validated on load.
func (c ForecastConfig) Activation() time.Time {
	t, _ := time.Parse("2006-01-02", c.ActivationDate)
	return t
}

func (c ForecastConfig) Cutover() time.Month {
	return time.Month(c.CutoverMonth)
}

func setDefaults(v *viper.Viper, now time.Time) {
	v.SetDefault("forecast.horizon_year", now.Year()+1)
	v.SetDefault("forecast.cutover_month", int(time.November))
	v.SetDefault("forecast.activation_date", "2025-11-01")
	v.SetDefault("storage.duckdb_path", "price-atlas.db")
	v.SetDefault("storage.reference_data", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("cache.size", 256)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.reload_schedule", "@every 15m")
}

// LoadConfig reads the optional file at path, overlays PRICEATLAS_* environment
// variables and validates the result. An empty path uses defaults and the
// environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, time.Now())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &cfg, nil
}
