package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type CacheConfig struct {
	Backend                string `mapstructure:"backend"`
	RedisURL               string `mapstructure:"redis_url"`
	CleanupIntervalMinutes int    `mapstructure:"cleanup_interval_minutes"`
}

func (config CacheConfig) validate() error {
	switch config.Backend {
	case "memory":
		return nil
	case "redis":
		if config.RedisURL == "" {
			return fmt.Errorf("missing variable: redis_url (required for redis backend)")
		}
		return nil
	default:
		return fmt.Errorf("unsupported cache backend: %s", config.Backend)
	}
}

func (config CacheConfig) bindEnvironmentVariables() error {
	var errs []error
	if err := viper.BindEnv("cache.backend", "CACHE_BACKEND"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("cache.redis_url", "REDIS_URL"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
