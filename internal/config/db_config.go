package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Driver           string `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	if config.Driver != "sqlite" && config.Driver != "postgres" {
		return fmt.Errorf("unsupported db driver: %s", config.Driver)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	var errs []error
	if err := viper.BindEnv("db.driver", "DB_DRIVER"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
