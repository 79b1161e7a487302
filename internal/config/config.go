package config

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger"`
	DB          DBConfig          `mapstructure:"db"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Sources     SourcesConfig     `mapstructure:"sources"`
	Import      ImportConfig      `mapstructure:"import"`
	Translation TranslationConfig `mapstructure:"translation"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, _ := os.LookupEnv("MODE"); value == "test" {
		configFile = "../../configs/config.yaml"
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	viper.SetDefault("MODE", "release")
	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.cleanup_interval_minutes", 10)
	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("import.schedule", "0 */6 * * *")
	viper.SetDefault("translation.base_url", "https://api.mymemory.translated.net")
	viper.SetDefault("translation.max_requests_per_minute", 10)
	viper.SetDefault("translation.max_requests_per_day", 1000)
	viper.SetDefault("translation.max_consecutive_errors", 5)
}

func bindEnvironmentVariables() error {
	var errs []error

	db, logger, cache := DBConfig{}, LoggerConfig{}, CacheConfig{}
	sources := SourcesConfig{}

	if err := db.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := cache.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("CacheConfig: %w", err))
	}

	if err := sources.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("SourcesConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.Cache.validate(); err != nil {
		errs = append(errs, fmt.Errorf("CacheConfig: %w", err))
	}

	if err := config.Import.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ImportConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
