package config

import (
	"fmt"
)

type ImportConfig struct {
	Schedule string         `mapstructure:"schedule"`
	Targets  []ImportTarget `mapstructure:"targets"`
}

/// ImportTarget describes one scheduled import: which source to pull from and
// with what query. Kind must match the source ("jobs" or "offers").
type ImportTarget struct {
	Source  string `mapstructure:"source"`
	Kind    string `mapstructure:"kind"`
	Query   string `mapstructure:"query"`
	Country string `mapstructure:"country"`
	Limit   int    `mapstructure:"limit"`
}

func (config ImportConfig) validate() error {
	for _, target := range config.Targets {
		if target.Source == "" {
			return fmt.Errorf("import target missing source name")
		}
		if target.Kind != "jobs" && target.Kind != "offers" {
			return fmt.Errorf("import target %s: kind must be jobs or offers", target.Source)
		}
	}
	return nil
}
