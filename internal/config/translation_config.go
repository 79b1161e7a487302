package config

type TranslationConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	MaxRequestsPerMinute float32  `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32  `mapstructure:"max_requests_per_day"`
	MaxConsecutiveErrors int      `mapstructure:"max_consecutive_errors"`
	TargetLanguages      []string `mapstructure:"target_languages"`
}
