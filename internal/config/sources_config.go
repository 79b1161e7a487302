package config

import (
	"github.com/spf13/viper"
)

type SourcesConfig struct {
	Adzuna     AdzunaConfig            `mapstructure:"adzuna"`
	JSearch    RapidAPIConfig          `mapstructure:"jsearch"`
	Glassdoor  RapidAPIConfig          `mapstructure:"glassdoor"`
	ActiveJobs RapidAPIConfig          `mapstructure:"active_jobs"`
	Awin       AwinConfig              `mapstructure:"awin"`
	Adcell     AdcellConfig            `mapstructure:"adcell"`
	Ebay       EbayConfig              `mapstructure:"ebay"`
	Budgets    map[string]BudgetConfig `mapstructure:"budgets"`
}

type AdzunaConfig struct {
	AppID   string `mapstructure:"app_id"`
	AppKey  string `mapstructure:"app_key"`
	Country string `mapstructure:"country"`
}

type RapidAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Host   string `mapstructure:"host"`
}

type AwinConfig struct {
	APIToken    string `mapstructure:"api_token"`
	PublisherID string `mapstructure:"publisher_id"`
}

type AdcellConfig struct {
	Token       string `mapstructure:"token"`
	AffiliateID string `mapstructure:"affiliate_id"`
}

type EbayConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Marketplace  string `mapstructure:"marketplace"`
}

// BudgetConfig mirrors the documented request ceilings of one provider.
// Unset fields mean no limit for that window.
type BudgetConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	RequestsPerHour   int `mapstructure:"requests_per_hour"`
	RequestsPerDay    int `mapstructure:"requests_per_day"`
	BurstLimit        int `mapstructure:"burst_limit"`
}

func (config SourcesConfig) bindEnvironmentVariables() error {
	bindings := map[string]string{
		"sources.adzuna.app_id":        "ADZUNA_APP_ID",
		"sources.adzuna.app_key":       "ADZUNA_APP_KEY",
		"sources.jsearch.api_key":      "JSEARCH_API_KEY",
		"sources.glassdoor.api_key":    "GLASSDOOR_API_KEY",
		"sources.active_jobs.api_key":  "ACTIVE_JOBS_API_KEY",
		"sources.awin.api_token":       "AWIN_API_TOKEN",
		"sources.awin.publisher_id":    "AWIN_PUBLISHER_ID",
		"sources.adcell.token":         "ADCELL_TOKEN",
		"sources.adcell.affiliate_id":  "ADCELL_AFFILIATE_ID",
		"sources.ebay.client_id":       "EBAY_CLIENT_ID",
		"sources.ebay.client_secret":   "EBAY_CLIENT_SECRET",
	}

	var errs []error
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
