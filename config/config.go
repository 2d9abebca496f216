// Package config loads the aggregator configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/folio/internal/domain"
)

const (
	defaultRefreshInterval  = 12 * time.Hour
	defaultPriceConcurrency = 4
	defaultStoreDir         = "./wal/portfolio"
)

// Config is the fully parsed application configuration.
type Config struct {
	RefreshInterval  time.Duration
	PriceConcurrency int
	StoreDir         string
	DashboardAddr    string
	DashboardDomains []string
	EodhdTokenEnv    string
	Users            []UserConfig
}

// UserConfig describes one tracked portfolio: venue credentials plus manually
// managed stock positions.
type UserConfig struct {
	Name   string
	Venues []VenueConfig
	Stocks map[string]decimal.Decimal
}

// VenueConfig names the environment variables holding one venue's credentials.
// Secrets never live in the YAML itself.
type VenueConfig struct {
	Venue         domain.Venue
	APIKeyEnv     string
	APISecretEnv  string
	PassphraseEnv string
}

// ConfigTmp mirrors the YAML layout before validation; the setup wizard
// marshals it back when generating a config.
type ConfigTmp struct {
	RefreshInterval  time.Duration `yaml:"refresh_interval"`
	PriceConcurrency int           `yaml:"price_concurrency,omitempty"`
	StoreDir         string        `yaml:"store_dir,omitempty"`
	DashboardAddr    string        `yaml:"dashboard_addr,omitempty"`
	DashboardDomains []string      `yaml:"dashboard_domains,omitempty"`
	EodhdTokenEnv    string        `yaml:"eodhd_token_env,omitempty"`
	Users            []UserTmp     `yaml:"users"`
}

type UserTmp struct {
	Name   string            `yaml:"name"`
	Venues []VenueTmp        `yaml:"venues,omitempty"`
	Stocks map[string]string `yaml:"stocks,omitempty"`
}

type VenueTmp struct {
	Venue         string `yaml:"venue"`
	APIKeyEnv     string `yaml:"api_key_env,omitempty"`
	APISecretEnv  string `yaml:"api_secret_env,omitempty"`
	PassphraseEnv string `yaml:"passphrase_env,omitempty"`
}

// FromFile parses and validates a YAML configuration file.
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return parse(raw)
}

func parse(raw []byte) (Config, error) {
	var tmp ConfigTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		RefreshInterval:  tmp.RefreshInterval,
		PriceConcurrency: tmp.PriceConcurrency,
		StoreDir:         tmp.StoreDir,
		DashboardAddr:    tmp.DashboardAddr,
		DashboardDomains: tmp.DashboardDomains,
		EodhdTokenEnv:    tmp.EodhdTokenEnv,
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.PriceConcurrency <= 0 {
		cfg.PriceConcurrency = defaultPriceConcurrency
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = defaultStoreDir
	}

	if len(tmp.Users) == 0 {
		return Config{}, fmt.Errorf("config has no users")
	}

	for _, u := range tmp.Users {
		if u.Name == "" {
			return Config{}, fmt.Errorf("user without a name in config")
		}

		user := UserConfig{Name: u.Name}
		for _, v := range u.Venues {
			venue, err := domain.ParseVenue(v.Venue)
			if err != nil {
				return Config{}, fmt.Errorf("user %s: %w", u.Name, err)
			}
			if venue.IsStock() {
				return Config{}, fmt.Errorf("user %s: stock positions belong under 'stocks', not 'venues'", u.Name)
			}
			if v.APIKeyEnv == "" || v.APISecretEnv == "" {
				return Config{}, fmt.Errorf("user %s: venue %s needs api_key_env and api_secret_env", u.Name, venue)
			}
			user.Venues = append(user.Venues, VenueConfig{
				Venue:         venue,
				APIKeyEnv:     v.APIKeyEnv,
				APISecretEnv:  v.APISecretEnv,
				PassphraseEnv: v.PassphraseEnv,
			})
		}

		if len(u.Stocks) > 0 {
			user.Stocks = make(map[string]decimal.Decimal, len(u.Stocks))
			for symbol, qty := range u.Stocks {
				parsed, err := decimal.NewFromString(qty)
				if err != nil {
					return Config{}, fmt.Errorf("user %s: bad quantity %q for stock %s: %w", u.Name, qty, symbol, err)
				}
				user.Stocks[symbol] = parsed
			}
		}

		if len(user.Venues) == 0 && len(user.Stocks) == 0 {
			return Config{}, fmt.Errorf("user %s has neither venues nor stocks", u.Name)
		}
		cfg.Users = append(cfg.Users, user)
	}

	return cfg, nil
}
