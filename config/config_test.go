package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/folio/internal/domain"
)

const fullConfig = `
refresh_interval: 6h
price_concurrency: 8
store_dir: /var/lib/folio/wal
dashboard_addr: :8080
eodhd_token_env: EODHD_TOKEN
users:
  - name: alice
    venues:
      - venue: binance
        api_key_env: ALICE_BINANCE_API_KEY
        api_secret_env: ALICE_BINANCE_API_SECRET
      - venue: kucoin
        api_key_env: ALICE_KUCOIN_API_KEY
        api_secret_env: ALICE_KUCOIN_API_SECRET
        passphrase_env: ALICE_KUCOIN_PASSPHRASE
    stocks:
      AAPL: "10"
      MSFT: "2.5"
  - name: bob
    venues:
      - venue: bybit
        api_key_env: BOB_BYBIT_API_KEY
        api_secret_env: BOB_BYBIT_API_SECRET
`

func TestParseFullConfig(t *testing.T) {
	cfg, err := parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, 6*time.Hour, cfg.RefreshInterval)
	assert.Equal(t, 8, cfg.PriceConcurrency)
	assert.Equal(t, "/var/lib/folio/wal", cfg.StoreDir)
	assert.Equal(t, ":8080", cfg.DashboardAddr)
	assert.Equal(t, "EODHD_TOKEN", cfg.EodhdTokenEnv)

	require.Len(t, cfg.Users, 2)

	alice := cfg.Users[0]
	assert.Equal(t, "alice", alice.Name)
	require.Len(t, alice.Venues, 2)
	assert.Equal(t, domain.VenueBinance, alice.Venues[0].Venue)
	assert.Equal(t, "ALICE_KUCOIN_PASSPHRASE", alice.Venues[1].PassphraseEnv)
	require.Len(t, alice.Stocks, 2)
	assert.True(t, alice.Stocks["MSFT"].Equal(decimal.NewFromFloat(2.5)))

	bob := cfg.Users[1]
	assert.Empty(t, bob.Stocks)
	require.Len(t, bob.Venues, 1)
	assert.Equal(t, domain.VenueBybit, bob.Venues[0].Venue)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := parse([]byte(`
users:
  - name: alice
    stocks:
      AAPL: "1"
`))
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.RefreshInterval)
	assert.Equal(t, 4, cfg.PriceConcurrency)
	assert.Equal(t, "./wal/portfolio", cfg.StoreDir)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errPart string
	}{
		{
			name:    "no users",
			yaml:    `refresh_interval: 1h`,
			errPart: "no users",
		},
		{
			name: "unknown venue",
			yaml: `
users:
  - name: alice
    venues:
      - venue: nasdaq
        api_key_env: K
        api_secret_env: S
`,
			errPart: "alice",
		},
		{
			name: "stock venue in venues list",
			yaml: `
users:
  - name: alice
    venues:
      - venue: stock
        api_key_env: K
        api_secret_env: S
`,
			errPart: "stocks",
		},
		{
			name: "missing credential env names",
			yaml: `
users:
  - name: alice
    venues:
      - venue: binance
`,
			errPart: "api_key_env",
		},
		{
			name: "bad stock quantity",
			yaml: `
users:
  - name: alice
    stocks:
      AAPL: "ten"
`,
			errPart: "bad quantity",
		},
		{
			name: "user without venues or stocks",
			yaml: `
users:
  - name: alice
`,
			errPart: "neither venues nor stocks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o644))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Users, 2)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
