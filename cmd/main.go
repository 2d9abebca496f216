// Command folio aggregates portfolios across crypto exchanges and equities
// into a periodically republished USD valuation with per-asset deltas.
//
// Usage:
//
//	folio --config config.yaml
//	folio --setup    (interactive configuration wizard)
//
// Venue credentials are read from the environment variables named in the
// config file. The equities quote provider token is read from the variable
// named by eodhd_token_env (default EODHD_API_TOKEN).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"go.uber.org/zap"

	"github.com/vadiminshakov/folio/config"
	"github.com/vadiminshakov/folio/dashboard"
	"github.com/vadiminshakov/folio/internal"
	"github.com/vadiminshakov/folio/internal/clients"
	"github.com/vadiminshakov/folio/internal/domain"
	"github.com/vadiminshakov/folio/internal/publisher"
	"github.com/vadiminshakov/folio/internal/services/balance"
	"github.com/vadiminshakov/folio/internal/services/pricer"
	"github.com/vadiminshakov/folio/internal/services/snapshot"
	"github.com/vadiminshakov/folio/internal/setup"
	"github.com/vadiminshakov/folio/internal/storage/snapshots"
)

const defaultEodhdTokenEnv = "EODHD_API_TOKEN"

func main() {
	setupMode := flag.Bool("setup", false, "run the interactive config wizard")
	cfgPath := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()

	if *setupMode {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.FromFile(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	store, err := snapshots.NewWALStore(cfg.StoreDir, logger)
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	defer store.Close()

	resolver := newResolver(logger)
	equities := pricer.NewEodhdQuoter(eodhdToken(cfg))
	builder := snapshot.NewBuilder(resolver, equities, cfg.PriceConcurrency, logger)

	fetchers := buildFetchers(cfg)

	aggregator := internal.NewAggregator(fetchers, builder, store, publisher.NewTerminalPublisher(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DashboardAddr != "" {
		server := dashboard.NewServer(cfg.DashboardAddr, store)
		go func() {
			var err error
			if len(cfg.DashboardDomains) > 0 {
				err = server.StartWithAutoTLS(ctx, cfg.DashboardDomains, "")
			} else {
				err = server.Start(ctx)
			}
			if err != nil {
				logger.Error("dashboard server stopped", zap.Error(err))
			}
		}()
	}

	if err := aggregator.Run(ctx, cfg.RefreshInterval); err != nil && ctx.Err() == nil {
		logger.Fatal("aggregation loop failed", zap.Error(err))
	}
}

// newResolver wires the price fallback chain with unauthenticated exchange
// clients; the quote endpoints are public.
func newResolver(logger *zap.Logger) *pricer.Resolver {
	coingecko := pricer.NewCoingeckoClient()
	quoters := map[domain.Venue]pricer.VenueQuoter{
		domain.VenueBinance: pricer.NewBinanceQuoter(binance.NewClient("", "")),
		domain.VenueBybit:   pricer.NewBybitQuoter(bybit.NewClient()),
		domain.VenueKucoin:  pricer.NewKucoinQuoter(clients.NewKucoinClient("", "", "")),
	}
	return pricer.NewResolver(quoters, coingecko, coingecko, pricer.NewScannerClient(), logger)
}

func buildFetchers(cfg config.Config) map[string][]balance.Fetcher {
	fetchers := make(map[string][]balance.Fetcher, len(cfg.Users))
	for _, user := range cfg.Users {
		var userFetchers []balance.Fetcher

		for _, venue := range user.Venues {
			apiKey := os.Getenv(venue.APIKeyEnv)
			apiSecret := os.Getenv(venue.APISecretEnv)
			if apiKey == "" || apiSecret == "" {
				log.Fatalf("user %s: %s and %s environment variables must be set",
					user.Name, venue.APIKeyEnv, venue.APISecretEnv)
			}

			switch venue.Venue {
			case domain.VenueBinance:
				userFetchers = append(userFetchers,
					balance.NewBinanceFetcher(clients.NewBinanceClient(apiKey, apiSecret), user.Name))
			case domain.VenueBybit:
				userFetchers = append(userFetchers,
					balance.NewBybitFetcher(clients.NewBybitClient(apiKey, apiSecret), user.Name))
			case domain.VenueKucoin:
				passphrase := os.Getenv(venue.PassphraseEnv)
				if passphrase == "" {
					log.Fatalf("user %s: %s environment variable must be set", user.Name, venue.PassphraseEnv)
				}
				userFetchers = append(userFetchers,
					balance.NewKucoinFetcher(clients.NewKucoinClient(apiKey, apiSecret, passphrase), user.Name))
			}
		}

		if len(user.Stocks) > 0 {
			userFetchers = append(userFetchers, balance.NewStockFetcher(user.Name, user.Stocks))
		}
		fetchers[user.Name] = userFetchers
	}
	return fetchers
}

func eodhdToken(cfg config.Config) string {
	env := cfg.EodhdTokenEnv
	if env == "" {
		env = defaultEodhdTokenEnv
	}
	return os.Getenv(env)
}
