// Package setup provides the interactive configuration wizard.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/folio/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes config.gen.yaml.
func RunTUI() error {
	var (
		userName    string
		venues      []string
		intervalStr string
		stocksRaw   string
		confirm     bool
	)

	intervalStr = "12h"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("FOLIO CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Track a portfolio across venues in a minute.\n"))

	fmt.Println(stepStyle.Render("STEP 1: USER"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Portfolio owner").
				Description("Used as the snapshot key, e.g. your handle").
				Value(&userName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("FOLIO CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: VENUES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Which exchanges hold your crypto?").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("KuCoin", "kucoin"),
				).
				Value(&venues),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("FOLIO CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: STOCKS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Stock positions (optional)").
				Description("One per line as SYMBOL QUANTITY, e.g. AAPL 10").
				Value(&stocksRaw),
		),
	).Run()
	if err != nil {
		return err
	}

	stocks, err := parseStocks(stocksRaw)
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("FOLIO CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh Interval").
				Description("Duration string (e.g. 6h, 12h, 24h)").
				Value(&intervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("FOLIO CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"User: %s\nVenues: %s\nStocks: %d position(s)\nInterval: %s\n",
		userName, strings.Join(venues, ", "), len(stocks), intervalStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	interval, _ := time.ParseDuration(intervalStr)

	user := config.UserTmp{Name: userName, Stocks: stocks}
	envPrefix := strings.ToUpper(userName)
	for _, venue := range venues {
		venueTmp := config.VenueTmp{
			Venue:        venue,
			APIKeyEnv:    fmt.Sprintf("%s_%s_API_KEY", envPrefix, strings.ToUpper(venue)),
			APISecretEnv: fmt.Sprintf("%s_%s_API_SECRET", envPrefix, strings.ToUpper(venue)),
		}
		if venue == "kucoin" {
			venueTmp.PassphraseEnv = fmt.Sprintf("%s_KUCOIN_PASSPHRASE", envPrefix)
		}
		user.Venues = append(user.Venues, venueTmp)
	}

	cfgTmp := config.ConfigTmp{
		RefreshInterval: interval,
		Users:           []config.UserTmp{user},
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Printf("Saved %s. Export the credential env vars named in it before starting.\n", filename)
	return nil
}

func parseStocks(raw string) (map[string]string, error) {
	stocks := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("bad stock line %q, expected SYMBOL QUANTITY", line)
		}
		if _, err := decimal.NewFromString(fields[1]); err != nil {
			return nil, fmt.Errorf("bad quantity in %q: %w", line, err)
		}
		stocks[strings.ToUpper(fields[0])] = fields[1]
	}
	if len(stocks) == 0 {
		return nil, nil
	}
	return stocks, nil
}
