package domain

import "strings"

// stablecoins are always worth exactly 1 USD and skip price resolution.
var stablecoins = map[string]struct{}{
	"USDT":  {},
	"USDC":  {},
	"BUSD":  {},
	"DAI":   {},
	"TUSD":  {},
	"USDP":  {},
	"FDUSD": {},
	"GUSD":  {},
}

// IsStablecoin reports whether the symbol belongs to the known stablecoin set.
func IsStablecoin(symbol string) bool {
	_, ok := stablecoins[strings.ToUpper(symbol)]
	return ok
}
