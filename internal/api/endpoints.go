package api

import "net/url"

const (
	MarketStatePath  = "/api/v1/market/state"
	SymbolsPath      = "/api/v1/market/symbols"
	MarketStatesPath = "/api/v1/market/states"

	symbolPrefix = "/api/v1/market/symbol/"
)

// SymbolPath returns the endpoint for a single symbol.
func SymbolPath(symbol string) string {
	return symbolPrefix + url.PathEscape(symbol)
}
