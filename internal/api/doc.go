// Package api provides the REST client for the trading service's market
// monitor endpoints.
//
// Endpoints (relative to the configured base URL):
//   - GET /api/v1/market/state           current MarketSnapshot
//   - GET /api/v1/market/symbol/{symbol} SymbolSnapshot for one symbol
//   - GET /api/v1/market/symbols         available symbols
//   - GET /api/v1/market/states          known market states
//
// The client never retries; callers decide how to react to a failure.
package api
