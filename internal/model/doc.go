// Package model defines the market data payloads served by the trading
// service's market monitor endpoints.
//
// Conventions:
//   - Prices: float64 in quote currency
//   - Changes: float64 fractions (0.0123 = +1.23%)
//   - Timestamps: int64 milliseconds since Unix epoch, as the backend emits them
package model
