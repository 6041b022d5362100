package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MarketStats summarises a MarketSnapshot for display.
type MarketStats struct {
	TotalVolume     float64
	AveragePrice    float64
	HighPrice       float64
	LowPrice        float64
	VolatilityIndex float64
	TrendDirection  float64
	LastUpdate      int64 // ms since epoch
	Symbols         int
}

// ComputeStats derives display statistics from a snapshot.
// An empty price map yields zero price statistics.
func ComputeStats(m MarketSnapshot) MarketStats {
	stats := MarketStats{
		TotalVolume:     m.TradingVolume,
		VolatilityIndex: m.Volatility,
		TrendDirection:  m.TrendStrength,
		LastUpdate:      m.Timestamp,
		Symbols:         len(m.CurrentPrices),
	}
	if len(m.CurrentPrices) == 0 {
		return stats
	}

	sum := decimal.Zero
	high := decimal.Zero
	low := decimal.Zero
	first := true
	for _, p := range m.CurrentPrices {
		d := decimal.NewFromFloat(p)
		sum = sum.Add(d)
		if first || d.GreaterThan(high) {
			high = d
		}
		if first || d.LessThan(low) {
			low = d
		}
		first = false
	}

	avg := sum.Div(decimal.NewFromInt(int64(len(m.CurrentPrices))))
	stats.AveragePrice = avg.InexactFloat64()
	stats.HighPrice = high.InexactFloat64()
	stats.LowPrice = low.InexactFloat64()
	return stats
}

// SortedSymbols returns the snapshot's symbols in lexical order.
func SortedSymbols(m MarketSnapshot) []string {
	symbols := make([]string, 0, len(m.CurrentPrices))
	for s := range m.CurrentPrices {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
