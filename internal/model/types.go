package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarketState is the market regime reported by the backend.
type MarketState string

const (
	StateNormal        MarketState = "NORMAL"
	StateVolatile      MarketState = "VOLATILE"
	StateTrendingUp    MarketState = "TRENDING_UP"
	StateTrendingDown  MarketState = "TRENDING_DOWN"
	StateLowLiquidity  MarketState = "LOW_LIQUIDITY"
	StateHighLiquidity MarketState = "HIGH_LIQUIDITY"
	StateMarketEvent   MarketState = "MARKET_EVENT"
)

var allStates = []MarketState{
	StateNormal,
	StateVolatile,
	StateTrendingUp,
	StateTrendingDown,
	StateLowLiquidity,
	StateHighLiquidity,
	StateMarketEvent,
}

// AllMarketStates returns every known state in declaration order.
func AllMarketStates() []MarketState {
	out := make([]MarketState, len(allStates))
	copy(out, allStates)
	return out
}

// Valid reports whether s is one of the known states.
func (s MarketState) Valid() bool {
	for _, known := range allStates {
		if s == known {
			return true
		}
	}
	return false
}

// ParseMarketState converts a wire string into a MarketState.
func ParseMarketState(v string) (MarketState, error) {
	s := MarketState(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown market state %q", v)
	}
	return s, nil
}

// UnmarshalJSON rejects states the client does not know about.
// A JSON null leaves s unchanged.
func (s *MarketState) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseMarketState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// -----------------------------------------------------------------------------
// Snapshots
// -----------------------------------------------------------------------------

// MarketSnapshot is the payload of /api/v1/market/state.
type MarketSnapshot struct {
	State         MarketState        `json:"state"`
	Timestamp     int64              `json:"timestamp"`     // ms since epoch
	Volatility    float64            `json:"volatility"`    // 0.0 - 1.0
	TrendStrength float64            `json:"trendStrength"` // -1.0 (down) to 1.0 (up)
	TradingVolume float64            `json:"tradingVolume"` // relative, 1.0 is normal
	CurrentPrices map[string]float64 `json:"currentPrices"`
	PriceChanges  map[string]float64 `json:"priceChanges"`
}

// Time returns the snapshot timestamp as a time.Time.
func (m MarketSnapshot) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// SymbolSnapshot is the payload of /api/v1/market/symbol/{symbol}.
type SymbolSnapshot struct {
	Symbol        string      `json:"symbol"`
	Price         float64     `json:"price"`
	Change        float64     `json:"change"`
	Volume        float64     `json:"volume"`
	Timestamp     int64       `json:"timestamp"` // ms since epoch
	Bid           float64     `json:"bid"`
	Ask           float64     `json:"ask"`
	LastTradeSize float64     `json:"lastTradeSize"`
	MarketState   MarketState `json:"marketState,omitempty"`
}

// Time returns the snapshot timestamp as a time.Time.
func (s SymbolSnapshot) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Spread returns Ask - Bid, or 0 when either side is missing.
func (s SymbolSnapshot) Spread() float64 {
	if s.Bid <= 0 || s.Ask <= 0 {
		return 0
	}
	return s.Ask - s.Bid
}
