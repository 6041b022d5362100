package model

import (
	"encoding/json"
	"testing"
)

func TestMarketSnapshot_Unmarshal(t *testing.T) {
	data := []byte(`{
		"state": "TRENDING_UP",
		"timestamp": 1705328200000,
		"volatility": 0.3,
		"trendStrength": 0.7,
		"tradingVolume": 1.2,
		"currentPrices": {"AAPL": 101.5, "MSFT": 98.25},
		"priceChanges": {"AAPL": 0.015, "MSFT": -0.0175}
	}`)

	var m MarketSnapshot
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if m.State != StateTrendingUp {
		t.Errorf("State = %q, want %q", m.State, StateTrendingUp)
	}
	if m.Timestamp != 1705328200000 {
		t.Errorf("Timestamp = %d, want 1705328200000", m.Timestamp)
	}
	if m.TrendStrength != 0.7 {
		t.Errorf("TrendStrength = %v, want 0.7", m.TrendStrength)
	}
	if m.CurrentPrices["MSFT"] != 98.25 {
		t.Errorf("CurrentPrices[MSFT] = %v, want 98.25", m.CurrentPrices["MSFT"])
	}
	if m.PriceChanges["MSFT"] != -0.0175 {
		t.Errorf("PriceChanges[MSFT] = %v, want -0.0175", m.PriceChanges["MSFT"])
	}
	if got := m.Time().UnixMilli(); got != 1705328200000 {
		t.Errorf("Time() = %d, want 1705328200000", got)
	}
}

func TestMarketState_UnmarshalUnknown(t *testing.T) {
	var m MarketSnapshot
	err := json.Unmarshal([]byte(`{"state":"SIDEWAYS"}`), &m)
	if err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestSymbolSnapshot_NullMarketState(t *testing.T) {
	var s SymbolSnapshot
	if err := json.Unmarshal([]byte(`{"symbol":"AAPL","price":101,"marketState":null}`), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if s.MarketState != "" {
		t.Errorf("MarketState = %q, want empty", s.MarketState)
	}
	if s.Symbol != "AAPL" || s.Price != 101 {
		t.Errorf("snapshot = %+v", s)
	}

	// A missing state in the market snapshot is still an error.
	var m MarketSnapshot
	if err := json.Unmarshal([]byte(`{"state":""}`), &m); err == nil {
		t.Error("expected error for empty state string")
	}
}

func TestParseMarketState(t *testing.T) {
	tests := []struct {
		in      string
		want    MarketState
		wantErr bool
	}{
		{"NORMAL", StateNormal, false},
		{"VOLATILE", StateVolatile, false},
		{"TRENDING_DOWN", StateTrendingDown, false},
		{"MARKET_EVENT", StateMarketEvent, false},
		{"normal", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMarketState(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMarketState(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMarketState(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAllMarketStates(t *testing.T) {
	states := AllMarketStates()
	if len(states) != 7 {
		t.Fatalf("len(AllMarketStates()) = %d, want 7", len(states))
	}
	if states[0] != StateNormal {
		t.Errorf("states[0] = %q, want NORMAL", states[0])
	}

	// Callers get a copy.
	states[0] = "BROKEN"
	if AllMarketStates()[0] != StateNormal {
		t.Error("AllMarketStates returned shared slice")
	}
}

func TestSymbolSnapshot(t *testing.T) {
	data := []byte(`{"symbol":"AAPL","price":101.5,"change":0.015,"volume":1200,
		"timestamp":1705328200000,"bid":101.4,"ask":101.6,"lastTradeSize":10,"marketState":"NORMAL"}`)

	var s SymbolSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if s.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", s.Symbol)
	}
	if s.LastTradeSize != 10 {
		t.Errorf("LastTradeSize = %v, want 10", s.LastTradeSize)
	}
	if s.MarketState != StateNormal {
		t.Errorf("MarketState = %q, want NORMAL", s.MarketState)
	}

	t.Run("spread", func(t *testing.T) {
		s := SymbolSnapshot{Bid: 10, Ask: 12}
		if got := s.Spread(); got != 2 {
			t.Errorf("Spread() = %v, want 2", got)
		}
	})

	t.Run("spread missing side", func(t *testing.T) {
		s := SymbolSnapshot{Bid: 0, Ask: 12}
		if got := s.Spread(); got != 0 {
			t.Errorf("Spread() = %v, want 0", got)
		}
	})
}
