package feed

import (
	"github.com/rickgao/market-monitor/internal/api"
	"github.com/rickgao/market-monitor/internal/model"
)

// SubscribeMarketState subscribes fn to decoded market snapshots.
// fn receives either a snapshot or the fetch/decode error.
func SubscribeMarketState(r *Registry, fn func(*model.MarketSnapshot, error)) (*Subscription, error) {
	return r.Subscribe(api.MarketStatePath, HandlerFunc(func(u Update) {
		var snap model.MarketSnapshot
		if err := u.Decode(&snap); err != nil {
			fn(nil, err)
			return
		}
		fn(&snap, nil)
	}))
}

// SubscribeSymbol subscribes fn to decoded snapshots for one symbol.
func SubscribeSymbol(r *Registry, symbol string, fn func(*model.SymbolSnapshot, error)) (*Subscription, error) {
	return r.Subscribe(api.SymbolPath(symbol), HandlerFunc(func(u Update) {
		var snap model.SymbolSnapshot
		if err := u.Decode(&snap); err != nil {
			fn(nil, err)
			return
		}
		fn(&snap, nil)
	}))
}
