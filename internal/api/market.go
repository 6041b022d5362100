package api

import (
	"context"
	"fmt"

	"github.com/rickgao/market-monitor/internal/model"
)

// GetMarketState fetches the current market snapshot.
func (c *Client) GetMarketState(ctx context.Context) (*model.MarketSnapshot, error) {
	var resp model.MarketSnapshot
	if err := c.get(ctx, MarketStatePath, &resp); err != nil {
		return nil, fmt.Errorf("get market state: %w", err)
	}
	return &resp, nil
}

// CurrentMarketState fetches only the market regime.
func (c *Client) CurrentMarketState(ctx context.Context) (model.MarketState, error) {
	snap, err := c.GetMarketState(ctx)
	if err != nil {
		return "", err
	}
	return snap.State, nil
}

// GetSymbol fetches the snapshot for one symbol.
func (c *Client) GetSymbol(ctx context.Context, symbol string) (*model.SymbolSnapshot, error) {
	var resp model.SymbolSnapshot
	if err := c.get(ctx, SymbolPath(symbol), &resp); err != nil {
		return nil, fmt.Errorf("get symbol %s: %w", symbol, err)
	}
	return &resp, nil
}

// GetSymbols fetches the list of tradable symbols.
func (c *Client) GetSymbols(ctx context.Context) ([]string, error) {
	var resp []string
	if err := c.get(ctx, SymbolsPath, &resp); err != nil {
		return nil, fmt.Errorf("get symbols: %w", err)
	}
	return resp, nil
}

// GetMarketStates fetches the market states the backend can report.
func (c *Client) GetMarketStates(ctx context.Context) ([]model.MarketState, error) {
	var resp []model.MarketState
	if err := c.get(ctx, MarketStatesPath, &resp); err != nil {
		return nil, fmt.Errorf("get market states: %w", err)
	}
	return resp, nil
}
