// Package relay exposes the feed registry to browser dashboards over WebSocket.
//
// Each connection behaves like one dashboard view: it is subscribed to the
// market state on connect, receives the list of available symbols, and can
// subscribe and unsubscribe individual symbols. Closing the connection
// releases every subscription it holds.
//
// Client → server:
//
//	{"action":"subscribe_symbol","symbol":"AAPL"}
//	{"action":"unsubscribe_symbol","symbol":"AAPL"}
//	{"action":"set_poll_interval","interval_ms":2000}
//
// Server → client messages carry a "type" of market_state, symbol, symbols,
// ack or error. Failed polls arrive with an "error" field instead of "data".
package relay
