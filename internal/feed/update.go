package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rickgao/market-monitor/internal/api"
)

// Update is one poll result for an endpoint: either a JSON payload or an error.
type Update struct {
	Endpoint   string
	Payload    json.RawMessage // shared between handlers; do not modify
	Err        error
	ReceivedAt time.Time
}

// ErrorMarker is the wire form of a failed update.
type ErrorMarker struct {
	Error string `json:"error"`
}

// Failed reports whether the update carries an error instead of data.
func (u Update) Failed() bool {
	return u.Err != nil
}

// Decode unmarshals the payload into v. A failed update returns its error.
func (u Update) Decode(v any) error {
	if u.Err != nil {
		return u.Err
	}
	if err := json.Unmarshal(u.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %w", api.ErrDecode, u.Endpoint, err)
	}
	return nil
}

// MarshalJSON renders the payload unchanged, or {"error": message} on failure.
func (u Update) MarshalJSON() ([]byte, error) {
	if u.Err != nil {
		return json.Marshal(ErrorMarker{Error: u.Err.Error()})
	}
	if len(u.Payload) == 0 {
		return []byte("null"), nil
	}
	return u.Payload, nil
}

// Handler receives updates for a subscribed endpoint.
type Handler interface {
	HandleUpdate(u Update)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(Update)

func (f HandlerFunc) HandleUpdate(u Update) {
	f(u)
}
