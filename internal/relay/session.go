package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/market-monitor/internal/api"
	"github.com/rickgao/market-monitor/internal/feed"
)

const (
	maxMessageSize = 4096
	symbolsTimeout = 5 * time.Second
)

// session is one dashboard connection and the subscriptions it holds.
type session struct {
	id    uuid.UUID
	relay *Relay
	conn  *websocket.Conn

	send chan ServerMessage
	done chan struct{}
	once sync.Once

	mu          sync.Mutex
	marketState *feed.Subscription
	symbols     map[string]*feed.Subscription
}

func newSession(rl *Relay, conn *websocket.Conn) *session {
	return &session{
		id:      uuid.New(),
		relay:   rl,
		conn:    conn,
		send:    make(chan ServerMessage, rl.cfg.SendBuffer),
		done:    make(chan struct{}),
		symbols: make(map[string]*feed.Subscription),
	}
}

// start subscribes to market state and sends the symbol list.
func (s *session) start(ctx context.Context) {
	sub, err := s.relay.reg.Subscribe(api.MarketStatePath, feed.HandlerFunc(func(u feed.Update) {
		s.forward(TypeMarketState, "", u)
	}))
	if err != nil {
		s.enqueue(ServerMessage{Type: TypeError, Error: err.Error(), Time: nowMillis()})
	} else if !s.keep(func() { s.marketState = sub }) {
		sub.Unsubscribe()
		return
	}

	if s.relay.symbols == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), symbolsTimeout)
	defer cancel()

	symbols, err := s.relay.symbols.GetSymbols(ctx)
	if err != nil {
		s.relay.logger.Warn("failed to fetch available symbols", "session", s.id, "error", err)
		s.enqueue(ServerMessage{
			Type:     TypeError,
			Endpoint: api.SymbolsPath,
			Error:    "failed to fetch available symbols: " + err.Error(),
			Time:     nowMillis(),
		})
		return
	}
	s.enqueue(ServerMessage{Type: TypeSymbols, Symbols: symbols, Time: nowMillis()})
}

// keep records a subscription unless the session is already closing.
func (s *session) keep(assign func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing() {
		return false
	}
	assign()
	return true
}

// closing must be called with s.mu held; close marks done before it
// collects subscriptions under the same lock.
func (s *session) closing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// forward turns a feed update into a server message.
func (s *session) forward(msgType, symbol string, u feed.Update) {
	msg := ServerMessage{
		Type:     msgType,
		Endpoint: u.Endpoint,
		Symbol:   symbol,
		Time:     u.ReceivedAt.UnixMilli(),
	}
	if u.Failed() {
		msg.Error = u.Err.Error()
	} else {
		msg.Data = u.Payload
	}
	s.enqueue(msg)
}

// enqueue never blocks the poller; a full queue drops the message.
func (s *session) enqueue(msg ServerMessage) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- msg:
	case <-s.done:
	default:
		s.relay.logger.Warn("session send buffer full, dropping message",
			"session", s.id,
			"type", msg.Type,
		)
	}
}

func (s *session) handle(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.reply(msg.Action, fmt.Errorf("invalid message: %w", err))
		return
	}

	switch msg.Action {
	case ActionSubscribeSymbol:
		s.reply(msg.Action, s.subscribeSymbol(msg.Symbol))
	case ActionUnsubscribeSymbol:
		s.reply(msg.Action, s.unsubscribeSymbol(msg.Symbol))
	case ActionSetPollInterval:
		s.reply(msg.Action, s.setPollInterval(msg.IntervalMS))
	default:
		s.reply(msg.Action, fmt.Errorf("unknown action %q", msg.Action))
	}
}

// setPollInterval range-checks the milliseconds before converting, so huge
// values cannot wrap around into a tiny positive duration.
func (s *session) setPollInterval(ms int64) error {
	lo, hi := s.relay.cfg.MinPollInterval, s.relay.cfg.MaxPollInterval
	if ms < lo.Milliseconds() || ms > hi.Milliseconds() {
		return fmt.Errorf("interval_ms must be between %d and %d, got %d",
			lo.Milliseconds(), hi.Milliseconds(), ms)
	}
	return s.relay.reg.SetPollInterval(time.Duration(ms) * time.Millisecond)
}

func (s *session) reply(action string, err error) {
	msg := ServerMessage{Type: TypeAck, Action: action, Time: nowMillis()}
	if err != nil {
		msg.Type = TypeError
		msg.Error = err.Error()
	}
	s.enqueue(msg)
}

// subscribeSymbol is a no-op for a symbol the session already follows.
func (s *session) subscribeSymbol(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return errors.New("symbol is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing() {
		return errors.New("session closed")
	}
	if _, ok := s.symbols[symbol]; ok {
		return nil
	}

	sub, err := s.relay.reg.Subscribe(api.SymbolPath(symbol), feed.HandlerFunc(func(u feed.Update) {
		s.forward(TypeSymbol, symbol, u)
	}))
	if err != nil {
		return err
	}
	s.symbols[symbol] = sub
	return nil
}

func (s *session) unsubscribeSymbol(symbol string) error {
	symbol = strings.TrimSpace(symbol)

	s.mu.Lock()
	sub, ok := s.symbols[symbol]
	delete(s.symbols, symbol)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("not subscribed to %q", symbol)
	}
	sub.Unsubscribe()
	return nil
}

// close releases all subscriptions and stops both pumps.
func (s *session) close() {
	s.once.Do(func() {
		close(s.done)

		s.mu.Lock()
		subs := make([]*feed.Subscription, 0, len(s.symbols)+1)
		if s.marketState != nil {
			subs = append(subs, s.marketState)
		}
		for sym, sub := range s.symbols {
			subs = append(subs, sub)
			delete(s.symbols, sym)
		}
		s.mu.Unlock()

		for _, sub := range subs {
			sub.Unsubscribe()
		}

		s.conn.Close()
		s.relay.removeSession(s)
		s.relay.logger.Info("dashboard disconnected", "session", s.id, "released", len(subs))
	})
}

// readPump handles incoming messages and detects dead peers.
func (s *session) readPump() {
	defer s.close()

	pongWait := 2 * s.relay.cfg.PingInterval
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.relay.logger.Debug("websocket read error", "session", s.id, "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.handle(data)
	}
}

// writePump is the only writer on the connection.
func (s *session) writePump() {
	ticker := time.NewTicker(s.relay.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			s.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.relay.cfg.WriteTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.relay.logger.Debug("websocket write failed", "session", s.id, "error", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(s.relay.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
