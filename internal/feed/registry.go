package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrClosed is returned when subscribing to a closed Registry.
	ErrClosed = errors.New("feed: registry closed")

	// ErrInvalidInterval is returned for a non-positive poll interval.
	ErrInvalidInterval = errors.New("feed: poll interval must be positive")
)

// Fetcher performs one GET against an endpoint. *api.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, endpoint string) ([]byte, error)
}

// Config holds registry configuration.
type Config struct {
	PollInterval time.Duration // Default: 1s
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
	}
}

// Stats contains runtime statistics.
type Stats struct {
	ActiveEndpoints int
	Subscribers     int
	Polls           int64
	Failures        int64
	Deliveries      int64
}

// Registry maps endpoints to subscribers and runs one poller per endpoint
// that has at least one subscriber.
type Registry struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu        sync.Mutex
	interval  time.Duration
	endpoints map[string]*endpointState
	closed    bool

	wg sync.WaitGroup

	polls      atomic.Int64
	failures   atomic.Int64
	deliveries atomic.Int64
}

// endpointState is the subscriber set and poller for one endpoint.
type endpointState struct {
	subs      []*Subscription
	byHandler map[Handler]*Subscription // comparable handlers only
	poller    *poller
}

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	ID       uuid.UUID
	Endpoint string

	handler Handler
	reg     *Registry
	once    sync.Once
}

// New creates a Registry that fetches through fetcher.
func New(cfg Config, fetcher Fetcher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}

	return &Registry{
		fetcher:   fetcher,
		logger:    logger,
		interval:  cfg.PollInterval,
		endpoints: make(map[string]*endpointState),
	}
}

// Subscribe registers handler for endpoint. The first subscriber for an
// endpoint starts polling it immediately and then every poll interval.
// Subscribing the same comparable handler to the same endpoint again
// returns the existing Subscription.
func (r *Registry) Subscribe(endpoint string, handler Handler) (*Subscription, error) {
	if endpoint == "" {
		return nil, errors.New("feed: endpoint is required")
	}
	if handler == nil {
		return nil, errors.New("feed: handler is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	st, ok := r.endpoints[endpoint]
	if !ok {
		st = &endpointState{byHandler: make(map[Handler]*Subscription)}
		r.endpoints[endpoint] = st
	}

	keyed := reflect.ValueOf(handler).Comparable()
	if keyed {
		if existing, ok := st.byHandler[handler]; ok {
			return existing, nil
		}
	}

	sub := &Subscription{
		ID:       uuid.New(),
		Endpoint: endpoint,
		handler:  handler,
		reg:      r,
	}
	st.subs = append(st.subs, sub)
	if keyed {
		st.byHandler[handler] = sub
	}

	if st.poller == nil {
		st.poller = r.startPoller(endpoint, r.interval)
	}

	r.logger.Debug("subscribed",
		"endpoint", endpoint,
		"subscription", sub.ID,
		"subscribers", len(st.subs),
	)

	return sub, nil
}

// Unsubscribe removes the subscription. The last subscriber leaving an
// endpoint stops its poller. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.reg.remove(s)
	})
}

func (r *Registry) remove(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.endpoints[sub.Endpoint]
	if !ok {
		return
	}

	for i, s := range st.subs {
		if s == sub {
			st.subs = append(st.subs[:i], st.subs[i+1:]...)
			break
		}
	}
	if reflect.ValueOf(sub.handler).Comparable() {
		if st.byHandler[sub.handler] == sub {
			delete(st.byHandler, sub.handler)
		}
	}

	r.logger.Debug("unsubscribed",
		"endpoint", sub.Endpoint,
		"subscription", sub.ID,
		"subscribers", len(st.subs),
	)

	if len(st.subs) == 0 {
		if st.poller != nil {
			st.poller.stop()
		}
		delete(r.endpoints, sub.Endpoint)
	}
}

// SetPollInterval changes the interval for all endpoints. Active pollers
// restart at the new cadence and poll immediately.
func (r *Registry) SetPollInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, d)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.interval = d
	for _, st := range r.endpoints {
		if st.poller != nil {
			st.poller.reset(d)
		}
	}

	r.logger.Info("poll interval changed",
		"interval", d,
		"active_endpoints", len(r.endpoints),
	)

	return nil
}

// PollInterval returns the current poll interval.
func (r *Registry) PollInterval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// ActiveEndpoints returns the endpoints that currently have a poller, sorted.
func (r *Registry) ActiveEndpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.endpoints))
	for ep, st := range r.endpoints {
		if st.poller != nil {
			out = append(out, ep)
		}
	}
	sort.Strings(out)
	return out
}

// SubscriberCount returns the number of subscribers for endpoint.
func (r *Registry) SubscriberCount(endpoint string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.endpoints[endpoint]; ok {
		return len(st.subs)
	}
	return 0
}

// Stats returns current statistics.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	subscribers := 0
	for _, st := range r.endpoints {
		subscribers += len(st.subs)
	}
	active := len(r.endpoints)
	r.mu.Unlock()

	return Stats{
		ActiveEndpoints: active,
		Subscribers:     subscribers,
		Polls:           r.polls.Load(),
		Failures:        r.failures.Load(),
		Deliveries:      r.deliveries.Load(),
	}
}

// Close stops every poller and waits for them to exit.
// Subscribe returns ErrClosed afterwards.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for ep, st := range r.endpoints {
		if st.poller != nil {
			st.poller.stop()
		}
		delete(r.endpoints, ep)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("feed registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startPoller must be called with r.mu held.
func (r *Registry) startPoller(endpoint string, interval time.Duration) *poller {
	p := newPoller(endpoint, r)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		p.run(interval)
	}()

	r.logger.Info("polling started", "endpoint", endpoint, "interval", interval)
	return p
}

// broadcast delivers u to every current subscriber of the poller's endpoint.
// The subscriber set is read after the fetch completes, so a poller whose
// endpoint has gone inactive (or been replaced) delivers nothing.
func (r *Registry) broadcast(p *poller, u Update) {
	r.mu.Lock()
	st, ok := r.endpoints[p.endpoint]
	if !ok || st.poller != p {
		r.mu.Unlock()
		return
	}
	handlers := make([]Handler, len(st.subs))
	for i, s := range st.subs {
		handlers[i] = s.handler
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h.HandleUpdate(u)
	}
	r.deliveries.Add(int64(len(handlers)))
}
