package feed

import (
	"context"
	"time"
)

// poller polls one endpoint until stopped.
type poller struct {
	endpoint string
	reg      *Registry

	ctx      context.Context
	cancel   context.CancelFunc
	interval chan time.Duration
}

func newPoller(endpoint string, reg *Registry) *poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &poller{
		endpoint: endpoint,
		reg:      reg,
		ctx:      ctx,
		cancel:   cancel,
		interval: make(chan time.Duration, 1),
	}
}

// stop cancels the poller and any request in flight.
func (p *poller) stop() {
	p.cancel()
}

// reset replaces any pending interval change with d.
// Only the registry calls it, under its lock.
func (p *poller) reset(d time.Duration) {
	select {
	case <-p.interval:
	default:
	}
	p.interval <- d
}

// run is the polling loop.
func (p *poller) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			p.reg.logger.Debug("polling stopped", "endpoint", p.endpoint)
			return
		case d := <-p.interval:
			ticker.Reset(d)
			p.poll()
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll fetches once and broadcasts the payload or the error.
func (p *poller) poll() {
	if p.ctx.Err() != nil {
		return
	}

	p.reg.polls.Add(1)
	body, err := p.reg.fetcher.Get(p.ctx, p.endpoint)
	if p.ctx.Err() != nil {
		// Last subscriber left while the request was in flight.
		return
	}

	u := Update{
		Endpoint:   p.endpoint,
		ReceivedAt: time.Now(),
	}
	if err != nil {
		p.reg.failures.Add(1)
		p.reg.logger.Warn("polling error",
			"endpoint", p.endpoint,
			"error", err,
		)
		u.Err = err
	} else {
		u.Payload = body
		p.reg.logger.Debug("poll complete", "endpoint", p.endpoint, "bytes", len(body))
	}

	p.reg.broadcast(p, u)
}
