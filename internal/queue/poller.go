package queue

import (
	"context"
	"errors"
	"time"
)

// Poller drives periodic silent refreshes so the snapshot absorbs changes
// made by other connected clients. Its lifetime is owned by whoever created
// the store, not by any UI surface; cancelling the Start context stops it.
type Poller struct {
	store *Store

	tick <-chan time.Time
	stop func()
}

type PollerConfig struct {
	Store    *Store
	Interval time.Duration

	// Tick/Stop override the internal ticker, for tests.
	Tick <-chan time.Time
	Stop func()
}

func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.Store == nil {
		return nil, errors.New("queue: poller requires store")
	}

	tick := cfg.Tick
	stop := cfg.Stop
	if tick == nil {
		interval := cfg.Interval
		if interval <= 0 {
			interval = 10 * time.Second
		}
		ticker := time.NewTicker(interval)
		tick = ticker.C
		stop = ticker.Stop
	}

	return &Poller{
		store: cfg.Store,
		tick:  tick,
		stop:  stop,
	}, nil
}

// Start blocks, refreshing silently on every tick until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	if p == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if p.stop != nil {
			p.stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.tick:
			_ = p.store.Refresh(ctx, true)
		}
	}
}
