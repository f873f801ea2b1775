package store

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Poller drives the periodic reload and price refresh. It is owned by the
// daemon lifetime: Stop cancels the loop and no tick runs after it returns,
// so no late result can mutate torn-down state.
type Poller struct {
	store    *Store
	interval time.Duration
	logger   *logrus.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewPoller(store *Store, interval time.Duration, logger *logrus.Logger) *Poller {
	return &Poller{
		store:    store,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the refresh loop until Stop is called or ctx is cancelled. The
// first refresh happens immediately.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.doneCh)

	p.logger.WithField("interval", p.interval).Info("Starting background refresh")
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	select {
	case <-p.stopCh:
		return
	default:
	}
	p.store.Reload(ctx)
	p.store.RefreshPrice(ctx)
}

// Stop cancels the loop and waits for the current tick to finish.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	<-p.doneCh
	p.logger.Info("Background refresh stopped")
}
