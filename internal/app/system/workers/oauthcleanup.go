// internal/app/system/workers/oauthcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// StateCleaner removes expired OAuth state tokens.
type StateCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// OAuthStateCleanup is a background worker that purges abandoned OAuth
// state tokens. MongoDB also expires them through a TTL index; the worker
// covers the in-memory store and TTL monitor lag.
type OAuthStateCleanup struct {
	states   StateCleaner
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewOAuthStateCleanup creates a worker that runs every interval. A
// non-positive interval means hourly.
func NewOAuthStateCleanup(states StateCleaner, logger *zap.Logger, interval time.Duration) *OAuthStateCleanup {
	if interval <= 0 {
		interval = time.Hour
	}
	return &OAuthStateCleanup{
		states:   states,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *OAuthStateCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("oauth state cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OAuthStateCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("oauth state cleanup worker stopped")
}

func (w *OAuthStateCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *OAuthStateCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	count, err := w.states.CleanupExpired(ctx)
	if err != nil {
		w.log.Error("failed to clean up oauth states", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("removed expired oauth states", zap.Int64("count", count))
	}
}
