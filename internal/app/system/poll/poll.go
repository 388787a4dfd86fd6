// Package poll runs a query on a fixed interval until its context ends.
// The notification stream uses it to turn the pull-style unread queries into
// a feed without changing the store contract.
package poll

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FetchFunc produces one poll result.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller calls a FetchFunc every interval.
type Poller[T any] struct {
	interval time.Duration
	fetch    FetchFunc[T]
	log      *zap.Logger
}

// New returns a Poller. A non-positive interval is treated as one second.
func New[T any](interval time.Duration, fetch FetchFunc[T], logger *zap.Logger) *Poller[T] {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller[T]{interval: interval, fetch: fetch, log: logger}
}

// Run fetches immediately and then on every tick, passing each successful
// result to emit. Failed fetches are logged and skipped. Run returns
// ctx.Err() once ctx is done.
func (p *Poller[T]) Run(ctx context.Context, emit func(T)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if v, err := p.fetch(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn("poll fetch failed", zap.Error(err))
		} else {
			emit(v)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Subscribe runs the poller in a goroutine and delivers results on the
// returned channel, which is closed when ctx ends. A slow reader does not
// stall polling; results it has not taken are replaced by newer ones.
func (p *Poller[T]) Subscribe(ctx context.Context) <-chan T {
	out := make(chan T, 1)
	go func() {
		defer close(out)
		_ = p.Run(ctx, func(v T) {
			select {
			case out <- v:
			default:
				select {
				case <-out:
				default:
				}
				select {
				case out <- v:
				default:
				}
			}
		})
	}()
	return out
}
