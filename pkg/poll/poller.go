// Package poll runs a function on a fixed interval until it is stopped.
package poll

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the refresh period used by the data views.
const DefaultInterval = 60 * time.Second

// Poller is an owned, cancelable periodic task. The first run happens one
// interval after Start, never immediately.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start launches fn every interval until Stop is called or parent is
// canceled. fn receives a context that is canceled on Stop.
func Start(parent context.Context, interval time.Duration, fn func(ctx context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(parent)
	p := &Poller{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()

	return p
}

// Stop cancels the task and waits for the loop to exit. It is safe to call
// more than once and on a nil Poller.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.once.Do(p.cancel)
	<-p.done
}

// Done is closed once the polling loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
