package analysis

import (
	"context"
	"sync"
	"time"
)

// Progress advances a displayed depth from 1 to a maximum on a fixed
// interval. Stopping halts future ticks; depth already reported stays.
type Progress struct {
	mu      sync.Mutex
	depth   int
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Start begins ticking, replacing any run in progress. onTick is called
// with each new depth; onDone is called once with completed=true when the
// maximum is reached, or false when stopped. The context handed to onDone
// is the run's own, so work done there is canceled by Stop.
func (p *Progress) Start(ctx context.Context, maxDepth int, interval time.Duration, onTick func(depth int), onDone func(ctx context.Context, completed bool)) {
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.depth = 0
	p.running = true
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		completed := false
		defer func() {
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			if onDone != nil {
				onDone(ctx, completed)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.mu.Lock()
				p.depth++
				d := p.depth
				p.mu.Unlock()

				if onTick != nil {
					onTick(d)
				}
				if d >= maxDepth {
					completed = true
					return
				}
			}
		}
	}()
}

// Stop cancels the current run and waits for its goroutine to exit
func (p *Progress) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Progress) Depth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.depth
}

func (p *Progress) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
