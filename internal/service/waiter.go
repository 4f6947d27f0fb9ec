package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the longest a client is held before it gets the
	// unchanged view back
	WaitTimeout = 25 * time.Second

	WaitChannelBuffer = 1
)

// WaitRegistry holds long-polling clients until a session's version moves
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*waitRequest
	shutdown chan struct{}
	wg       sync.WaitGroup
	timeout  time.Duration
}

type waitRequest struct {
	version int
	notify  chan struct{}
	release chan struct{}
	once    sync.Once
	timer   *time.Timer
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		shutdown: make(chan struct{}),
		timeout:  WaitTimeout,
	}
}

// RegisterWait returns a channel that receives once the session moves past
// version, the wait times out, the session is removed or the registry shuts
// down. The caller must call the returned release func when done waiting.
func (w *WaitRegistry) RegisterWait(ctx context.Context, sessionID string, version int) (<-chan struct{}, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &waitRequest{
		version: version,
		notify:  make(chan struct{}, WaitChannelBuffer),
		release: make(chan struct{}),
	}
	req.timer = time.AfterFunc(w.timeout, func() {
		signal(req.notify)
	})
	w.waiters[sessionID] = append(w.waiters[sessionID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
		case <-req.release:
		case <-w.shutdown:
			signal(req.notify)
		}
		w.removeWaiter(sessionID, req)
	}()

	release := func() {
		req.once.Do(func() { close(req.release) })
	}
	return req.notify, release
}

// NotifySession wakes every waiter whose known version differs
func (w *WaitRegistry) NotifySession(sessionID string, version int) {
	w.mu.Lock()
	list := w.waiters[sessionID]
	var keep []*waitRequest
	for _, req := range list {
		if req.version != version {
			req.timer.Stop()
			signal(req.notify)
			continue
		}
		keep = append(keep, req)
	}
	if len(keep) == 0 {
		delete(w.waiters, sessionID)
	} else {
		w.waiters[sessionID] = keep
	}
	w.mu.Unlock()
}

// RemoveSession wakes and drops every waiter on a session
func (w *WaitRegistry) RemoveSession(sessionID string) {
	w.mu.Lock()
	list := w.waiters[sessionID]
	delete(w.waiters, sessionID)
	w.mu.Unlock()

	for _, req := range list {
		req.timer.Stop()
		signal(req.notify)
	}
}

// Waiting counts registered waiters on a session
func (w *WaitRegistry) Waiting(sessionID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[sessionID])
}

func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	close(w.shutdown)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) removeWaiter(sessionID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list := w.waiters[sessionID]
	for i, r := range list {
		if r == req {
			w.waiters[sessionID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(w.waiters[sessionID]) == 0 {
		delete(w.waiters, sessionID)
	}
	req.timer.Stop()
}

// signal is a non-blocking send; a full buffer already carries a wakeup
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
