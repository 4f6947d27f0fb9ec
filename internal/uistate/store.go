package uistate

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Store persists serialized state under a key
type Store interface {
	Load(ctx context.Context, key string) (State, error)
	Save(ctx context.Context, key string, s State) error
}

// MemoryStore keeps state in process; it is the "none" backend
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.data[key]
	if !ok {
		return State{}, ErrNotFound
	}
	return Unmarshal(text), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = Marshal(s)
	return nil
}

// Persister wraps a Store with best-effort semantics: failures are logged
// and the caller continues with defaults
type Persister struct {
	store Store
	log   *zap.SugaredLogger
}

func NewPersister(store Store, log *zap.SugaredLogger) *Persister {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Persister{store: store, log: log}
}

// Restore returns the saved state or defaults
func (p *Persister) Restore(ctx context.Context, key string) State {
	if p == nil || p.store == nil {
		return Default()
	}
	s, err := p.store.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		p.log.Debugw("no saved state, using defaults", "key", key)
		return Default()
	case err != nil:
		p.log.Warnw("state load failed, using defaults", "key", key, "error", err)
		return Default()
	}
	return s
}

// Persist saves state, logging any failure
func (p *Persister) Persist(ctx context.Context, key string, s State) {
	if p == nil || p.store == nil {
		return
	}
	if err := p.store.Save(ctx, key, s); err != nil {
		p.log.Warnw("state save failed", "key", key, "error", err)
	}
}
