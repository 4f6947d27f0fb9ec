package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/internal/analysis"
	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/game"
	"github.com/bonjohen/chess-metric-analyzer/internal/interaction"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
	"github.com/bonjohen/chess-metric-analyzer/internal/rules"
	"github.com/bonjohen/chess-metric-analyzer/internal/storage"
	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

const (
	MaxSessions        = 100
	SessionTTL         = 24 * time.Hour
	CleanupJobInterval = 10 * time.Minute
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

// Options wires the optional collaborators. Store is the sqlite session and
// move log, State the last-used settings store; either may be nil.
type Options struct {
	Store    *storage.Store
	State    uistate.Store
	Profiles *profile.Model
	Log      *zap.SugaredLogger
}

// SessionOptions overrides the restored settings of a new session
type SessionOptions struct {
	FEN         string
	Perspective board.Perspective
	Profile     string
}

// Service owns the session registry and the best-effort persistence
type Service struct {
	sessions  map[string]*Session
	mu        sync.RWMutex
	store     *storage.Store
	persister *uistate.Persister
	profiles  *profile.Model
	waiter    *WaitRegistry
	log       *zap.SugaredLogger
}

func New(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	profiles := opts.Profiles
	if profiles == nil {
		profiles = profile.NewModel()
	}
	var persister *uistate.Persister
	if opts.State != nil {
		persister = uistate.NewPersister(opts.State, log)
	}
	return &Service{
		sessions:  make(map[string]*Session),
		store:     opts.Store,
		persister: persister,
		profiles:  profiles,
		waiter:    NewWaitRegistry(),
		log:       log,
	}
}

// Profiles returns the server-wide model that new sessions are cloned from
func (s *Service) Profiles() *profile.Model {
	return s.profiles
}

// CreateSession restores the last-used settings, applies any overrides and
// registers the session. An explicit FEN that does not load is an error; a
// restored one that does not load falls back to the starting position.
func (s *Service) CreateSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	s.mu.RLock()
	count := len(s.sessions)
	s.mu.RUnlock()
	if count >= MaxSessions {
		return nil, ErrSessionLimit
	}

	st := s.persister.Restore(ctx, uistate.DefaultKey)

	ctrl := interaction.New(rules.NewChess(), s.log)
	if opts.FEN != "" {
		if err := ctrl.Load(opts.FEN); err != nil {
			return nil, err
		}
	} else if err := ctrl.Load(st.Position); err != nil {
		s.log.Warnw("restored position does not load, using start", "position", st.Position, "error", err)
	}

	perspective := st.Perspective
	if opts.Perspective != "" {
		perspective = opts.Perspective
	}

	profiles := s.profiles.Clone()
	name := st.ProfileName
	if opts.Profile != "" {
		name = opts.Profile
	}
	profiles.SwitchProfile(name)

	now := time.Now()
	sess := &Session{
		ID:          uuid.New().String(),
		Controller:  ctrl,
		Profiles:    profiles,
		Perspective: perspective,
		Progress:    &analysis.Progress{},
		CreatedAt:   now,
		lastAccess:  now,
	}

	// the early check runs unlocked against concurrent creates
	s.mu.Lock()
	if len(s.sessions) >= MaxSessions {
		s.mu.Unlock()
		return nil, ErrSessionLimit
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if s.store != nil {
		record := storage.SessionRecord{
			SessionID:    sess.ID,
			InitialFEN:   ctrl.History().InitialPosition(),
			Perspective:  string(perspective),
			ProfileName:  profiles.Active().Name,
			StartTimeUTC: now.UTC(),
		}
		if err := s.store.RecordSession(record); err != nil {
			s.log.Warnw("session record dropped", "session", sess.ID, "error", err)
		}
	}

	s.log.Infow("session created", "session", sess.ID, "position", ctrl.History().CurrentPosition())
	return sess, nil
}

// GetSession looks a session up and marks it used
func (s *Service) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.touch()
	return sess, nil
}

// DeleteSession stops any analysis and releases waiting clients
func (s *Service) DeleteSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.Progress.Stop()
	s.waiter.RemoveSession(id)
	s.log.Infow("session deleted", "session", id)
	return nil
}

func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PersistState saves the last-used settings, best-effort
func (s *Service) PersistState(ctx context.Context, st uistate.State) {
	s.persister.Persist(ctx, uistate.DefaultKey, st)
}

// RecordMove appends a move to the sqlite log, best-effort
func (s *Service) RecordMove(sessionID string, segment int, m game.Move) {
	if s.store == nil {
		return
	}
	record := storage.MoveRecord{
		SessionID:   sessionID,
		Segment:     segment,
		Ply:         m.Ply,
		SAN:         m.SAN,
		UCI:         m.UCI,
		FENBefore:   m.Before,
		FENAfter:    m.After,
		MoveTimeUTC: time.Now().UTC(),
	}
	if err := s.store.RecordMove(record); err != nil {
		s.log.Warnw("move record dropped", "session", sessionID, "ply", m.Ply, "error", err)
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// RegisterWait registers a client to wait for a session version change
func (s *Service) RegisterWait(ctx context.Context, sessionID string, version int) (<-chan struct{}, func()) {
	return s.waiter.RegisterWait(ctx, sessionID, version)
}

// Notify wakes clients waiting on a session
func (s *Service) Notify(sessionID string, version int) {
	s.waiter.NotifySession(sessionID, version)
}

// Shutdown stops all analysis runs, the wait registry and the store
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Progress.Stop()
	}

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob periodically drops sessions idle for longer than ttl
func (s *Service) RunCleanupJob(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired(ttl)
		}
	}
}

func (s *Service) cleanupExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.RLock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	deleted := 0
	for _, id := range expired {
		if err := s.DeleteSession(id); err == nil {
			deleted++
		}
	}
	if deleted > 0 {
		s.log.Infow("cleanup: deleted idle sessions", "count", deleted)
	}
	return deleted
}
