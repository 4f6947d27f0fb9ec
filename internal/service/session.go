package service

import (
	"sync"
	"time"

	"github.com/bonjohen/chess-metric-analyzer/internal/analysis"
	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/interaction"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

// Session is one board view with its own rules engine, profile set and
// analysis run. Lock guards every exported field except ID and Progress;
// Progress has its own lock and must be started or stopped without
// holding the session lock.
type Session struct {
	ID string

	mu          sync.Mutex
	Controller  *interaction.Controller
	Profiles    *profile.Model
	Perspective board.Perspective
	Progress    *analysis.Progress

	// Result is the last completed analysis and AnalysisFEN the position
	// it describes; a result for another position is never shown
	Result      *analysis.Result
	AnalysisFEN string

	// Segment counts position loads, Version counts visible changes
	Segment int
	Version int

	CreatedAt  time.Time
	lastAccess time.Time
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Bump records a visible change and returns the new version. Caller holds
// the lock.
func (s *Session) Bump() int {
	s.Version++
	return s.Version
}

// UIState is the persisted subset of the session. Caller holds the lock.
func (s *Session) UIState() uistate.State {
	return uistate.State{
		Position:    s.Controller.History().CurrentPosition(),
		Perspective: s.Perspective,
		ProfileName: s.Profiles.Active().Name,
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}
