package config

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
)

// Paths locates the three documents; an empty path means built-in defaults
type Paths struct {
	Profiles      string
	PieceValues   string
	Visualization string
}

// Loader applies the documents to a profile model. Each document loads
// independently and falls back to its built-in default on failure.
type Loader struct {
	paths Paths
	log   *zap.SugaredLogger
}

func NewLoader(paths Paths, log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Loader{paths: paths, log: log}
}

// LoadAll runs the three loads concurrently. Each result is applied to the
// model as soon as it is ready, so overlapping calls leave whichever apply
// finished last. Returns early if ctx is done; loads still in flight keep
// running and apply when they finish.
func (l *Loader) LoadAll(ctx context.Context, m *profile.Model) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		l.applyProfiles(m)
	}()
	go func() {
		defer wg.Done()
		l.applyPieceValues(m)
	}()
	go func() {
		defer wg.Done()
		l.applyVisualization(m)
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		l.log.Warnw("config load interrupted", "error", ctx.Err())
	}
}

func (l *Loader) applyProfiles(m *profile.Model) {
	if l.paths.Profiles == "" {
		m.UseFallback()
		return
	}
	doc, err := LoadProfiles(l.paths.Profiles)
	if err == nil {
		err = m.ApplyDocument(doc)
	}
	if err != nil {
		l.log.Warnw("using built-in profile", "path", l.paths.Profiles, "error", err)
		m.UseFallback()
		return
	}
	l.log.Infow("profiles loaded", "path", l.paths.Profiles, "count", len(doc.Profiles), "active", m.Active().Name)
}

func (l *Loader) applyPieceValues(m *profile.Model) {
	if l.paths.PieceValues == "" {
		m.SetPieceValues(profile.DefaultPieceValues())
		return
	}
	pv, err := LoadPieceValues(l.paths.PieceValues)
	if err != nil {
		l.log.Warnw("using default piece values", "path", l.paths.PieceValues, "error", err)
		pv = profile.DefaultPieceValues()
	}
	m.SetPieceValues(pv)
}

func (l *Loader) applyVisualization(m *profile.Model) {
	if l.paths.Visualization == "" {
		m.SetVisualization(profile.DefaultVisualization())
		return
	}
	viz, err := LoadVisualization(l.paths.Visualization)
	if err != nil {
		l.log.Warnw("using default visualization", "path", l.paths.Visualization, "error", err)
		viz = profile.DefaultVisualization()
	}
	m.SetVisualization(viz)
}
