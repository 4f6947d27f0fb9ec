// Package analysis defines the evaluator capability behind arrows, square
// overlays and metrics, plus the progressive depth ticker shown while an
// evaluation runs. No search or scoring algorithm lives here.
package analysis

import (
	"context"

	"github.com/bonjohen/chess-metric-analyzer/internal/arrow"
	"github.com/bonjohen/chess-metric-analyzer/internal/overlay"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
)

// Result is one analysis update; it replaces the previous one wholesale
type Result struct {
	Arrows      []arrow.Arrow        `json:"arrows"`
	Evaluations []overlay.Evaluation `json:"evaluations"`
	Metrics     Metrics              `json:"metrics"`
	Depth       int                  `json:"depth"`
}

// Evaluator analyses a position under a profile
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, p profile.Profile, pv profile.PieceValues) (*Result, error)
}

// Demo returns the fixed demonstration annotations with raw metric counts
// for the actual position. It stands in when no engine is configured.
type Demo struct{}

func (Demo) Evaluate(ctx context.Context, fen string, _ profile.Profile, pv profile.PieceValues) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := CountMetrics(fen, pv)
	if err != nil {
		return nil, err
	}
	return &Result{
		Arrows:      arrow.MockArrows(),
		Evaluations: overlay.MockEvaluations(),
		Metrics:     m,
		Depth:       1,
	}, nil
}
