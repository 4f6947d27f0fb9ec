package processor

import (
	"context"
	"testing"
	"time"

	"github.com/bonjohen/chess-metric-analyzer/internal/analysis"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
	"github.com/bonjohen/chess-metric-analyzer/internal/service"
)

// blockingEvaluator holds every evaluation until its context ends
type blockingEvaluator struct {
	entered  chan struct{}
	canceled chan struct{}
}

func (e *blockingEvaluator) Evaluate(ctx context.Context, _ string, _ profile.Profile, _ profile.PieceValues) (*analysis.Result, error) {
	close(e.entered)
	select {
	case <-ctx.Done():
		close(e.canceled)
		return nil, ctx.Err()
	case <-time.After(10 * time.Second):
		return &analysis.Result{}, nil
	}
}

func TestMoveCancelsRunningEvaluation(t *testing.T) {
	eval := &blockingEvaluator{entered: make(chan struct{}), canceled: make(chan struct{})}
	svc := service.New(service.Options{})
	proc := New(svc, Config{Evaluator: eval, MaxDepth: 1, Tick: time.Millisecond})
	t.Cleanup(func() {
		proc.Close()
		_ = svc.Shutdown(time.Second)
	})

	created := proc.Dispatch(context.Background(), "", CreateSession{})
	if !created.Success {
		t.Fatalf("create session: %+v", created.Error)
	}
	f := &fixture{proc: proc, svc: svc, id: created.Data.(core.SessionView).SessionID}

	if resp := f.dispatch(t, StartAnalysis{}); !resp.Success {
		t.Fatalf("start: %+v", resp.Error)
	}
	select {
	case <-eval.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("evaluator never ran")
	}

	click(t, f, "e2")
	start := time.Now()
	moved := click(t, f, "e4")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("move waited %v for the evaluation", elapsed)
	}
	if moved.Outcome != "moved" {
		t.Errorf("outcome = %q, want moved", moved.Outcome)
	}

	select {
	case <-eval.canceled:
	case <-time.After(time.Second):
		t.Error("evaluation context was not canceled")
	}
	if moved.View.Analysis.Running || len(moved.View.Analysis.Arrows) != 0 {
		t.Errorf("stale analysis in view: %+v", moved.View.Analysis)
	}
}
