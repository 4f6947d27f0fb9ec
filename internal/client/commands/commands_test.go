package commands

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/bonjohen/chess-metric-analyzer/internal/client/api"
	"github.com/bonjohen/chess-metric-analyzer/internal/client/display"
	vizhttp "github.com/bonjohen/chess-metric-analyzer/internal/http"
	"github.com/bonjohen/chess-metric-analyzer/internal/processor"
	"github.com/bonjohen/chess-metric-analyzer/internal/service"
)

func newTestRegistry(t *testing.T) (*Registry, *Session, *bytes.Buffer) {
	t.Helper()
	display.DisableColor()

	svc := service.New(service.Options{})
	proc := processor.New(svc, processor.Config{MaxDepth: 2, Tick: time.Millisecond})
	app := vizhttp.NewFiberApp(proc, svc, vizhttp.Config{RateLimit: 1000, Quiet: true})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(func() {
		srv.Close()
		proc.Close()
		_ = svc.Shutdown(time.Second)
	})

	out := &bytes.Buffer{}
	client := api.New(srv.URL)
	client.Out = out
	s := &Session{Client: client, Out: out}
	return NewRegistry(s), s, out
}

func run(t *testing.T, r *Registry, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if err := r.Execute(line); err != nil {
		t.Fatalf("%q: %v", line, err)
	}
	return out.String()
}

func TestRequiresSession(t *testing.T) {
	r, _, out := newTestRegistry(t)
	for _, line := range []string{"click e2", "show", "analyze", "profile", "delete"} {
		got := run(t, r, out, line)
		if !strings.Contains(got, "no session") {
			t.Errorf("%q output = %q, want no session error", line, got)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	r, _, out := newTestRegistry(t)
	if got := run(t, r, out, "castle"); !strings.Contains(got, "Unknown command: castle") {
		t.Errorf("output = %q", got)
	}
}

func TestBoardFlow(t *testing.T) {
	r, s, out := newTestRegistry(t)

	got := run(t, r, out, "new")
	if s.SessionID == "" {
		t.Fatalf("no session id after new: %q", got)
	}
	if !strings.Contains(got, "Turn: White") {
		t.Errorf("new output missing turn: %q", got)
	}

	got = run(t, r, out, "c e2")
	if !strings.Contains(got, "e2: selected -> e4 e3") {
		t.Errorf("select output = %q", got)
	}

	got = run(t, r, out, "c e4")
	if !strings.Contains(got, "e4: moved e4") {
		t.Errorf("move output = %q", got)
	}
	if s.View.Turn != "black" {
		t.Errorf("turn = %q, want black", s.View.Turn)
	}

	if got = run(t, r, out, "h"); strings.TrimSpace(got) != "1. e4" {
		t.Errorf("history from cached view = %q", got)
	}
	s.View = nil
	if got = run(t, r, out, "h"); !strings.HasSuffix(strings.TrimSpace(got), "\n1. e4") {
		t.Errorf("history after fetch = %q", got)
	}

	run(t, r, out, "f")
	if s.View.Perspective != "black" {
		t.Errorf("perspective = %q, want black", s.View.Perspective)
	}
	run(t, r, out, "f")
	if s.View.Perspective != "white" {
		t.Errorf("perspective = %q, want white", s.View.Perspective)
	}

	got = run(t, r, out, "load 8/8/8/8/8/8/8/K6k w - - 0 1")
	if s.View.FEN != "8/8/8/8/8/8/8/K6k w - - 0 1" {
		t.Errorf("fen = %q (%q)", s.View.FEN, got)
	}

	got = run(t, r, out, "delete")
	if !strings.Contains(got, "deleted") || s.SessionID != "" {
		t.Errorf("delete output = %q, session = %q", got, s.SessionID)
	}
}

func TestPreviewShowsDecodedRanks(t *testing.T) {
	r, s, out := newTestRegistry(t)

	got := run(t, r, out, "preview rnbqkbnr/pppppppp/8/8/4X3/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if !strings.Contains(got, "rank 4 has invalid character 'X'") {
		t.Errorf("preview output missing rank error: %q", got)
	}
	if strings.Contains(got, "Turn:") {
		t.Errorf("partial preview printed a turn: %q", got)
	}
	if s.SessionID != "" {
		t.Errorf("preview attached a session: %q", s.SessionID)
	}

	if got = run(t, r, out, "b 8/8/8/8/8/8/8/K6k b - - 0 1"); !strings.Contains(got, "Turn: Black") {
		t.Errorf("complete preview output = %q", got)
	}
}

func TestProfileCommands(t *testing.T) {
	r, s, out := newTestRegistry(t)
	run(t, r, out, "new")

	got := run(t, r, out, "w mobility 2.5")
	if !strings.Contains(got, "mobility  2.50") {
		t.Errorf("weight output = %q", got)
	}
	if got = run(t, r, out, "w mobility lots"); !strings.Contains(got, "invalid value") {
		t.Errorf("bad weight output = %q", got)
	}

	run(t, r, out, "piece n 3.5")
	if s.View.PieceValues.Knight != 3.5 {
		t.Errorf("knight = %v, want 3.5", s.View.PieceValues.Knight)
	}
	if got = run(t, r, out, "piece k 10"); !strings.Contains(got, "Error") {
		t.Errorf("king value output = %q", got)
	}

	run(t, r, out, "profile mine save")
	if s.View.Profile.Name != "mine" {
		t.Errorf("profile = %q, want mine", s.View.Profile.Name)
	}
}

func TestDemoAnnotations(t *testing.T) {
	r, _, out := newTestRegistry(t)

	got := run(t, r, out, "arrows demo")
	if !strings.Contains(got, "best") || !strings.Contains(got, "M ") {
		t.Errorf("arrows demo output = %q", got)
	}
	got = run(t, r, out, "overlay demo")
	if !strings.Contains(got, "+") || !strings.Contains(got, "a  b  c") {
		t.Errorf("overlay demo output = %q", got)
	}
}

func TestAnalyzeAndStop(t *testing.T) {
	r, s, out := newTestRegistry(t)
	run(t, r, out, "new")

	if got := run(t, r, out, "analyze"); !strings.Contains(got, "Analysis started") {
		t.Errorf("analyze output = %q", got)
	}
	if got := run(t, r, out, "stop"); !strings.Contains(got, "Analysis: stopped") {
		t.Errorf("stop output = %q", got)
	}
	if s.View.Analysis.Running {
		t.Error("analysis still running after stop")
	}
}

func TestUtilityCommands(t *testing.T) {
	r, s, out := newTestRegistry(t)

	if got := run(t, r, out, "."); !strings.Contains(got, "healthy") {
		t.Errorf("health output = %q", got)
	}
	if got := run(t, r, out, ": GET /api/v1/profiles"); !strings.Contains(got, `"active"`) {
		t.Errorf("raw output = %q", got)
	}

	base := s.Client.BaseURL
	run(t, r, out, "/ http://example.invalid/")
	if s.Client.BaseURL != "http://example.invalid" {
		t.Errorf("base url = %q", s.Client.BaseURL)
	}
	s.Client.SetBaseURL(base)

	if err := r.Execute("exit"); !errors.Is(err, ErrExit) {
		t.Errorf("exit returned %v", err)
	}
}
