package processor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
	"github.com/bonjohen/chess-metric-analyzer/internal/service"
	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

type fixture struct {
	proc  *Processor
	svc   *service.Service
	state *uistate.MemoryStore
	id    string
}

func newFixture(t *testing.T, maxDepth int, tick time.Duration) *fixture {
	t.Helper()
	state := uistate.NewMemoryStore()
	svc := service.New(service.Options{State: state})
	proc := New(svc, Config{MaxDepth: maxDepth, Tick: tick})
	t.Cleanup(func() {
		proc.Close()
		_ = svc.Shutdown(time.Second)
	})

	resp := proc.Dispatch(context.Background(), "", CreateSession{})
	if !resp.Success {
		t.Fatalf("create session: %+v", resp.Error)
	}
	return &fixture{proc: proc, svc: svc, state: state, id: resp.Data.(core.SessionView).SessionID}
}

func (f *fixture) dispatch(t *testing.T, ev Event) Response {
	t.Helper()
	return f.proc.Dispatch(context.Background(), f.id, ev)
}

func (f *fixture) view(t *testing.T) core.SessionView {
	t.Helper()
	resp := f.dispatch(t, GetView{})
	if !resp.Success {
		t.Fatalf("get view: %+v", resp.Error)
	}
	return resp.Data.(core.SessionView)
}

func click(t *testing.T, f *fixture, sq string) core.ClickResponse {
	t.Helper()
	resp := f.dispatch(t, ClickSquare{Square: sq})
	if !resp.Success {
		t.Fatalf("click %s: %+v", sq, resp.Error)
	}
	return resp.Data.(core.ClickResponse)
}

func errorCode(resp Response) string {
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

func TestInitialView(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)
	v := f.view(t)

	if v.FEN != board.StartingPosition {
		t.Errorf("FEN = %q", v.FEN)
	}
	if v.Turn != "white" || v.Phase != "idle" || v.Perspective != "white" {
		t.Errorf("turn/phase/perspective = %s/%s/%s", v.Turn, v.Phase, v.Perspective)
	}
	if got := v.Cells[0][0]; got.Square != "a8" || got.Piece != "r" || !got.Light {
		t.Errorf("top-left cell = %+v", got)
	}
	if v.Status.State != "ongoing" {
		t.Errorf("status = %+v", v.Status)
	}
	if v.Profile.Name != "Balanced" {
		t.Errorf("profile = %q", v.Profile.Name)
	}
}

func TestClickToMove(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)

	sel := click(t, f, "e2")
	if sel.Outcome != "selected" {
		t.Fatalf("outcome = %q", sel.Outcome)
	}
	if diff := cmp.Diff([]string{"e4", "e3"}, sel.Destinations); diff != "" {
		t.Errorf("destinations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"e4", "e3"}, sel.View.Highlights); diff != "" {
		t.Errorf("highlights mismatch (-want +got):\n%s", diff)
	}
	if sel.View.Selected != "e2" || sel.View.Phase != "selected" {
		t.Errorf("selected = %q phase = %q", sel.View.Selected, sel.View.Phase)
	}

	moved := click(t, f, "e4")
	if moved.Outcome != "moved" || moved.Move == nil {
		t.Fatalf("outcome = %q move = %v", moved.Outcome, moved.Move)
	}
	if moved.Move.SAN != "e4" || moved.Move.UCI != "e2e4" || moved.Move.Ply != 1 {
		t.Errorf("move = %+v", moved.Move)
	}
	v := moved.View
	if v.Turn != "black" || v.Selected != "" || len(v.Highlights) != 0 {
		t.Errorf("after move: turn %s selected %q highlights %v", v.Turn, v.Selected, v.Highlights)
	}
	if diff := cmp.Diff([]string{"e4"}, v.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
	if v.MoveList != "1. e4" {
		t.Errorf("move list = %q", v.MoveList)
	}

	saved, err := f.state.Load(context.Background(), uistate.DefaultKey)
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if saved.Position != moved.Move.After {
		t.Errorf("persisted position = %q, want %q", saved.Position, moved.Move.After)
	}
}

func TestClickIgnoredKeepsVersion(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)
	before := f.view(t).Version

	resp := click(t, f, "e5")
	if resp.Outcome != "ignored" {
		t.Errorf("outcome = %q", resp.Outcome)
	}
	if resp.View.Version != before {
		t.Errorf("version moved from %d to %d", before, resp.View.Version)
	}
}

func TestDispatchErrors(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)

	tests := []struct {
		name string
		id   string
		ev   Event
		code string
	}{
		{"unknown session", "missing", GetView{}, core.ErrSessionNotFound},
		{"delete unknown session", "missing", DeleteSession{}, core.ErrSessionNotFound},
		{"bad square", f.id, ClickSquare{Square: "z9"}, core.ErrInvalidSquare},
		{"bad position", f.id, LoadPosition{FEN: "8/8/8 w - - 0 1"}, core.ErrInvalidFEN},
		{"bad perspective", f.id, SetPerspective{Perspective: "sideways"}, core.ErrInvalidRequest},
		{"unknown metric", f.id, SetWeight{Metric: "speed", Value: 1}, core.ErrInvalidProfile},
		{"king value", f.id, SetPieceValue{Piece: "k", Value: 4}, core.ErrInvalidProfile},
		{"unknown piece", f.id, SetPieceValue{Piece: "x", Value: 4}, core.ErrInvalidRequest},
		{"empty profile name", f.id, SaveProfile{Name: "  "}, core.ErrInvalidProfile},
		{"control characters in profile name", f.id, SaveProfile{Name: "Mine\nperspective=black"}, core.ErrInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.proc.Dispatch(context.Background(), tt.id, tt.ev)
			if resp.Success {
				t.Fatal("expected failure")
			}
			if got := errorCode(resp); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}

	before := f.view(t)
	f.dispatch(t, SaveProfile{Name: "bad\rname"})
	after := f.view(t)
	if after.Version != before.Version || after.Profile.Name != before.Profile.Name {
		t.Errorf("rejected save changed the session: version %d -> %d, profile %q", before.Version, after.Version, after.Profile.Name)
	}
	if st, err := f.state.Load(context.Background(), uistate.DefaultKey); err == nil && strings.ContainsAny(st.ProfileName, "\r\n") {
		t.Errorf("persisted profile name %q", st.ProfileName)
	}

	resp := f.proc.Dispatch(context.Background(), "", CreateSession{FEN: "garbage"})
	if errorCode(resp) != core.ErrInvalidFEN {
		t.Errorf("create with bad FEN: %+v", resp.Error)
	}
}

func TestLoadPosition(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)
	click(t, f, "e2")
	click(t, f, "e4")

	const fen = "4k3/8/8/8/8/8/4P3/4K3 b - - 0 12"
	resp := f.dispatch(t, LoadPosition{FEN: fen})
	if !resp.Success {
		t.Fatalf("load: %+v", resp.Error)
	}
	v := resp.Data.(core.SessionView)
	if v.FEN != fen || v.Turn != "black" || len(v.Moves) != 0 {
		t.Errorf("view after load: fen %q turn %s moves %v", v.FEN, v.Turn, v.Moves)
	}

	click(t, f, "e8")
	click(t, f, "d8")
	if got := f.view(t).MoveList; got != "12... Kd8" {
		t.Errorf("move list = %q", got)
	}
}

func TestPerspectiveAndProfiles(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)

	v := f.dispatch(t, SetPerspective{Perspective: "black"}).Data.(core.SessionView)
	if v.Perspective != "black" || v.Cells[0][0].Square != "h1" {
		t.Errorf("perspective %s, top-left %s", v.Perspective, v.Cells[0][0].Square)
	}

	v = f.dispatch(t, SelectProfile{Name: "NoSuchProfile"}).Data.(core.SessionView)
	if v.Profile.Name != "Balanced" {
		t.Errorf("unknown profile switched to %q", v.Profile.Name)
	}

	f.dispatch(t, SetWeight{Metric: "PV", Value: 2.5})
	v = f.dispatch(t, SaveProfile{Name: "Materialist"}).Data.(core.SessionView)
	if v.Profile.Name != "Materialist" || v.Profile.Weights["material"] != 2.5 {
		t.Errorf("saved profile = %+v", v.Profile)
	}
	if diff := cmp.Diff([]string{"Balanced", "Materialist"}, v.Profile.Available); diff != "" {
		t.Errorf("available mismatch (-want +got):\n%s", diff)
	}

	v = f.dispatch(t, SetPieceValue{Piece: "n", Value: 3.5}).Data.(core.SessionView)
	if v.PieceValues.Knight != 3.5 {
		t.Errorf("knight = %v", v.PieceValues.Knight)
	}

	saved, err := f.state.Load(context.Background(), uistate.DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	want := uistate.State{Position: board.StartingPosition, Perspective: board.PerspectiveBlack, ProfileName: "Materialist"}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Errorf("persisted state mismatch (-want +got):\n%s", diff)
	}

	if base := f.svc.Profiles().Names(); len(base) != 1 {
		t.Errorf("server-wide profiles changed: %v", base)
	}
}

func waitFor(t *testing.T, f *fixture, cond func(core.SessionView) bool) core.SessionView {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		v := f.view(t)
		if cond(v) {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached, last view analysis: %+v", v.Analysis)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAnalysisCompletes(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)

	resp := f.dispatch(t, StartAnalysis{})
	if !resp.Success || !resp.Pending {
		t.Fatalf("start: success %v pending %v", resp.Success, resp.Pending)
	}

	v := waitFor(t, f, func(v core.SessionView) bool {
		return !v.Analysis.Running && len(v.Analysis.Arrows) > 0
	})
	a := v.Analysis
	if a.Depth != 3 || a.MaxDepth != 3 {
		t.Errorf("depth %d/%d", a.Depth, a.MaxDepth)
	}
	if len(a.Squares) == 0 {
		t.Error("no overlay squares")
	}
	if a.Metrics["white"]["material"] != 39 || a.Metrics["black"]["mobility"] != 20 {
		t.Errorf("metrics = %v", a.Metrics)
	}
	if diff := cmp.Diff(map[string]string{
		"material": "+0.0", "mobility": "+0.0", "attack": "+0.0", "defense": "+0.0",
	}, a.Deltas); diff != "" {
		t.Errorf("deltas mismatch (-want +got):\n%s", diff)
	}

	// a move makes the result stale
	click(t, f, "e2")
	moved := click(t, f, "e4")
	if len(moved.View.Analysis.Arrows) != 0 {
		t.Error("arrows from the previous position are still shown")
	}
}

func TestAnalysisStopKeepsDepth(t *testing.T) {
	f := newFixture(t, 1000, 2*time.Millisecond)

	f.dispatch(t, StartAnalysis{})
	waitFor(t, f, func(v core.SessionView) bool { return v.Analysis.Depth >= 2 })

	resp := f.dispatch(t, StopAnalysis{})
	v := resp.Data.(core.SessionView)
	if v.Analysis.Running || resp.Pending {
		t.Error("analysis still running after stop")
	}
	if v.Analysis.Depth < 2 {
		t.Errorf("depth reset to %d", v.Analysis.Depth)
	}
	if len(v.Analysis.Arrows) != 0 {
		t.Error("stopped analysis should not publish a result")
	}

	// idempotent
	if resp := f.dispatch(t, StopAnalysis{}); !resp.Success {
		t.Errorf("second stop: %+v", resp.Error)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)
	if resp := f.dispatch(t, DeleteSession{}); !resp.Success {
		t.Fatalf("delete: %+v", resp.Error)
	}
	_, err := f.svc.GetSession(f.id)
	if !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRenderArrows(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)

	resp := f.proc.RenderArrows(core.ArrowsRequest{
		Arrows: []core.ArrowRequest{
			{From: "e2", To: "e4", Rank: 1, Ply: 1, Best: true},
			{From: "g1", To: "f3", Rank: 2, Ply: 1},
		},
	})
	if !resp.Success {
		t.Fatalf("render: %+v", resp.Error)
	}
	out := resp.Data.(core.ArrowsResponse)
	if out.SquareSize != 75 || len(out.Arrows) != 2 {
		t.Fatalf("size %v arrows %d", out.SquareSize, len(out.Arrows))
	}
	if got := out.Arrows[0]; got.Path != "M 337.5 487.5 L 337.5 337.5" || got.Class != "arrow rank-1 ply-1 best-move" {
		t.Errorf("e2e4 = %+v", got)
	}
	if got := out.Arrows[1]; got.StrokeWidth != 7.5 || got.Opacity != 0.8 {
		t.Errorf("g1f3 style = %+v", got)
	}

	tests := []struct {
		name string
		a    core.ArrowRequest
		code string
	}{
		{"zero length", core.ArrowRequest{From: "e2", To: "e2", Rank: 1, Ply: 1}, core.ErrInvalidAnnotation},
		{"rank out of range", core.ArrowRequest{From: "e2", To: "e4", Rank: 4, Ply: 1}, core.ErrInvalidAnnotation},
		{"bad square", core.ArrowRequest{From: "e9", To: "e4", Rank: 1, Ply: 1}, core.ErrInvalidSquare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.proc.RenderArrows(core.ArrowsRequest{Arrows: []core.ArrowRequest{tt.a}})
			if got := errorCode(resp); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestRenderOverlay(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)

	resp := f.proc.RenderOverlay(core.OverlayRequest{Evaluations: []core.EvaluationRequest{
		{Square: "e4", Type: "favorable", Intensity: 8},
		{Square: "zz", Type: "favorable", Intensity: 2},
		{Square: "d5", Type: "unfavorable", Intensity: 3},
		{Square: "d5", Type: "neutral", Intensity: 0},
	}})
	if !resp.Success {
		t.Fatalf("overlay: %+v", resp.Error)
	}
	want := []core.SquareView{{Square: "e4", Type: "favorable", Intensity: 8, Alpha: 0.8}}
	got := resp.Data.(core.OverlayResponse).Squares
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("squares mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderBoardPartial(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)
	before := f.view(t)

	resp := f.proc.RenderBoard(core.BoardRequest{FEN: "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1"})
	if !resp.Success {
		t.Fatalf("render: %+v", resp.Error)
	}
	out := resp.Data.(core.BoardResponse)
	if out.Complete {
		t.Error("malformed rank reported complete")
	}
	if diff := cmp.Diff([]int{6}, out.BadRanks); diff != "" {
		t.Errorf("bad ranks mismatch (-want +got):\n%s", diff)
	}
	if len(out.Errors) != 1 || out.Turn != "black" {
		t.Errorf("errors %v turn %q", out.Errors, out.Turn)
	}
	if got := out.Cells[0][4]; got.Square != "e8" || got.Piece != "k" {
		t.Errorf("e8 = %+v", got)
	}
	if got := out.Cells[7][4]; got.Square != "e1" || got.Piece != "K" {
		t.Errorf("e1 = %+v", got)
	}
	for _, c := range out.Cells[2] {
		if c.Piece != "" {
			t.Errorf("rank 6 cell %s holds %q", c.Square, c.Piece)
		}
	}

	// stateless: the session's position is untouched
	if after := f.view(t); after.FEN != before.FEN || after.Version != before.Version {
		t.Errorf("session changed: %q v%d -> %q v%d", before.FEN, before.Version, after.FEN, after.Version)
	}
}

func TestRenderBoard(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)

	resp := f.proc.RenderBoard(core.BoardRequest{FEN: board.StartingPosition, Perspective: "black"})
	if !resp.Success {
		t.Fatalf("render: %+v", resp.Error)
	}
	out := resp.Data.(core.BoardResponse)
	if !out.Complete || len(out.BadRanks) != 0 || out.Turn != "white" {
		t.Errorf("complete %v bad %v turn %q", out.Complete, out.BadRanks, out.Turn)
	}
	if got := out.Cells[0][0].Square; got != "h1" {
		t.Errorf("black perspective corner = %q, want h1", got)
	}

	tests := []struct {
		name string
		req  core.BoardRequest
		code string
	}{
		{"empty", core.BoardRequest{FEN: "   "}, core.ErrInvalidFEN},
		{"bad perspective", core.BoardRequest{FEN: board.StartingPosition, Perspective: "up"}, core.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorCode(f.proc.RenderBoard(tt.req)); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestListProfiles(t *testing.T) {
	f := newFixture(t, 3, time.Millisecond)
	out := f.proc.ListProfiles().Data.(core.ProfilesResponse)
	want := core.ProfilesResponse{
		Active: "Balanced",
		Profiles: []core.ProfileView{{
			Name:        "Balanced",
			Description: "Equal weight to all metrics",
			Weights:     map[string]float64{"material": 1, "mobility": 1, "attack": 1, "defense": 1},
		}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}
}
