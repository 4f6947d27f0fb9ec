package interaction

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/game"
	"github.com/bonjohen/chess-metric-analyzer/internal/rules"
)

func sq(s string) board.Square { return board.MustSquare(s) }

func newController(t *testing.T) *Controller {
	t.Helper()
	c := New(rules.NewChess(), nil)
	if err := c.Load(board.StartingPosition); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestClickEmptySquareStaysIdle(t *testing.T) {
	c := newController(t)

	out := c.Click(sq("e4"))
	if out.Kind != Ignored {
		t.Errorf("kind: got %v, want ignored", out.Kind)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("phase: got %v", c.Phase())
	}
	if len(c.Grid().Highlighted()) != 0 {
		t.Errorf("highlights: %v", c.Grid().Highlighted())
	}
}

func TestClickOpponentPieceStaysIdle(t *testing.T) {
	c := newController(t)
	if out := c.Click(sq("e7")); out.Kind != Ignored || c.Phase() != PhaseIdle {
		t.Errorf("black pawn with white to move: kind %v phase %v", out.Kind, c.Phase())
	}
}

func TestSelectAndDeselect(t *testing.T) {
	c := newController(t)

	out := c.Click(sq("e2"))
	if out.Kind != Selected {
		t.Fatalf("kind: got %v, want selected", out.Kind)
	}
	for _, want := range []string{"e3", "e4"} {
		if !c.Grid().IsHighlighted(sq(want)) {
			t.Errorf("%s should be highlighted", want)
		}
	}

	out = c.Click(sq("e2"))
	if out.Kind != Deselected || c.Phase() != PhaseIdle {
		t.Errorf("second click: kind %v phase %v", out.Kind, c.Phase())
	}
	if len(c.Grid().Highlighted()) != 0 {
		t.Error("deselect should clear highlights")
	}
}

func TestFailedMoveReselects(t *testing.T) {
	c := newController(t)
	c.Click(sq("e2"))

	out := c.Click(sq("g1"))
	if out.Kind != Reselected {
		t.Fatalf("kind: got %v, want reselected", out.Kind)
	}
	if got, ok := c.Grid().Selected(); !ok || got != sq("g1") {
		t.Errorf("selection: got %v %v, want g1", got, ok)
	}
	want := []board.Square{sq("f3"), sq("h3")}
	if diff := cmp.Diff(want, c.Grid().Highlighted()); diff != "" {
		t.Errorf("highlights mismatch (-want +got):\n%s", diff)
	}
	if c.History().Len() != 0 {
		t.Error("failed move should not be recorded")
	}
}

func TestFailedMoveWithoutDestinationsClears(t *testing.T) {
	c := newController(t)
	c.Click(sq("e2"))

	out := c.Click(sq("e5"))
	if out.Kind != Cleared || c.Phase() != PhaseIdle {
		t.Errorf("kind %v phase %v", out.Kind, c.Phase())
	}
	if len(c.Grid().Highlighted()) != 0 {
		t.Error("highlights should be cleared")
	}
}

func TestClickToMove(t *testing.T) {
	c := newController(t)

	out := c.Click(sq("e2"))
	if out.Kind != Selected {
		t.Fatalf("kind: got %v", out.Kind)
	}
	hasE3, hasE4 := false, false
	for _, d := range out.Destinations {
		hasE3 = hasE3 || d == sq("e3")
		hasE4 = hasE4 || d == sq("e4")
	}
	if !hasE3 || !hasE4 {
		t.Fatalf("destinations %v should include e3 and e4", out.Destinations)
	}

	out = c.Click(sq("e4"))
	if out.Kind != Moved || out.Move == nil {
		t.Fatalf("kind: got %v", out.Kind)
	}
	if out.Move.SAN != "e4" {
		t.Errorf("san: got %q", out.Move.SAN)
	}
	if f := strings.Fields(out.Move.After); f[1] != "b" {
		t.Errorf("side to move: %q", out.Move.After)
	}
	if out.Status.State != game.StateOngoing {
		t.Errorf("status: %+v", out.Status)
	}

	if c.Phase() != PhaseIdle || len(c.Grid().Highlighted()) != 0 {
		t.Error("move should leave the controller idle")
	}
	if c.Grid().Position().PieceAt(sq("e4")) != (board.Piece{Kind: board.Pawn, Color: board.White}) {
		t.Error("grid should show the pawn on e4")
	}
	if c.Grid().Position().Turn != board.Black {
		t.Error("grid should have black to move")
	}
	if diff := cmp.Diff([]string{"e4"}, c.History().SAN()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveReportsCheckmate(t *testing.T) {
	c := New(rules.NewChess(), nil)
	if err := c.Load("rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2"); err != nil {
		t.Fatal(err)
	}
	c.Click(sq("d8"))
	out := c.Click(sq("h4"))
	if out.Kind != Moved {
		t.Fatalf("kind: got %v", out.Kind)
	}
	if out.Status.State != game.StateCheckmate || out.Status.Message != "Checkmate!" {
		t.Errorf("status: %+v", out.Status)
	}
	if out.Move.SAN != "Qh4#" {
		t.Errorf("san: %q", out.Move.SAN)
	}
}

func TestLoadFailureKeepsState(t *testing.T) {
	c := newController(t)
	c.Click(sq("e2"))
	c.Click(sq("e4"))

	err := c.Load("rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if !errors.Is(err, board.ErrMalformedPosition) {
		t.Fatalf("expected ErrMalformedPosition, got %v", err)
	}
	if c.History().Len() != 1 {
		t.Error("failed load should keep history")
	}
	if c.Grid().Position().Turn != board.Black {
		t.Error("failed load should keep position")
	}
}

func TestOffBoardClickIgnored(t *testing.T) {
	c := newController(t)
	if out := c.Click(board.NoSquare); out.Kind != Ignored {
		t.Errorf("kind: got %v", out.Kind)
	}
}
