package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
)

func sq(s string) board.Square { return board.MustSquare(s) }

func TestLegalDestinationsFromStart(t *testing.T) {
	e := NewChess()
	if err := e.LoadPosition(board.StartingPosition); err != nil {
		t.Fatalf("LoadPosition: %v", err)
	}

	tests := []struct {
		from string
		want []board.Square
	}{
		{"e2", []board.Square{sq("e4"), sq("e3")}},
		{"g1", []board.Square{sq("f3"), sq("h3")}},
		{"e1", nil},
		{"e4", nil},
		{"e7", nil},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got := e.LegalDestinations(sq(tt.from))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("destinations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyMove(t *testing.T) {
	e := NewChess()
	if err := e.LoadPosition(board.StartingPosition); err != nil {
		t.Fatal(err)
	}

	res, err := e.ApplyMove(sq("e2"), sq("e4"), board.NoKind)
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if res.SAN != "e4" || res.UCI != "e2e4" {
		t.Errorf("notation: san %q uci %q", res.SAN, res.UCI)
	}
	if res.Piece != (board.Piece{Kind: board.Pawn, Color: board.White}) {
		t.Errorf("piece: %+v", res.Piece)
	}
	if !res.Captured.Empty() {
		t.Errorf("captured: %+v", res.Captured)
	}
	if res.Before != board.StartingPosition {
		t.Errorf("before: %q", res.Before)
	}
	if fields := strings.Fields(res.After); fields[1] != "b" {
		t.Errorf("side to move after e4: %q", res.After)
	}
	if e.CurrentPosition() != res.After {
		t.Errorf("current position %q differs from result %q", e.CurrentPosition(), res.After)
	}
}

func TestApplyIllegalMove(t *testing.T) {
	e := NewChess()
	_, err := e.ApplyMove(sq("e2"), sq("e5"), board.NoKind)
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if e.CurrentPosition() != board.StartingPosition {
		t.Errorf("illegal move changed position: %q", e.CurrentPosition())
	}
}

func TestCaptureAndPromotion(t *testing.T) {
	e := NewChess()
	if err := e.LoadPosition("1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}

	res, err := e.ApplyMove(sq("a7"), sq("b8"), board.NoKind)
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if res.Promotion != board.Queen {
		t.Errorf("promotion: got %v, want queen", res.Promotion)
	}
	if res.Captured != (board.Piece{Kind: board.Rook, Color: board.Black}) {
		t.Errorf("captured: %+v", res.Captured)
	}
	if res.SAN != "axb8=Q+" {
		t.Errorf("san: %q", res.SAN)
	}
	if !e.IsCheck() {
		t.Error("queen on b8 should give check")
	}
}

func TestUnderPromotion(t *testing.T) {
	e := NewChess()
	if err := e.LoadPosition("4k3/P7/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	res, err := e.ApplyMove(sq("a7"), sq("a8"), board.Knight)
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if res.Promotion != board.Knight {
		t.Errorf("promotion: got %v, want knight", res.Promotion)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		check     bool
		checkmate bool
		stalemate bool
	}{
		{"start", board.StartingPosition, false, false, false},
		{"loaded in check", "4k3/8/8/8/8/8/8/R3K2r w - - 0 1", true, false, false},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", true, true, false},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewChess()
			if err := e.LoadPosition(tt.fen); err != nil {
				t.Fatal(err)
			}
			if e.IsCheck() != tt.check {
				t.Errorf("IsCheck: got %v", e.IsCheck())
			}
			if e.IsCheckmate() != tt.checkmate {
				t.Errorf("IsCheckmate: got %v", e.IsCheckmate())
			}
			if e.IsStalemate() != tt.stalemate {
				t.Errorf("IsStalemate: got %v", e.IsStalemate())
			}
		})
	}
}

func TestLoadPositionRejectsMissingKing(t *testing.T) {
	e := NewChess()
	err := e.LoadPosition("8/8/8/8/8/8/8/4K3 w - - 0 1")
	if !errors.Is(err, board.ErrMalformedPosition) {
		t.Fatalf("expected ErrMalformedPosition, got %v", err)
	}
	if e.CurrentPosition() != board.StartingPosition {
		t.Error("failed load should keep previous position")
	}
}

func TestSquareConversion(t *testing.T) {
	for i := 0; i < 64; i++ {
		s := board.Square(i)
		if got := toChessSquare(s).String(); got != s.String() {
			t.Errorf("%s converts to %s", s, got)
		}
		if back := fromChessSquare(toChessSquare(s)); back != s {
			t.Errorf("%s round trips to %s", s, back)
		}
	}
}
