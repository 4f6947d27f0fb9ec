package board

import (
	"errors"
	"testing"
)

func TestSquareBijection(t *testing.T) {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq, err := SquareAt(rank, file)
			if err != nil {
				t.Fatalf("SquareAt(%d, %d): %v", rank, file, err)
			}
			back, err := ParseSquare(sq.String())
			if err != nil {
				t.Fatalf("ParseSquare(%q): %v", sq, err)
			}
			r, f := back.Grid()
			if r != rank || f != file {
				t.Errorf("%s: got (%d,%d), want (%d,%d)", sq, r, f, rank, file)
			}
		}
	}
}

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in      string
		rank    int
		file    int
		wantErr bool
	}{
		{in: "a8", rank: 0, file: 0},
		{in: "h1", rank: 7, file: 7},
		{in: "e4", rank: 4, file: 4},
		{in: "e2", rank: 6, file: 4},
		{in: "i1", wantErr: true},
		{in: "a9", wantErr: true},
		{in: "a0", wantErr: true},
		{in: "E4", wantErr: true},
		{in: "", wantErr: true},
		{in: "e44", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sq, err := ParseSquare(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("expected ErrOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sq.Rank() != tt.rank || sq.File() != tt.file {
				t.Errorf("got (%d,%d), want (%d,%d)", sq.Rank(), sq.File(), tt.rank, tt.file)
			}
		})
	}
}

func TestSquareAtOutOfRange(t *testing.T) {
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {8, 0}, {0, 8}} {
		if _, err := SquareAt(c[0], c[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SquareAt(%d, %d): expected ErrOutOfRange, got %v", c[0], c[1], err)
		}
	}
}

func TestSquareColour(t *testing.T) {
	if !MustSquare("a8").IsLight() || !MustSquare("h1").IsLight() {
		t.Error("a8 and h1 should be light")
	}
	if MustSquare("a1").IsLight() || MustSquare("h8").IsLight() {
		t.Error("a1 and h8 should be dark")
	}
}
