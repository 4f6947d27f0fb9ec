package game

import (
	"fmt"
	"strings"
)

// History is the append-only list of moves played from an initial position
type History struct {
	initial string
	moves   []Move
}

func NewHistory(initial string) *History {
	return &History{initial: initial}
}

// Reset starts a new history at a freshly loaded position
func (h *History) Reset(initial string) {
	h.initial = initial
	h.moves = nil
}

func (h *History) Append(m Move) {
	h.moves = append(h.moves, m)
}

func (h *History) Len() int {
	return len(h.moves)
}

// NextPly is the ply number the next appended move should carry
func (h *History) NextPly() int {
	return len(h.moves) + 1
}

func (h *History) At(i int) (Move, error) {
	if i < 0 || i >= len(h.moves) {
		return Move{}, fmt.Errorf("move index %d out of range [0,%d)", i, len(h.moves))
	}
	return h.moves[i], nil
}

// Moves returns a copy of the recorded moves
func (h *History) Moves() []Move {
	out := make([]Move, len(h.moves))
	copy(out, h.moves)
	return out
}

func (h *History) InitialPosition() string {
	return h.initial
}

// CurrentPosition is the position after the last move, or the initial one
func (h *History) CurrentPosition() string {
	if len(h.moves) == 0 {
		return h.initial
	}
	return h.moves[len(h.moves)-1].After
}

func (h *History) SAN() []string {
	out := make([]string, 0, len(h.moves))
	for _, m := range h.moves {
		out = append(out, m.SAN)
	}
	return out
}

// Numbered renders the history as "1. e4 e5 2. Nf3", respecting a black
// first move in a loaded position.
func (h *History) Numbered(blackFirst bool, fullMove int) string {
	if fullMove < 1 {
		fullMove = 1
	}
	var sb strings.Builder
	black := blackFirst
	for i, m := range h.moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case !black:
			fmt.Fprintf(&sb, "%d. ", fullMove)
		case i == 0:
			fmt.Fprintf(&sb, "%d... ", fullMove)
		}
		sb.WriteString(m.SAN)
		if black {
			fullMove++
		}
		black = !black
	}
	return sb.String()
}
