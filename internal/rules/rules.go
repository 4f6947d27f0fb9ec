// Package rules defines the legal-move capability the board view consumes
// and an adapter over github.com/notnil/chess that provides it.
package rules

import (
	"errors"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
)

var ErrIllegalMove = errors.New("illegal move")

// Engine is a black-box rules capability: legality, move application and
// game status for one current position.
type Engine interface {
	LoadPosition(text string) error
	LegalDestinations(from board.Square) []board.Square
	ApplyMove(from, to board.Square, promotion board.Kind) (*MoveResult, error)
	IsCheck() bool
	IsCheckmate() bool
	IsStalemate() bool
	CurrentPosition() string
}

// MoveResult describes an applied move. Before and After are position texts.
type MoveResult struct {
	From      board.Square
	To        board.Square
	Piece     board.Piece
	Captured  board.Piece
	Promotion board.Kind
	SAN       string
	UCI       string
	Before    string
	After     string
}
