package game

import (
	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/rules"
)

// Move is an applied transition. It is never modified after creation.
type Move struct {
	Ply       int          `json:"ply"`
	From      board.Square `json:"-"`
	To        board.Square `json:"-"`
	Piece     board.Piece  `json:"-"`
	Captured  board.Piece  `json:"-"`
	Promotion board.Kind   `json:"-"`
	SAN       string       `json:"san"`
	UCI       string       `json:"uci"`
	Before    string       `json:"before"`
	After     string       `json:"after"`
}

// NewMove builds the history record for a rules engine result
func NewMove(ply int, r *rules.MoveResult) Move {
	return Move{
		Ply:       ply,
		From:      r.From,
		To:        r.To,
		Piece:     r.Piece,
		Captured:  r.Captured,
		Promotion: r.Promotion,
		SAN:       r.SAN,
		UCI:       r.UCI,
		Before:    r.Before,
		After:     r.After,
	}
}
