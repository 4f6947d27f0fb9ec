package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
)

// Chess implements Engine with notnil/chess. Check detection for a freshly
// loaded position, where no move carries a check tag yet, goes through
// dragontoothmg.
type Chess struct {
	mu   sync.Mutex
	game *chess.Game
}

// NewChess returns an engine loaded with the starting position
func NewChess() *Chess {
	return &Chess{game: chess.NewGame()}
}

func (c *Chess) LoadPosition(text string) error {
	pos, err := board.Decode(text)
	if err != nil {
		return err
	}
	if err := CheckKings(pos); err != nil {
		return err
	}
	opt, err := chess.FEN(text)
	if err != nil {
		return fmt.Errorf("%w: %v", board.ErrMalformedPosition, err)
	}

	c.mu.Lock()
	c.game = chess.NewGame(opt)
	c.mu.Unlock()
	return nil
}

// CheckKings requires exactly one king per side
func CheckKings(pos board.Position) error {
	white := pos.Count(board.Piece{Kind: board.King, Color: board.White})
	black := pos.Count(board.Piece{Kind: board.King, Color: board.Black})
	if white != 1 || black != 1 {
		return fmt.Errorf("%w: need one king per side, have %d white and %d black", board.ErrMalformedPosition, white, black)
	}
	return nil
}

// LegalDestinations lists target squares of legal moves from one square in
// board index order. Promotion variants collapse to one destination.
func (c *Chess) LegalDestinations(from board.Square) []board.Square {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !from.Valid() {
		return nil
	}
	src := toChessSquare(from)

	seen := make(map[board.Square]bool)
	var out []board.Square
	for _, m := range c.game.ValidMoves() {
		if m.S1() != src {
			continue
		}
		dst := fromChessSquare(m.S2())
		if !seen[dst] {
			seen[dst] = true
			out = append(out, dst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ApplyMove plays from->to. A pawn reaching the last rank without an
// explicit promotion piece promotes to a queen.
func (c *Chess) ApplyMove(from, to board.Square, promotion board.Kind) (*MoveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !from.Valid() || !to.Valid() {
		return nil, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	want := toChessPieceType(promotion)
	if promotion == board.NoKind {
		want = chess.Queen
	}

	var move *chess.Move
	for _, m := range c.game.ValidMoves() {
		if m.S1() != toChessSquare(from) || m.S2() != toChessSquare(to) {
			continue
		}
		if m.Promo() != chess.NoPieceType && m.Promo() != want {
			continue
		}
		move = m
		break
	}
	if move == nil {
		return nil, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	pos := c.game.Position()
	res := &MoveResult{
		From:      from,
		To:        to,
		Piece:     fromChessPiece(pos.Board().Piece(move.S1())),
		Captured:  fromChessPiece(pos.Board().Piece(move.S2())),
		Promotion: fromChessPieceType(move.Promo()),
		SAN:       chess.AlgebraicNotation{}.Encode(pos, move),
		UCI:       move.String(),
		Before:    pos.String(),
	}
	if move.HasTag(chess.EnPassant) {
		res.Captured = board.Piece{Kind: board.Pawn, Color: res.Piece.Color.Opponent()}
	}

	if err := c.game.Move(move); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	res.After = c.game.Position().String()

	return res, nil
}

func (c *Chess) IsCheck() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inCheck()
}

func (c *Chess) inCheck() bool {
	if moves := c.game.Moves(); len(moves) > 0 {
		return moves[len(moves)-1].HasTag(chess.Check)
	}
	b := dragontoothmg.ParseFen(c.game.Position().String())
	return b.OurKingInCheck()
}

func (c *Chess) IsCheckmate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.game.ValidMoves()) == 0 && c.inCheck()
}

func (c *Chess) IsStalemate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.game.ValidMoves()) == 0 && !c.inCheck()
}

func (c *Chess) CurrentPosition() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.Position().String()
}

// notnil squares count from a1 = 0; board squares count from a8 = 0
func toChessSquare(sq board.Square) chess.Square {
	return chess.Square((7-sq.Rank())*8 + sq.File())
}

func fromChessSquare(sq chess.Square) board.Square {
	return board.Square((7-int(sq)/8)*8 + int(sq)%8)
}

func fromChessPiece(p chess.Piece) board.Piece {
	if p == chess.NoPiece {
		return board.Piece{}
	}
	color := board.White
	if p.Color() == chess.Black {
		color = board.Black
	}
	return board.Piece{Kind: fromChessPieceType(p.Type()), Color: color}
}

func fromChessPieceType(t chess.PieceType) board.Kind {
	switch t {
	case chess.Pawn:
		return board.Pawn
	case chess.Knight:
		return board.Knight
	case chess.Bishop:
		return board.Bishop
	case chess.Rook:
		return board.Rook
	case chess.Queen:
		return board.Queen
	case chess.King:
		return board.King
	}
	return board.NoKind
}

func toChessPieceType(k board.Kind) chess.PieceType {
	switch k {
	case board.Knight:
		return chess.Knight
	case board.Bishop:
		return chess.Bishop
	case board.Rook:
		return chess.Rook
	case board.Queen:
		return chess.Queen
	}
	return chess.NoPieceType
}
