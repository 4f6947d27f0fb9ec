package profile

import (
	"fmt"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
)

// PieceValues are material values per piece kind. King is always 0.
type PieceValues struct {
	Pawn   float64 `json:"pawn" mapstructure:"pawn" validate:"gte=0"`
	Knight float64 `json:"knight" mapstructure:"knight" validate:"gte=0"`
	Bishop float64 `json:"bishop" mapstructure:"bishop" validate:"gte=0"`
	Rook   float64 `json:"rook" mapstructure:"rook" validate:"gte=0"`
	Queen  float64 `json:"queen" mapstructure:"queen" validate:"gte=0"`
	King   float64 `json:"king" mapstructure:"king"`
}

func DefaultPieceValues() PieceValues {
	return PieceValues{Pawn: 1, Knight: 3, Bishop: 3, Rook: 5, Queen: 9}
}

func (pv PieceValues) Validate() error {
	return validate.Struct(pv)
}

func (pv PieceValues) Of(k board.Kind) float64 {
	switch k {
	case board.Pawn:
		return pv.Pawn
	case board.Knight:
		return pv.Knight
	case board.Bishop:
		return pv.Bishop
	case board.Rook:
		return pv.Rook
	case board.Queen:
		return pv.Queen
	}
	return 0
}

// SetPieceValue changes one piece value
func (m *Model) SetPieceValue(k board.Kind, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch k {
	case board.Pawn:
		m.pieceValues.Pawn = value
	case board.Knight:
		m.pieceValues.Knight = value
	case board.Bishop:
		m.pieceValues.Bishop = value
	case board.Rook:
		m.pieceValues.Rook = value
	case board.Queen:
		m.pieceValues.Queen = value
	case board.King:
		return ErrKingValue
	default:
		return fmt.Errorf("unknown piece kind %d", k)
	}
	return nil
}
