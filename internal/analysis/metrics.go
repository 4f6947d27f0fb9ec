package analysis

import (
	"fmt"
	"math/bits"

	"github.com/dylhunn/dragontoothmg"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
	"github.com/bonjohen/chess-metric-analyzer/internal/rules"
)

// Side holds one colour's raw metric values
type Side struct {
	Material float64 `json:"material"`
	Mobility float64 `json:"mobility"`
	Attack   float64 `json:"attack"`
	Defense  float64 `json:"defense"`
}

func (s Side) Get(m profile.Metric) float64 {
	switch m {
	case profile.Material:
		return s.Material
	case profile.Mobility:
		return s.Mobility
	case profile.Attack:
		return s.Attack
	case profile.Defense:
		return s.Defense
	}
	return 0
}

type Metrics struct {
	White Side `json:"white"`
	Black Side `json:"black"`
}

var metricOrder = []profile.Metric{profile.Material, profile.Mobility, profile.Attack, profile.Defense}

// Delta is white minus black for one metric
func (m Metrics) Delta(metric profile.Metric) float64 {
	return m.White.Get(metric) - m.Black.Get(metric)
}

// Deltas formats each white-minus-black difference with an explicit sign
// and one decimal, e.g. "+2.0", "-0.5", "+0.0"
func (m Metrics) Deltas() map[profile.Metric]string {
	out := make(map[profile.Metric]string, len(metricOrder))
	for _, metric := range metricOrder {
		out[metric] = fmt.Sprintf("%+.1f", m.Delta(metric))
	}
	return out
}

// CountMetrics computes material (PV) from piece values and mobility (MS)
// as legal move counts, for both sides. Attack and defense stay zero.
func CountMetrics(fen string, pv profile.PieceValues) (Metrics, error) {
	pos, err := board.Decode(fen)
	if err != nil {
		return Metrics{}, err
	}
	if err := rules.CheckKings(pos); err != nil {
		return Metrics{}, err
	}

	b := dragontoothmg.ParseFen(board.Encode(pos))

	var m Metrics
	m.White.Material = material(&b.White, pv)
	m.Black.Material = material(&b.Black, pv)

	moving := float64(len(b.GenerateLegalMoves()))

	// the waiting side's mobility is counted as if it were to move
	flipped := pos
	flipped.Turn = pos.Turn.Opponent()
	flipped.EnPassant = board.NoSquare
	fb := dragontoothmg.ParseFen(board.Encode(flipped))
	waiting := float64(len(fb.GenerateLegalMoves()))

	if pos.Turn == board.White {
		m.White.Mobility, m.Black.Mobility = moving, waiting
	} else {
		m.White.Mobility, m.Black.Mobility = waiting, moving
	}
	return m, nil
}

func material(bb *dragontoothmg.Bitboards, pv profile.PieceValues) float64 {
	return float64(bits.OnesCount64(bb.Pawns))*pv.Pawn +
		float64(bits.OnesCount64(bb.Knights))*pv.Knight +
		float64(bits.OnesCount64(bb.Bishops))*pv.Bishop +
		float64(bits.OnesCount64(bb.Rooks))*pv.Rook +
		float64(bits.OnesCount64(bb.Queens))*pv.Queen
}
