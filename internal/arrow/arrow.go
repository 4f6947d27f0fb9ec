// Package arrow computes the drawn geometry of candidate-move annotations.
package arrow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
)

// DefaultSquareSize is used when the caller has no measured square size
const DefaultSquareSize = 75.0

var ErrInvalidAnnotation = errors.New("invalid annotation")

// Arrow is a candidate move. Rank orders candidates (1 is strongest) and
// Ply is the search depth it was found at; both are in {1,2,3}.
type Arrow struct {
	From board.Square `json:"from"`
	To   board.Square `json:"to"`
	Rank int          `json:"rank" validate:"min=1,max=3"`
	Ply  int          `json:"ply" validate:"min=1,max=3"`
	Best bool         `json:"best,omitempty"`
}

func (a Arrow) Validate() error {
	if !a.From.Valid() || !a.To.Valid() {
		return fmt.Errorf("%w: square out of range", ErrInvalidAnnotation)
	}
	if a.From == a.To {
		return fmt.Errorf("%w: zero-length arrow on %s", ErrInvalidAnnotation, a.From)
	}
	if a.Rank < 1 || a.Rank > 3 {
		return fmt.Errorf("%w: rank %d not in 1..3", ErrInvalidAnnotation, a.Rank)
	}
	if a.Ply < 1 || a.Ply > 3 {
		return fmt.Errorf("%w: ply %d not in 1..3", ErrInvalidAnnotation, a.Ply)
	}
	return nil
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func center(sq board.Square, size float64) Point {
	return Point{
		X: (float64(sq.File()) + 0.5) * size,
		Y: (float64(sq.Rank()) + 0.5) * size,
	}
}

// IsKnightJump reports a (2,1) or (1,2) displacement
func IsKnightJump(from, to board.Square) bool {
	df := abs(to.File() - from.File())
	dr := abs(to.Rank() - from.Rank())
	return (df == 2 && dr == 1) || (df == 1 && dr == 2)
}

// PathFor returns the polyline of an arrow in pixel space with the origin
// at the top-left of the a8 square. Knight jumps get an elbow on the
// two-square leg; everything else is a straight segment.
func PathFor(a Arrow, squareSize float64) ([]Point, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if squareSize <= 0 {
		return nil, fmt.Errorf("%w: square size %v", ErrInvalidAnnotation, squareSize)
	}

	from := center(a.From, squareSize)
	to := center(a.To, squareSize)

	if !IsKnightJump(a.From, a.To) {
		return []Point{from, to}, nil
	}

	elbow := Point{X: from.X, Y: to.Y}
	if abs(a.To.File()-a.From.File()) == 2 {
		elbow = Point{X: to.X, Y: from.Y}
	}
	return []Point{from, elbow, to}, nil
}

// SVGPath renders points as "M x y L x y ..."
func SVGPath(points []Point) string {
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
