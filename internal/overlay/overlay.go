// Package overlay maps sparse per-square evaluations onto the full board.
package overlay

import (
	"fmt"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
)

// MaxIntensity is the upper bound of an evaluation's intensity
const MaxIntensity = 8

type Class string

const (
	Neutral     Class = "neutral"
	Favorable   Class = "favorable"
	Unfavorable Class = "unfavorable"
)

func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case Neutral, Favorable, Unfavorable:
		return Class(s), nil
	}
	return "", fmt.Errorf("unknown evaluation class %q", s)
}

type Evaluation struct {
	Square    board.Square `json:"square"`
	Class     Class        `json:"type" validate:"oneof=favorable unfavorable neutral"`
	Intensity int          `json:"intensity" validate:"min=0,max=8"`
}

type Cell struct {
	Class     Class `json:"type"`
	Intensity int   `json:"intensity"`
}

// Overlay is a total 8x8 classification grid in grid coordinates
type Overlay [8][8]Cell

// New returns an overlay with every cell neutral at intensity 0
func New() Overlay {
	var o Overlay
	for r := range o {
		for f := range o[r] {
			o[r][f] = Cell{Class: Neutral}
		}
	}
	return o
}

// Apply builds a full overlay from a sparse list. Later entries for the same
// square win; invalid squares are skipped; intensity is clamped to
// [0, MaxIntensity]; unknown classes become neutral.
func Apply(evals []Evaluation) Overlay {
	o := New()
	for _, e := range evals {
		o.Update(e)
	}
	return o
}

// Update sets a single cell
func (o *Overlay) Update(e Evaluation) {
	if !e.Square.Valid() {
		return
	}
	class, err := ParseClass(string(e.Class))
	if err != nil {
		class = Neutral
	}
	o[e.Square.Rank()][e.Square.File()] = Cell{Class: class, Intensity: clamp(e.Intensity)}
}

func (o *Overlay) At(sq board.Square) Cell {
	if !sq.Valid() {
		return Cell{Class: Neutral}
	}
	return o[sq.Rank()][sq.File()]
}

// NonNeutral lists the cells that carry a classification, in board order
func (o *Overlay) NonNeutral() []Evaluation {
	var out []Evaluation
	for r := range o {
		for f := range o[r] {
			c := o[r][f]
			if c.Class == Neutral {
				continue
			}
			out = append(out, Evaluation{Square: board.Square(r*8 + f), Class: c.Class, Intensity: c.Intensity})
		}
	}
	return out
}

// Alpha maps a cell's intensity into the visualization band; neutral cells
// are transparent
func Alpha(c Cell, viz profile.Visualization) float64 {
	if c.Class == Neutral || c.Intensity == 0 {
		return 0
	}
	lo, hi := viz.Squares.Min, viz.Squares.Max
	return lo + (hi-lo)*float64(c.Intensity)/MaxIntensity
}

func clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > MaxIntensity {
		return MaxIntensity
	}
	return i
}

// MockEvaluations is the fixed demonstration set for the starting position
func MockEvaluations() []Evaluation {
	return []Evaluation{
		{Square: board.MustSquare("e4"), Class: Favorable, Intensity: 5},
		{Square: board.MustSquare("d4"), Class: Favorable, Intensity: 4},
		{Square: board.MustSquare("e5"), Class: Favorable, Intensity: 3},
		{Square: board.MustSquare("d5"), Class: Favorable, Intensity: 3},
		{Square: board.MustSquare("e7"), Class: Unfavorable, Intensity: 2},
		{Square: board.MustSquare("d7"), Class: Unfavorable, Intensity: 2},
	}
}
