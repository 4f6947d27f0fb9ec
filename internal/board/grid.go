package board

import "fmt"

type Perspective string

const (
	PerspectiveWhite Perspective = "white"
	PerspectiveBlack Perspective = "black"
)

// ParsePerspective accepts "white"/"w" and "black"/"b"
func ParsePerspective(s string) (Perspective, error) {
	switch s {
	case "white", "w":
		return PerspectiveWhite, nil
	case "black", "b":
		return PerspectiveBlack, nil
	}
	return "", fmt.Errorf("invalid perspective %q", s)
}

func orientedRanks(p Perspective) []int {
	out := make([]int, 8)
	for i := range out {
		if p == PerspectiveBlack {
			out[i] = 7 - i
		} else {
			out[i] = i
		}
	}
	return out
}

func orientedFiles(p Perspective) []int {
	return orientedRanks(p)
}

// Cell is one rendered square of the grid view
type Cell struct {
	Square      Square
	Piece       Piece
	Light       bool
	Selected    bool
	Highlighted bool
}

// Grid holds the per-session board view: the loaded position, at most one
// selected square and the highlighted destinations. It performs no legality
// checks.
type Grid struct {
	position    Position
	selected    Square
	highlighted []Square
}

func NewGrid() *Grid {
	return &Grid{position: Position{EnPassant: NoSquare, FullMove: 1}, selected: NoSquare}
}

// Load replaces the position and clears selection and highlights
func (g *Grid) Load(p Position) {
	g.position = p
	g.selected = NoSquare
	g.highlighted = nil
}

func (g *Grid) Position() Position {
	return g.position
}

func (g *Grid) Select(sq Square) {
	if !sq.Valid() {
		g.selected = NoSquare
		return
	}
	g.selected = sq
}

// Selected returns the selected square and whether one is set
func (g *Grid) Selected() (Square, bool) {
	return g.selected, g.selected != NoSquare
}

// Highlight replaces the highlighted set
func (g *Grid) Highlight(squares []Square) {
	g.highlighted = make([]Square, 0, len(squares))
	for _, sq := range squares {
		if sq.Valid() && !g.IsHighlighted(sq) {
			g.highlighted = append(g.highlighted, sq)
		}
	}
}

func (g *Grid) Highlighted() []Square {
	out := make([]Square, len(g.highlighted))
	copy(out, g.highlighted)
	return out
}

func (g *Grid) IsHighlighted(sq Square) bool {
	for _, h := range g.highlighted {
		if h == sq {
			return true
		}
	}
	return false
}

func (g *Grid) ClearSelection() {
	g.selected = NoSquare
}

func (g *Grid) ClearHighlights() {
	g.highlighted = nil
}

// Cells returns the 8x8 view in grid order
func (g *Grid) Cells() [8][8]Cell {
	return g.Oriented(PerspectiveWhite)
}

// Oriented returns the 8x8 view as seen from one side; for black both
// axes are reversed so h1 sits top-left.
func (g *Grid) Oriented(perspective Perspective) [8][8]Cell {
	var out [8][8]Cell
	for i, r := range orientedRanks(perspective) {
		for j, f := range orientedFiles(perspective) {
			sq := Square(r*8 + f)
			out[i][j] = Cell{
				Square:      sq,
				Piece:       g.position.Placement[r][f],
				Light:       sq.IsLight(),
				Selected:    sq == g.selected,
				Highlighted: g.IsHighlighted(sq),
			}
		}
	}
	return out
}
