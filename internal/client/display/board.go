package display

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/bonjohen/chess-metric-analyzer/internal/core"
)

// RenderBoard draws the oriented cells: white pieces blue, black pieces
// red, the selected square in brackets, highlighted destinations as '*'
// when empty or in green when occupied
func RenderBoard(w io.Writer, v *core.SessionView) {
	files := fileLabels(v)
	fmt.Fprintf(w, "   %s\n", colorLabels(files))
	for _, row := range v.Cells {
		rank := row[0].Square[1:]
		fmt.Fprintf(w, "%s%s%s ", Cyan, rank, Reset)
		for _, cell := range row {
			fmt.Fprint(w, renderCell(cell))
		}
		fmt.Fprintf(w, " %s%s%s\n", Cyan, rank, Reset)
	}
	fmt.Fprintf(w, "   %s\n", colorLabels(files))
}

func fileLabels(v *core.SessionView) []string {
	out := make([]string, 0, 8)
	for _, cell := range v.Cells[0] {
		out = append(out, cell.Square[:1])
	}
	return out
}

func colorLabels(files []string) string {
	return Cyan + strings.Join(files, "  ") + Reset
}

func renderCell(c core.CellView) string {
	glyph := "."
	if !c.Light {
		glyph = ":"
	}
	color := ""
	switch {
	case c.Piece != "" && strings.ToUpper(c.Piece) == c.Piece:
		glyph, color = c.Piece, Blue
	case c.Piece != "":
		glyph, color = c.Piece, Red
	case c.Highlighted:
		glyph = "*"
	}
	if c.Highlighted {
		color = Green
	}

	if color != "" {
		glyph = color + glyph + Reset
	}
	if c.Selected {
		return "[" + glyph + "]"
	}
	return " " + glyph + " "
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "white" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// RenderStatus prints the side to move and any check or game-end message
func RenderStatus(w io.Writer, v *core.SessionView) {
	fmt.Fprintf(w, "Turn: %s", ColorForTurn(v.Turn))
	if v.Status.Message != "" {
		color := Yellow
		if v.Status.Level == "success" {
			color = Green
		}
		fmt.Fprintf(w, "  %s%s%s", color, v.Status.Message, Reset)
	}
	fmt.Fprintln(w)
}

// RenderHistory prints the numbered move list
func RenderHistory(w io.Writer, v *core.SessionView) {
	if len(v.Moves) == 0 {
		fmt.Fprintln(w, "No moves yet")
		return
	}
	fmt.Fprintln(w, v.MoveList)
}

// RenderArrows lists candidate arrows strongest first
func RenderArrows(w io.Writer, arrows []core.ArrowView) {
	if len(arrows) == 0 {
		fmt.Fprintln(w, "No arrows")
		return
	}
	for _, a := range arrows {
		best := ""
		if a.Best {
			best = Green + " best" + Reset
		}
		fmt.Fprintf(w, "  %s-%s rank %d ply %d width %.2f opacity %.2f%s\n", a.From, a.To, a.Rank, a.Ply, a.StrokeWidth, a.Opacity, best)
		fmt.Fprintf(w, "    %s\n", a.Path)
	}
}

// RenderOverlay draws an 8x8 map from white's side: '+' favorable,
// '-' unfavorable, '.' neutral, followed by the intensity digit
func RenderOverlay(w io.Writer, squares []core.SquareView) {
	marks := make(map[string]core.SquareView, len(squares))
	for _, s := range squares {
		marks[s.Square] = s
	}
	for rank := 8; rank >= 1; rank-- {
		fmt.Fprintf(w, "%s%d%s ", Cyan, rank, Reset)
		for file := 'a'; file <= 'h'; file++ {
			sq := fmt.Sprintf("%c%d", file, rank)
			s, ok := marks[sq]
			switch {
			case !ok:
				fmt.Fprint(w, " . ")
			case s.Type == "favorable":
				fmt.Fprintf(w, "%s+%d%s ", Green, s.Intensity, Reset)
			default:
				fmt.Fprintf(w, "%s-%d%s ", Red, s.Intensity, Reset)
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %s a  b  c  d  e  f  g  h%s\n", Cyan, Reset)
}

// RenderMetrics prints the per-side metric panel with white-minus-black
// deltas
func RenderMetrics(w io.Writer, a core.AnalysisView) {
	state := "stopped"
	if a.Running {
		state = "running"
	}
	fmt.Fprintf(w, "Analysis: %s, depth %d/%d\n", state, a.Depth, a.MaxDepth)
	if len(a.Metrics) == 0 {
		return
	}
	names := maps.Keys(a.Deltas)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s white %6.1f  black %6.1f  %s\n", name, a.Metrics["white"][name], a.Metrics["black"][name], a.Deltas[name])
	}
}

// RenderProfile prints the active profile's weights
func RenderProfile(w io.Writer, p core.ProfileView) {
	fmt.Fprintf(w, "Profile: %s%s%s", Magenta, p.Name, Reset)
	if p.Description != "" {
		fmt.Fprintf(w, " (%s)", p.Description)
	}
	fmt.Fprintln(w)
	for _, m := range []string{"material", "mobility", "attack", "defense"} {
		fmt.Fprintf(w, "  %-9s %.2f\n", m, p.Weights[m])
	}
	if len(p.Available) > 0 {
		fmt.Fprintf(w, "  available: %s\n", strings.Join(p.Available, ", "))
	}
}
