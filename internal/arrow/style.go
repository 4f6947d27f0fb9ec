package arrow

import (
	"fmt"

	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
)

type Style struct {
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
	Class       string  `json:"class"`
}

// StyleFor picks stroke width by rank and opacity by ply
func StyleFor(a Arrow, viz profile.Visualization) (Style, error) {
	if err := a.Validate(); err != nil {
		return Style{}, err
	}

	widths := [3]float64{viz.Arrows.Thickness.First, viz.Arrows.Thickness.Second, viz.Arrows.Thickness.Third}
	opacities := [3]float64{viz.Arrows.Opacity.Ply1, viz.Arrows.Opacity.Ply2, viz.Arrows.Opacity.Ply3}

	class := fmt.Sprintf("arrow rank-%d ply-%d", a.Rank, a.Ply)
	if a.Best {
		class += " best-move"
	}

	return Style{
		StrokeWidth: widths[a.Rank-1],
		Opacity:     opacities[a.Ply-1],
		Class:       class,
	}, nil
}

// Rendered is an arrow with everything needed to draw it
type Rendered struct {
	Arrow  Arrow   `json:"arrow"`
	Points []Point `json:"points"`
	Path   string  `json:"path"`
	Style  Style   `json:"style"`
}

// Render computes geometry and style for a batch, failing on the first
// invalid arrow
func Render(arrows []Arrow, squareSize float64, viz profile.Visualization) ([]Rendered, error) {
	out := make([]Rendered, 0, len(arrows))
	for i, a := range arrows {
		pts, err := PathFor(a, squareSize)
		if err != nil {
			return nil, fmt.Errorf("arrow %d: %w", i, err)
		}
		st, err := StyleFor(a, viz)
		if err != nil {
			return nil, fmt.Errorf("arrow %d: %w", i, err)
		}
		out = append(out, Rendered{Arrow: a, Points: pts, Path: SVGPath(pts), Style: st})
	}
	return out, nil
}
