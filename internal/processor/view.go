package processor

import (
	"github.com/bonjohen/chess-metric-analyzer/internal/analysis"
	"github.com/bonjohen/chess-metric-analyzer/internal/arrow"
	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
	"github.com/bonjohen/chess-metric-analyzer/internal/overlay"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
	"github.com/bonjohen/chess-metric-analyzer/internal/service"
)

var metricOrder = []profile.Metric{profile.Material, profile.Mobility, profile.Attack, profile.Defense}

// buildView snapshots a session. Caller holds the session lock.
func (p *Processor) buildView(sess *service.Session) core.SessionView {
	ctrl := sess.Controller
	grid := ctrl.Grid()
	pos := grid.Position()
	history := ctrl.History()
	fen := history.CurrentPosition()

	view := core.SessionView{
		SessionID:   sess.ID,
		FEN:         fen,
		Board:       pos.ToASCII(sess.Perspective),
		Perspective: string(sess.Perspective),
		Turn:        colorName(pos.Turn),
		Phase:       ctrl.Phase().String(),
		Highlights:  squareNames(grid.Highlighted()),
		Moves:       history.SAN(),
		Version:     sess.Version,
	}
	if view.Highlights == nil {
		view.Highlights = []string{}
	}
	if sq, ok := grid.Selected(); ok {
		view.Selected = sq.String()
	}

	for r, row := range grid.Oriented(sess.Perspective) {
		for f, c := range row {
			cv := core.CellView{
				Square:      c.Square.String(),
				Light:       c.Light,
				Selected:    c.Selected,
				Highlighted: c.Highlighted,
			}
			if !c.Piece.Empty() {
				cv.Piece = c.Piece.String()
			}
			view.Cells[r][f] = cv
		}
	}

	if initial, err := board.Decode(history.InitialPosition()); err == nil {
		view.MoveList = history.Numbered(initial.Turn == board.Black, initial.FullMove)
	}

	status := ctrl.Status()
	view.Status = core.StatusView{State: status.Name, Message: status.Message, Level: string(status.Level)}

	view.Profile = profileView(sess.Profiles.Active())
	view.Profile.Available = sess.Profiles.Names()

	pv := sess.Profiles.PieceValues()
	view.PieceValues = core.PieceValuesView{
		Pawn: pv.Pawn, Knight: pv.Knight, Bishop: pv.Bishop,
		Rook: pv.Rook, Queen: pv.Queen, King: pv.King,
	}

	view.Analysis = core.AnalysisView{
		Running:  sess.Progress.Running(),
		Depth:    sess.Progress.Depth(),
		MaxDepth: p.maxDepth,
	}
	if sess.Result != nil && sess.AnalysisFEN == fen {
		p.fillAnalysis(&view.Analysis, sess.Result, sess.Profiles.Visualization())
	}

	return view
}

func (p *Processor) fillAnalysis(av *core.AnalysisView, res *analysis.Result, viz profile.Visualization) {
	if rendered, err := arrow.Render(res.Arrows, arrow.DefaultSquareSize, viz); err != nil {
		p.log.Warnw("dropping analysis arrows", "error", err)
	} else {
		av.Arrows = arrowViews(rendered)
	}
	av.Squares = squareViews(overlay.Apply(res.Evaluations), viz)

	av.Metrics = map[string]map[string]float64{
		"white": sideMap(res.Metrics.White),
		"black": sideMap(res.Metrics.Black),
	}
	av.Deltas = make(map[string]string, len(metricOrder))
	for m, d := range res.Metrics.Deltas() {
		av.Deltas[string(m)] = d
	}
}

func sideMap(s analysis.Side) map[string]float64 {
	out := make(map[string]float64, len(metricOrder))
	for _, m := range metricOrder {
		out[string(m)] = s.Get(m)
	}
	return out
}

func profileView(pr profile.Profile) core.ProfileView {
	weights := make(map[string]float64, len(metricOrder))
	for _, m := range metricOrder {
		weights[string(m)] = pr.Weights.Get(m)
	}
	return core.ProfileView{Name: pr.Name, Description: pr.Description, Weights: weights}
}

func arrowViews(rendered []arrow.Rendered) []core.ArrowView {
	out := make([]core.ArrowView, 0, len(rendered))
	for _, r := range rendered {
		out = append(out, core.ArrowView{
			From:        r.Arrow.From.String(),
			To:          r.Arrow.To.String(),
			Rank:        r.Arrow.Rank,
			Ply:         r.Arrow.Ply,
			Best:        r.Arrow.Best,
			Path:        r.Path,
			Class:       r.Style.Class,
			StrokeWidth: r.Style.StrokeWidth,
			Opacity:     r.Style.Opacity,
		})
	}
	return out
}

func squareViews(o overlay.Overlay, viz profile.Visualization) []core.SquareView {
	cells := o.NonNeutral()
	out := make([]core.SquareView, 0, len(cells))
	for _, e := range cells {
		out = append(out, core.SquareView{
			Square:    e.Square.String(),
			Type:      string(e.Class),
			Intensity: e.Intensity,
			Alpha:     overlay.Alpha(o.At(e.Square), viz),
		})
	}
	return out
}

func colorName(c board.Color) string {
	if c == board.Black {
		return "black"
	}
	return "white"
}
