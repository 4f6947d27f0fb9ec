package processor

import (
	"fmt"
	"strings"

	"github.com/bonjohen/chess-metric-analyzer/internal/arrow"
	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
	"github.com/bonjohen/chess-metric-analyzer/internal/overlay"
)

// RenderArrows computes geometry and style for caller-supplied annotations
// using the server-wide visualization settings
func (p *Processor) RenderArrows(req core.ArrowsRequest) Response {
	size := req.SquareSize
	if size == 0 {
		size = arrow.DefaultSquareSize
	}

	arrows := make([]arrow.Arrow, 0, len(req.Arrows))
	for i, a := range req.Arrows {
		from, err := board.ParseSquare(a.From)
		if err != nil {
			return p.errorResponse("invalid square", core.ErrInvalidSquare, fmt.Errorf("arrow %d: %w", i, err))
		}
		to, err := board.ParseSquare(a.To)
		if err != nil {
			return p.errorResponse("invalid square", core.ErrInvalidSquare, fmt.Errorf("arrow %d: %w", i, err))
		}
		arrows = append(arrows, arrow.Arrow{From: from, To: to, Rank: a.Rank, Ply: a.Ply, Best: a.Best})
	}

	rendered, err := arrow.Render(arrows, size, p.svc.Profiles().Visualization())
	if err != nil {
		return p.errorResponse("invalid annotation", core.ErrInvalidAnnotation, err)
	}
	return Response{Success: true, Data: core.ArrowsResponse{SquareSize: size, Arrows: arrowViews(rendered)}}
}

// RenderOverlay maps sparse evaluations onto the board. Entries with bad
// squares are skipped; later entries for a square win.
func (p *Processor) RenderOverlay(req core.OverlayRequest) Response {
	evals := make([]overlay.Evaluation, 0, len(req.Evaluations))
	for _, e := range req.Evaluations {
		sq, err := board.ParseSquare(e.Square)
		if err != nil {
			p.log.Debugw("skipping evaluation", "square", e.Square, "error", err)
			continue
		}
		evals = append(evals, overlay.Evaluation{Square: sq, Class: overlay.Class(e.Type), Intensity: e.Intensity})
	}

	o := overlay.Apply(evals)
	return Response{Success: true, Data: core.OverlayResponse{Squares: squareViews(o, p.svc.Profiles().Visualization())}}
}

// RenderBoard decodes position text for display only. A malformed rank
// is left empty and logged while the other ranks still render; the side
// to move falls back to white when its field is unreadable.
func (p *Processor) RenderBoard(req core.BoardRequest) Response {
	perspective := board.PerspectiveWhite
	if req.Perspective != "" {
		pv, err := board.ParsePerspective(req.Perspective)
		if err != nil {
			return p.errorResponse("invalid perspective", core.ErrInvalidRequest, err)
		}
		perspective = pv
	}

	fields := strings.Fields(req.FEN)
	if len(fields) == 0 {
		return p.errorResponse("invalid position", core.ErrInvalidFEN, board.ErrMalformedPosition)
	}

	resp := core.BoardResponse{FEN: req.FEN, Turn: colorName(board.White)}
	var pos board.Position
	if decoded, err := board.Decode(req.FEN); err == nil {
		pos = decoded
		resp.Complete = true
	} else {
		placement, rankErrs := board.DecodeRanks(fields[0])
		pos.Placement = placement
		for r, rankErr := range rankErrs {
			if rankErr == nil {
				continue
			}
			p.log.Warnw("rank not rendered", "rank", 8-r, "error", rankErr)
			resp.BadRanks = append(resp.BadRanks, 8-r)
			resp.Errors = append(resp.Errors, rankErr.Error())
		}
		if len(resp.BadRanks) == 0 {
			p.log.Warnw("position text malformed outside the placement", "fen", req.FEN, "error", err)
			resp.Errors = append(resp.Errors, err.Error())
		}
		if len(fields) > 1 && fields[1] == "b" {
			pos.Turn = board.Black
		}
	}
	resp.Turn = colorName(pos.Turn)

	grid := board.NewGrid()
	grid.Load(pos)
	for r, row := range grid.Oriented(perspective) {
		for f, c := range row {
			cv := core.CellView{Square: c.Square.String(), Light: c.Light}
			if !c.Piece.Empty() {
				cv.Piece = c.Piece.String()
			}
			resp.Cells[r][f] = cv
		}
	}
	return Response{Success: true, Data: resp}
}

// ListProfiles reports the server-wide profile set
func (p *Processor) ListProfiles() Response {
	model := p.svc.Profiles()
	resp := core.ProfilesResponse{Active: model.Active().Name}
	for _, pr := range model.Profiles() {
		resp.Profiles = append(resp.Profiles, profileView(pr))
	}
	return Response{Success: true, Data: resp}
}
