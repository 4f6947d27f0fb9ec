// Package interaction turns square clicks into selections and moves.
//
// The controller is Idle when nothing is selected and Selected(a) when a
// square with legal destinations is chosen. From Selected(a), a click on a
// deselects, a click on a legal destination plays the move, and any other
// click is treated as a fresh selection attempt on the clicked square.
package interaction

import (
	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/game"
	"github.com/bonjohen/chess-metric-analyzer/internal/rules"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelected
)

func (p Phase) String() string {
	if p == PhaseSelected {
		return "selected"
	}
	return "idle"
}

type OutcomeKind int

const (
	// Ignored: click in Idle on a square without legal moves, or off-board
	Ignored OutcomeKind = iota
	Selected
	Deselected
	Moved
	// Reselected: failed move, clicked square became the new selection
	Reselected
	// Cleared: failed move, clicked square had no moves, back to Idle
	Cleared
)

var outcomeNames = map[OutcomeKind]string{
	Ignored:    "ignored",
	Selected:   "selected",
	Deselected: "deselected",
	Moved:      "moved",
	Reselected: "reselected",
	Cleared:    "cleared",
}

func (k OutcomeKind) String() string {
	return outcomeNames[k]
}

// Outcome reports what a click did. Move and Status are set only for Moved.
type Outcome struct {
	Kind         OutcomeKind
	Square       board.Square
	Destinations []board.Square
	Move         *game.Move
	Status       game.Status
}

type Controller struct {
	engine  rules.Engine
	grid    *board.Grid
	history *game.History
	log     *zap.SugaredLogger
}

// New creates a controller over an engine and loads the engine's current
// position into a fresh grid.
func New(engine rules.Engine, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Controller{
		engine: engine,
		grid:   board.NewGrid(),
		log:    log,
	}
	current := engine.CurrentPosition()
	c.history = game.NewHistory(current)
	if pos, err := board.Decode(current); err == nil {
		c.grid.Load(pos)
	} else {
		c.log.Warnw("engine position does not decode", "position", current, "error", err)
	}
	return c
}

// Load validates and loads a position. On failure the previous position,
// selection and history are left untouched.
func (c *Controller) Load(text string) error {
	pos, err := board.Decode(text)
	if err != nil {
		return err
	}
	if err := c.engine.LoadPosition(text); err != nil {
		return err
	}
	c.grid.Load(pos)
	c.history.Reset(board.Encode(pos))
	return nil
}

func (c *Controller) Phase() Phase {
	if _, ok := c.grid.Selected(); ok {
		return PhaseSelected
	}
	return PhaseIdle
}

func (c *Controller) Grid() *board.Grid {
	return c.grid
}

func (c *Controller) History() *game.History {
	return c.history
}

// Status classifies the current position
func (c *Controller) Status() game.Status {
	return game.StatusOf(c.engine)
}

func (c *Controller) Click(sq board.Square) Outcome {
	if !sq.Valid() {
		return Outcome{Kind: Ignored, Square: sq}
	}

	selected, ok := c.grid.Selected()
	if !ok {
		return c.trySelect(sq, Selected, Ignored)
	}

	if sq == selected {
		c.grid.ClearSelection()
		c.grid.ClearHighlights()
		return Outcome{Kind: Deselected, Square: sq}
	}

	res, err := c.engine.ApplyMove(selected, sq, board.NoKind)
	if err != nil {
		c.log.Debugw("move rejected, trying reselect", "from", selected, "to", sq, "error", err)
		return c.trySelect(sq, Reselected, Cleared)
	}

	move := game.NewMove(c.history.NextPly(), res)
	c.history.Append(move)

	pos, err := board.Decode(res.After)
	if err != nil {
		// engine output should always decode; keep the old cells but drop selection
		c.log.Errorw("position after move does not decode", "position", res.After, "error", err)
		c.grid.ClearSelection()
		c.grid.ClearHighlights()
	} else {
		c.grid.Load(pos)
	}

	return Outcome{
		Kind:   Moved,
		Square: sq,
		Move:   &move,
		Status: game.StatusOf(c.engine),
	}
}

func (c *Controller) trySelect(sq board.Square, hit, miss OutcomeKind) Outcome {
	dests := c.engine.LegalDestinations(sq)
	if len(dests) == 0 {
		c.grid.ClearSelection()
		c.grid.ClearHighlights()
		return Outcome{Kind: miss, Square: sq}
	}
	c.grid.Select(sq)
	c.grid.Highlight(dests)
	return Outcome{Kind: hit, Square: sq, Destinations: dests}
}
