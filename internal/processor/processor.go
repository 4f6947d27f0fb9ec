package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/internal/analysis"
	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
	"github.com/bonjohen/chess-metric-analyzer/internal/interaction"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
	"github.com/bonjohen/chess-metric-analyzer/internal/service"
)

const (
	DefaultMaxDepth = 7
	DefaultTick     = 500 * time.Millisecond

	evaluateTimeout = 30 * time.Second
)

// Config tunes the analysis run; zero values take the defaults
type Config struct {
	Evaluator analysis.Evaluator
	MaxDepth  int
	Tick      time.Duration
	Log       *zap.SugaredLogger
}

// Processor applies events to sessions and builds the resulting views
type Processor struct {
	svc       *service.Service
	evaluator analysis.Evaluator
	maxDepth  int
	tick      time.Duration
	log       *zap.SugaredLogger

	// parent of every analysis run; cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc
}

func New(svc *service.Service, cfg Config) *Processor {
	if cfg.Evaluator == nil {
		cfg.Evaluator = analysis.Demo{}
	}
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		svc:       svc,
		evaluator: cfg.Evaluator,
		maxDepth:  cfg.MaxDepth,
		tick:      cfg.Tick,
		log:       cfg.Log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close cancels every analysis run started by this processor
func (p *Processor) Close() {
	p.cancel()
}

// Dispatch applies one event to a session. sessionID is ignored for
// CreateSession.
func (p *Processor) Dispatch(ctx context.Context, sessionID string, ev Event) Response {
	if e, ok := ev.(CreateSession); ok {
		return p.handleCreateSession(ctx, e)
	}
	if _, ok := ev.(DeleteSession); ok {
		if err := p.svc.DeleteSession(sessionID); err != nil {
			return p.errorResponse("session not found", core.ErrSessionNotFound, err)
		}
		return Response{Success: true}
	}

	sess, err := p.svc.GetSession(sessionID)
	if err != nil {
		return p.errorResponse("session not found", core.ErrSessionNotFound, err)
	}

	switch e := ev.(type) {
	case ClickSquare:
		return p.handleClick(ctx, sess, e)
	case LoadPosition:
		return p.handleLoadPosition(ctx, sess, e)
	case SetPerspective:
		return p.handleSetPerspective(ctx, sess, e)
	case SelectProfile:
		return p.handleSelectProfile(ctx, sess, e)
	case SaveProfile:
		return p.handleSaveProfile(ctx, sess, e)
	case SetWeight:
		return p.handleSetWeight(sess, e)
	case SetPieceValue:
		return p.handleSetPieceValue(sess, e)
	case StartAnalysis:
		return p.handleStartAnalysis(sess)
	case StopAnalysis:
		return p.handleStopAnalysis(sess)
	case GetView:
		return p.viewResponse(sess)
	default:
		return p.errorResponse("unknown event", core.ErrInvalidRequest, nil)
	}
}

func (p *Processor) handleCreateSession(ctx context.Context, e CreateSession) Response {
	opts := service.SessionOptions{FEN: e.FEN, Profile: e.Profile}
	if e.Perspective != "" {
		persp, err := board.ParsePerspective(e.Perspective)
		if err != nil {
			return p.errorResponse("invalid perspective", core.ErrInvalidRequest, err)
		}
		opts.Perspective = persp
	}

	sess, err := p.svc.CreateSession(ctx, opts)
	switch {
	case errors.Is(err, board.ErrMalformedPosition):
		return p.errorResponse("invalid position", core.ErrInvalidFEN, err)
	case errors.Is(err, service.ErrSessionLimit):
		return p.errorResponse("too many sessions", core.ErrResourceLimit, err)
	case err != nil:
		return p.errorResponse("failed to create session", core.ErrInternalError, err)
	}
	return p.viewResponse(sess)
}

func (p *Processor) handleClick(ctx context.Context, sess *service.Session, e ClickSquare) Response {
	sq, err := board.ParseSquare(e.Square)
	if err != nil {
		return p.errorResponse("invalid square", core.ErrInvalidSquare, err)
	}

	sess.Lock()
	out := sess.Controller.Click(sq)
	version := sess.Version
	if out.Kind != interaction.Ignored {
		version = sess.Bump()
	}
	segment := sess.Segment
	st := sess.UIState()
	sess.Unlock()

	if out.Kind == interaction.Moved {
		p.log.Debugw("move played", "session", sess.ID, "san", out.Move.SAN, "status", out.Status.Name)
		// the running analysis describes the previous position
		sess.Progress.Stop()
		p.svc.RecordMove(sess.ID, segment, *out.Move)
		p.svc.PersistState(ctx, st)
	}
	p.svc.Notify(sess.ID, version)

	resp := core.ClickResponse{
		Outcome:      out.Kind.String(),
		Square:       out.Square.String(),
		Destinations: squareNames(out.Destinations),
	}
	if out.Move != nil {
		resp.Move = &core.MoveView{
			Ply:    out.Move.Ply,
			SAN:    out.Move.SAN,
			UCI:    out.Move.UCI,
			Before: out.Move.Before,
			After:  out.Move.After,
		}
	}

	sess.Lock()
	resp.View = p.buildView(sess)
	sess.Unlock()

	return Response{Success: true, Data: resp}
}

func (p *Processor) handleLoadPosition(ctx context.Context, sess *service.Session, e LoadPosition) Response {
	sess.Lock()
	if err := sess.Controller.Load(e.FEN); err != nil {
		sess.Unlock()
		return p.errorResponse("invalid position", core.ErrInvalidFEN, err)
	}
	sess.Segment++
	version := sess.Bump()
	st := sess.UIState()
	sess.Unlock()

	sess.Progress.Stop()
	p.svc.PersistState(ctx, st)
	p.svc.Notify(sess.ID, version)
	return p.viewResponse(sess)
}

func (p *Processor) handleSetPerspective(ctx context.Context, sess *service.Session, e SetPerspective) Response {
	persp, err := board.ParsePerspective(e.Perspective)
	if err != nil {
		return p.errorResponse("invalid perspective", core.ErrInvalidRequest, err)
	}
	p.mutate(ctx, sess, true, func() {
		sess.Perspective = persp
	})
	return p.viewResponse(sess)
}

func (p *Processor) handleSelectProfile(ctx context.Context, sess *service.Session, e SelectProfile) Response {
	p.mutate(ctx, sess, true, func() {
		sess.Profiles.SwitchProfile(e.Name)
	})
	return p.viewResponse(sess)
}

func (p *Processor) handleSaveProfile(ctx context.Context, sess *service.Session, e SaveProfile) Response {
	name := strings.TrimSpace(e.Name)
	if err := profile.ValidateName(name); err != nil {
		return p.errorResponse("invalid profile name", core.ErrInvalidProfile, err)
	}
	var err error
	p.mutate(ctx, sess, true, func() {
		err = sess.Profiles.SaveProfile(name)
	})
	if err != nil {
		return p.errorResponse("failed to save profile", core.ErrInvalidProfile, err)
	}
	return p.viewResponse(sess)
}

func (p *Processor) handleSetWeight(sess *service.Session, e SetWeight) Response {
	metric, err := profile.ParseMetric(e.Metric)
	if err != nil {
		return p.errorResponse("unknown metric", core.ErrInvalidProfile, err)
	}
	p.mutate(context.Background(), sess, false, func() {
		err = sess.Profiles.SetWeight(metric, e.Value)
	})
	if err != nil {
		return p.errorResponse("failed to set weight", core.ErrInvalidProfile, err)
	}
	return p.viewResponse(sess)
}

func (p *Processor) handleSetPieceValue(sess *service.Session, e SetPieceValue) Response {
	kind, ok := board.ParseKind(e.Piece)
	if !ok {
		return p.errorResponse("unknown piece", core.ErrInvalidRequest, fmt.Errorf("piece %q", e.Piece))
	}
	if kind == board.King {
		return p.errorResponse("king value is fixed", core.ErrInvalidProfile, profile.ErrKingValue)
	}
	var err error
	p.mutate(context.Background(), sess, false, func() {
		err = sess.Profiles.SetPieceValue(kind, e.Value)
	})
	if err != nil {
		return p.errorResponse("failed to set piece value", core.ErrInvalidProfile, err)
	}
	return p.viewResponse(sess)
}

// mutate runs fn under the session lock, bumps the version, optionally
// persists the settings and wakes waiting clients
func (p *Processor) mutate(ctx context.Context, sess *service.Session, persist bool, fn func()) {
	sess.Lock()
	fn()
	version := sess.Bump()
	st := sess.UIState()
	sess.Unlock()

	if persist {
		p.svc.PersistState(ctx, st)
	}
	p.svc.Notify(sess.ID, version)
}

func (p *Processor) viewResponse(sess *service.Session) Response {
	sess.Lock()
	view := p.buildView(sess)
	sess.Unlock()
	return Response{Success: true, Pending: view.Analysis.Running, Data: view}
}

func (p *Processor) errorResponse(msg, code string, err error) Response {
	resp := &core.ErrorResponse{Error: msg, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	return Response{Success: false, Error: resp}
}

func squareNames(squares []board.Square) []string {
	if len(squares) == 0 {
		return nil
	}
	out := make([]string, len(squares))
	for i, sq := range squares {
		out[i] = sq.String()
	}
	return out
}
