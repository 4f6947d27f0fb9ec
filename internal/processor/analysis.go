package processor

import (
	"context"

	"github.com/bonjohen/chess-metric-analyzer/internal/service"
)

// handleStartAnalysis restarts the depth ticker for the current position.
// When the ticker reaches the maximum depth the evaluator runs and its
// result becomes visible, provided the position has not changed since.
func (p *Processor) handleStartAnalysis(sess *service.Session) Response {
	sess.Lock()
	fen := sess.Controller.History().CurrentPosition()
	prof := sess.Profiles.Active()
	pv := sess.Profiles.PieceValues()
	sess.Result = nil
	sess.AnalysisFEN = ""
	sess.Unlock()

	onTick := func(depth int) {
		sess.Lock()
		if sess.Controller.History().CurrentPosition() != fen {
			sess.Unlock()
			return
		}
		version := sess.Bump()
		sess.Unlock()
		p.svc.Notify(sess.ID, version)
	}

	// runCtx is canceled when a move, load or stop replaces this run
	onDone := func(runCtx context.Context, completed bool) {
		if completed {
			ctx, cancel := context.WithTimeout(runCtx, evaluateTimeout)
			res, err := p.evaluator.Evaluate(ctx, fen, prof, pv)
			cancel()
			switch {
			case err != nil && runCtx.Err() != nil:
				p.log.Debugw("evaluation canceled", "session", sess.ID, "position", fen)
			case err != nil:
				p.log.Warnw("evaluation failed", "session", sess.ID, "position", fen, "error", err)
			default:
				res.Depth = p.maxDepth
			}

			sess.Lock()
			if err == nil && sess.Controller.History().CurrentPosition() == fen {
				sess.Result = res
				sess.AnalysisFEN = fen
			}
			sess.Unlock()
		}

		sess.Lock()
		version := sess.Bump()
		sess.Unlock()
		p.svc.Notify(sess.ID, version)
	}

	sess.Progress.Start(p.ctx, p.maxDepth, p.tick, onTick, onDone)
	p.log.Debugw("analysis started", "session", sess.ID, "position", fen, "profile", prof.Name)

	resp := p.viewResponse(sess)
	resp.Pending = true
	return resp
}

// handleStopAnalysis halts the ticker; the depth reached stays visible
func (p *Processor) handleStopAnalysis(sess *service.Session) Response {
	sess.Progress.Stop()
	return p.viewResponse(sess)
}
