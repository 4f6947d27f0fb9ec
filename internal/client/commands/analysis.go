package commands

import (
	"fmt"
	"strings"

	"github.com/bonjohen/chess-metric-analyzer/internal/arrow"
	"github.com/bonjohen/chess-metric-analyzer/internal/client/display"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
	"github.com/bonjohen/chess-metric-analyzer/internal/overlay"
)

func (r *Registry) registerAnalysisCommands() {
	r.Register(&Command{
		Name:        "analyze",
		ShortName:   "a",
		Description: "Start analysis of the current position",
		Usage:       "analyze",
		Handler:     analyzeHandler,
	})
	r.Register(&Command{
		Name:        "stop",
		ShortName:   "t",
		Description: "Stop a running analysis",
		Usage:       "stop",
		Handler:     stopHandler,
	})
	r.Register(&Command{
		Name:        "wait",
		ShortName:   "y",
		Description: "Long-poll until the session changes",
		Usage:       "wait",
		Handler:     waitHandler,
	})
	r.Register(&Command{
		Name:        "metrics",
		ShortName:   "m",
		Description: "Show analysis depth and metrics",
		Usage:       "metrics",
		Handler:     metricsHandler,
	})
	r.Register(&Command{
		Name:        "arrows",
		ShortName:   "r",
		Description: "Show analysis arrows, or the demo set with 'demo'",
		Usage:       "arrows [demo]",
		Handler:     arrowsHandler,
	})
	r.Register(&Command{
		Name:        "overlay",
		ShortName:   "o",
		Description: "Show the square overlay, or the demo set with 'demo'",
		Usage:       "overlay [demo]",
		Handler:     overlayHandler,
	})
}

func analyzeHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	v, err := s.Client.StartAnalysis(s.SessionID)
	if err != nil {
		return err
	}
	s.View = v
	fmt.Fprintf(s.Out, "%sAnalysis started, use 'wait' or 'metrics' to follow%s\n", display.Cyan, display.Reset)
	return nil
}

func stopHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	v, err := s.Client.StopAnalysis(s.SessionID)
	if err != nil {
		return err
	}
	s.View = v
	display.RenderMetrics(s.Out, v.Analysis)
	return nil
}

func waitHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	version := -1
	if s.View != nil {
		version = s.View.Version
	}
	v, err := s.Client.PollSession(s.SessionID, version)
	if err != nil {
		return err
	}
	if v.Version == version {
		fmt.Fprintln(s.Out, "No change")
	}
	s.View = v
	display.RenderMetrics(s.Out, v.Analysis)
	return nil
}

func metricsHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	v, err := s.Client.GetSession(s.SessionID)
	if err != nil {
		return err
	}
	s.View = v
	display.RenderMetrics(s.Out, v.Analysis)
	return nil
}

func wantsDemo(args []string) bool {
	return len(args) > 0 && strings.EqualFold(args[0], "demo")
}

func arrowsHandler(s *Session, args []string) error {
	if wantsDemo(args) {
		req := core.ArrowsRequest{}
		for _, a := range arrow.MockArrows() {
			req.Arrows = append(req.Arrows, core.ArrowRequest{
				From: a.From.String(), To: a.To.String(), Rank: a.Rank, Ply: a.Ply, Best: a.Best,
			})
		}
		resp, err := s.Client.RenderArrows(req)
		if err != nil {
			return err
		}
		display.RenderArrows(s.Out, resp.Arrows)
		return nil
	}

	if err := s.requireSession(); err != nil {
		return err
	}
	v, err := s.Client.GetSession(s.SessionID)
	if err != nil {
		return err
	}
	s.View = v
	display.RenderArrows(s.Out, v.Analysis.Arrows)
	return nil
}

func overlayHandler(s *Session, args []string) error {
	if wantsDemo(args) {
		req := core.OverlayRequest{}
		for _, e := range overlay.MockEvaluations() {
			req.Evaluations = append(req.Evaluations, core.EvaluationRequest{
				Square: e.Square.String(), Type: string(e.Class), Intensity: e.Intensity,
			})
		}
		resp, err := s.Client.RenderOverlay(req)
		if err != nil {
			return err
		}
		display.RenderOverlay(s.Out, resp.Squares)
		return nil
	}

	if err := s.requireSession(); err != nil {
		return err
	}
	v, err := s.Client.GetSession(s.SessionID)
	if err != nil {
		return err
	}
	s.View = v
	display.RenderOverlay(s.Out, v.Analysis.Squares)
	return nil
}
