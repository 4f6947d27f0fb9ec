package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bonjohen/chess-metric-analyzer/internal/client/display"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
)

func (r *Registry) registerBoardCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a session, optionally from a FEN",
		Usage:       "new [fen]",
		Handler:     newSessionHandler,
	})
	r.Register(&Command{
		Name:        "load",
		ShortName:   "l",
		Description: "Load a FEN position",
		Usage:       "load <fen>",
		Handler:     loadHandler,
	})
	r.Register(&Command{
		Name:        "preview",
		ShortName:   "b",
		Description: "Render a FEN without loading it, showing what decodes",
		Usage:       "preview <fen>",
		Handler:     previewHandler,
	})
	r.Register(&Command{
		Name:        "click",
		ShortName:   "c",
		Description: "Click a square (select, deselect or move)",
		Usage:       "click <square> [square...]",
		Handler:     clickHandler,
	})
	r.Register(&Command{
		Name:        "show",
		ShortName:   "s",
		Description: "Show board and status",
		Usage:       "show",
		Handler:     showHandler,
	})
	r.Register(&Command{
		Name:        "flip",
		ShortName:   "f",
		Description: "Set or toggle the board perspective",
		Usage:       "flip [white|black]",
		Handler:     flipHandler,
	})
	r.Register(&Command{
		Name:        "history",
		ShortName:   "h",
		Description: "Show the move list",
		Usage:       "history",
		Handler:     historyHandler,
	})
	r.Register(&Command{
		Name:        "profile",
		ShortName:   "p",
		Description: "Show, switch or save profiles",
		Usage:       "profile [name] [save]",
		Handler:     profileHandler,
	})
	r.Register(&Command{
		Name:        "weight",
		ShortName:   "w",
		Description: "Set a metric weight on the active profile",
		Usage:       "weight <material|mobility|attack|defense|PV|MS|AT|DF> <value>",
		Handler:     weightHandler,
	})
	r.Register(&Command{
		Name:        "piece",
		ShortName:   "v",
		Description: "Set a piece value",
		Usage:       "piece <p|n|b|r|q> <value>",
		Handler:     pieceHandler,
	})
	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete the current session",
		Usage:       "delete",
		Handler:     deleteHandler,
	})
}

func (s *Session) show(v *core.SessionView) {
	s.View = v
	fmt.Fprintln(s.Out)
	display.RenderBoard(s.Out, v)
	display.RenderStatus(s.Out, v)
}

func newSessionHandler(s *Session, args []string) error {
	req := core.CreateSessionRequest{FEN: strings.Join(args, " ")}
	v, err := s.Client.CreateSession(req)
	if err != nil {
		return err
	}
	s.SessionID = v.SessionID
	fmt.Fprintf(s.Out, "%sSession %s%s\n", display.Green, v.SessionID, display.Reset)
	s.show(v)
	return nil
}

func loadHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: load <fen>")
	}
	v, err := s.Client.LoadPosition(s.SessionID, strings.Join(args, " "))
	if err != nil {
		return err
	}
	s.show(v)
	return nil
}

func previewHandler(s *Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: preview <fen>")
	}
	req := core.BoardRequest{FEN: strings.Join(args, " ")}
	if s.View != nil {
		req.Perspective = s.View.Perspective
	}
	resp, err := s.Client.RenderBoard(req)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.Out)
	display.RenderBoard(s.Out, &core.SessionView{Cells: resp.Cells, Turn: resp.Turn, Perspective: req.Perspective})
	if resp.Complete {
		fmt.Fprintf(s.Out, "Turn: %s\n", display.ColorForTurn(resp.Turn))
		return nil
	}
	for _, msg := range resp.Errors {
		fmt.Fprintf(s.Out, "%s%s%s\n", display.Yellow, msg, display.Reset)
	}
	return nil
}

func clickHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: click <square>")
	}

	var last *core.ClickResponse
	for _, sq := range args {
		resp, err := s.Client.Click(s.SessionID, strings.ToLower(sq))
		if err != nil {
			return err
		}
		last = resp
		line := fmt.Sprintf("%s: %s", resp.Square, resp.Outcome)
		if len(resp.Destinations) > 0 {
			line += " -> " + strings.Join(resp.Destinations, " ")
		}
		if resp.Move != nil {
			line += " " + display.Green + resp.Move.SAN + display.Reset
		}
		fmt.Fprintln(s.Out, line)
	}
	s.show(&last.View)
	return nil
}

func showHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	v, err := s.Client.GetSession(s.SessionID)
	if err != nil {
		return err
	}
	s.show(v)
	fmt.Fprintf(s.Out, "FEN: %s\n", v.FEN)
	return nil
}

func flipHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	target := "black"
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	} else if s.View != nil && s.View.Perspective == "black" {
		target = "white"
	}
	v, err := s.Client.SetPerspective(s.SessionID, target)
	if err != nil {
		return err
	}
	s.show(v)
	return nil
}

// historyHandler prints the move list of the last fetched view; it only
// asks the server when nothing has been fetched yet
func historyHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if s.View == nil || s.View.SessionID != s.SessionID {
		v, err := s.Client.GetSession(s.SessionID)
		if err != nil {
			return err
		}
		s.View = v
	}
	display.RenderHistory(s.Out, s.View)
	return nil
}

func profileHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	var (
		v   *core.SessionView
		err error
	)
	switch {
	case len(args) == 0:
		v, err = s.Client.GetSession(s.SessionID)
	case len(args) > 1 && args[len(args)-1] == "save":
		v, err = s.Client.SetProfile(s.SessionID, strings.Join(args[:len(args)-1], " "), true)
	default:
		v, err = s.Client.SetProfile(s.SessionID, strings.Join(args, " "), false)
	}
	if err != nil {
		return err
	}
	s.View = v
	display.RenderProfile(s.Out, v.Profile)
	return nil
}

func weightHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: weight <metric> <value>")
	}
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q", args[1])
	}
	v, err := s.Client.SetWeight(s.SessionID, args[0], value)
	if err != nil {
		return err
	}
	s.View = v
	display.RenderProfile(s.Out, v.Profile)
	return nil
}

func pieceHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: piece <p|n|b|r|q> <value>")
	}
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q", args[1])
	}
	v, err := s.Client.SetPieceValue(s.SessionID, args[0], value)
	if err != nil {
		return err
	}
	s.View = v
	pv := v.PieceValues
	fmt.Fprintf(s.Out, "P %.1f  N %.1f  B %.1f  R %.1f  Q %.1f  K %.1f\n", pv.Pawn, pv.Knight, pv.Bishop, pv.Rook, pv.Queen, pv.King)
	return nil
}

func deleteHandler(s *Session, args []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if err := s.Client.DeleteSession(s.SessionID); err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "%sSession %s deleted%s\n", display.Green, s.SessionID, display.Reset)
	s.SessionID = ""
	s.View = nil
	return nil
}
