package commands

import (
	"fmt"
	"strings"

	"github.com/bonjohen/chess-metric-analyzer/internal/client/display"
)

func (r *Registry) registerUtilityCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})
	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set the API base URL",
		Usage:       "url [base-url]",
		Handler:     urlHandler,
	})
	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send a raw API request",
		Usage:       "raw <METHOD> <path> [json-body]",
		Handler:     rawHandler,
	})
}

func healthHandler(s *Session, args []string) error {
	h, err := s.Client.Health()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "%s%s%s storage=%s sessions=%d\n", display.Green, h.Status, display.Reset, h.Storage, h.Sessions)
	return nil
}

func urlHandler(s *Session, args []string) error {
	if len(args) > 0 {
		s.Client.SetBaseURL(args[0])
	}
	fmt.Fprintf(s.Out, "API: %s\n", s.Client.BaseURL)
	return nil
}

func rawHandler(s *Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <METHOD> <path> [json-body]")
	}
	return s.Client.RawRequest(strings.ToUpper(args[0]), args[1], strings.Join(args[2:], " "))
}
