// Package main implements an interactive client for the visualization API
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/bonjohen/chess-metric-analyzer/internal/client/api"
	"github.com/bonjohen/chess-metric-analyzer/internal/client/commands"
	"github.com/bonjohen/chess-metric-analyzer/internal/client/display"
)

func main() {
	baseURL := flag.String("api", "http://localhost:8080", "API base URL")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		display.DisableColor()
	}

	s := &commands.Session{
		Client: api.New(*baseURL),
		Out:    os.Stdout,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("viz"),
		HistoryFile:     ".viz_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Metric Visualization Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.Client.BaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		if err := registry.Execute(line); errors.Is(err, commands.ErrExit) {
			break
		}
	}
}

func buildPrompt(s *commands.Session) string {
	prompt := "viz"
	if s.SessionID != "" {
		prompt += display.Yellow + " [" + display.Reset + display.White + s.SessionID[:8] + display.Reset + display.Yellow + "]"
	}
	if s.View != nil {
		prompt += " - Turn:" + display.ColorForTurn(s.View.Turn)
		if s.View.Analysis.Running {
			prompt += display.Cyan + " (analyzing)" + display.Reset
		}
	}
	return display.Prompt(prompt)
}
