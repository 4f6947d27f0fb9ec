package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bonjohen/chess-metric-analyzer/internal/client/api"
	"github.com/bonjohen/chess-metric-analyzer/internal/client/display"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
)

// ErrExit is returned by the exit command; the read loop stops on it
var ErrExit = errors.New("exit requested")

// Session is the client-side state shared by all commands
type Session struct {
	Client    *api.Client
	SessionID string
	View      *core.SessionView
	Verbose   bool
	Out       io.Writer
}

// requireSession fails when no server session is attached
func (s *Session) requireSession() error {
	if s.SessionID == "" {
		return errors.New("no session, use 'new' first")
	}
	return nil
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	commands map[string]*Command
	order    []string
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerBoardCommands()
	r.registerAnalysisCommands()
	r.registerUtilityCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
	r.order = append(r.order, cmd.Name)
}

// Execute runs one input line. It returns ErrExit when the user asked to
// quit; other failures are printed.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmdName := parts[0]
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		fmt.Fprintf(r.session.Out, "%sUnknown command: %s%s\n", display.Red, cmdName, display.Reset)
		fmt.Fprintf(r.session.Out, "Type 'help' for available commands\n")
		return nil
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	err := cmd.Handler(r.session, args)
	if errors.Is(err, ErrExit) {
		return err
	}
	if err != nil {
		fmt.Fprintf(r.session.Out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return nil
}

func (r *Registry) helpHandler(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(s.Out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(s.Out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(s.Out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(s.Out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)
	for _, name := range r.order {
		cmd := r.commands[name]
		shortPart := "    "
		if cmd.ShortName != "" {
			shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(s.Out, "  %s%-12s %s\n", shortPart, cmd.Name, cmd.Description)
	}

	fmt.Fprintf(s.Out, "\nType 'help <command>' for detailed usage\n")
	fmt.Fprintf(s.Out, "Add '-v' to any command for verbose output\n")
	return nil
}

func exitHandler(s *Session, args []string) error {
	fmt.Fprintf(s.Out, "%sGoodbye!%s\n", display.Cyan, display.Reset)
	return ErrExit
}
