// Package cli implements the "db" maintenance subcommands of viz-server
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/bonjohen/chess-metric-analyzer/internal/logging"
	"github.com/bonjohen/chess-metric-analyzer/internal/storage"
	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, state")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		if len(args) < 2 {
			return fmt.Errorf("query subcommand required: sessions, moves")
		}
		return runQuery(args[1], args[2:])
	case "state":
		return runState(args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(name string, args []string, extra func(*flag.FlagSet)) (*storage.Store, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if *path == "" {
		return nil, nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false, logging.Nop())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, fs, nil
}

func runInit(args []string) error {
	store, fs, err := openStore("init", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Printf("Database initialized at: %s\n", fs.Lookup("path").Value)
	return nil
}

func runDelete(args []string) error {
	store, fs, err := openStore("delete", args, nil)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}
	fmt.Printf("Database deleted: %s\n", fs.Lookup("path").Value)
	return nil
}

func runQuery(kind string, args []string) error {
	var sessionID *string
	store, _, err := openStore("query "+kind, args, func(fs *flag.FlagSet) {
		sessionID = fs.String("sessionId", "", "Session ID to filter (* for all)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	switch kind {
	case "sessions":
		return querySessions(store, *sessionID)
	case "moves":
		if _, err := uuid.Parse(*sessionID); err != nil {
			return fmt.Errorf("moves query needs a valid -sessionId: %w", err)
		}
		return queryMoves(store, *sessionID)
	default:
		return fmt.Errorf("unknown query: %s", kind)
	}
}

func querySessions(store *storage.Store, sessionID string) error {
	sessions, err := store.QuerySessions(sessionID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Session ID\tPerspective\tProfile\tStart Time\tInitial FEN")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.SessionID,
			s.Perspective,
			s.ProfileName,
			s.StartTimeUTC.Format("2006-01-02 15:04:05"),
			s.InitialFEN,
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d session(s)\n", len(sessions))
	return nil
}

func queryMoves(store *storage.Store, sessionID string) error {
	moves, err := store.QueryMoves(sessionID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(moves) == 0 {
		fmt.Println("No moves found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Segment\tPly\tSAN\tUCI\tFEN After")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", m.Segment, m.Ply, m.SAN, m.UCI, m.FENAfter)
	}
	w.Flush()

	fmt.Printf("\nFound %d move(s)\n", len(moves))
	return nil
}

func runState(args []string) error {
	store, _, err := openStore("state", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Load(context.Background(), uistate.DefaultKey)
	if err != nil {
		return fmt.Errorf("no saved state: %w", err)
	}
	fmt.Print(uistate.Marshal(st))
	return nil
}
