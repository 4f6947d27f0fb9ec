package analysis

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bonjohen/chess-metric-analyzer/internal/arrow"
	"github.com/bonjohen/chess-metric-analyzer/internal/board"
	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
)

var ErrEngineClosed = errors.New("engine closed unexpectedly")

// UCIEvaluator asks an external UCI engine for its best lines and turns
// them into candidate arrows: rank is the line index (MultiPV), ply is the
// move's position within the line.
type UCIEvaluator struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	depth int
	mu    sync.Mutex
	log   *zap.SugaredLogger
}

// NewUCIEvaluator starts the engine binary and completes the uci handshake
func NewUCIEvaluator(path string, depth int, log *zap.SugaredLogger) (*UCIEvaluator, error) {
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	u := newUCI(stdin, stdout, depth, log)
	u.cmd = cmd

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.initialize(ctx); err != nil {
		u.Close()
		return nil, err
	}
	return u, nil
}

func newUCI(stdin io.WriteCloser, stdout io.Reader, depth int, log *zap.SugaredLogger) *UCIEvaluator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if depth < 1 {
		depth = 1
	}
	u := &UCIEvaluator{
		stdin: stdin,
		lines: make(chan string, 64),
		depth: depth,
		log:   log,
	}
	go func() {
		defer close(u.lines)
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			u.lines <- sc.Text()
		}
	}()
	return u
}

func (u *UCIEvaluator) initialize(ctx context.Context) error {
	u.send("uci")
	if err := u.waitFor(ctx, func(l string) bool { return l == "uciok" }); err != nil {
		return fmt.Errorf("waiting for uciok: %w", err)
	}
	u.send("setoption name MultiPV value 3")
	return u.ready(ctx)
}

func (u *UCIEvaluator) ready(ctx context.Context) error {
	u.send("isready")
	if err := u.waitFor(ctx, func(l string) bool { return l == "readyok" }); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

func (u *UCIEvaluator) send(cmd string) {
	fmt.Fprintln(u.stdin, cmd)
}

// waitFor consumes lines until match returns true
func (u *UCIEvaluator) waitFor(ctx context.Context, match func(string) bool) error {
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return ErrEngineClosed
			}
			if match(line) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Evaluate searches to the configured depth. The profile is not passed to
// the engine; metrics are the raw counts from CountMetrics.
func (u *UCIEvaluator) Evaluate(ctx context.Context, fen string, _ profile.Profile, pv profile.PieceValues) (*Result, error) {
	metrics, err := CountMetrics(fen, pv)
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.ready(ctx); err != nil {
		return nil, err
	}
	u.send("position fen " + fen)
	u.send(fmt.Sprintf("go depth %d", u.depth))

	lines := make(map[int]searchLine)
	depth := 0
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return nil, ErrEngineClosed
			}
			if info, ok := parseInfo(line); ok {
				lines[info.multiPV] = info
				if info.depth > depth {
					depth = info.depth
				}
				continue
			}
			if strings.HasPrefix(line, "bestmove ") {
				return &Result{
					Arrows:  linesToArrows(lines),
					Metrics: metrics,
					Depth:   depth,
				}, nil
			}
		case <-ctx.Done():
			u.send("stop")
			// drain to bestmove so the next search starts clean
			drainCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := u.waitFor(drainCtx, func(l string) bool { return strings.HasPrefix(l, "bestmove ") }); err != nil {
				u.log.Warnw("engine did not acknowledge stop", "error", err)
			}
			cancel()
			return nil, ctx.Err()
		}
	}
}

type searchLine struct {
	depth   int
	multiPV int
	score   int
	mate    bool
	pv      []string
}

// parseInfo reads an "info ... multipv N score cp X ... pv m1 m2" line.
// Lines without a pv are ignored.
func parseInfo(line string) (searchLine, bool) {
	if !strings.HasPrefix(line, "info ") {
		return searchLine{}, false
	}
	fields := strings.Fields(line)
	sl := searchLine{multiPV: 1}
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				sl.depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				sl.multiPV, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "cp", "mate":
			if i+1 < len(fields) {
				sl.score, _ = strconv.Atoi(fields[i+1])
				sl.mate = fields[i] == "mate"
				i++
			}
		case "pv":
			sl.pv = fields[i+1:]
			i = len(fields)
		}
	}
	if len(sl.pv) == 0 {
		return searchLine{}, false
	}
	return sl, true
}

// linesToArrows keeps up to three lines and three plies per line
func linesToArrows(lines map[int]searchLine) []arrow.Arrow {
	keys := make([]int, 0, len(lines))
	for k := range lines {
		if k >= 1 && k <= 3 {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)

	var out []arrow.Arrow
	for _, k := range keys {
		for ply, mv := range lines[k].pv {
			if ply >= 3 {
				break
			}
			from, to, ok := parseUCIMove(mv)
			if !ok {
				break
			}
			out = append(out, arrow.Arrow{
				From: from,
				To:   to,
				Rank: k,
				Ply:  ply + 1,
				Best: k == 1 && ply == 0,
			})
		}
	}
	return out
}

func parseUCIMove(mv string) (board.Square, board.Square, bool) {
	if len(mv) < 4 {
		return board.NoSquare, board.NoSquare, false
	}
	from, err := board.ParseSquare(mv[0:2])
	if err != nil {
		return board.NoSquare, board.NoSquare, false
	}
	to, err := board.ParseSquare(mv[2:4])
	if err != nil {
		return board.NoSquare, board.NoSquare, false
	}
	return from, to, true
}

// Close asks the engine to quit and kills it after one second
func (u *UCIEvaluator) Close() error {
	u.send("quit")
	u.stdin.Close()
	if u.cmd == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- u.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(1 * time.Second):
		return u.cmd.Process.Kill()
	}
}
