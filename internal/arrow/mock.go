package arrow

import "github.com/bonjohen/chess-metric-analyzer/internal/board"

// MockArrows is the fixed demonstration set for the starting position,
// shown when no evaluator is configured.
func MockArrows() []Arrow {
	mk := func(from, to string, rank int, best bool) Arrow {
		return Arrow{From: board.MustSquare(from), To: board.MustSquare(to), Rank: rank, Ply: 1, Best: best}
	}
	return []Arrow{
		mk("e2", "e4", 1, true),
		mk("d2", "d4", 1, false),
		mk("e7", "e5", 2, false),
		mk("d7", "d5", 2, false),
		mk("c7", "c5", 2, false),
		mk("f7", "f5", 2, false),
		mk("b1", "a3", 3, false),
		mk("b1", "c3", 3, false),
		mk("g1", "f3", 3, false),
		mk("g1", "h3", 3, false),
		mk("f1", "e2", 3, false),
		mk("f1", "d3", 3, false),
		mk("d1", "d2", 3, false),
		mk("c1", "d2", 3, false),
	}
}
