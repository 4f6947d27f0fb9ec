package board

import "fmt"

// Square identifies one of the 64 cells. The index is rank*8+file in grid
// coordinates: rank 0 is the eighth rank, file 0 is the a-file.
type Square int8

// NoSquare marks an absent square (no selection, no en-passant target)
const NoSquare Square = -1

// SquareAt converts grid coordinates to a square
func SquareAt(rank, file int) (Square, error) {
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return NoSquare, fmt.Errorf("%w: rank %d file %d", ErrOutOfRange, rank, file)
	}
	return Square(rank*8 + file), nil
}

// ParseSquare converts algebraic text such as "e4" to a square
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	file := int(s[0] - 'a')
	rank := int('8' - s[1])
	return Square(rank*8 + file), nil
}

// MustSquare is ParseSquare for literals known to be valid
func MustSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

// Rank returns the grid rank, 0 at the top (eighth rank)
func (s Square) Rank() int {
	return int(s) / 8
}

// File returns the grid file, 0 for the a-file
func (s Square) File() int {
	return int(s) % 8
}

// Grid returns the (rank, file) grid coordinates
func (s Square) Grid() (int, int) {
	return s.Rank(), s.File()
}

// IsLight reports the square colour, a8 and h1 are light
func (s Square) IsLight() bool {
	return (s.Rank()+s.File())%2 == 0
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.File(), '8'-s.Rank())
}

// ParseSquares parses a list of algebraic squares, failing on the first bad entry
func ParseSquares(list []string) ([]Square, error) {
	out := make([]Square, 0, len(list))
	for _, s := range list {
		sq, err := ParseSquare(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sq)
	}
	return out, nil
}

// MarshalText encodes the square in algebraic form for JSON and text codecs
func (s Square) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(b []byte) error {
	if string(b) == "-" || len(b) == 0 {
		*s = NoSquare
		return nil
	}
	sq, err := ParseSquare(string(b))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}
