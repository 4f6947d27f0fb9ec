package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	StartingPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// Opponent returns the other side
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = map[Kind]byte{
	Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k',
}

func (k Kind) String() string {
	if l, ok := kindLetters[k]; ok {
		return string(l)
	}
	return ""
}

// ParseKind accepts a single piece letter in either case
func ParseKind(s string) (Kind, bool) {
	if len(s) != 1 {
		return NoKind, false
	}
	l := strings.ToLower(s)[0]
	for k, c := range kindLetters {
		if c == l {
			return k, true
		}
	}
	return NoKind, false
}

// Piece is the content of one cell. The zero value is an empty cell.
type Piece struct {
	Kind  Kind
	Color Color
}

func (p Piece) Empty() bool {
	return p.Kind == NoKind
}

// Letter returns the placement letter, upper case for white, 0 for empty
func (p Piece) Letter() byte {
	l, ok := kindLetters[p.Kind]
	if !ok {
		return 0
	}
	if p.Color == White {
		return l - ('a' - 'A')
	}
	return l
}

func (p Piece) String() string {
	if p.Empty() {
		return ""
	}
	return string(p.Letter())
}

func pieceFromLetter(ch rune) (Piece, bool) {
	color := White
	if ch >= 'a' && ch <= 'z' {
		color = Black
		ch -= 'a' - 'A'
	}
	switch ch {
	case 'P':
		return Piece{Pawn, color}, true
	case 'N':
		return Piece{Knight, color}, true
	case 'B':
		return Piece{Bishop, color}, true
	case 'R':
		return Piece{Rook, color}, true
	case 'Q':
		return Piece{Queen, color}, true
	case 'K':
		return Piece{King, color}, true
	}
	return Piece{}, false
}

// Placement holds the cells indexed [rank][file] in grid coordinates
type Placement [8][8]Piece

// Position is an immutable decoded position. It is a comparable value.
type Position struct {
	Placement Placement
	Turn      Color
	Castling  string
	EnPassant Square
	HalfMove  int
	FullMove  int
}

// PieceAt returns the piece on a square, empty for invalid squares
func (p Position) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return p.Placement[sq.Rank()][sq.File()]
}

// Count returns how many times a piece appears on the board
func (p Position) Count(piece Piece) int {
	n := 0
	for _, row := range p.Placement {
		for _, c := range row {
			if c == piece {
				n++
			}
		}
	}
	return n
}

// Decode parses six-field position text
func Decode(text string) (Position, error) {
	parts := strings.Fields(text)
	if len(parts) != 6 {
		return Position{}, fmt.Errorf("%w: expected 6 fields, got %d", ErrMalformedPosition, len(parts))
	}

	p := Position{EnPassant: NoSquare}

	placement, err := DecodePlacement(parts[0])
	if err != nil {
		return Position{}, err
	}
	p.Placement = placement

	switch parts[1] {
	case "w":
		p.Turn = White
	case "b":
		p.Turn = Black
	default:
		return Position{}, fmt.Errorf("%w: side to move must be 'w' or 'b', got %q", ErrMalformedPosition, parts[1])
	}

	if err := validateCastling(parts[2]); err != nil {
		return Position{}, err
	}
	p.Castling = parts[2]

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil || (sq.Rank() != 2 && sq.Rank() != 5) {
			return Position{}, fmt.Errorf("%w: en-passant target %q", ErrMalformedPosition, parts[3])
		}
		p.EnPassant = sq
	}

	if p.HalfMove, err = strconv.Atoi(parts[4]); err != nil || p.HalfMove < 0 {
		return Position{}, fmt.Errorf("%w: halfmove clock %q", ErrMalformedPosition, parts[4])
	}
	if p.FullMove, err = strconv.Atoi(parts[5]); err != nil || p.FullMove < 1 {
		return Position{}, fmt.Errorf("%w: fullmove number %q", ErrMalformedPosition, parts[5])
	}

	return p, nil
}

// DecodePlacement parses the piece-placement field. Ranks that decode are
// kept even when others fail; the returned error joins one entry per bad
// rank.
func DecodePlacement(field string) (Placement, error) {
	out, rankErrs := DecodeRanks(field)
	var errs []error
	if n := len(strings.Split(field, "/")); n != 8 {
		errs = append(errs, fmt.Errorf("%w: expected 8 ranks, got %d", ErrMalformedPosition, n))
	}
	for _, err := range rankErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

// DecodeRanks decodes each rank group on its own. The error array is
// indexed like Placement (row 0 is the eighth rank); a nil entry means the
// row decoded. Missing groups are reported as errors; groups past the
// eighth are ignored.
func DecodeRanks(field string) (Placement, [8]error) {
	var (
		out  Placement
		errs [8]error
	)
	ranks := strings.Split(field, "/")
	for r := 0; r < 8; r++ {
		if r >= len(ranks) {
			errs[r] = fmt.Errorf("%w: rank %d missing", ErrMalformedPosition, 8-r)
			continue
		}
		row, err := decodeRank(ranks[r], 8-r)
		if err != nil {
			errs[r] = err
			continue
		}
		out[r] = row
	}
	return out, errs
}

func decodeRank(group string, label int) ([8]Piece, error) {
	var row [8]Piece
	file := 0
	for _, ch := range group {
		if ch >= '1' && ch <= '8' {
			file += int(ch - '0')
			continue
		}
		piece, ok := pieceFromLetter(ch)
		if !ok {
			return [8]Piece{}, fmt.Errorf("%w: rank %d has invalid character %q", ErrMalformedPosition, label, ch)
		}
		if file >= 8 {
			return [8]Piece{}, fmt.Errorf("%w: too many pieces in rank %d", ErrMalformedPosition, label)
		}
		row[file] = piece
		file++
	}
	if file != 8 {
		return [8]Piece{}, fmt.Errorf("%w: rank %d has %d files", ErrMalformedPosition, label, file)
	}
	return row, nil
}

func validateCastling(field string) error {
	if field == "-" {
		return nil
	}
	seen := make(map[rune]bool, 4)
	for _, ch := range field {
		if !strings.ContainsRune("KQkq", ch) || seen[ch] {
			return fmt.Errorf("%w: castling rights %q", ErrMalformedPosition, field)
		}
		seen[ch] = true
	}
	if len(seen) == 0 {
		return fmt.Errorf("%w: empty castling rights", ErrMalformedPosition)
	}
	return nil
}

// Encode serializes a position back to text; Decode(Encode(p)) == p
func Encode(p Position) string {
	var sb strings.Builder
	sb.WriteString(EncodePlacement(p.Placement))

	castling := p.Castling
	if castling == "" {
		castling = "-"
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", p.Turn, castling, p.EnPassant, p.HalfMove, p.FullMove)
	return sb.String()
}

func EncodePlacement(pl Placement) string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for f := 0; f < 8; f++ {
			piece := pl[r][f]
			if piece.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

// ToASCII creates an ASCII representation of the board seen from one side
func (p Position) ToASCII(perspective Perspective) string {
	files := "  a b c d e f g h"
	if perspective == PerspectiveBlack {
		files = "  h g f e d c b a"
	}

	var sb strings.Builder
	sb.WriteString(files + "\n")

	for _, row := range orientedRanks(perspective) {
		label := 8 - row
		fmt.Fprintf(&sb, "%d ", label)
		for _, f := range orientedFiles(perspective) {
			piece := p.Placement[row][f]
			if piece.Empty() {
				sb.WriteString(". ")
			} else {
				fmt.Fprintf(&sb, "%c ", piece.Letter())
			}
		}
		fmt.Fprintf(&sb, " %d\n", label)
	}
	sb.WriteString(files)

	return sb.String()
}
