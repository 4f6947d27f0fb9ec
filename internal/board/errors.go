package board

import "errors"

var (
	// ErrMalformedPosition is returned for position text that does not decode
	ErrMalformedPosition = errors.New("malformed position")
	// ErrOutOfRange is returned for squares outside the 8x8 board
	ErrOutOfRange = errors.New("square out of range")
)
