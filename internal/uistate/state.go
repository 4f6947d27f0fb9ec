// Package uistate is the small record of last-used settings that survives
// restarts: position, board perspective and active profile name.
package uistate

import (
	"errors"
	"strings"

	"github.com/magiconair/properties"

	"github.com/bonjohen/chess-metric-analyzer/internal/board"
)

// DefaultKey is the storage key for a single-user installation
const DefaultKey = "chess-metric-analyzer-state"

const DefaultProfile = "Balanced"

var (
	ErrPersistence = errors.New("persistence failure")
	ErrNotFound    = errors.New("state not found")
)

type State struct {
	Position    string            `json:"position"`
	Perspective board.Perspective `json:"perspective"`
	ProfileName string            `json:"profile"`
}

func Default() State {
	return State{
		Position:    board.StartingPosition,
		Perspective: board.PerspectiveWhite,
		ProfileName: DefaultProfile,
	}
}

// Marshal writes the record as a properties document, one key=value pair
// per line with control characters and backslashes escaped
func Marshal(s State) string {
	props := properties.NewProperties()
	props.DisableExpansion = true
	props.WriteSeparator = "="
	props.MustSet("position", s.Position)
	props.MustSet("perspective", string(s.Perspective))
	props.MustSet("profile", s.ProfileName)

	var buf strings.Builder
	if _, err := props.Write(&buf, properties.UTF8); err != nil {
		return ""
	}
	return buf.String()
}

// Unmarshal reads a properties document. Unknown keys are ignored; missing
// or invalid values keep their defaults, and an unreadable document yields
// Default(), so it never fails.
func Unmarshal(text string) State {
	s := Default()
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes([]byte(text))
	if err != nil {
		return s
	}

	if value, ok := props.Get("position"); ok {
		if p, err := board.Decode(strings.TrimSpace(value)); err == nil {
			s.Position = board.Encode(p)
		}
	}
	if value, ok := props.Get("perspective"); ok {
		if p, err := board.ParsePerspective(strings.TrimSpace(value)); err == nil {
			s.Perspective = p
		}
	}
	if value, ok := props.Get("profile"); ok {
		if value = strings.TrimSpace(value); value != "" {
			s.ProfileName = value
		}
	}
	return s
}
