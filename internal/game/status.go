package game

type State int

const (
	StateOngoing State = iota
	StateCheck
	StateCheckmate
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StateOngoing:
		return "ongoing"
	case StateCheck:
		return "check"
	case StateCheckmate:
		return "checkmate"
	case StateStalemate:
		return "stalemate"
	default:
		return "unknown"
	}
}

// Level is the status line severity
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
)

// Status is the signal surfaced after a move; game end is not an error
type Status struct {
	State   State  `json:"-"`
	Name    string `json:"state"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// StatusChecker is the part of the rules engine needed to classify a position
type StatusChecker interface {
	IsCheck() bool
	IsCheckmate() bool
	IsStalemate() bool
}

// StatusOf classifies the engine's current position. Checkmate takes
// precedence over check.
func StatusOf(c StatusChecker) Status {
	switch {
	case c.IsCheckmate():
		return newStatus(StateCheckmate, "Checkmate!", LevelSuccess)
	case c.IsStalemate():
		return newStatus(StateStalemate, "Stalemate", LevelWarning)
	case c.IsCheck():
		return newStatus(StateCheck, "Check", LevelWarning)
	}
	return newStatus(StateOngoing, "", LevelInfo)
}

func newStatus(s State, msg string, level Level) Status {
	return Status{State: s, Name: s.String(), Message: msg, Level: level}
}
