package processor

import (
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
)

// Event is one user action on a session. Each variant carries exactly the
// data its handler needs; Dispatch switches on the concrete type.
type Event interface {
	eventName() string
}

type CreateSession struct {
	FEN         string
	Perspective string
	Profile     string
}

type DeleteSession struct{}

type ClickSquare struct {
	Square string
}

type LoadPosition struct {
	FEN string
}

type SetPerspective struct {
	Perspective string
}

// SelectProfile activates a profile; unknown names are ignored
type SelectProfile struct {
	Name string
}

// SaveProfile stores the active weights under Name and activates it
type SaveProfile struct {
	Name string
}

type SetWeight struct {
	Metric string
	Value  float64
}

type SetPieceValue struct {
	Piece string
	Value float64
}

type StartAnalysis struct{}

type StopAnalysis struct{}

type GetView struct{}

func (CreateSession) eventName() string  { return "create-session" }
func (DeleteSession) eventName() string  { return "delete-session" }
func (ClickSquare) eventName() string    { return "click" }
func (LoadPosition) eventName() string   { return "load-position" }
func (SetPerspective) eventName() string { return "set-perspective" }
func (SelectProfile) eventName() string  { return "select-profile" }
func (SaveProfile) eventName() string    { return "save-profile" }
func (SetWeight) eventName() string      { return "set-weight" }
func (SetPieceValue) eventName() string  { return "set-piece-value" }
func (StartAnalysis) eventName() string  { return "start-analysis" }
func (StopAnalysis) eventName() string   { return "stop-analysis" }
func (GetView) eventName() string        { return "get-view" }

// Response wraps the result of one dispatched event
type Response struct {
	Success bool                `json:"success"`
	Pending bool                `json:"pending,omitempty"` // analysis still running
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateSessionEvent(req core.CreateSessionRequest) CreateSession {
	return CreateSession{FEN: req.FEN, Perspective: req.Perspective, Profile: req.Profile}
}

func NewClickEvent(req core.ClickRequest) ClickSquare {
	return ClickSquare{Square: req.Square}
}

func NewWeightEvent(req core.WeightRequest) SetWeight {
	ev := SetWeight{Metric: req.Metric}
	if req.Value != nil {
		ev.Value = *req.Value
	}
	return ev
}

func NewPieceValueEvent(req core.PieceValueRequest) SetPieceValue {
	ev := SetPieceValue{Piece: req.Piece}
	if req.Value != nil {
		ev.Value = *req.Value
	}
	return ev
}

// NewProfileEvent maps a profile request to a switch or a save
func NewProfileEvent(req core.ProfileRequest) Event {
	if req.Save {
		return SaveProfile{Name: req.Name}
	}
	return SelectProfile{Name: req.Name}
}
