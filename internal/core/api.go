package core

// Requests carry go-playground/validator tags; the HTTP layer validates
// them before a handler sees them.

type CreateSessionRequest struct {
	FEN         string `json:"fen,omitempty" validate:"omitempty,max=100"`
	Perspective string `json:"perspective,omitempty" validate:"omitempty,oneof=white black"`
	Profile     string `json:"profile,omitempty" validate:"omitempty,max=64"`
}

type ClickRequest struct {
	Square string `json:"square" validate:"required,len=2"`
}

type PositionRequest struct {
	FEN string `json:"fen" validate:"required,max=100"`
}

type PerspectiveRequest struct {
	Perspective string `json:"perspective" validate:"required,oneof=white black"`
}

// ProfileRequest switches to a profile, or with Save stores the active
// weights under Name first
type ProfileRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64,printascii"`
	Save bool   `json:"save,omitempty"`
}

type WeightRequest struct {
	Metric string   `json:"metric" validate:"required,oneof=material mobility attack defense PV MS AT DF"`
	Value  *float64 `json:"value" validate:"required,gte=0"`
}

type PieceValueRequest struct {
	Piece string   `json:"piece" validate:"required,oneof=p n b r q P N B R Q"`
	Value *float64 `json:"value" validate:"required,gte=0"`
}

type ArrowRequest struct {
	From string `json:"from" validate:"required,len=2"`
	To   string `json:"to" validate:"required,len=2"`
	Rank int    `json:"rank" validate:"min=1,max=3"`
	Ply  int    `json:"ply" validate:"min=1,max=3"`
	Best bool   `json:"best,omitempty"`
}

type ArrowsRequest struct {
	Arrows     []ArrowRequest `json:"arrows" validate:"required,max=64,dive"`
	SquareSize float64        `json:"squareSize,omitempty" validate:"omitempty,gt=0,lte=1000"`
}

type EvaluationRequest struct {
	Square    string `json:"square" validate:"required,len=2"`
	Type      string `json:"type" validate:"required,oneof=favorable unfavorable neutral"`
	Intensity int    `json:"intensity" validate:"min=0,max=8"`
}

type OverlayRequest struct {
	Evaluations []EvaluationRequest `json:"evaluations" validate:"max=64,dive"`
}

// SessionView is the full renderable state of one session
type SessionView struct {
	SessionID   string          `json:"sessionId"`
	FEN         string          `json:"fen"`
	Board       string          `json:"board"`
	Perspective string          `json:"perspective"`
	Turn        string          `json:"turn"`
	Phase       string          `json:"phase"`
	Cells       [8][8]CellView  `json:"cells"`
	Selected    string          `json:"selected,omitempty"`
	Highlights  []string        `json:"highlights"`
	Moves       []string        `json:"moves"`
	MoveList    string          `json:"moveList,omitempty"`
	Status      StatusView      `json:"status"`
	Profile     ProfileView     `json:"profile"`
	PieceValues PieceValuesView `json:"pieceValues"`
	Analysis    AnalysisView    `json:"analysis"`
	Version     int             `json:"version"`
}

// CellView is one square in display order for the session's perspective
type CellView struct {
	Square      string `json:"square"`
	Piece       string `json:"piece,omitempty"`
	Light       bool   `json:"light"`
	Selected    bool   `json:"selected,omitempty"`
	Highlighted bool   `json:"highlighted,omitempty"`
}

type StatusView struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Level   string `json:"level"`
}

type ProfileView struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Weights     map[string]float64 `json:"weights"`
	Available   []string           `json:"available,omitempty"`
}

type PieceValuesView struct {
	Pawn   float64 `json:"pawn"`
	Knight float64 `json:"knight"`
	Bishop float64 `json:"bishop"`
	Rook   float64 `json:"rook"`
	Queen  float64 `json:"queen"`
	King   float64 `json:"king"`
}

type AnalysisView struct {
	Running  bool                          `json:"running"`
	Depth    int                           `json:"depth"`
	MaxDepth int                           `json:"maxDepth"`
	Arrows   []ArrowView                   `json:"arrows,omitempty"`
	Squares  []SquareView                  `json:"squares,omitempty"`
	Metrics  map[string]map[string]float64 `json:"metrics,omitempty"`
	Deltas   map[string]string             `json:"deltas,omitempty"`
}

type ArrowView struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Rank        int     `json:"rank"`
	Ply         int     `json:"ply"`
	Best        bool    `json:"best,omitempty"`
	Path        string  `json:"path"`
	Class       string  `json:"class"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

type SquareView struct {
	Square    string  `json:"square"`
	Type      string  `json:"type"`
	Intensity int     `json:"intensity"`
	Alpha     float64 `json:"alpha"`
}

type MoveView struct {
	Ply    int    `json:"ply"`
	SAN    string `json:"san"`
	UCI    string `json:"uci"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// ClickResponse reports what a click did plus the resulting view
type ClickResponse struct {
	Outcome      string      `json:"outcome"`
	Square       string      `json:"square"`
	Destinations []string    `json:"destinations,omitempty"`
	Move         *MoveView   `json:"move,omitempty"`
	View         SessionView `json:"view"`
}

// BoardRequest asks for a board rendering of position text without loading
// it into a session
type BoardRequest struct {
	FEN         string `json:"fen" validate:"required,max=100"`
	Perspective string `json:"perspective,omitempty" validate:"omitempty,oneof=white black"`
}

// BoardResponse carries the cells of every rank that decoded. Ranks listed
// in BadRanks are left empty and Errors says why.
type BoardResponse struct {
	FEN      string         `json:"fen"`
	Complete bool           `json:"complete"`
	Turn     string         `json:"turn"`
	Cells    [8][8]CellView `json:"cells"`
	BadRanks []int          `json:"badRanks,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

type ArrowsResponse struct {
	SquareSize float64     `json:"squareSize"`
	Arrows     []ArrowView `json:"arrows"`
}

type OverlayResponse struct {
	Squares []SquareView `json:"squares"`
}

type ProfilesResponse struct {
	Active   string        `json:"active"`
	Profiles []ProfileView `json:"profiles"`
}
