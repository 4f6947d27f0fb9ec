package storage

import "time"

// SessionRecord represents a row in the sessions table
type SessionRecord struct {
	SessionID    string    `db:"session_id"`
	InitialFEN   string    `db:"initial_fen"`
	Perspective  string    `db:"perspective"`
	ProfileName  string    `db:"profile_name"`
	StartTimeUTC time.Time `db:"start_time_utc"`
}

// MoveRecord represents a row in the moves table. Segment counts position
// loads within a session; ply restarts at 1 in each segment.
type MoveRecord struct {
	MoveID      int64     `db:"move_id"`
	SessionID   string    `db:"session_id"`
	Segment     int       `db:"segment"`
	Ply         int       `db:"ply"`
	SAN         string    `db:"san"`
	UCI         string    `db:"uci"`
	FENBefore   string    `db:"fen_before"`
	FENAfter    string    `db:"fen_after"`
	MoveTimeUTC time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	perspective TEXT NOT NULL DEFAULT 'white' CHECK(perspective IN ('white', 'black')),
	profile_name TEXT NOT NULL,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	segment INTEGER NOT NULL DEFAULT 0,
	ply INTEGER NOT NULL,
	san TEXT NOT NULL,
	uci TEXT NOT NULL,
	fen_before TEXT NOT NULL,
	fen_after TEXT NOT NULL,
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
	UNIQUE(session_id, segment, ply)
);

CREATE TABLE IF NOT EXISTS ui_state (
	state_key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_moves_session_id ON moves(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time_utc);
`
