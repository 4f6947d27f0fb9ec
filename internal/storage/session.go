package storage

import (
	"database/sql"
	"fmt"
)

// RecordSession asynchronously records a new session
func (s *Store) RecordSession(record SessionRecord) error {
	return s.enqueue("session record", func(tx *sql.Tx) error {
		query := `INSERT INTO sessions (
			session_id, initial_fen, perspective, profile_name, start_time_utc
		) VALUES (?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.SessionID, record.InitialFEN, record.Perspective,
			record.ProfileName, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously appends a move. Moves are never updated.
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			session_id, segment, ply, san, uci, fen_before, fen_after, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.SessionID, record.Segment, record.Ply, record.SAN, record.UCI,
			record.FENBefore, record.FENAfter, record.MoveTimeUTC,
		)
		return err
	})
}

// QuerySessions lists sessions, newest first. An empty or "*" id matches all.
func (s *Store) QuerySessions(sessionID string) ([]SessionRecord, error) {
	query := `SELECT session_id, initial_fen, perspective, profile_name, start_time_utc
	FROM sessions WHERE 1=1`

	var args []any
	if sessionID != "" && sessionID != "*" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.SessionID, &r.InitialFEN, &r.Perspective, &r.ProfileName, &r.StartTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		sessions = append(sessions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return sessions, nil
}

// QueryMoves returns a session's moves in play order
func (s *Store) QueryMoves(sessionID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT move_id, session_id, segment, ply, san, uci, fen_before, fen_after, move_time_utc
	FROM moves WHERE session_id = ? ORDER BY segment, ply`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		err := rows.Scan(&m.MoveID, &m.SessionID, &m.Segment, &m.Ply, &m.SAN, &m.UCI,
			&m.FENBefore, &m.FENAfter, &m.MoveTimeUTC)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return moves, nil
}
