package store

import (
	"database/sql"
	"time"
)

// Recognition is one recognized sign in a session's transcript.
type Recognition struct {
	ID           int64
	SessionID    string
	ClassIndex   int
	Label        string
	RecognizedAt time.Time
}

// RecognitionRepository provides operations on session transcripts.
type RecognitionRepository struct {
	db *sql.DB
}

// Recognitions returns the recognition repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Create appends a recognition to a session's transcript.
func (r *RecognitionRepository) Create(rec *Recognition) error {
	if rec.RecognizedAt.IsZero() {
		rec.RecognizedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO recognitions (session_id, class_index, label, recognized_at)
		 VALUES (?, ?, ?, ?)`,
		rec.SessionID, rec.ClassIndex, rec.Label, rec.RecognizedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id

	return nil
}

// ListBySession retrieves a session's transcript in recognition order.
func (r *RecognitionRepository) ListBySession(sessionID string) ([]*Recognition, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, class_index, label, recognized_at
		 FROM recognitions WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recognitions []*Recognition
	for rows.Next() {
		rec := &Recognition{}
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ClassIndex, &rec.Label, &rec.RecognizedAt); err != nil {
			return nil, err
		}
		recognitions = append(recognitions, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recognitions, nil
}

// CountBySession returns the number of recognitions recorded for a session.
func (r *RecognitionRepository) CountBySession(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM recognitions WHERE session_id = ?`,
		sessionID,
	).Scan(&count)
	return count, err
}
