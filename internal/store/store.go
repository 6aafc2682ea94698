// Package store persists analyses, user decisions, and debate-audio cache
// metadata in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/contract"
)

type Store struct {
	db *sql.DB
}

// AudioMeta is the cached metadata of a previously generated debate track.
type AudioMeta struct {
	URL        string
	Timings    []contract.DebateTimingSegment
	DurationMs int
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		user_decision TEXT,
		audio_url TEXT,
		audio_timings TEXT,
		audio_duration_ms INTEGER,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create analyses table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT,
		decision TEXT NOT NULL,
		risk_score INTEGER,
		timestamp TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create decisions table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAnalysis persists a new analysis record and returns its generated id.
func (s *Store) SaveAnalysis(rec contract.AnalysisRecord) (string, error) {
	id := uuid.NewString()
	rec.ID = ""
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO analyses (id, data, timestamp) VALUES (?, ?, ?)",
		id, string(data), rec.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}
	return id, nil
}

// History returns the most recent analyses, newest first.
func (s *Store) History(limit int) ([]contract.AnalysisRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, data, user_decision FROM analyses ORDER BY timestamp DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []contract.AnalysisRecord
	for rows.Next() {
		var id, data string
		var decision sql.NullString
		if err := rows.Scan(&id, &data, &decision); err != nil {
			return nil, err
		}

		var rec contract.AnalysisRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		rec.ID = id
		if decision.Valid {
			rec.UserDecision = decision.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LogDecision records a user decision. The decision is also written back to
// the analysis document for history display; a missing analysis is ignored.
func (s *Store) LogDecision(analysisID, decision string, riskScore int, timestamp string) error {
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		"INSERT INTO decisions (analysis_id, decision, risk_score, timestamp) VALUES (?, ?, ?, ?)",
		analysisID, decision, riskScore, timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to log decision: %w", err)
	}

	if analysisID != "" {
		_, _ = s.db.Exec("UPDATE analyses SET user_decision = ? WHERE id = ?", decision, analysisID)
	}
	return nil
}

// AudioMeta returns the cached debate-audio metadata for an analysis, or
// nil when nothing is cached.
func (s *Store) AudioMeta(analysisID string) (*AudioMeta, error) {
	var url, timings sql.NullString
	var duration sql.NullInt64
	err := s.db.QueryRow(
		"SELECT audio_url, audio_timings, audio_duration_ms FROM analyses WHERE id = ?",
		analysisID,
	).Scan(&url, &timings, &duration)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audio metadata: %w", err)
	}
	if !url.Valid || url.String == "" {
		return nil, nil
	}

	meta := &AudioMeta{URL: url.String, DurationMs: int(duration.Int64)}
	if timings.Valid && timings.String != "" {
		if err := json.Unmarshal([]byte(timings.String), &meta.Timings); err != nil {
			return nil, fmt.Errorf("failed to decode audio timings: %w", err)
		}
	}
	return meta, nil
}

// SetAudioMeta caches debate-audio metadata on an analysis. A missing
// analysis row is not an error; there is simply nothing to update.
func (s *Store) SetAudioMeta(analysisID, url string, timings []contract.DebateTimingSegment, durationMs int) error {
	encoded, err := json.Marshal(timings)
	if err != nil {
		return fmt.Errorf("failed to encode audio timings: %w", err)
	}
	_, err = s.db.Exec(
		"UPDATE analyses SET audio_url = ?, audio_timings = ?, audio_duration_ms = ? WHERE id = ?",
		url, string(encoded), durationMs, analysisID,
	)
	if err != nil {
		return fmt.Errorf("failed to write audio metadata: %w", err)
	}
	return nil
}
