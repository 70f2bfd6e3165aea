package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// SQLiteStore persists match records in a SQLite database. Artifact and
// snapshot are stored as JSON blobs; the schema assumes nothing beyond the
// contract shape.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened database handle and runs migration.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSQLiteStore opens (or creates) a database file and migrates it.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS match_records (
		match_id TEXT PRIMARY KEY,
		universe_code TEXT,
		engine_code TEXT,
		engine_version TEXT,
		mode_code TEXT,
		artifact JSON NOT NULL,
		snapshot JSON,
		saved_at DATETIME NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, record *MatchRecord) error {
	if record == nil || record.MatchID == "" {
		return errors.New("record missing matchId")
	}
	artifactJSON, err := json.Marshal(record.Artifact)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	var snapshotJSON []byte
	if record.Snapshot != nil {
		if snapshotJSON, err = json.Marshal(record.Snapshot); err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
	}

	query := `INSERT OR REPLACE INTO match_records (
		match_id, universe_code, engine_code, engine_version, mode_code, artifact, snapshot, saved_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		record.MatchID,
		record.Artifact.Header.UniverseCode,
		record.Artifact.Header.EngineCode,
		record.Artifact.Header.EngineVersion,
		record.Artifact.Header.ModeCode,
		string(artifactJSON),
		nullableString(snapshotJSON),
		record.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert match record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, matchID string) (*MatchRecord, error) {
	query := `SELECT match_id, artifact, snapshot, saved_at FROM match_records WHERE match_id = ?`
	return s.scanOne(s.db.QueryRowContext(ctx, query, matchID))
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*MatchRecord, error) {
	query := `SELECT match_id, artifact, snapshot, saved_at FROM match_records ORDER BY saved_at LIMIT ?`
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*MatchRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanOne(row *sql.Row) (*MatchRecord, error) {
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return record, err
}

func scanRecord(row rowScanner) (*MatchRecord, error) {
	var (
		matchID      string
		artifactJSON string
		snapshotJSON sql.NullString
		savedAt      string
	)
	if err := row.Scan(&matchID, &artifactJSON, &snapshotJSON, &savedAt); err != nil {
		return nil, err
	}

	record := &MatchRecord{MatchID: matchID}
	record.Artifact = &contracts.MatchArtifact{}
	if err := json.Unmarshal([]byte(artifactJSON), record.Artifact); err != nil {
		return nil, fmt.Errorf("unmarshal artifact for %s: %w", matchID, err)
	}
	if snapshotJSON.Valid && snapshotJSON.String != "" {
		record.Snapshot = &contracts.SetupSnapshot{}
		if err := json.Unmarshal([]byte(snapshotJSON.String), record.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot for %s: %w", matchID, err)
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
		record.SavedAt = t
	}
	return record, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
