// Package db persists localization jobs in SQLite. Records are stored as
// one JSON document per row with a version column for optimistic
// concurrency, replacing the whole-file-rewrite pattern that loses updates
// under concurrent job completions.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brandops/backend/internal/job"
)

// JobStore implements job.Store on SQLite.
type JobStore struct {
	db *sql.DB
}

func NewJobStore(path string) (*JobStore, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	s := &JobStore{db: sqlDB}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JobStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS localization_jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		author TEXT NOT NULL,
		record TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_localization_jobs_created
		ON localization_jobs(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *JobStore) Close() error {
	return s.db.Close()
}

func (s *JobStore) Create(ctx context.Context, j *job.Job) error {
	record, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO localization_jobs (id, status, author, record, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		j.ID, string(j.Status), j.Author, string(record), j.Version, j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Update rewrites the full record guarded by the version column. On
// success the job's version is incremented; a stale version yields
// job.ErrVersionConflict so concurrent completions cannot silently lose
// each other's writes.
func (s *JobStore) Update(ctx context.Context, j *job.Job) error {
	next := j.Version + 1
	j.Version = next
	record, err := json.Marshal(j)
	if err != nil {
		j.Version = next - 1
		return fmt.Errorf("marshal job: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE localization_jobs SET status = ?, record = ?, version = ?
		WHERE id = ? AND version = ?`,
		string(j.Status), string(record), next, j.ID, next-1,
	)
	if err != nil {
		j.Version = next - 1
		return fmt.Errorf("update job: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		j.Version = next - 1
		return err
	}
	if rows == 0 {
		j.Version = next - 1
		var exists int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM localization_jobs WHERE id = ?", j.ID).Scan(&exists); err == nil && exists == 0 {
			return job.ErrNotFound
		}
		return job.ErrVersionConflict
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*job.Job, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		"SELECT record FROM localization_jobs WHERE id = ?", id).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, job.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return unmarshalJob(record)
}

func (s *JobStore) List(ctx context.Context) ([]*job.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT record FROM localization_jobs ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		j, err := unmarshalJob(record)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *JobStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM localization_jobs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return job.ErrNotFound
	}
	return nil
}

func unmarshalJob(record string) (*job.Job, error) {
	j := &job.Job{}
	if err := json.Unmarshal([]byte(record), j); err != nil {
		return nil, fmt.Errorf("unmarshal job record: %w", err)
	}
	return j, nil
}
