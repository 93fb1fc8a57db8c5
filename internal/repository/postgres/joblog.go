package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diretoriaja/monitor/internal/domain"
)

// LogJobStart opens a job log row and returns its id.
func (s *Store) LogJobStart(ctx context.Context, kind string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_logs (id, kind, status, started_at)
		VALUES ($1, $2, $3, NOW())`,
		id, kind, domain.JobRunning)
	if err != nil {
		return "", fmt.Errorf("log job start: %w", err)
	}
	return id, nil
}

// LogJobEnd closes a job log row with its final status.
func (s *Store) LogJobEnd(ctx context.Context, id string, status domain.JobStatus, message string, count int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE job_logs
		SET status = $2, message = $3, record_count = $4, finished_at = NOW()
		WHERE id = $1`,
		id, status, message, count)
	if err != nil {
		return fmt.Errorf("log job end: %w", err)
	}
	return nil
}

// ListJobLogs returns the most recent job runs, newest first.
func (s *Store) ListJobLogs(ctx context.Context, limit int) ([]domain.JobLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, status, COALESCE(message,''), record_count, started_at, finished_at
		FROM job_logs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list job logs: %w", err)
	}
	defer rows.Close()

	var out []domain.JobLog
	for rows.Next() {
		var j domain.JobLog
		var finished *time.Time
		if err := rows.Scan(&j.ID, &j.Kind, &j.Status, &j.Message, &j.RecordCount, &j.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan job log: %w", err)
		}
		j.FinishedAt = finished
		out = append(out, j)
	}
	return out, rows.Err()
}
