package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	retentionBatchSize = 10000
	retentionPause     = 100 * time.Millisecond
)

// retentionTables maps each purgeable table to its age column. Acting
// as an allowlist keeps table names out of caller hands.
var retentionTables = map[string]string{
	"news":            "collected_at",
	"social_posts":    "collected_at",
	"social_mentions": "collected_at",
	"mention_topics":  "period_end",
	"job_logs":        "started_at",
}

// DeleteOlderThan purges rows older than the given number of days, in
// batches with a short pause between them so the purge never holds long
// locks. A table missing from the schema is treated as already empty.
func (s *Store) DeleteOlderThan(ctx context.Context, table string, days int) (int64, error) {
	column, ok := retentionTables[table]
	if !ok {
		return 0, fmt.Errorf("table %q is not retention-managed", table)
	}
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", days)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	q := fmt.Sprintf(`
		DELETE FROM %s WHERE id IN (
			SELECT id FROM %s WHERE %s < $1 LIMIT $2
		)`, table, table, column)

	var total int64
	for {
		res, err := s.db.ExecContext(ctx, q, cutoff, retentionBatchSize)
		if err != nil {
			if isUndefinedTable(err) {
				return total, nil
			}
			return total, fmt.Errorf("delete from %s: %w", table, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += n

		if n < retentionBatchSize {
			return total, nil
		}

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(retentionPause):
		}
	}
}

// isUndefinedTable reports the Postgres undefined_table error (42P01).
func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}
