package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/diretoriaja/monitor/internal/domain"
)

// UpsertMentionTopic writes one roll-up row keyed by (politician,
// subject, period start). Re-running a window replaces its counters, so
// the roll-up stays idempotent.
func (s *Store) UpsertMentionTopic(ctx context.Context, t domain.MentionTopic) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mention_topics (
			politician_id, subject, total_mentions, positive_mentions,
			negative_mentions, neutral_mentions, engagement_sum,
			last_mention_at, period_start, period_end, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		ON CONFLICT (politician_id, subject, period_start) DO UPDATE SET
			total_mentions = EXCLUDED.total_mentions,
			positive_mentions = EXCLUDED.positive_mentions,
			negative_mentions = EXCLUDED.negative_mentions,
			neutral_mentions = EXCLUDED.neutral_mentions,
			engagement_sum = EXCLUDED.engagement_sum,
			last_mention_at = EXCLUDED.last_mention_at,
			period_end = EXCLUDED.period_end,
			updated_at = NOW()`,
		t.PoliticianID, t.Subject, t.Total, t.Positive,
		t.Negative, t.Neutral, t.EngagementSum,
		t.LastMentionAt, t.PeriodStart, t.PeriodEnd,
	)
	if err != nil {
		return fmt.Errorf("upsert mention topic %s: %w", t.Subject, err)
	}
	return nil
}

// GetMentionTopics returns the latest roll-up rows for a politician,
// largest subjects first.
func (s *Store) GetMentionTopics(ctx context.Context, politicianID int64, since time.Time) ([]domain.MentionTopic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, politician_id, subject, total_mentions, positive_mentions,
		       negative_mentions, neutral_mentions, engagement_sum,
		       last_mention_at, period_start, period_end, updated_at
		FROM mention_topics
		WHERE politician_id = $1 AND period_start >= $2
		ORDER BY total_mentions DESC, subject`, politicianID, since)
	if err != nil {
		return nil, fmt.Errorf("get mention topics: %w", err)
	}
	defer rows.Close()

	var out []domain.MentionTopic
	for rows.Next() {
		var t domain.MentionTopic
		if err := rows.Scan(
			&t.ID, &t.PoliticianID, &t.Subject, &t.Total, &t.Positive,
			&t.Negative, &t.Neutral, &t.EngagementSum,
			&t.LastMentionAt, &t.PeriodStart, &t.PeriodEnd, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mention topic: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReplaceTrendingTopics swaps a category's trend list in one
// transaction so readers never observe a partially written list.
func (s *Store) ReplaceTrendingTopics(ctx context.Context, category string, items []domain.TrendingTopic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trending replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM trending_topics WHERE category = $1`, category); err != nil {
		return fmt.Errorf("clear trending %s: %w", category, err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trending_topics (category, rank, title, subtitle, collected_at)
			VALUES ($1,$2,$3,$4,$5)`,
			category, item.Rank, item.Title, item.Subtitle, item.CollectedAt)
		if err != nil {
			return fmt.Errorf("insert trending %s #%d: %w", category, item.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trending replace: %w", err)
	}
	return nil
}

// GetTrendingTopics returns a category's current list in rank order.
func (s *Store) GetTrendingTopics(ctx context.Context, category string) ([]domain.TrendingTopic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, rank, title, COALESCE(subtitle,''), collected_at
		FROM trending_topics
		WHERE category = $1
		ORDER BY rank`, category)
	if err != nil {
		return nil, fmt.Errorf("get trending: %w", err)
	}
	defer rows.Close()

	var out []domain.TrendingTopic
	for rows.Next() {
		var t domain.TrendingTopic
		if err := rows.Scan(&t.ID, &t.Category, &t.Rank, &t.Title, &t.Subtitle, &t.CollectedAt); err != nil {
			return nil, fmt.Errorf("scan trending: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
