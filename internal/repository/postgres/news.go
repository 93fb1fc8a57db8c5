package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/diretoriaja/monitor/internal/domain"
)

// diversifyPoolFactor sizes the candidate pool for source
// diversification relative to the requested limit.
const diversifyPoolFactor = 5

// UpsertNewsBatch inserts or updates news rows keyed by canonical URL.
// On conflict the longer full text wins and scores are refreshed, so
// re-collecting an article enriches rather than overwrites it. Returns
// the number of rows written.
func (s *Store) UpsertNewsBatch(ctx context.Context, items []domain.News) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin news upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news (
			politician_id, scope, title, description, full_text,
			url, canonical_url, source_name, source_domain, image_url,
			city, state, published_at, relevance_score, recency_score,
			mention_score, source_score, engagement_score, collected_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (canonical_url) DO UPDATE SET
			title = EXCLUDED.title,
			description = CASE WHEN length(EXCLUDED.description) > length(news.description)
				THEN EXCLUDED.description ELSE news.description END,
			full_text = CASE WHEN length(EXCLUDED.full_text) > length(news.full_text)
				THEN EXCLUDED.full_text ELSE news.full_text END,
			image_url = CASE WHEN news.image_url = '' THEN EXCLUDED.image_url ELSE news.image_url END,
			published_at = COALESCE(news.published_at, EXCLUDED.published_at),
			relevance_score = EXCLUDED.relevance_score,
			recency_score = EXCLUDED.recency_score,
			mention_score = EXCLUDED.mention_score,
			source_score = EXCLUDED.source_score,
			engagement_score = EXCLUDED.engagement_score,
			collected_at = EXCLUDED.collected_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare news upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, n := range items {
		if n.CanonicalURL == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			n.PoliticianID, n.Scope, n.Title, n.Description, n.FullText,
			n.URL, n.CanonicalURL, n.SourceName, n.SourceDomain, n.ImageURL,
			n.City, n.State, n.PublishedAt, n.RelevanceScore, n.RecencyScore,
			n.MentionScore, n.SourceScore, n.EngagementScore, n.CollectedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert news %s: %w", n.CanonicalURL, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit news upsert: %w", err)
	}
	return count, nil
}

const newsSelect = `
	SELECT id, politician_id, scope, title, COALESCE(description,''),
	       COALESCE(full_text,''), url, canonical_url,
	       COALESCE(source_name,''), COALESCE(source_domain,''),
	       COALESCE(image_url,''), COALESCE(city,''), COALESCE(state,''),
	       published_at, relevance_score, recency_score, mention_score,
	       source_score, engagement_score, collected_at
	FROM news`

func scanNews(rows *sql.Rows) ([]domain.News, error) {
	defer rows.Close()

	var out []domain.News
	for rows.Next() {
		var n domain.News
		if err := rows.Scan(
			&n.ID, &n.PoliticianID, &n.Scope, &n.Title, &n.Description,
			&n.FullText, &n.URL, &n.CanonicalURL, &n.SourceName, &n.SourceDomain,
			&n.ImageURL, &n.City, &n.State, &n.PublishedAt,
			&n.RelevanceScore, &n.RecencyScore, &n.MentionScore,
			&n.SourceScore, &n.EngagementScore, &n.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news: %w", err)
	}
	return out, nil
}

// GetRegionNews returns region-scoped news (city, state or national),
// most relevant first.
func (s *Store) GetRegionNews(ctx context.Context, scope domain.Scope, region string, limit int) ([]domain.News, error) {
	if limit <= 0 {
		limit = 10
	}

	q := newsSelect + ` WHERE scope = $1`
	args := []interface{}{scope}
	switch scope {
	case domain.ScopeCity:
		q += ` AND city = $2`
		args = append(args, region)
	case domain.ScopeState:
		q += ` AND state = $2`
		args = append(args, region)
	}
	q += fmt.Sprintf(` ORDER BY relevance_score DESC, published_at DESC NULLS LAST LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get region news: %w", err)
	}
	return scanNews(rows)
}

// CountNewsForPolitician counts stored news rows for one politician.
func (s *Store) CountNewsForPolitician(ctx context.Context, politicianID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM news WHERE politician_id = $1`, politicianID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return n, nil
}

// GetNewsForPolitician returns the politician's top news ordered by
// composite score. With diversify set, a pool of diversifyPoolFactor ×
// limit candidates is fetched and round-robined across source domains
// so one outlet cannot fill the whole page.
func (s *Store) GetNewsForPolitician(ctx context.Context, politicianID int64, limit int, minScore float64, diversify bool) ([]domain.News, error) {
	if limit <= 0 {
		limit = 10
	}
	poolSize := limit
	if diversify {
		poolSize = limit * diversifyPoolFactor
	}

	rows, err := s.db.QueryContext(ctx, newsSelect+`
		WHERE politician_id = $1 AND relevance_score >= $2
		ORDER BY relevance_score DESC, published_at DESC NULLS LAST
		LIMIT $3`, politicianID, minScore, poolSize)
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}
	pool, err := scanNews(rows)
	if err != nil {
		return nil, err
	}

	if !diversify {
		if len(pool) > limit {
			pool = pool[:limit]
		}
		return pool, nil
	}
	return diversifyBySource(pool, limit), nil
}

// diversifyBySource round-robins the score-ordered pool across source
// domains. Sources are visited in order of their best item, each
// contributing its next-best item per round, until limit distinct
// canonical URLs are admitted.
func diversifyBySource(pool []domain.News, limit int) []domain.News {
	if len(pool) <= 1 {
		return pool
	}

	var order []string
	bySource := make(map[string][]domain.News)
	for _, n := range pool {
		key := n.SourceDomain
		if _, ok := bySource[key]; !ok {
			order = append(order, key)
		}
		bySource[key] = append(bySource[key], n)
	}

	seen := make(map[string]bool, limit)
	out := make([]domain.News, 0, limit)
	for len(out) < limit {
		advanced := false
		for _, key := range order {
			queue := bySource[key]
			if len(queue) == 0 {
				continue
			}
			n := queue[0]
			bySource[key] = queue[1:]
			advanced = true

			if seen[n.CanonicalURL] {
				continue
			}
			seen[n.CanonicalURL] = true
			out = append(out, n)
			if len(out) == limit {
				break
			}
		}
		if !advanced {
			break
		}
	}
	return out
}
