package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/diretoriaja/monitor/internal/domain"
)

// UpsertSocialPostsBatch writes own-account posts keyed by
// (politician, platform, post id). Engagement counters refresh on
// conflict so repeated collection tracks the post's growth.
func (s *Store) UpsertSocialPostsBatch(ctx context.Context, posts []domain.SocialPost) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin posts upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO social_posts (
			politician_id, platform, post_id, author_name, author_handle,
			content, url, media_url, media_type, likes, replies, reposts,
			engagement_score, posted_at, collected_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (politician_id, platform, post_id) DO UPDATE SET
			likes = EXCLUDED.likes,
			replies = EXCLUDED.replies,
			reposts = EXCLUDED.reposts,
			engagement_score = EXCLUDED.engagement_score,
			media_url = CASE WHEN social_posts.media_url = '' THEN EXCLUDED.media_url ELSE social_posts.media_url END,
			collected_at = EXCLUDED.collected_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare posts upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, p := range posts {
		if p.PostID == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			p.PoliticianID, p.Platform, p.PostID, p.AuthorName, p.AuthorHandle,
			p.Content, p.URL, p.MediaURL, p.MediaType, p.Likes, p.Replies, p.Reposts,
			p.Engagement, p.PostedAt, p.CollectedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert post %s/%s: %w", p.Platform, p.PostID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit posts upsert: %w", err)
	}
	return count, nil
}

// UpsertSocialMentionsBatch writes third-party mentions keyed by
// (politician, platform, mention id). Classification fields only move
// away from the defaults, never back.
func (s *Store) UpsertSocialMentionsBatch(ctx context.Context, mentions []domain.SocialMention) (int, error) {
	if len(mentions) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin mentions upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO social_mentions (
			politician_id, platform, mention_id, author_name, author_handle,
			content, url, subject, subject_detail, sentiment,
			likes, replies, reposts, engagement_score, posted_at, collected_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (politician_id, platform, mention_id) DO UPDATE SET
			likes = EXCLUDED.likes,
			replies = EXCLUDED.replies,
			reposts = EXCLUDED.reposts,
			engagement_score = EXCLUDED.engagement_score,
			subject = CASE WHEN social_mentions.subject IN ('', 'Other') THEN EXCLUDED.subject ELSE social_mentions.subject END,
			subject_detail = CASE WHEN social_mentions.subject_detail = '' THEN EXCLUDED.subject_detail ELSE social_mentions.subject_detail END,
			sentiment = CASE WHEN social_mentions.sentiment IN ('', 'neutral') THEN EXCLUDED.sentiment ELSE social_mentions.sentiment END,
			collected_at = EXCLUDED.collected_at`)
	if err != nil {
		return 0, fmt.Errorf("prepare mentions upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, m := range mentions {
		if m.MentionID == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			m.PoliticianID, m.Platform, m.MentionID, m.AuthorName, m.AuthorHandle,
			m.Content, m.URL, m.Subject, m.SubjectDetail, m.Sentiment,
			m.Likes, m.Replies, m.Reposts, m.Engagement, m.PostedAt, m.CollectedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert mention %s/%s: %w", m.Platform, m.MentionID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit mentions upsert: %w", err)
	}
	return count, nil
}

// GetMentionsInWindow returns a politician's mentions posted inside
// [start, end], oldest first. Feeds the topic roll-up.
func (s *Store) GetMentionsInWindow(ctx context.Context, politicianID int64, start, end time.Time) ([]domain.SocialMention, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, politician_id, platform, mention_id,
		       COALESCE(author_name,''), COALESCE(author_handle,''),
		       COALESCE(content,''), COALESCE(url,''),
		       COALESCE(subject,''), COALESCE(subject_detail,''), COALESCE(sentiment,''),
		       likes, replies, reposts, engagement_score, posted_at, collected_at
		FROM social_mentions
		WHERE politician_id = $1 AND posted_at >= $2 AND posted_at <= $3
		ORDER BY posted_at`, politicianID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get mentions: %w", err)
	}
	defer rows.Close()

	var out []domain.SocialMention
	for rows.Next() {
		var m domain.SocialMention
		if err := rows.Scan(
			&m.ID, &m.PoliticianID, &m.Platform, &m.MentionID,
			&m.AuthorName, &m.AuthorHandle, &m.Content, &m.URL,
			&m.Subject, &m.SubjectDetail, &m.Sentiment,
			&m.Likes, &m.Replies, &m.Reposts, &m.Engagement, &m.PostedAt, &m.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mention: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetSocialPostsForPolitician returns recent own-account posts ordered
// by posted time.
func (s *Store) GetSocialPostsForPolitician(ctx context.Context, politicianID int64, limit int) ([]domain.SocialPost, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, politician_id, platform, post_id,
		       COALESCE(author_name,''), COALESCE(author_handle,''),
		       COALESCE(content,''), COALESCE(url,''),
		       COALESCE(media_url,''), COALESCE(media_type,''),
		       likes, replies, reposts, engagement_score, posted_at, collected_at
		FROM social_posts
		WHERE politician_id = $1
		ORDER BY posted_at DESC NULLS LAST
		LIMIT $2`, politicianID, limit)
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}
	defer rows.Close()

	var out []domain.SocialPost
	for rows.Next() {
		var p domain.SocialPost
		if err := rows.Scan(
			&p.ID, &p.PoliticianID, &p.Platform, &p.PostID,
			&p.AuthorName, &p.AuthorHandle, &p.Content, &p.URL,
			&p.MediaURL, &p.MediaType,
			&p.Likes, &p.Replies, &p.Reposts, &p.Engagement, &p.PostedAt, &p.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountSocialPostsForPolitician counts stored posts for one politician.
func (s *Store) CountSocialPostsForPolitician(ctx context.Context, politicianID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM social_posts WHERE politician_id = $1`, politicianID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// CountMentionsForPolitician counts stored mentions for one politician.
func (s *Store) CountMentionsForPolitician(ctx context.Context, politicianID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM social_mentions WHERE politician_id = $1`, politicianID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count mentions: %w", err)
	}
	return n, nil
}
