package domain

import "time"

// SocialPost is a post authored by the politician's own account.
// Unique per (politician, platform, post id).
type SocialPost struct {
	ID           int64      `json:"id" db:"id"`
	PoliticianID int64      `json:"politician_id" db:"politician_id"`
	Platform     string     `json:"platform" db:"platform"`
	PostID       string     `json:"post_id" db:"post_id"`
	AuthorName   string     `json:"author_name" db:"author_name"`
	AuthorHandle string     `json:"author_handle" db:"author_handle"`
	Content      string     `json:"content" db:"content"`
	URL          string     `json:"url" db:"url"`
	MediaURL     string     `json:"media_url" db:"media_url"`
	MediaType    string     `json:"media_type" db:"media_type"`
	Likes        int        `json:"likes" db:"likes"`
	Replies      int        `json:"replies" db:"replies"`
	Reposts      int        `json:"reposts" db:"reposts"`
	Engagement   float64    `json:"engagement_score" db:"engagement_score"`
	PostedAt     *time.Time `json:"posted_at" db:"posted_at"`
	CollectedAt  time.Time  `json:"collected_at" db:"collected_at"`
}

// SocialMention is a third-party post referring to a tracked
// politician. Unique per (politician, platform, mention id).
type SocialMention struct {
	ID            int64      `json:"id" db:"id"`
	PoliticianID  int64      `json:"politician_id" db:"politician_id"`
	Platform      string     `json:"platform" db:"platform"`
	MentionID     string     `json:"mention_id" db:"mention_id"`
	AuthorName    string     `json:"author_name" db:"author_name"`
	AuthorHandle  string     `json:"author_handle" db:"author_handle"`
	Content       string     `json:"content" db:"content"`
	URL           string     `json:"url" db:"url"`
	Subject       string     `json:"subject" db:"subject"`
	SubjectDetail string     `json:"subject_detail" db:"subject_detail"`
	Sentiment     string     `json:"sentiment" db:"sentiment"`
	Likes         int        `json:"likes" db:"likes"`
	Replies       int        `json:"replies" db:"replies"`
	Reposts       int        `json:"reposts" db:"reposts"`
	Engagement    float64    `json:"engagement_score" db:"engagement_score"`
	PostedAt      *time.Time `json:"posted_at" db:"posted_at"`
	CollectedAt   time.Time  `json:"collected_at" db:"collected_at"`
}

// MentionTopic is the per-subject roll-up row for one politician and
// window. Unique per (politician, subject, period start).
type MentionTopic struct {
	ID            int64     `json:"id" db:"id"`
	PoliticianID  int64     `json:"politician_id" db:"politician_id"`
	Subject       string    `json:"subject" db:"subject"`
	Total         int       `json:"total_mentions" db:"total_mentions"`
	Positive      int       `json:"positive_mentions" db:"positive_mentions"`
	Negative      int       `json:"negative_mentions" db:"negative_mentions"`
	Neutral       int       `json:"neutral_mentions" db:"neutral_mentions"`
	EngagementSum float64   `json:"engagement_sum" db:"engagement_sum"`
	LastMentionAt time.Time `json:"last_mention_at" db:"last_mention_at"`
	PeriodStart   time.Time `json:"period_start" db:"period_start"`
	PeriodEnd     time.Time `json:"period_end" db:"period_end"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
