package domain

import "time"

// Scope tags which coverage bucket a news item was collected for.
type Scope string

const (
	ScopePolitician Scope = "politician"
	ScopeCompetitor Scope = "competitor"
	ScopeCity       Scope = "city"
	ScopeState      Scope = "state"
	ScopeNational   Scope = "national"
)

// News is one ranked news article. CanonicalURL is the dedupe key
// across providers and aggregator runs.
type News struct {
	ID           int64      `json:"id" db:"id"`
	PoliticianID *int64     `json:"politician_id" db:"politician_id"`
	Scope        Scope      `json:"scope" db:"scope"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	FullText     string     `json:"full_text" db:"full_text"`
	URL          string     `json:"url" db:"url"`
	CanonicalURL string     `json:"canonical_url" db:"canonical_url"`
	SourceName   string     `json:"source_name" db:"source_name"`
	SourceDomain string     `json:"source_domain" db:"source_domain"`
	ImageURL     string     `json:"image_url" db:"image_url"`
	City         string     `json:"city" db:"city"`
	State        string     `json:"state" db:"state"`
	PublishedAt  *time.Time `json:"published_at" db:"published_at"`

	RelevanceScore  float64 `json:"relevance_score" db:"relevance_score"`
	RecencyScore    float64 `json:"recency_score" db:"recency_score"`
	MentionScore    float64 `json:"mention_score" db:"mention_score"`
	SourceScore     float64 `json:"source_score" db:"source_score"`
	EngagementScore float64 `json:"engagement_score" db:"engagement_score"`

	CollectedAt time.Time `json:"collected_at" db:"collected_at"`
}
