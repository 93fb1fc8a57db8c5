package domain

import "time"

// TrendingTopic is one entry of a category's current trend list. The
// whole category is replaced atomically on every collection run.
type TrendingTopic struct {
	ID          int64     `json:"id" db:"id"`
	Category    string    `json:"category" db:"category"`
	Rank        int       `json:"rank" db:"rank"`
	Title       string    `json:"title" db:"title"`
	Subtitle    string    `json:"subtitle" db:"subtitle"`
	CollectedAt time.Time `json:"collected_at" db:"collected_at"`
}
