// Package collector defines the record shapes and capability interfaces
// shared by all source adapters. Concrete adapters live in subpackages,
// one per provider.
package collector

import (
	"context"
	"time"
)

// Item is a raw news candidate as returned by a news adapter, before
// scoring and deduplication.
type Item struct {
	Title        string
	Description  string
	URL          string
	SourceName   string
	SourceDomain string
	ImageURL     string
	FullText     string
	PublishedAt  *time.Time
	Likes        int
	Comments     int
	Shares       int
	Metadata     map[string]any
}

// Article is the result of a full article fetch, used to enrich an Item
// that arrived from a feed with only headline-level data.
type Article struct {
	Title       string
	Description string
	Body        string
	ImageURL    string
	PublishedAt *time.Time
}

// Post is a social-media record: either a politician's own post or a
// third-party mention, depending on which operation produced it.
type Post struct {
	Platform        string
	PostID          string
	URL             string
	Content         string
	AuthorName      string
	AuthorHandle    string
	Likes           int
	Comments        int
	Shares          int
	Views           int
	EngagementScore float64
	MediaType       string
	MediaURL        string
	PostedAt        *time.Time
	Metadata        map[string]any
}

// TrendItem is one entry of an ordered trending list.
type TrendItem struct {
	Rank     int
	Title    string
	Subtitle string
}

// NewsSearcher is the capability of searching news by free-text query.
type NewsSearcher interface {
	SearchNews(ctx context.Context, query string) ([]Item, error)
}

// ArticleFetcher is the capability of fetching full article content.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, url string) (*Article, error)
}

// SocialSearcher is the capability of querying a social platform.
type SocialSearcher interface {
	// SearchPosts finds public posts mentioning the query text.
	SearchPosts(ctx context.Context, query string) ([]Post, error)
	// AuthorFeed returns recent posts authored by the given handle.
	AuthorFeed(ctx context.Context, handle string) ([]Post, error)
}

// TrendingSource is the capability of listing trending topics.
type TrendingSource interface {
	Trending(ctx context.Context) ([]TrendItem, error)
}
