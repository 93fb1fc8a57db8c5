// Package bluesky collects posts and third-party mentions from the
// BlueSky public XRPC API. No authentication is required.
package bluesky

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/pkg/httpretry"
)

const (
	defaultBaseURL = "https://public.api.bsky.app"
	platform       = "bluesky"
)

// Client queries the BlueSky public API.
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
	limit      int
	delay      time.Duration
}

// New creates a BlueSky client. A nil doer gets a retrying client with a
// 30s timeout.
func New(doer httpretry.HTTPDoer, limit int, delay time.Duration) *Client {
	if doer == nil {
		doer = httpretry.NewRetryClient(&http.Client{Timeout: 30 * time.Second}, 3)
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return &Client{baseURL: defaultBaseURL, httpClient: doer, limit: limit, delay: delay}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }

type apiPost struct {
	URI    string `json:"uri"`
	Author struct {
		Handle      string `json:"handle"`
		DisplayName string `json:"displayName"`
	} `json:"author"`
	Record struct {
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"record"`
	LikeCount   int `json:"likeCount"`
	ReplyCount  int `json:"replyCount"`
	RepostCount int `json:"repostCount"`
	Embed       *struct {
		Images []struct {
			Thumb string `json:"thumb"`
		} `json:"images"`
	} `json:"embed"`
}

type searchResponse struct {
	Posts []apiPost `json:"posts"`
}

type feedResponse struct {
	Feed []struct {
		Post apiPost `json:"post"`
	} `json:"feed"`
}

// SearchPosts finds public posts whose text matches the query. Used for
// third-party mentions of a politician's name.
func (c *Client) SearchPosts(ctx context.Context, query string) ([]collector.Post, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/xrpc/app.bsky.feed.searchPosts?q=%s&limit=%d",
		c.baseURL, url.QueryEscape(query), c.limit)

	var parsed searchResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("searching posts: %w", err)
	}

	posts := make([]collector.Post, 0, len(parsed.Posts))
	for _, p := range parsed.Posts {
		posts = append(posts, toPost(p))
	}

	log.Printf("[BlueSky] query %q returned %d posts", query, len(posts))
	return posts, nil
}

// AuthorFeed returns recent posts authored by the given handle. Used for
// a politician's own account.
func (c *Client) AuthorFeed(ctx context.Context, handle string) ([]collector.Post, error) {
	if err := c.sleep(ctx); err != nil {
		return nil, err
	}

	handle = strings.TrimPrefix(handle, "@")
	endpoint := fmt.Sprintf("%s/xrpc/app.bsky.feed.getAuthorFeed?actor=%s&limit=%d",
		c.baseURL, url.QueryEscape(handle), c.limit)

	var parsed feedResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("fetching author feed for %s: %w", handle, err)
	}

	posts := make([]collector.Post, 0, len(parsed.Feed))
	for _, entry := range parsed.Feed {
		posts = append(posts, toPost(entry.Post))
	}

	log.Printf("[BlueSky] author %s returned %d posts", handle, len(posts))
	return posts, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func (c *Client) sleep(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(c.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func toPost(p apiPost) collector.Post {
	post := collector.Post{
		Platform:     platform,
		PostID:       postID(p.URI),
		URL:          postURL(p.Author.Handle, p.URI),
		Content:      p.Record.Text,
		AuthorName:   p.Author.DisplayName,
		AuthorHandle: p.Author.Handle,
		Likes:        p.LikeCount,
		Comments:     p.ReplyCount,
		Shares:       p.RepostCount,
		MediaType:    "text",
	}

	if !p.Record.CreatedAt.IsZero() {
		t := p.Record.CreatedAt
		post.PostedAt = &t
	}
	if p.Embed != nil && len(p.Embed.Images) > 0 {
		post.MediaType = "image"
		post.MediaURL = p.Embed.Images[0].Thumb
	}

	// Replies and reposts signal stronger engagement than likes
	post.EngagementScore = float64(p.LikeCount + 2*p.ReplyCount + 3*p.RepostCount)
	return post
}

// postID extracts the record key from an AT URI:
// at://did:plc:xyz/app.bsky.feed.post/3k44deefam52a → 3k44deefam52a
func postID(uri string) string {
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

func postURL(handle, uri string) string {
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, postID(uri))
}
