// Package googlenews collects news candidates from the Google News RSS
// search feed and optionally fetches full article content.
package googlenews

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/pkg/httpretry"
)

const defaultBaseURL = "https://news.google.com/rss"

// Client queries the Google News RSS search endpoint. It needs no
// credentials; the feed is public but rate-limited, so requests go
// through the retrying client and honor a configurable delay.
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
	parser     *gofeed.Parser
	delay      time.Duration
	maxItems   int
}

// New creates a Google News client. A nil doer gets a retrying client
// with a 20s timeout.
func New(doer httpretry.HTTPDoer, delay time.Duration, maxItems int) *Client {
	if doer == nil {
		doer = httpretry.NewRetryClient(&http.Client{Timeout: 20 * time.Second}, 3)
	}
	if maxItems <= 0 {
		maxItems = 20
	}
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: doer,
		parser:     gofeed.NewParser(),
		delay:      delay,
		maxItems:   maxItems,
	}
}

// SetBaseURL overrides the feed base URL. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }

// SearchNews queries the RSS search feed for the given free-text query,
// localized to Brazilian Portuguese. Failures are soft: transport and
// parse errors return an empty slice with the error for the caller's log.
func (c *Client) SearchNews(ctx context.Context, query string) ([]collector.Item, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	feedURL := fmt.Sprintf("%s/search?q=%s&hl=pt-BR&gl=BR&ceid=BR:pt-419",
		c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	items := make([]collector.Item, 0, len(feed.Items))
	for i, entry := range feed.Items {
		if i >= c.maxItems {
			break
		}
		items = append(items, c.toItem(entry))
	}

	log.Printf("[GoogleNews] query %q returned %d items", query, len(items))
	return items, nil
}

func (c *Client) toItem(entry *gofeed.Item) collector.Item {
	item := collector.Item{
		Title:       cleanTitle(entry.Title),
		Description: strings.TrimSpace(entry.Description),
		URL:         entry.Link,
		PublishedAt: entry.PublishedParsed,
	}

	// The feed appends " - Source Name" to every title and carries the
	// publisher in a custom <source> element.
	if src, ok := entry.Custom["source"]; ok && src != "" {
		item.SourceName = src
	} else if name := titleSource(entry.Title); name != "" {
		item.SourceName = name
	}

	if len(entry.Enclosures) > 0 {
		item.ImageURL = entry.Enclosures[0].URL
	}
	return item
}

// cleanTitle strips the trailing " - Publisher" suffix Google News adds.
func cleanTitle(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return strings.TrimSpace(title)
}

func titleSource(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 && idx+3 < len(title) {
		return strings.TrimSpace(title[idx+3:])
	}
	return ""
}
