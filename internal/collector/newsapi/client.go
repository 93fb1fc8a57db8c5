// Package newsapi collects news candidates from newsapi.org. The adapter
// is optional: without an API key it is simply not registered.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/pkg/httpretry"
)

const defaultBaseURL = "https://newsapi.org/v2"

// Client talks to the NewsAPI "everything" endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
	pageSize   int
}

// New creates a NewsAPI client. A nil doer gets a retrying client with a
// 20s timeout.
func New(apiKey string, doer httpretry.HTTPDoer, pageSize int) *Client {
	if doer == nil {
		doer = httpretry.NewRetryClient(&http.Client{Timeout: 20 * time.Second}, 3)
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: doer,
		pageSize:   pageSize,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }

type searchResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		URL         string     `json:"url"`
		URLToImage  string     `json:"urlToImage"`
		PublishedAt *time.Time `json:"publishedAt"`
		Content     string     `json:"content"`
	} `json:"articles"`
}

// SearchNews queries the everything endpoint for Portuguese-language
// articles sorted by publication date.
func (c *Client) SearchNews(ctx context.Context, query string) ([]collector.Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "pt")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", c.pageSize))

	endpoint := fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying newsapi: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", parsed.Code, parsed.Message)
	}

	items := make([]collector.Item, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.URL == "" {
			continue
		}
		items = append(items, collector.Item{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			SourceName:  a.Source.Name,
			ImageURL:    a.URLToImage,
			FullText:    a.Content,
			PublishedAt: a.PublishedAt,
		})
	}

	log.Printf("[NewsAPI] query %q returned %d of %d articles", query, len(items), parsed.TotalResults)
	return items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
