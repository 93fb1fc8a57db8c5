// Package trends24 scrapes Twitter/X trending topics for Brazil from
// trends24.in, which republishes the trend list without authentication.
package trends24

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/pkg/httpretry"
)

const defaultPageURL = "https://trends24.in/brazil/"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client scrapes the trends24 Brazil page.
type Client struct {
	pageURL    string
	httpClient httpretry.HTTPDoer
	maxItems   int
}

// New creates a trends24 scraper. A nil doer gets a retrying client with
// a 30s timeout.
func New(doer httpretry.HTTPDoer, maxItems int) *Client {
	if doer == nil {
		doer = httpretry.NewRetryClient(&http.Client{Timeout: 30 * time.Second}, 3)
	}
	if maxItems <= 0 {
		maxItems = 10
	}
	return &Client{pageURL: defaultPageURL, httpClient: doer, maxItems: maxItems}
}

// SetPageURL overrides the scraped page URL. Used by tests.
func (c *Client) SetPageURL(u string) { c.pageURL = u }

// Trending returns the current Twitter trend list for Brazil, ranked.
// Only the first (most recent) trend card on the page is read.
func (c *Client) Trending(ctx context.Context) ([]collector.TrendItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching trends page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing trends page: %w", err)
	}

	items := parseTrendList(doc, c.maxItems)
	if len(items) == 0 {
		return nil, fmt.Errorf("no trends found on page (markup changed?)")
	}

	log.Printf("[Trends24] scraped %d trends", len(items))
	return items, nil
}

func parseTrendList(doc *goquery.Document, maxItems int) []collector.TrendItem {
	var items []collector.TrendItem

	doc.Find("ol.trend-card__list").First().Find("li").EachWithBreak(func(i int, li *goquery.Selection) bool {
		title := strings.TrimSpace(li.Find("a").First().Text())
		if title == "" {
			title = strings.TrimSpace(li.Text())
		}
		if title == "" {
			return true
		}

		subtitle := strings.TrimSpace(li.Find(".tweet-count, span.trend-card__meta").First().Text())
		items = append(items, collector.TrendItem{
			Rank:     len(items) + 1,
			Title:    title,
			Subtitle: subtitle,
		})
		return len(items) < maxItems
	})

	return items
}
