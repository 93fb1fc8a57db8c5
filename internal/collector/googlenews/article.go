package googlenews

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/diretoriaja/monitor/internal/collector"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyChars caps stored article bodies. Longer texts add nothing to
// mention counting and bloat the news table.
const maxBodyChars = 10000

// FetchArticle downloads an article page and extracts title, description,
// body text, hero image, and publication date from its markup. Best
// effort: any missing piece stays empty.
func (c *Client) FetchArticle(ctx context.Context, articleURL string) (*collector.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building article request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing article HTML: %w", err)
	}

	return extractArticle(doc), nil
}

func extractArticle(doc *goquery.Document) *collector.Article {
	article := &collector.Article{}

	article.Title = metaContent(doc, `meta[property="og:title"]`)
	if article.Title == "" {
		article.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	article.Description = metaContent(doc, `meta[property="og:description"]`)
	if article.Description == "" {
		article.Description = metaContent(doc, `meta[name="description"]`)
	}

	article.ImageURL = metaContent(doc, `meta[property="og:image"]`)

	if published := metaContent(doc, `meta[property="article:published_time"]`); published != "" {
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			article.PublishedAt = &t
		}
	}

	article.Body = extractBody(doc)
	return article
}

// extractBody joins paragraph text, preferring <article> content over
// the whole page.
func extractBody(doc *goquery.Document) string {
	scope := doc.Find("article")
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var parts []string
	total := 0
	scope.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		// Skip boilerplate snippets (cookie notices, captions)
		if len(text) < 40 {
			return true
		}
		parts = append(parts, text)
		total += len(text)
		return total < maxBodyChars
	})

	body := strings.Join(parts, "\n\n")
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}
	return body
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
