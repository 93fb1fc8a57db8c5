package trending

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/diretoriaja/monitor/internal/analyzer"
	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/pkg/httpretry"
)

// politicalKeywords filter general headlines down to political coverage.
var politicalKeywords = []string{
	"politica", "governo", "congresso", "senado", "camara", "presidente",
	"ministro", "eleicao", "deputado", "senador", "prefeito", "governador",
	"stf", "tse", "partido", "votacao", "reforma",
}

// newsHeadlines turns recent headlines for a query into a ranked trend
// list, optionally keeping only titles matching one of the keywords.
func newsHeadlines(news collector.NewsSearcher, query string, keywords []string) collector.TrendingSource {
	if news == nil {
		return nil
	}
	return trendFunc(func(ctx context.Context) ([]collector.TrendItem, error) {
		items, err := news.SearchNews(ctx, query)
		if err != nil {
			return nil, err
		}

		var trends []collector.TrendItem
		for _, item := range items {
			if item.Title == "" {
				continue
			}
			if len(keywords) > 0 && !matchesAny(item.Title, keywords) {
				continue
			}
			trends = append(trends, collector.TrendItem{
				Rank:     len(trends) + 1,
				Title:    item.Title,
				Subtitle: item.SourceName,
			})
		}
		return trends, nil
	})
}

// headlineFrequency builds trends from the most repeated significant
// terms across recent headlines. Last resort when structured sources
// are unavailable.
func headlineFrequency(news collector.NewsSearcher, query string) collector.TrendingSource {
	if news == nil {
		return nil
	}
	return trendFunc(func(ctx context.Context) ([]collector.TrendItem, error) {
		items, err := news.SearchNews(ctx, query)
		if err != nil {
			return nil, err
		}

		counts := make(map[string]int)
		for _, item := range items {
			for _, word := range strings.Fields(analyzer.Normalize(item.Title)) {
				if len(word) <= 4 || stopwords[word] {
					continue
				}
				counts[word]++
			}
		}

		type entry struct {
			word  string
			count int
		}
		ranked := make([]entry, 0, len(counts))
		for w, n := range counts {
			if n >= 2 {
				ranked = append(ranked, entry{w, n})
			}
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].word < ranked[j].word
		})

		trends := make([]collector.TrendItem, 0, len(ranked))
		for _, e := range ranked {
			trends = append(trends, collector.TrendItem{
				Rank:     len(trends) + 1,
				Title:    capitalize(e.word),
				Subtitle: fmt.Sprintf("%d menções em manchetes", e.count),
			})
		}
		return trends, nil
	})
}

var stopwords = map[string]bool{
	"sobre": true, "depois": true, "antes": true, "ainda": true,
	"contra": true, "entre": true, "durante": true, "segundo": true,
	"brasil": true, "nesta": true, "neste": true, "apos": true,
}

// trendFunc adapts a closure to the TrendingSource interface.
type trendFunc func(ctx context.Context) ([]collector.TrendItem, error)

func (f trendFunc) Trending(ctx context.Context) ([]collector.TrendItem, error) {
	return f(ctx)
}

// GoogleTrendsRSS reads the Google Trends daily RSS feed for Brazil.
type GoogleTrendsRSS struct {
	feedURL    string
	httpClient httpretry.HTTPDoer
	parser     *gofeed.Parser
	maxItems   int
}

const defaultTrendsFeed = "https://trends.google.com/trending/rss?geo=BR"

// NewGoogleTrendsRSS creates the Google Trends feed source.
func NewGoogleTrendsRSS(doer httpretry.HTTPDoer, maxItems int) *GoogleTrendsRSS {
	if doer == nil {
		doer = httpretry.NewRetryClient(&http.Client{Timeout: 30 * time.Second}, 3)
	}
	if maxItems <= 0 {
		maxItems = 10
	}
	return &GoogleTrendsRSS{
		feedURL:    defaultTrendsFeed,
		httpClient: doer,
		parser:     gofeed.NewParser(),
		maxItems:   maxItems,
	}
}

// SetFeedURL overrides the feed URL. Used by tests.
func (g *GoogleTrendsRSS) SetFeedURL(u string) { g.feedURL = u }

// Trending returns the daily search trends, ranked in feed order. The
// approximate traffic extension becomes the subtitle when present.
func (g *GoogleTrendsRSS) Trending(ctx context.Context) ([]collector.TrendItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching trends feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends feed returned status %d", resp.StatusCode)
	}

	feed, err := g.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing trends feed: %w", err)
	}

	var items []collector.TrendItem
	for _, entry := range feed.Items {
		if len(items) >= g.maxItems {
			break
		}
		items = append(items, collector.TrendItem{
			Rank:     len(items) + 1,
			Title:    strings.TrimSpace(entry.Title),
			Subtitle: approxTraffic(entry),
		})
	}
	return items, nil
}

func approxTraffic(entry *gofeed.Item) string {
	ext, ok := entry.Extensions["ht"]
	if !ok {
		return ""
	}
	if vals, ok := ext["approx_traffic"]; ok && len(vals) > 0 {
		return vals[0].Value
	}
	return ""
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func matchesAny(title string, keywords []string) bool {
	norm := analyzer.Normalize(title)
	for _, kw := range keywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}
