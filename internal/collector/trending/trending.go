// Package trending assembles per-category trending-topic lists. Each
// category tries its sources in priority order and keeps the first
// result that clears a minimum size, so a broken scrape degrades to a
// feed and finally to headline frequency instead of an empty list.
package trending

import (
	"context"
	"log"

	"github.com/diretoriaja/monitor/internal/collector"
)

// Category names one trending list. Each run replaces the category's
// rows in the store.
type Category string

const (
	CategoryPolitics Category = "politica"
	CategoryGeneral  Category = "geral"
	CategoryTwitter  Category = "twitter"
	CategoryGoogle   Category = "google"
)

// Categories lists all trending categories in collection order.
var Categories = []Category{CategoryPolitics, CategoryGeneral, CategoryTwitter, CategoryGoogle}

type namedSource struct {
	name   string
	source collector.TrendingSource
}

// Chain is the prioritized source list for one category.
type Chain struct {
	category   Category
	sources    []namedSource
	minResults int
	maxResults int
}

// Collect walks the chain and returns the first result with at least
// minResults entries. Failing sources are logged and skipped; when every
// source falls short, the largest partial result is returned.
func (c *Chain) Collect(ctx context.Context) []collector.TrendItem {
	var best []collector.TrendItem

	for _, s := range c.sources {
		if ctx.Err() != nil {
			break
		}

		items, err := s.source.Trending(ctx)
		if err != nil {
			log.Printf("[Trending] %s source %s failed: %v", c.category, s.name, err)
			continue
		}
		if len(items) > c.maxResults {
			items = items[:c.maxResults]
		}

		if len(items) >= c.minResults {
			log.Printf("[Trending] %s: using %s (%d items)", c.category, s.name, len(items))
			return rerank(items)
		}
		if len(items) > len(best) {
			best = items
		}
		log.Printf("[Trending] %s source %s returned only %d items, trying next", c.category, s.name, len(items))
	}

	return rerank(best)
}

// Category returns the chain's category tag.
func (c *Chain) Category() Category { return c.category }

// rerank rewrites ranks 1..n after truncation or partial results.
func rerank(items []collector.TrendItem) []collector.TrendItem {
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

// Config carries the adapters the chains are built from. Twitter may be
// nil when scraping is disabled; its chain then starts at the fallback.
type Config struct {
	News         collector.NewsSearcher
	Twitter      collector.TrendingSource
	GoogleTrends collector.TrendingSource
	MaxPerChain  int
}

// NewChains wires the default source priority for every category.
func NewChains(cfg Config) map[Category]*Chain {
	maxResults := cfg.MaxPerChain
	if maxResults <= 0 {
		maxResults = 10
	}

	politics := &Chain{category: CategoryPolitics, minResults: 5, maxResults: maxResults}
	politics.add("headlines", newsHeadlines(cfg.News, "política brasil", politicalKeywords))
	politics.add("frequency", headlineFrequency(cfg.News, "política brasil"))

	general := &Chain{category: CategoryGeneral, minResults: 5, maxResults: maxResults}
	general.add("headlines", newsHeadlines(cfg.News, "brasil", nil))
	general.add("frequency", headlineFrequency(cfg.News, "notícias brasil"))

	twitter := &Chain{category: CategoryTwitter, minResults: 3, maxResults: maxResults}
	if cfg.Twitter != nil {
		twitter.add("trends24", cfg.Twitter)
	}
	twitter.add("frequency", headlineFrequency(cfg.News, "redes sociais brasil"))

	google := &Chain{category: CategoryGoogle, minResults: 3, maxResults: maxResults}
	if cfg.GoogleTrends != nil {
		google.add("trends-rss", cfg.GoogleTrends)
	}
	google.add("frequency", headlineFrequency(cfg.News, "brasil"))

	return map[Category]*Chain{
		CategoryPolitics: politics,
		CategoryGeneral:  general,
		CategoryTwitter:  twitter,
		CategoryGoogle:   google,
	}
}

func (c *Chain) add(name string, source collector.TrendingSource) {
	if source == nil {
		return
	}
	c.sources = append(c.sources, namedSource{name: name, source: source})
}
