package aggregator

import (
	"context"
	"log"
	"time"

	"github.com/diretoriaja/monitor/internal/collector/trending"
	"github.com/diretoriaja/monitor/internal/domain"
)

// TrendingStore is the persistence surface the trending aggregator
// needs.
type TrendingStore interface {
	ReplaceTrendingTopics(ctx context.Context, category string, items []domain.TrendingTopic) error
}

// TrendingAggregator refreshes every trending category from its source
// chain.
type TrendingAggregator struct {
	chains map[trending.Category]*trending.Chain
	store  TrendingStore
	now    func() time.Time
}

// NewTrending builds the trending aggregator.
func NewTrending(chains map[trending.Category]*trending.Chain, store TrendingStore) *TrendingAggregator {
	return &TrendingAggregator{chains: chains, store: store, now: time.Now}
}

// Run collects each category and swaps its stored list. A category that
// comes back empty keeps its previous list.
func (a *TrendingAggregator) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	for _, category := range trending.Categories {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		chain, ok := a.chains[category]
		if !ok {
			continue
		}

		items := chain.Collect(ctx)
		if len(items) == 0 {
			log.Printf("[Trending] %s: nothing collected, keeping previous list", category)
			continue
		}

		collected := a.now().UTC()
		rows := make([]domain.TrendingTopic, 0, len(items))
		for _, item := range items {
			rows = append(rows, domain.TrendingTopic{
				Category:    string(category),
				Rank:        item.Rank,
				Title:       item.Title,
				Subtitle:    item.Subtitle,
				CollectedAt: collected,
			})
		}

		if err := a.store.ReplaceTrendingTopics(ctx, string(category), rows); err != nil {
			log.Printf("[Trending] replacing %s: %v", category, err)
			stats.Errors++
			continue
		}
		stats.National += len(rows)
	}

	return stats, nil
}
