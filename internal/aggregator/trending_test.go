package aggregator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/collector/trending"
	"github.com/diretoriaja/monitor/internal/domain"
)

type fakeTrendingStore struct {
	replaced map[string][]domain.TrendingTopic
	err      error
}

func (f *fakeTrendingStore) ReplaceTrendingTopics(_ context.Context, category string, items []domain.TrendingTopic) error {
	if f.err != nil {
		return f.err
	}
	if f.replaced == nil {
		f.replaced = make(map[string][]domain.TrendingTopic)
	}
	f.replaced[category] = items
	return nil
}

type fixedTrends struct{ items []collector.TrendItem }

func (f fixedTrends) Trending(context.Context) ([]collector.TrendItem, error) {
	return f.items, nil
}

func trendItems(titles ...string) []collector.TrendItem {
	out := make([]collector.TrendItem, len(titles))
	for i, title := range titles {
		out[i] = collector.TrendItem{Rank: i + 1, Title: title}
	}
	return out
}

func politicalHeadlines() []collector.Item {
	titles := []string{
		"Congresso aprova reforma tributária",
		"Governo anuncia novo ministro",
		"Senado vota projeto de segurança",
		"Presidente viaja ao Nordeste",
		"Câmara discute eleição antecipada",
	}
	items := make([]collector.Item, len(titles))
	for i, title := range titles {
		items[i] = collector.Item{Title: title, SourceName: "G1"}
	}
	return items
}

func TestTrendingRunReplacesEachCategory(t *testing.T) {
	news := &fakeNewsSearcher{items: map[string][]collector.Item{
		"política brasil": politicalHeadlines(),
		"brasil":          politicalHeadlines(),
	}}
	chains := trending.NewChains(trending.Config{
		News:         news,
		Twitter:      fixedTrends{items: trendItems("#ForaChuva", "#Enem", "#Futebol")},
		GoogleTrends: fixedTrends{items: trendItems("eleições 2026", "salário mínimo", "vacina")},
	})

	store := &fakeTrendingStore{}
	a := NewTrending(chains, store)

	stats, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Errors)

	require.Contains(t, store.replaced, "politica")
	require.Contains(t, store.replaced, "twitter")
	require.Contains(t, store.replaced, "google")

	politics := store.replaced["politica"]
	require.NotEmpty(t, politics)
	assert.Equal(t, 1, politics[0].Rank)
	assert.Equal(t, "politica", politics[0].Category)
	assert.False(t, politics[0].CollectedAt.IsZero())
}

func TestTrendingRunKeepsPreviousListWhenEmpty(t *testing.T) {
	news := &fakeNewsSearcher{items: map[string][]collector.Item{}}
	chains := trending.NewChains(trending.Config{News: news})

	store := &fakeTrendingStore{}
	a := NewTrending(chains, store)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, store.replaced, "politica")
}
