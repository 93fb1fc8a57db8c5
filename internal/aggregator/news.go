// Package aggregator drives the collection pipelines: fan out to the
// source adapters, merge and dedupe, score, filter, tag, and hand the
// batch to the store. One aggregator per scope, all sharing the same
// template.
package aggregator

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/dedup"
	"github.com/diretoriaja/monitor/internal/domain"
	"github.com/diretoriaja/monitor/internal/relevance"
)

// NewsStore is the persistence surface the news aggregator needs.
type NewsStore interface {
	GetActivePoliticians(ctx context.Context) ([]domain.Politician, error)
	GetCompetitors(ctx context.Context, politicianID int64) ([]domain.Politician, error)
	UpsertNewsBatch(ctx context.Context, items []domain.News) (int, error)
}

type namedSearcher struct {
	name     string
	searcher collector.NewsSearcher
}

// NewsAggregator collects, scores and persists news for every scope.
type NewsAggregator struct {
	searchers      []namedSearcher
	engine         *relevance.Engine
	enricher       *dedup.Enricher
	store          NewsStore
	maxPerScope    int
	regionLimit    int
	maxConcurrent  int
	interItemDelay time.Duration
	now            func() time.Time
}

// NewsConfig wires a news aggregator.
type NewsConfig struct {
	Engine         *relevance.Engine
	Enricher       *dedup.Enricher
	Store          NewsStore
	MaxPerScope    int
	RegionLimit    int
	MaxConcurrent  int
	InterItemDelay time.Duration
}

// NewNews builds the news aggregator.
func NewNews(cfg NewsConfig) *NewsAggregator {
	a := &NewsAggregator{
		engine:         cfg.Engine,
		enricher:       cfg.Enricher,
		store:          cfg.Store,
		maxPerScope:    cfg.MaxPerScope,
		regionLimit:    cfg.RegionLimit,
		maxConcurrent:  cfg.MaxConcurrent,
		interItemDelay: cfg.InterItemDelay,
		now:            time.Now,
	}
	if a.maxPerScope <= 0 {
		a.maxPerScope = 20
	}
	if a.regionLimit <= 0 {
		a.regionLimit = 5
	}
	if a.maxConcurrent <= 0 {
		a.maxConcurrent = 3
	}
	if a.interItemDelay <= 0 {
		a.interItemDelay = 2 * time.Second
	}
	return a
}

// AddSearcher registers a news source adapter. Nil adapters (an
// unconfigured provider) are skipped.
func (a *NewsAggregator) AddSearcher(name string, s collector.NewsSearcher) {
	if s == nil {
		return
	}
	a.searchers = append(a.searchers, namedSearcher{name: name, searcher: s})
}

// fanOut runs every (searcher, query) pair concurrently under a bounded
// semaphore and merges the results. Failures are logged and count as
// empty.
func (a *NewsAggregator) fanOut(ctx context.Context, queries []string) []collector.Item {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []collector.Item
	)
	sem := make(chan struct{}, a.maxConcurrent)

	for _, s := range a.searchers {
		for _, q := range queries {
			wg.Add(1)
			go func(s namedSearcher, q string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				found, err := s.searcher.SearchNews(ctx, q)
				if err != nil {
					log.Printf("[Aggregator] %s search %q failed: %v", s.name, q, err)
					return
				}
				mu.Lock()
				items = append(items, found...)
				mu.Unlock()
			}(s, q)
		}
	}
	wg.Wait()
	return items
}

// CollectForPolitician runs the politician-scoped pipeline: fan out on
// the politician's queries, dedupe, score against the name, drop items
// that never mention them, and keep the top scored.
func (a *NewsAggregator) CollectForPolitician(ctx context.Context, p domain.Politician, scope domain.Scope) []domain.News {
	items := dedup.Dedupe(a.fanOut(ctx, politicianQueries(p)))

	var out []domain.News
	for _, item := range items {
		scores := a.engine.Score(scoreInput(item, p.SearchName()))
		if !relevance.KeepQuality(scores) {
			continue
		}
		out = append(out, a.toNews(item, scores, scope, &p.ID, p.City, p.State))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	if len(out) > a.maxPerScope {
		out = out[:a.maxPerScope]
	}
	return out
}

// collectRegion runs the region pipeline shared by city, state and
// national scopes: dedupe, score without a name, pick the latest item
// per portal, then enrich the survivors.
func (a *NewsAggregator) collectRegion(ctx context.Context, queries []string, scope domain.Scope, city, state string) []domain.News {
	items := dedup.Dedupe(a.fanOut(ctx, queries))
	items = dedup.SelectLatestUnique(items, a.regionLimit)
	if a.enricher != nil {
		items = a.enricher.Enrich(ctx, items)
	}

	var out []domain.News
	for _, item := range items {
		scores := a.engine.Score(scoreInput(item, ""))
		out = append(out, a.toNews(item, scores, scope, nil, city, state))
	}
	return out
}

func scoreInput(item collector.Item, name string) relevance.Input {
	return relevance.Input{
		Title:          item.Title,
		Body:           item.FullText,
		PoliticianName: name,
		SourceDomain:   sourceDomain(item),
		PublishedAt:    item.PublishedAt,
		Likes:          item.Likes,
		Comments:       item.Comments,
		Shares:         item.Shares,
	}
}

func sourceDomain(item collector.Item) string {
	if item.SourceDomain != "" {
		return item.SourceDomain
	}
	return dedup.Host(item.URL)
}

func (a *NewsAggregator) toNews(item collector.Item, s relevance.Scores, scope domain.Scope, politicianID *int64, city, state string) domain.News {
	return domain.News{
		PoliticianID:    politicianID,
		Scope:           scope,
		City:            city,
		State:           state,
		Title:           item.Title,
		Description:     item.Description,
		FullText:        item.FullText,
		URL:             item.URL,
		CanonicalURL:    dedup.CanonicalURL(item.URL),
		SourceName:      item.SourceName,
		SourceDomain:    sourceDomain(item),
		ImageURL:        item.ImageURL,
		PublishedAt:     item.PublishedAt,
		RelevanceScore:  s.Composite,
		RecencyScore:    s.Recency,
		MentionScore:    s.Mention,
		SourceScore:     s.Source,
		EngagementScore: s.Engagement,
		CollectedAt:     a.now().UTC(),
	}
}

// Stats tallies one full collection run.
type Stats struct {
	Politicians int
	Competitors int
	Cities      int
	States      int
	National    int
	Errors      int
}

// Run executes the full news collection: every active politician, their
// competitors, and each region at most once per run.
func (a *NewsAggregator) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	politicians, err := a.store.GetActivePoliticians(ctx)
	if err != nil {
		return stats, err
	}
	log.Printf("[Aggregator] starting news run for %d politicians", len(politicians))

	seenCities := make(map[string]bool)
	seenStates := make(map[string]bool)
	collectNational := false

	for _, p := range politicians {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if p.Name == "" {
			continue
		}
		scope := scopeFor(p.Office)

		if news := a.CollectForPolitician(ctx, p, domain.ScopePolitician); len(news) > 0 {
			n, err := a.store.UpsertNewsBatch(ctx, news)
			if err != nil {
				log.Printf("[Aggregator] persisting news for %s: %v", p.Name, err)
				stats.Errors++
			} else {
				stats.Politicians += n
			}
		}

		stats.Competitors += a.collectCompetitors(ctx, p, &stats)

		if scope.state && p.State != "" && !seenStates[p.State] {
			seenStates[p.State] = true
			if news := a.collectRegion(ctx, stateQueries(p.State), domain.ScopeState, "", p.State); len(news) > 0 {
				n, err := a.store.UpsertNewsBatch(ctx, news)
				if err != nil {
					stats.Errors++
				} else {
					stats.States += n
				}
			}
		}

		if city := cityFor(p); scope.city && city != "" && !seenCities[city] {
			seenCities[city] = true
			if news := a.collectRegion(ctx, cityQueries(city, p.State), domain.ScopeCity, city, p.State); len(news) > 0 {
				n, err := a.store.UpsertNewsBatch(ctx, news)
				if err != nil {
					stats.Errors++
				} else {
					stats.Cities += n
				}
			}
		}

		if scope.national {
			collectNational = true
		}

		if !sleep(ctx, a.interItemDelay) {
			return stats, ctx.Err()
		}
	}

	if collectNational {
		if news := a.collectRegion(ctx, nationalQueries, domain.ScopeNational, "", ""); len(news) > 0 {
			n, err := a.store.UpsertNewsBatch(ctx, news)
			if err != nil {
				stats.Errors++
			} else {
				stats.National += n
			}
		}
	}

	log.Printf("[Aggregator] news run done: %+v", stats)
	return stats, nil
}

// collectCompetitors runs the politician pipeline per competitor with a
// short delay between them, tagging results scope=competitor.
func (a *NewsAggregator) collectCompetitors(ctx context.Context, p domain.Politician, stats *Stats) int {
	competitors, err := a.store.GetCompetitors(ctx, p.ID)
	if err != nil {
		log.Printf("[Aggregator] fetching competitors for %s: %v", p.Name, err)
		stats.Errors++
		return 0
	}

	total := 0
	for _, c := range competitors {
		news := a.CollectForPolitician(ctx, c, domain.ScopeCompetitor)
		for i := range news {
			// Competitor rows hang off the tracked politician.
			news[i].PoliticianID = &p.ID
		}
		if len(news) > 0 {
			n, err := a.store.UpsertNewsBatch(ctx, news)
			if err != nil {
				stats.Errors++
				continue
			}
			total += n
		}
		if !sleep(ctx, a.interItemDelay/2) {
			return total
		}
	}
	return total
}

// sleep waits unless the context ends first. Returns false on
// cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
