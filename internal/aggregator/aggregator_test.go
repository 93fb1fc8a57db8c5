package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/domain"
	"github.com/diretoriaja/monitor/internal/relevance"
	"github.com/diretoriaja/monitor/internal/topics"
)

type flatTrust struct{ w float64 }

func (f flatTrust) Weight(string) float64 { return f.w }

func testEngine(t *testing.T) *relevance.Engine {
	t.Helper()
	w, err := relevance.Preset("default")
	require.NoError(t, err)
	engine, err := relevance.NewEngine(w, flatTrust{w: 1.0}, 85)
	require.NoError(t, err)
	return engine
}

type fakeNewsSearcher struct {
	items   map[string][]collector.Item
	queries []string
	err     error
}

func (f *fakeNewsSearcher) SearchNews(_ context.Context, query string) ([]collector.Item, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.items[query], nil
}

type fakeNewsStore struct {
	politicians []domain.Politician
	competitors map[int64][]domain.Politician
	batches     [][]domain.News
	upsertErr   error
}

func (f *fakeNewsStore) GetActivePoliticians(context.Context) ([]domain.Politician, error) {
	return f.politicians, nil
}

func (f *fakeNewsStore) GetCompetitors(_ context.Context, id int64) ([]domain.Politician, error) {
	return f.competitors[id], nil
}

func (f *fakeNewsStore) UpsertNewsBatch(_ context.Context, items []domain.News) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.batches = append(f.batches, items)
	return len(items), nil
}

func recentItem(title, url string) collector.Item {
	published := time.Now().Add(-2 * time.Hour)
	return collector.Item{
		Title:       title,
		URL:         url,
		FullText:    title,
		PublishedAt: &published,
	}
}

func newTestNews(store *fakeNewsStore, t *testing.T) *NewsAggregator {
	a := NewNews(NewsConfig{
		Engine:         testEngine(t),
		Store:          store,
		InterItemDelay: time.Nanosecond,
	})
	return a
}

func TestScopeRouting(t *testing.T) {
	federal := scopeFor(domain.OfficeSenador)
	assert.True(t, federal.national)
	assert.True(t, federal.state)
	assert.True(t, federal.city)

	mayor := scopeFor(domain.OfficePrefeito)
	assert.False(t, mayor.national)
	assert.True(t, mayor.state)
	assert.True(t, mayor.city)

	unknown := scopeFor(domain.Office("secretario"))
	assert.False(t, unknown.national)
	assert.False(t, unknown.state)
	assert.True(t, unknown.city)
}

func TestCityFallsBackToCapital(t *testing.T) {
	p := domain.Politician{State: "CE"}
	assert.Equal(t, "Fortaleza", cityFor(p))

	p.City = "Sobral"
	assert.Equal(t, "Sobral", cityFor(p))
}

func TestPoliticianQueries(t *testing.T) {
	p := domain.Politician{Name: "João Silva", SocialName: "João do Povo", City: "Campinas", State: "SP"}
	q := politicianQueries(p)
	require.Len(t, q, 2)
	assert.Equal(t, "João do Povo", q[0])
	assert.Equal(t, "João do Povo Campinas", q[1])
}

func TestStateQueriesUseFullName(t *testing.T) {
	q := stateQueries("MG")
	require.Len(t, q, 3)
	assert.Equal(t, "política Minas Gerais", q[0])
	assert.Equal(t, "governo Minas Gerais", q[1])
	assert.Equal(t, "assembleia legislativa MG", q[2])
}

func TestCollectForPoliticianFiltersAndRanks(t *testing.T) {
	p := domain.Politician{ID: 7, Name: "Maria Souza", City: "Recife", State: "PE"}
	searcher := &fakeNewsSearcher{items: map[string][]collector.Item{
		"Maria Souza": {
			recentItem("Maria Souza anuncia obras", "https://g1.globo.com/a"),
			recentItem("Previsão do tempo no Recife", "https://g1.globo.com/b"),
		},
	}}

	a := newTestNews(&fakeNewsStore{}, t)
	a.AddSearcher("gnews", searcher)

	news := a.CollectForPolitician(context.Background(), p, domain.ScopePolitician)
	require.Len(t, news, 1)
	assert.Equal(t, "Maria Souza anuncia obras", news[0].Title)
	assert.Equal(t, domain.ScopePolitician, news[0].Scope)
	require.NotNil(t, news[0].PoliticianID)
	assert.Equal(t, int64(7), *news[0].PoliticianID)
	assert.NotEmpty(t, news[0].CanonicalURL)
}

func TestFanOutSurvivesFailingSearcher(t *testing.T) {
	p := domain.Politician{ID: 1, Name: "Ana Lima", City: "Natal", State: "RN"}
	broken := &fakeNewsSearcher{err: errors.New("rate limited")}
	working := &fakeNewsSearcher{items: map[string][]collector.Item{
		"Ana Lima": {recentItem("Ana Lima vota projeto", "https://folha.com/x")},
	}}

	a := newTestNews(&fakeNewsStore{}, t)
	a.AddSearcher("broken", broken)
	a.AddSearcher("working", working)

	news := a.CollectForPolitician(context.Background(), p, domain.ScopePolitician)
	require.Len(t, news, 1)
	assert.Equal(t, "Ana Lima vota projeto", news[0].Title)
}

func TestRunCollectsEachRegionOnce(t *testing.T) {
	store := &fakeNewsStore{politicians: []domain.Politician{
		{ID: 1, Name: "A Um", Office: domain.OfficeDeputadoEstadual, City: "Santos", State: "SP"},
		{ID: 2, Name: "B Dois", Office: domain.OfficeDeputadoEstadual, City: "Santos", State: "SP"},
	}}
	searcher := &fakeNewsSearcher{items: map[string][]collector.Item{}}

	a := newTestNews(store, t)
	a.AddSearcher("gnews", searcher)

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	stateCalls := 0
	for _, q := range searcher.queries {
		if q == "política São Paulo" {
			stateCalls++
		}
	}
	assert.Equal(t, 1, stateCalls, "shared state should be searched once per run")
}

func TestCompetitorNewsTaggedToTrackedPolitician(t *testing.T) {
	store := &fakeNewsStore{
		politicians: []domain.Politician{
			{ID: 1, Name: "Carlos Prado", Office: domain.OfficeVereador, City: "Niterói", State: "RJ"},
		},
		competitors: map[int64][]domain.Politician{
			1: {{ID: 9, Name: "Rival Rocha", City: "Niterói", State: "RJ"}},
		},
	}
	searcher := &fakeNewsSearcher{items: map[string][]collector.Item{
		"Rival Rocha": {recentItem("Rival Rocha lança campanha", "https://oglobo.com/r")},
	}}

	a := newTestNews(store, t)
	a.AddSearcher("gnews", searcher)

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	var competitorRows []domain.News
	for _, batch := range store.batches {
		for _, n := range batch {
			if n.Scope == domain.ScopeCompetitor {
				competitorRows = append(competitorRows, n)
			}
		}
	}
	require.Len(t, competitorRows, 1)
	require.NotNil(t, competitorRows[0].PoliticianID)
	assert.Equal(t, int64(1), *competitorRows[0].PoliticianID)
}

type fakeSocialSearcher struct {
	feed    map[string][]collector.Post
	search  map[string][]collector.Post
	feedErr error
}

func (f *fakeSocialSearcher) SearchPosts(_ context.Context, query string) ([]collector.Post, error) {
	return f.search[query], nil
}

func (f *fakeSocialSearcher) AuthorFeed(_ context.Context, handle string) ([]collector.Post, error) {
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	return f.feed[handle], nil
}

type fakeSocialStore struct {
	featured []domain.Politician
	active   []domain.Politician
	posts    []domain.SocialPost
	mentions []domain.SocialMention
	window   []domain.SocialMention
	topics   []domain.MentionTopic
}

func (f *fakeSocialStore) GetFeaturedPoliticians(context.Context) ([]domain.Politician, error) {
	return f.featured, nil
}

func (f *fakeSocialStore) GetActivePoliticians(context.Context) ([]domain.Politician, error) {
	return f.active, nil
}

func (f *fakeSocialStore) UpsertSocialPostsBatch(_ context.Context, posts []domain.SocialPost) (int, error) {
	f.posts = append(f.posts, posts...)
	return len(posts), nil
}

func (f *fakeSocialStore) UpsertSocialMentionsBatch(_ context.Context, mentions []domain.SocialMention) (int, error) {
	f.mentions = append(f.mentions, mentions...)
	f.window = append(f.window, mentions...)
	return len(mentions), nil
}

func (f *fakeSocialStore) GetMentionsInWindow(context.Context, int64, time.Time, time.Time) ([]domain.SocialMention, error) {
	return f.window, nil
}

func (f *fakeSocialStore) UpsertMentionTopic(_ context.Context, t domain.MentionTopic) error {
	f.topics = append(f.topics, t)
	return nil
}

func socialPost(id, handle, content string) collector.Post {
	posted := time.Now().Add(-time.Hour)
	return collector.Post{
		Platform:     "bluesky",
		PostID:       id,
		AuthorHandle: handle,
		Content:      content,
		Likes:        3,
		PostedAt:     &posted,
	}
}

func TestPostsRunSkipsPoliticiansWithoutHandle(t *testing.T) {
	store := &fakeSocialStore{featured: []domain.Politician{
		{ID: 1, Name: "Com Handle", BlueSkyHandle: "comhandle.bsky.social"},
		{ID: 2, Name: "Sem Handle"},
	}}
	searcher := &fakeSocialSearcher{feed: map[string][]collector.Post{
		"comhandle.bsky.social": {socialPost("p1", "comhandle.bsky.social", "bom dia")},
	}}

	a := NewPosts("bluesky", searcher, store)
	a.interItemDelay = time.Nanosecond

	stats, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Politicians)
	require.Len(t, store.posts, 1)
	assert.Equal(t, int64(1), store.posts[0].PoliticianID)
	assert.Equal(t, "bluesky", store.posts[0].Platform)
}

func TestPostsRunCapsPerAccount(t *testing.T) {
	var feed []collector.Post
	for i := 0; i < 25; i++ {
		feed = append(feed, socialPost(string(rune('a'+i)), "h.bsky.social", "post"))
	}
	store := &fakeSocialStore{featured: []domain.Politician{
		{ID: 1, Name: "P", BlueSkyHandle: "h.bsky.social"},
	}}
	searcher := &fakeSocialSearcher{feed: map[string][]collector.Post{"h.bsky.social": feed}}

	a := NewPosts("bluesky", searcher, store)
	a.interItemDelay = time.Nanosecond

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.posts, 10)
}

func TestPostsRunIsolatesFeedErrors(t *testing.T) {
	store := &fakeSocialStore{featured: []domain.Politician{
		{ID: 1, Name: "Quebrado", BlueSkyHandle: "quebrado.bsky.social"},
	}}
	searcher := &fakeSocialSearcher{feedErr: errors.New("upstream down")}

	a := NewPosts("bluesky", searcher, store)
	a.interItemDelay = time.Nanosecond

	stats, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Empty(t, store.posts)
}

type cannedClassifier struct {
	result topics.Classification
	seen   [][]string
}

func (c *cannedClassifier) ClassifyBatch(_ context.Context, contents []string, _ string) []topics.Classification {
	c.seen = append(c.seen, contents)
	out := make([]topics.Classification, len(contents))
	for i := range out {
		out[i] = c.result
	}
	return out
}

func TestMentionsRunExcludesOwnPosts(t *testing.T) {
	store := &fakeSocialStore{active: []domain.Politician{
		{ID: 3, Name: "Dora Pires", BlueSkyHandle: "dora.bsky.social"},
	}}
	searcher := &fakeSocialSearcher{search: map[string][]collector.Post{
		"Dora Pires": {
			socialPost("m1", "eleitor.bsky.social", "Dora Pires melhorou a saúde"),
			socialPost("m2", "DORA.bsky.social", "obrigada pelo apoio"),
		},
	}}
	classifier := &cannedClassifier{result: topics.Classification{
		Subject: "Health", Sentiment: topics.SentimentPositive,
	}}

	a := NewMentions("bluesky", searcher, classifier, store)
	a.interItemDelay = time.Nanosecond

	stats, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Politicians)
	require.Len(t, store.mentions, 1)
	assert.Equal(t, "m1", store.mentions[0].MentionID)
	assert.Equal(t, "Health", store.mentions[0].Subject)
	assert.Equal(t, topics.SentimentPositive, store.mentions[0].Sentiment)
}

func TestMentionsRunRollsUpWindow(t *testing.T) {
	store := &fakeSocialStore{active: []domain.Politician{
		{ID: 3, Name: "Dora Pires"},
	}}
	searcher := &fakeSocialSearcher{search: map[string][]collector.Post{
		"Dora Pires": {
			socialPost("m1", "a.bsky.social", "saúde está melhor com Dora Pires"),
			socialPost("m2", "b.bsky.social", "Dora Pires investiu em hospitais"),
		},
	}}
	classifier := &cannedClassifier{result: topics.Classification{
		Subject: "Health", Sentiment: topics.SentimentPositive,
	}}

	a := NewMentions("bluesky", searcher, classifier, store)
	a.interItemDelay = time.Nanosecond

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.topics, 1)
	top := store.topics[0]
	assert.Equal(t, int64(3), top.PoliticianID)
	assert.Equal(t, "Health", top.Subject)
	assert.Equal(t, 2, top.Total)
	assert.Equal(t, 2, top.Positive)
}

func TestMentionsNilClassifierDefaults(t *testing.T) {
	store := &fakeSocialStore{active: []domain.Politician{{ID: 1, Name: "Beto Cruz"}}}
	searcher := &fakeSocialSearcher{search: map[string][]collector.Post{
		"Beto Cruz": {socialPost("m1", "x.bsky.social", "Beto Cruz apareceu na TV hoje")},
	}}

	a := NewMentions("bluesky", searcher, nil, store)
	a.interItemDelay = time.Nanosecond

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, store.mentions, 1)
	assert.Equal(t, topics.SubjectOther, store.mentions[0].Subject)
	assert.Equal(t, topics.SentimentNeutral, store.mentions[0].Sentiment)
}
