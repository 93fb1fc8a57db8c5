package aggregator

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/domain"
	"github.com/diretoriaja/monitor/internal/topics"
)

// SocialStore is the persistence surface the social aggregators need.
type SocialStore interface {
	GetFeaturedPoliticians(ctx context.Context) ([]domain.Politician, error)
	GetActivePoliticians(ctx context.Context) ([]domain.Politician, error)
	UpsertSocialPostsBatch(ctx context.Context, posts []domain.SocialPost) (int, error)
	UpsertSocialMentionsBatch(ctx context.Context, mentions []domain.SocialMention) (int, error)
	GetMentionsInWindow(ctx context.Context, politicianID int64, start, end time.Time) ([]domain.SocialMention, error)
	UpsertMentionTopic(ctx context.Context, t domain.MentionTopic) error
}

// PostsAggregator pulls each featured politician's own feed and stores
// the recent posts.
type PostsAggregator struct {
	platform       string
	searcher       collector.SocialSearcher
	store          SocialStore
	maxPerAccount  int
	interItemDelay time.Duration
	now            func() time.Time
}

// NewPosts builds the own-posts aggregator for one platform.
func NewPosts(platform string, searcher collector.SocialSearcher, store SocialStore) *PostsAggregator {
	return &PostsAggregator{
		platform:       platform,
		searcher:       searcher,
		store:          store,
		maxPerAccount:  10,
		interItemDelay: 5 * time.Second,
		now:            time.Now,
	}
}

// Run collects the author feed of every featured politician with a
// configured handle on this platform.
func (a *PostsAggregator) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	politicians, err := a.store.GetFeaturedPoliticians(ctx)
	if err != nil {
		return stats, err
	}
	log.Printf("[Social] starting posts run for %d featured politicians", len(politicians))

	for _, p := range politicians {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		handle := handleFor(p, a.platform)
		if handle == "" {
			continue
		}

		posts, err := a.searcher.AuthorFeed(ctx, handle)
		if err != nil {
			log.Printf("[Social] %s feed for %s failed: %v", a.platform, handle, err)
			stats.Errors++
			continue
		}
		if len(posts) > a.maxPerAccount {
			posts = posts[:a.maxPerAccount]
		}

		batch := make([]domain.SocialPost, 0, len(posts))
		for _, post := range posts {
			batch = append(batch, a.toPost(post, p.ID))
		}
		n, err := a.store.UpsertSocialPostsBatch(ctx, batch)
		if err != nil {
			log.Printf("[Social] persisting posts for %s: %v", p.Name, err)
			stats.Errors++
			continue
		}
		stats.Politicians += n

		if !sleep(ctx, a.interItemDelay) {
			return stats, ctx.Err()
		}
	}

	log.Printf("[Social] posts run done: %d posts, %d errors", stats.Politicians, stats.Errors)
	return stats, nil
}

func (a *PostsAggregator) toPost(post collector.Post, politicianID int64) domain.SocialPost {
	return domain.SocialPost{
		PoliticianID: politicianID,
		Platform:     platformOf(post, a.platform),
		PostID:       post.PostID,
		AuthorName:   post.AuthorName,
		AuthorHandle: post.AuthorHandle,
		Content:      post.Content,
		URL:          post.URL,
		MediaURL:     post.MediaURL,
		MediaType:    post.MediaType,
		Likes:        post.Likes,
		Replies:      post.Comments,
		Reposts:      post.Shares,
		Engagement:   post.EngagementScore,
		PostedAt:     post.PostedAt,
		CollectedAt:  a.now().UTC(),
	}
}

// MentionsAggregator searches each platform for third-party posts
// naming a tracked politician, classifies them and rolls the window up
// into per-subject counters.
type MentionsAggregator struct {
	platform       string
	searcher       collector.SocialSearcher
	classifier     topics.Classifier
	store          SocialStore
	window         time.Duration
	interItemDelay time.Duration
	now            func() time.Time
}

// NewMentions builds the mentions aggregator for one platform. A nil
// classifier degrades to the default classification.
func NewMentions(platform string, searcher collector.SocialSearcher, classifier topics.Classifier, store SocialStore) *MentionsAggregator {
	if classifier == nil {
		classifier = topics.NopClassifier{}
	}
	return &MentionsAggregator{
		platform:       platform,
		searcher:       searcher,
		classifier:     classifier,
		store:          store,
		window:         7 * 24 * time.Hour,
		interItemDelay: 2 * time.Second,
		now:            time.Now,
	}
}

// Run searches mentions for every active politician, classifies and
// stores them, then refreshes the politician's topic roll-up.
func (a *MentionsAggregator) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	politicians, err := a.store.GetActivePoliticians(ctx)
	if err != nil {
		return stats, err
	}
	log.Printf("[Social] starting mentions run for %d politicians", len(politicians))

	for _, p := range politicians {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if p.Name == "" {
			continue
		}

		n, err := a.collectMentions(ctx, p)
		if err != nil {
			log.Printf("[Social] mentions for %s: %v", p.Name, err)
			stats.Errors++
		} else {
			stats.Politicians += n
		}

		if err := a.rollUpTopics(ctx, p.ID); err != nil {
			log.Printf("[Social] topic roll-up for %s: %v", p.Name, err)
			stats.Errors++
		}

		if !sleep(ctx, a.interItemDelay) {
			return stats, ctx.Err()
		}
	}

	log.Printf("[Social] mentions run done: %d mentions, %d errors", stats.Politicians, stats.Errors)
	return stats, nil
}

// collectMentions searches, drops the politician's own posts, enriches
// with the classifier and persists the batch.
func (a *MentionsAggregator) collectMentions(ctx context.Context, p domain.Politician) (int, error) {
	found, err := a.searcher.SearchPosts(ctx, p.SearchName())
	if err != nil {
		return 0, err
	}

	own := strings.ToLower(handleFor(p, a.platform))
	var posts []collector.Post
	for _, post := range found {
		if own != "" && strings.ToLower(post.AuthorHandle) == own {
			continue
		}
		posts = append(posts, post)
	}
	if len(posts) == 0 {
		return 0, nil
	}

	contents := make([]string, len(posts))
	for i, post := range posts {
		contents[i] = post.Content
	}
	classes := a.classifier.ClassifyBatch(ctx, contents, p.Name)

	batch := make([]domain.SocialMention, 0, len(posts))
	for i, post := range posts {
		c := topics.DefaultClassification()
		if i < len(classes) {
			c = classes[i]
		}
		batch = append(batch, domain.SocialMention{
			PoliticianID:  p.ID,
			Platform:      platformOf(post, a.platform),
			MentionID:     post.PostID,
			AuthorName:    post.AuthorName,
			AuthorHandle:  post.AuthorHandle,
			Content:       post.Content,
			URL:           post.URL,
			Subject:       c.Subject,
			SubjectDetail: c.SubjectDetail,
			Sentiment:     c.Sentiment,
			Likes:         post.Likes,
			Replies:       post.Comments,
			Reposts:       post.Shares,
			Engagement:    post.EngagementScore,
			PostedAt:      post.PostedAt,
			CollectedAt:   a.now().UTC(),
		})
	}
	return a.store.UpsertSocialMentionsBatch(ctx, batch)
}

// rollUpTopics recomputes the politician's per-subject counters over
// the trailing window.
func (a *MentionsAggregator) rollUpTopics(ctx context.Context, politicianID int64) error {
	end := a.now().UTC()
	start := end.Add(-a.window)

	mentions, err := a.store.GetMentionsInWindow(ctx, politicianID, start, end)
	if err != nil {
		return err
	}
	if len(mentions) == 0 {
		return nil
	}

	input := make([]topics.Mention, 0, len(mentions))
	for _, m := range mentions {
		var postedAt time.Time
		if m.PostedAt != nil {
			postedAt = *m.PostedAt
		}
		input = append(input, topics.Mention{
			Subject:         m.Subject,
			Sentiment:       m.Sentiment,
			EngagementScore: m.Engagement,
			PostedAt:        postedAt,
		})
	}

	for _, t := range topics.RollUp(input, start, end) {
		err := a.store.UpsertMentionTopic(ctx, domain.MentionTopic{
			PoliticianID:  politicianID,
			Subject:       t.Subject,
			Total:         t.Total,
			Positive:      t.Positive,
			Negative:      t.Negative,
			Neutral:       t.Neutral,
			EngagementSum: t.EngagementSum,
			LastMentionAt: t.LastMentionAt,
			PeriodStart:   t.PeriodStart,
			PeriodEnd:     t.PeriodEnd,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// handleFor returns the politician's handle on the given platform.
func handleFor(p domain.Politician, platform string) string {
	switch platform {
	case "bluesky":
		return p.BlueSkyHandle
	default:
		return ""
	}
}

func platformOf(post collector.Post, fallback string) string {
	if post.Platform != "" {
		return post.Platform
	}
	return fallback
}
