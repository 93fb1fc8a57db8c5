// Package app wires the application graph shared by cmd/server and
// cmd/worker: store, source registry, collectors, aggregators and the
// scheduled jobs.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diretoriaja/monitor/internal/aggregator"
	"github.com/diretoriaja/monitor/internal/collector"
	"github.com/diretoriaja/monitor/internal/collector/bluesky"
	"github.com/diretoriaja/monitor/internal/collector/gazette"
	"github.com/diretoriaja/monitor/internal/collector/googlenews"
	"github.com/diretoriaja/monitor/internal/collector/newsapi"
	"github.com/diretoriaja/monitor/internal/collector/trending"
	"github.com/diretoriaja/monitor/internal/collector/trends24"
	"github.com/diretoriaja/monitor/internal/config"
	"github.com/diretoriaja/monitor/internal/dedup"
	"github.com/diretoriaja/monitor/internal/domain"
	"github.com/diretoriaja/monitor/internal/pkg/distlock"
	"github.com/diretoriaja/monitor/internal/pkg/httpretry"
	"github.com/diretoriaja/monitor/internal/relevance"
	"github.com/diretoriaja/monitor/internal/repository/postgres"
	"github.com/diretoriaja/monitor/internal/scheduler"
	"github.com/diretoriaja/monitor/internal/sources"
	"github.com/diretoriaja/monitor/internal/storage"
	"github.com/diretoriaja/monitor/internal/topics"
)

// App is the assembled application graph.
type App struct {
	Config    *config.Config
	Store     *postgres.Store
	Registry  *sources.Registry
	Redis     *redis.Client
	Scheduler *scheduler.Scheduler
}

// New builds the graph from configuration. Optional pieces (redis, S3,
// the classifier, NewsAPI) degrade to nil when unconfigured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := postgres.Open(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("wiring store: %w", err)
	}

	registry := sources.NewRegistry(store)
	if err := registry.Load(ctx); err != nil {
		log.Printf("[App] loading source registry: %v (continuing with defaults)", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	a := &App{
		Config:   cfg,
		Store:    store,
		Registry: registry,
		Redis:    redisClient,
	}
	a.Scheduler, err = a.buildScheduler(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the app's connections.
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	a.Store.Close()
}

func (a *App) buildScheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	cfg := a.Config

	weights, err := relevance.Preset(cfg.Relevance.WeightPreset)
	if err != nil {
		return nil, err
	}
	engine, err := relevance.NewEngine(weights, a.Registry, cfg.Relevance.FuzzyThreshold)
	if err != nil {
		return nil, err
	}

	httpClient := httpretry.NewRetryClient(&http.Client{Timeout: 30 * time.Second}, 3)

	gnews := googlenews.New(httpClient, cfg.Collect.Delay(), cfg.Collect.MaxNewsPerPolitician)
	var uploader dedup.ImageUploader
	if cfg.Storage.Enabled {
		s3up, err := storage.NewS3Uploader(ctx, cfg.Storage.Bucket, cfg.Storage.Region, storage.Credentials{
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Profile:   cfg.Storage.GetAWSProfile(),
		})
		if err != nil {
			log.Printf("[App] S3 uploader unavailable: %v (images keep source URLs)", err)
		} else {
			uploader = s3up
		}
	}
	enricher := dedup.NewEnricher(gnews, uploader, cfg.Collect.FanoutWorkers)

	news := aggregator.NewNews(aggregator.NewsConfig{
		Engine:         engine,
		Enricher:       enricher,
		Store:          a.Store,
		MaxPerScope:    cfg.Collect.MaxNewsPerPolitician,
		RegionLimit:    cfg.Collect.RegionNewsLimit,
		MaxConcurrent:  cfg.Collect.FanoutWorkers,
		InterItemDelay: cfg.Collect.Delay(),
	})
	news.AddSearcher("googlenews", gnews)
	if cfg.NewsAPI.Enabled() {
		news.AddSearcher("newsapi", newsapi.New(cfg.NewsAPI.APIKey, httpClient, cfg.Collect.MaxNewsPerPolitician))
	}

	bsky := bluesky.New(httpClient, cfg.Collect.MaxPostsPerPolitician, cfg.Collect.DelaySocial())
	posts := aggregator.NewPosts("bluesky", bsky, a.Store)

	var classifier topics.Classifier
	if cfg.Classifier.Enabled() {
		bedrock, err := topics.NewBedrockClassifier(ctx, cfg.Classifier.ModelID, cfg.Classifier.Region, cfg.Classifier.AWSProfile)
		if err != nil {
			log.Printf("[App] classifier unavailable: %v (mentions get defaults)", err)
		} else {
			classifier = bedrock
		}
	}
	mentions := aggregator.NewMentions("bluesky", bsky, classifier, a.Store)

	chains := trending.NewChains(trending.Config{
		News:         gnews,
		Twitter:      trends24.New(httpClient, 10),
		GoogleTrends: trending.NewGoogleTrendsRSS(httpClient, 10),
	})
	trends := aggregator.NewTrending(chains, a.Store)

	sched := scheduler.New(a.Store, cfg.Collect.Location())
	timetable := scheduler.Timetable(cfg.Collect.Hour, cfg.Collect.Minute)

	jobs := []*scheduler.Job{
		{ID: scheduler.JobNews, Name: "Coleta de notícias", Schedule: timetable[scheduler.JobNews],
			Fn: statsJob(news.Run)},
		{ID: scheduler.JobPosts, Name: "Posts próprios", Schedule: timetable[scheduler.JobPosts],
			Fn: statsJob(posts.Run)},
		{ID: scheduler.JobMentions, Name: "Menções sociais", Schedule: timetable[scheduler.JobMentions],
			Fn: statsJob(mentions.Run)},
		{ID: scheduler.JobTrending, Name: "Assuntos do momento", Schedule: timetable[scheduler.JobTrending],
			Fn: statsJob(trends.Run)},
		{ID: scheduler.JobRetention, Name: "Limpeza de retenção", Schedule: timetable[scheduler.JobRetention],
			Fn: a.retentionJob()},
		{ID: scheduler.JobGazette, Name: "Diários e tribunais", Schedule: timetable[scheduler.JobGazette],
			Fn: a.gazetteJob()},
	}
	for _, job := range jobs {
		if a.Redis != nil {
			job.Lock = distlock.NewLock(a.Redis, a.Store.DB(), "jobs:"+job.ID, time.Hour)
		}
		if err := sched.Register(job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

// statsJob adapts an aggregator run into a job result.
func statsJob(run func(ctx context.Context) (aggregator.Stats, error)) scheduler.JobFunc {
	return func(ctx context.Context) scheduler.Result {
		stats, err := run(ctx)
		count := stats.Politicians + stats.Competitors + stats.Cities + stats.States + stats.National
		switch {
		case err != nil:
			return scheduler.Result{Status: domain.JobError, Count: count, Message: err.Error()}
		case stats.Errors > 0:
			return scheduler.Result{Status: domain.JobPartial, Count: count,
				Message: fmt.Sprintf("%d partial failures", stats.Errors)}
		default:
			return scheduler.Result{Status: domain.JobSuccess, Count: count}
		}
	}
}

// retentionJob prunes each table to its configured window.
func (a *App) retentionJob() scheduler.JobFunc {
	windows := map[string]int{
		"news":            a.Config.Retention.NewsDays,
		"social_posts":    a.Config.Retention.PostsDays,
		"social_mentions": a.Config.Retention.MentionsDays,
		"mention_topics":  a.Config.Retention.MentionsDays,
		"job_logs":        a.Config.Retention.JobLogDays,
	}
	return func(ctx context.Context) scheduler.Result {
		var total int64
		var failures int
		for table, days := range windows {
			n, err := a.Store.DeleteOlderThan(ctx, table, days)
			if err != nil {
				log.Printf("[Retention] pruning %s: %v", table, err)
				failures++
				continue
			}
			total += n
		}
		status := domain.JobSuccess
		if failures > 0 {
			status = domain.JobPartial
		}
		return scheduler.Result{Status: status, Count: int(total)}
	}
}

// gazetteJob builds the weekly court and gazette consultation stubs for
// every active politician with a CPF on file. The sources are
// CAPTCHA-gated, so the output is review URLs, not scraped records.
func (a *App) gazetteJob() scheduler.JobFunc {
	return func(ctx context.Context) scheduler.Result {
		politicians, err := a.Store.GetActivePoliticians(ctx)
		if err != nil {
			return scheduler.Result{Status: domain.JobError, Message: err.Error()}
		}

		count := 0
		for _, p := range politicians {
			if p.CPF == "" {
				continue
			}
			stubs := gazette.WeeklyStubs(gazette.Subject{Name: p.Name, CPF: p.CPF})
			for _, stub := range stubs {
				log.Printf("[Gazette] %s: %s %s", p.Name, stub.Source, stub.URL)
			}
			count += len(stubs)
		}
		return scheduler.Result{Status: domain.JobSuccess, Count: count,
			Message: "consultation stubs generated"}
	}
}

// Compile-time check that the aggregators accept the store.
var _ aggregator.NewsStore = (*postgres.Store)(nil)
var _ aggregator.SocialStore = (*postgres.Store)(nil)
var _ aggregator.TrendingStore = (*postgres.Store)(nil)
var _ collector.SocialSearcher = (*bluesky.Client)(nil)
