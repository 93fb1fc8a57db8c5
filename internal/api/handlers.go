package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diretoriaja/monitor/internal/collector/gazette"
	"github.com/diretoriaja/monitor/internal/domain"
	"github.com/diretoriaja/monitor/internal/pkg/httputil"
	"github.com/diretoriaja/monitor/internal/scheduler"
)

// Reader is the read-side persistence surface. *postgres.Store
// satisfies this.
type Reader interface {
	GetPolitician(ctx context.Context, id int64) (*domain.Politician, error)
	GetNewsForPolitician(ctx context.Context, politicianID int64, limit int, minScore float64, diversify bool) ([]domain.News, error)
	GetRegionNews(ctx context.Context, scope domain.Scope, region string, limit int) ([]domain.News, error)
	GetSocialPostsForPolitician(ctx context.Context, politicianID int64, limit int) ([]domain.SocialPost, error)
	GetMentionsInWindow(ctx context.Context, politicianID int64, start, end time.Time) ([]domain.SocialMention, error)
	GetMentionTopics(ctx context.Context, politicianID int64, since time.Time) ([]domain.MentionTopic, error)
	GetTrendingTopics(ctx context.Context, category string) ([]domain.TrendingTopic, error)
	CountNewsForPolitician(ctx context.Context, politicianID int64) (int, error)
	CountSocialPostsForPolitician(ctx context.Context, politicianID int64) (int, error)
	CountMentionsForPolitician(ctx context.Context, politicianID int64) (int, error)
}

// WeightSetter updates a source's trust weight. *sources.Registry
// satisfies this.
type WeightSetter interface {
	SetWeight(ctx context.Context, domain string, weight float64) error
}

// JobRunner is the scheduler surface the API exposes.
type JobRunner interface {
	ListJobs() []scheduler.Info
	RunNow(ctx context.Context, id string) (string, error)
}

// Cache is the subset of the redis client the handlers use. Nil-able.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store    Reader
	registry WeightSetter
	jobs     JobRunner
	cache    Cache
	cacheTTL time.Duration
}

// NewHandlers wires the handler set. registry, jobs and cache may be
// nil; the matching endpoints then degrade.
func NewHandlers(store Reader, registry WeightSetter, jobs JobRunner, cache Cache) *Handlers {
	return &Handlers{
		store:    store,
		registry: registry,
		jobs:     jobs,
		cache:    cache,
		cacheTTL: 5 * time.Minute,
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// GetPoliticianSummary returns the politician's profile and content
// counters in one call.
func (h *Handlers) GetPoliticianSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httputil.BadRequest(w, "invalid politician id")
		return
	}

	p, err := h.store.GetPolitician(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if p == nil {
		httputil.NotFound(w, "politician not found")
		return
	}

	newsCount, err := h.store.CountNewsForPolitician(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	postsCount, err := h.store.CountSocialPostsForPolitician(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	mentionsCount, err := h.store.CountMentionsForPolitician(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"politician":     p,
		"news_count":     newsCount,
		"posts_count":    postsCount,
		"mentions_count": mentionsCount,
	})
}

// GetPoliticianNews returns the politician's ranked news. ?diversify=false
// disables round-robin source diversification.
func (h *Handlers) GetPoliticianNews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httputil.BadRequest(w, "invalid politician id")
		return
	}
	limit := queryInt(r, "limit", 10)
	diversify := r.URL.Query().Get("diversify") != "false"

	news, err := h.store.GetNewsForPolitician(r.Context(), id, limit, 0, diversify)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"news": news, "count": len(news)})
}

// GetRegionNews returns region-scoped news. ?scope=city|state|national,
// ?region names the city or state.
func (h *Handlers) GetRegionNews(w http.ResponseWriter, r *http.Request) {
	scope := domain.Scope(r.URL.Query().Get("scope"))
	region := r.URL.Query().Get("region")

	switch scope {
	case domain.ScopeCity, domain.ScopeState:
		if region == "" {
			httputil.BadRequest(w, "region is required for city and state scopes")
			return
		}
	case domain.ScopeNational:
	default:
		httputil.BadRequest(w, "scope must be city, state or national")
		return
	}

	news, err := h.store.GetRegionNews(r.Context(), scope, region, queryInt(r, "limit", 10))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"news": news, "count": len(news)})
}

// GetPoliticianPosts returns the politician's own recent posts.
func (h *Handlers) GetPoliticianPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httputil.BadRequest(w, "invalid politician id")
		return
	}

	posts, err := h.store.GetSocialPostsForPolitician(r.Context(), id, queryInt(r, "limit", 10))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"posts": posts, "count": len(posts)})
}

// GetPoliticianMentions returns the trailing window of third-party
// mentions. ?days controls the window, default 7.
func (h *Handlers) GetPoliticianMentions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httputil.BadRequest(w, "invalid politician id")
		return
	}
	days := queryInt(r, "days", 7)
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	mentions, err := h.store.GetMentionsInWindow(r.Context(), id, start, end)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"mentions": mentions, "count": len(mentions)})
}

// GetPoliticianTopics returns the per-subject roll-up. ?days controls
// how far back period starts are admitted, default 30.
func (h *Handlers) GetPoliticianTopics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httputil.BadRequest(w, "invalid politician id")
		return
	}
	since := time.Now().UTC().AddDate(0, 0, -queryInt(r, "days", 30))

	topics, err := h.store.GetMentionTopics(r.Context(), id, since)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"topics": topics, "count": len(topics)})
}

// GetPoliticianConsultations returns the prefilled court and gazette
// consultation queries for the politician. The sources are CAPTCHA-gated
// so the response is review URLs with operator instructions.
func (h *Handlers) GetPoliticianConsultations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httputil.BadRequest(w, "invalid politician id")
		return
	}

	p, err := h.store.GetPolitician(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if p == nil {
		httputil.NotFound(w, "politician not found")
		return
	}

	stubs := gazette.WeeklyStubs(gazette.Subject{Name: p.Name, CPF: p.CPF})
	httputil.OK(w, map[string]any{"consultations": stubs, "count": len(stubs)})
}

// GetTrending returns one category's trend list, cached for cacheTTL.
func (h *Handlers) GetTrending(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	cacheKey := "trending:" + category

	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), cacheKey); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
	}

	items, err := h.store.GetTrendingTopics(r.Context(), category)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{"category": category, "topics": items, "count": len(items)})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, string(body), h.cacheTTL); err != nil {
			log.Printf("[API] caching trending %s: %v", category, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ListJobs returns the scheduler registry with next-run times.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}
	httputil.OK(w, map[string]any{"jobs": h.jobs.ListJobs()})
}

// TriggerJob starts a job outside its schedule and returns the log id.
func (h *Handlers) TriggerJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	logID, err := h.jobs.RunNow(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		httputil.Error(w, http.StatusConflict, err.Error())
	case err != nil:
		httputil.InternalError(w, err)
	default:
		httputil.JSON(w, http.StatusAccepted, map[string]string{"log_id": logID})
	}
}

type weightRequest struct {
	Domain string  `json:"domain"`
	Weight float64 `json:"weight"`
}

// UpdateSourceWeight tunes one source's trust weight.
func (h *Handlers) UpdateSourceWeight(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "source registry not available")
		return
	}

	var req weightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Domain == "" {
		httputil.BadRequest(w, "body must carry domain and weight")
		return
	}

	if err := h.registry.SetWeight(r.Context(), req.Domain, req.Weight); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, map[string]any{"domain": req.Domain, "weight": req.Weight})
}
