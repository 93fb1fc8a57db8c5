// Package relevance computes the composite relevance score of collected
// items from four subscores: recency, mention strength, source trust,
// and engagement. All scores live in [0, 100].
package relevance

import (
	"fmt"
	"math"
	"time"

	"github.com/diretoriaja/monitor/internal/analyzer"
)

// TrustLookup resolves a domain to its trust weight in [0, 2].
// *sources.Registry satisfies this.
type TrustLookup interface {
	Weight(domain string) float64
}

// Engine scores candidate items. Safe for concurrent use.
type Engine struct {
	weights        Weights
	trust          TrustLookup
	fuzzyThreshold int
	now            func() time.Time
}

// NewEngine builds a scoring engine. The weights are validated once here
// so a bad preset fails at startup, not per item.
func NewEngine(w Weights, trust TrustLookup, fuzzyThreshold int) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("building relevance engine: %w", err)
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = 85
	}
	return &Engine{
		weights:        w,
		trust:          trust,
		fuzzyThreshold: fuzzyThreshold,
		now:            time.Now,
	}, nil
}

// Input is one candidate item to score. PoliticianName may be empty for
// region-scoped items; the mention subscore is then zero.
type Input struct {
	Title          string
	Body           string
	PoliticianName string
	SourceDomain   string
	PublishedAt    *time.Time
	Likes          int
	Comments       int
	Shares         int
}

// Scores carries the four subscores, the weighted composite, and the raw
// mention facts used by the quality filter.
type Scores struct {
	Recency    float64
	Mention    float64
	Source     float64
	Engagement float64
	Composite  float64
	TitleHit   bool
	BodyCount  int
}

// Score computes all subscores and the composite for one item.
func (e *Engine) Score(in Input) Scores {
	var s Scores

	s.Recency = e.recencyScore(in.PublishedAt)

	if in.PoliticianName != "" {
		m := analyzer.AnalyzeMentions(in.Title, in.Body, in.PoliticianName, e.fuzzyThreshold)
		s.TitleHit = m.TitleHit
		s.BodyCount = m.BodyCount
		s.Mention = mentionScore(m.TitleHit, m.BodyCount)
	}

	s.Source = sourceScore(e.trust.Weight(in.SourceDomain))
	s.Engagement = engagementScore(in.Likes, in.Comments, in.Shares)

	s.Composite = round2(e.weights.Recency*s.Recency +
		e.weights.Mention*s.Mention +
		e.weights.Source*s.Source +
		e.weights.Engagement*s.Engagement)
	return s
}

// KeepQuality reports whether a politician-scoped item passes the
// minimum-mention filter: a title hit, any body mention, or a mention
// subscore above 20.
func KeepQuality(s Scores) bool {
	return s.TitleHit || s.BodyCount > 0 || s.Mention > 20
}

// recencyScore decays 2 points per hour since publication. Items without
// a timestamp sit at the neutral midpoint.
func (e *Engine) recencyScore(publishedAt *time.Time) float64 {
	if publishedAt == nil || publishedAt.IsZero() {
		return 50
	}
	hours := e.now().Sub(*publishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return round2(math.Max(0, 100-2*hours))
}

func mentionScore(titleHit bool, bodyCount int) float64 {
	score := 0.0
	if titleHit {
		score = 50
	}
	score += math.Min(50, float64(10*bodyCount))
	return round2(score)
}

func sourceScore(trustWeight float64) float64 {
	return round2(math.Min(100, 50*trustWeight))
}

func engagementScore(likes, comments, shares int) float64 {
	raw := float64(3*shares+2*comments+likes) / 10
	return round2(math.Min(100, raw))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
