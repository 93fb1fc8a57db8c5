package topics

import (
	"sort"
	"time"
)

// Mention is the slice of a stored social mention the roll-up needs.
type Mention struct {
	Subject         string
	Sentiment       string
	EngagementScore float64
	PostedAt        time.Time
}

// Topic is one per-subject aggregate over a window. Rows for the same
// (politician, subject, period start) replace each other on upsert, so
// re-running the roll-up over the same window is idempotent.
type Topic struct {
	Subject       string
	Total         int
	Positive      int
	Negative      int
	Neutral       int
	EngagementSum float64
	LastMentionAt time.Time
	PeriodStart   time.Time
	PeriodEnd     time.Time
}

// RollUp folds window mentions into per-subject aggregates. Mentions
// without a subject count under Other. Results are ordered by total
// descending, then subject, so output is deterministic.
func RollUp(mentions []Mention, periodStart, periodEnd time.Time) []Topic {
	bySubject := make(map[string]*Topic)

	for _, m := range mentions {
		subject := m.Subject
		if subject == "" {
			subject = SubjectOther
		}

		t, ok := bySubject[subject]
		if !ok {
			t = &Topic{Subject: subject, PeriodStart: periodStart, PeriodEnd: periodEnd}
			bySubject[subject] = t
		}

		t.Total++
		t.EngagementSum += m.EngagementScore

		switch m.Sentiment {
		case SentimentPositive:
			t.Positive++
		case SentimentNegative:
			t.Negative++
		default:
			t.Neutral++
		}

		if m.PostedAt.After(t.LastMentionAt) {
			t.LastMentionAt = m.PostedAt
		}
	}

	topics := make([]Topic, 0, len(bySubject))
	for _, t := range bySubject {
		topics = append(topics, *t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Total != topics[j].Total {
			return topics[i].Total > topics[j].Total
		}
		return topics[i].Subject < topics[j].Subject
	})
	return topics
}
