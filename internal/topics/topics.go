// Package topics classifies social mentions into political subjects and
// rolls the classified mentions up into per-subject counters.
package topics

import (
	"context"
	"strings"
)

// Subjects is the closed category set. Anything a model returns outside
// this set is normalized to SubjectOther.
var Subjects = []string{
	"Health", "Education", "Security", "Economy", "Infrastructure",
	"Environment", "Corruption", "Politics", "Social", "Culture",
	"Technology", "Agribusiness", "Other",
}

const SubjectOther = "Other"

// Sentiment values.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

const detailLimit = 150

// Classification is the per-mention enrichment result.
type Classification struct {
	Subject       string
	SubjectDetail string
	Sentiment     string
}

// Classifier enriches mention texts with subject and sentiment.
// Implementations never fail a batch: unusable inputs or provider
// errors yield the default classification per mention.
type Classifier interface {
	ClassifyBatch(ctx context.Context, contents []string, politicianName string) []Classification
}

// DefaultClassification is what a mention gets when no classifier is
// configured or the provider cannot be reached.
func DefaultClassification() Classification {
	return Classification{Subject: SubjectOther, SubjectDetail: "", Sentiment: SentimentNeutral}
}

// NopClassifier applies the default classification without any network
// traffic. Used when the model endpoint is unconfigured.
type NopClassifier struct{}

func (NopClassifier) ClassifyBatch(_ context.Context, contents []string, _ string) []Classification {
	out := make([]Classification, len(contents))
	for i := range out {
		out[i] = DefaultClassification()
	}
	return out
}

var subjectSet = func() map[string]bool {
	m := make(map[string]bool, len(Subjects))
	for _, s := range Subjects {
		m[s] = true
	}
	return m
}()

// sentimentAliases maps the Portuguese labels the model sometimes emits
// onto the canonical values.
var sentimentAliases = map[string]string{
	"positive": SentimentPositive, "positivo": SentimentPositive,
	"negative": SentimentNegative, "negativo": SentimentNegative,
	"neutral": SentimentNeutral, "neutro": SentimentNeutral,
}

// normalize clamps a raw model result into the closed sets and the
// detail length limit.
func normalize(c Classification) Classification {
	if !subjectSet[c.Subject] {
		c.Subject = SubjectOther
	}

	if s, ok := sentimentAliases[strings.ToLower(strings.TrimSpace(c.Sentiment))]; ok {
		c.Sentiment = s
	} else {
		c.Sentiment = SentimentNeutral
	}

	if len(c.SubjectDetail) > detailLimit {
		c.SubjectDetail = c.SubjectDetail[:detailLimit-3] + "..."
	}
	return c
}
