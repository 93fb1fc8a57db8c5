package topics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopClassifierAppliesDefaults(t *testing.T) {
	contents := make([]string, 50)
	for i := range contents {
		contents[i] = fmt.Sprintf("menção número %d sobre o político", i)
	}

	results := NopClassifier{}.ClassifyBatch(context.Background(), contents, "João Silva")
	require.Len(t, results, 50)
	for _, c := range results {
		assert.Equal(t, SubjectOther, c.Subject)
		assert.Empty(t, c.SubjectDetail)
		assert.Equal(t, SentimentNeutral, c.Sentiment)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Classification
		want Classification
	}{
		{
			name: "valid passes through",
			in:   Classification{Subject: "Health", SubjectDetail: "hospital", Sentiment: "positive"},
			want: Classification{Subject: "Health", SubjectDetail: "hospital", Sentiment: SentimentPositive},
		},
		{
			name: "unknown subject becomes Other",
			in:   Classification{Subject: "Sports", Sentiment: "neutral"},
			want: Classification{Subject: SubjectOther, Sentiment: SentimentNeutral},
		},
		{
			name: "portuguese sentiment is mapped",
			in:   Classification{Subject: "Economy", Sentiment: "Positivo"},
			want: Classification{Subject: "Economy", Sentiment: SentimentPositive},
		},
		{
			name: "garbage sentiment becomes neutral",
			in:   Classification{Subject: "Economy", Sentiment: "enthusiastic"},
			want: Classification{Subject: "Economy", Sentiment: SentimentNeutral},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in))
		})
	}
}

func TestNormalizeTruncatesDetail(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := normalize(Classification{Subject: "Health", SubjectDetail: long, Sentiment: "neutral"})
	assert.Len(t, got.SubjectDetail, 150)
	assert.True(t, strings.HasSuffix(got.SubjectDetail, "..."))
}

type fakeInvoker struct {
	responses []string
	err       error
	calls     int
	bodies    [][]byte
}

func (f *fakeInvoker) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.calls++
	f.bodies = append(f.bodies, in.Body)
	if f.err != nil {
		return nil, f.err
	}
	text := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	body, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return &bedrockruntime.InvokeModelOutput{Body: body}, nil
}

func modelAnswer(classifications ...map[string]string) string {
	out, _ := json.Marshal(map[string]any{"classifications": classifications})
	return string(out)
}

func TestBedrockClassifyBatch(t *testing.T) {
	invoker := &fakeInvoker{responses: []string{modelAnswer(
		map[string]string{"subject": "Health", "subject_detail": "inauguração de hospital", "sentiment": "positive"},
		map[string]string{"subject": "Corruption", "subject_detail": "denúncia", "sentiment": "negative"},
	)}}
	b := &BedrockClassifier{client: invoker, modelID: "model", batchSize: 5}

	results := b.ClassifyBatch(context.Background(), []string{
		"prefeito inaugura novo hospital na zona leste",
		"denúncia de desvio de verba na prefeitura",
	}, "João Silva")

	require.Len(t, results, 2)
	assert.Equal(t, "Health", results[0].Subject)
	assert.Equal(t, SentimentPositive, results[0].Sentiment)
	assert.Equal(t, "Corruption", results[1].Subject)
	assert.Equal(t, 1, invoker.calls)
}

func TestBedrockClassifyBatchChunks(t *testing.T) {
	answer := modelAnswer(
		map[string]string{"subject": "Politics", "sentiment": "neutral"},
		map[string]string{"subject": "Politics", "sentiment": "neutral"},
		map[string]string{"subject": "Politics", "sentiment": "neutral"},
		map[string]string{"subject": "Politics", "sentiment": "neutral"},
		map[string]string{"subject": "Politics", "sentiment": "neutral"},
	)
	invoker := &fakeInvoker{responses: []string{answer, answer}}
	b := &BedrockClassifier{client: invoker, modelID: "model", batchSize: 5}

	contents := make([]string, 7)
	for i := range contents {
		contents[i] = fmt.Sprintf("menção política de número %d", i)
	}

	results := b.ClassifyBatch(context.Background(), contents, "João Silva")
	require.Len(t, results, 7)
	assert.Equal(t, 2, invoker.calls)
}

func TestBedrockClassifyBatchDegradesOnError(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("throttled")}
	b := &BedrockClassifier{client: invoker, modelID: "model", batchSize: 5}

	results := b.ClassifyBatch(context.Background(), []string{"uma menção qualquer sobre o político"}, "João Silva")
	require.Len(t, results, 1)
	assert.Equal(t, DefaultClassification(), results[0])
}

func TestBedrockSkipsShortMentions(t *testing.T) {
	invoker := &fakeInvoker{responses: []string{modelAnswer(
		map[string]string{"subject": "Economy", "sentiment": "negative"},
	)}}
	b := &BedrockClassifier{client: invoker, modelID: "model", batchSize: 5}

	results := b.ClassifyBatch(context.Background(), []string{"ok", "inflação corrói o salário mínimo"}, "João Silva")
	require.Len(t, results, 2)
	assert.Equal(t, DefaultClassification(), results[0])
	assert.Equal(t, "Economy", results[1].Subject)
}

func TestExtractJSONStripsFences(t *testing.T) {
	wrapped := "```json\n{\"classifications\":[]}\n```"
	assert.Equal(t, `{"classifications":[]}`, extractJSON(wrapped))
}

func TestRollUp(t *testing.T) {
	end := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -7)

	mentions := []Mention{
		{Subject: "Economy", Sentiment: SentimentPositive, EngagementScore: 10, PostedAt: end.Add(-48 * time.Hour)},
		{Subject: "Economy", Sentiment: SentimentNegative, EngagementScore: 20, PostedAt: end.Add(-24 * time.Hour)},
		{Subject: "Health", Sentiment: SentimentNeutral, EngagementScore: 5, PostedAt: end.Add(-72 * time.Hour)},
	}

	topics := RollUp(mentions, start, end)
	require.Len(t, topics, 2)

	economy := topics[0]
	assert.Equal(t, "Economy", economy.Subject)
	assert.Equal(t, 2, economy.Total)
	assert.Equal(t, 1, economy.Positive)
	assert.Equal(t, 1, economy.Negative)
	assert.Equal(t, 0, economy.Neutral)
	assert.Equal(t, 30.0, economy.EngagementSum)
	assert.Equal(t, end.Add(-24*time.Hour), economy.LastMentionAt)
	assert.Equal(t, start, economy.PeriodStart)
	assert.Equal(t, end, economy.PeriodEnd)

	health := topics[1]
	assert.Equal(t, "Health", health.Subject)
	assert.Equal(t, 1, health.Total)
	assert.Equal(t, 1, health.Neutral)
	assert.Equal(t, 5.0, health.EngagementSum)
}

func TestRollUpIdempotent(t *testing.T) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	mentions := []Mention{
		{Subject: "Health", Sentiment: SentimentPositive, EngagementScore: 1, PostedAt: end.Add(-time.Hour)},
	}

	first := RollUp(mentions, start, end)
	second := RollUp(mentions, start, end)
	assert.Equal(t, first, second)
}

func TestRollUpMissingSubjectCountsAsOther(t *testing.T) {
	end := time.Now().UTC()
	topics := RollUp([]Mention{{Sentiment: "weird", PostedAt: end}}, end.AddDate(0, 0, -7), end)
	require.Len(t, topics, 1)
	assert.Equal(t, SubjectOther, topics[0].Subject)
	assert.Equal(t, 1, topics[0].Neutral)
}
