package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	defaultBatchSize = 5
	contentLimit     = 300
	minContentLen    = 10
)

// modelInvoker is the slice of the Bedrock client the classifier needs.
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClassifier classifies mentions with a Claude model on Bedrock.
// Provider errors degrade to the default classification; the pipeline
// never stalls on the model.
type BedrockClassifier struct {
	client    modelInvoker
	modelID   string
	batchSize int
}

// NewBedrockClassifier builds the classifier from the ambient AWS
// config.
func NewBedrockClassifier(ctx context.Context, modelID, region, profile string) (*BedrockClassifier, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &BedrockClassifier{
		client:    bedrockruntime.NewFromConfig(cfg),
		modelID:   modelID,
		batchSize: defaultBatchSize,
	}, nil
}

// ClassifyBatch classifies contents in chunks. A failed chunk falls
// back to the default classification for its mentions only.
func (b *BedrockClassifier) ClassifyBatch(ctx context.Context, contents []string, politicianName string) []Classification {
	out := make([]Classification, len(contents))

	for start := 0; start < len(contents); start += b.batchSize {
		end := start + b.batchSize
		if end > len(contents) {
			end = len(contents)
		}
		chunk := contents[start:end]

		results, err := b.classifyChunk(ctx, chunk, politicianName)
		if err != nil {
			log.Printf("[Topics] chunk classification failed: %v", err)
			results = nil
		}

		for i := range chunk {
			if i < len(results) {
				out[start+i] = normalize(results[i])
			} else {
				out[start+i] = DefaultClassification()
			}
		}
	}

	return out
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type chunkResult struct {
	Classifications []struct {
		Subject       string `json:"subject"`
		SubjectDetail string `json:"subject_detail"`
		Sentiment     string `json:"sentiment"`
	} `json:"classifications"`
}

const systemPrompt = "Você é um analista político brasileiro. Classifique menções em redes sociais sobre políticos. Responda apenas com JSON válido, sem texto adicional."

func (b *BedrockClassifier) classifyChunk(ctx context.Context, chunk []string, politicianName string) ([]Classification, error) {
	var lines []string
	for i, content := range chunk {
		content = strings.TrimSpace(content)
		if len(content) < minContentLen {
			continue
		}
		if len(content) > contentLimit {
			content = content[:contentLimit]
		}
		lines = append(lines, fmt.Sprintf("%d. %q", i+1, content))
	}
	if len(lines) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(`Analise estas %d menções sobre o político %s:

%s

Para cada menção, classifique:
- subject: uma das categorias: %s
- subject_detail: breve descrição do contexto (máximo 80 caracteres)
- sentiment: positive, negative ou neutral

Responda em JSON com um array "classifications" contendo objetos com as chaves: subject, subject_detail, sentiment.`,
		len(lines), politicianName, strings.Join(lines, "\n"), strings.Join(Subjects, ", "))

	body, err := json.Marshal(claudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        500,
		Temperature:      0.3,
		System:           systemPrompt,
		Messages:         []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoking model: %w", err)
	}

	var model claudeResponse
	if err := json.Unmarshal(resp.Body, &model); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if len(model.Content) == 0 {
		return nil, fmt.Errorf("empty model response")
	}

	var result chunkResult
	if err := json.Unmarshal([]byte(extractJSON(model.Content[0].Text)), &result); err != nil {
		return nil, fmt.Errorf("decoding classifications: %w", err)
	}

	// Map results back to chunk positions; short mentions that were
	// skipped keep their default.
	classifications := make([]Classification, 0, len(result.Classifications))
	for _, c := range result.Classifications {
		classifications = append(classifications, Classification{
			Subject:       c.Subject,
			SubjectDetail: c.SubjectDetail,
			Sentiment:     c.Sentiment,
		})
	}
	return alignToChunk(chunk, classifications), nil
}

// alignToChunk redistributes classifications to the original chunk
// positions, accounting for mentions skipped as too short.
func alignToChunk(chunk []string, classifications []Classification) []Classification {
	out := make([]Classification, len(chunk))
	next := 0
	for i, content := range chunk {
		if len(strings.TrimSpace(content)) < minContentLen || next >= len(classifications) {
			out[i] = DefaultClassification()
			continue
		}
		out[i] = classifications[next]
		next++
	}
	return out
}

// extractJSON tolerates models that wrap the JSON in prose or code
// fences by slicing from the first brace to the last.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}
