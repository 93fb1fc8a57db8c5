package relevance

import "fmt"

// Weights holds the four composite-score factors. They must sum to 1.0
// within a 0.01 tolerance.
type Weights struct {
	Recency    float64 `yaml:"recency"`
	Mention    float64 `yaml:"mention"`
	Source     float64 `yaml:"source"`
	Engagement float64 `yaml:"engagement"`
}

// Presets tuned for different coverage styles. "breaking" privileges
// freshness, "verified" privileges source trust.
var presets = map[string]Weights{
	"default":  {Recency: 0.25, Mention: 0.35, Source: 0.25, Engagement: 0.15},
	"breaking": {Recency: 0.40, Mention: 0.30, Source: 0.20, Engagement: 0.10},
	"verified": {Recency: 0.20, Mention: 0.30, Source: 0.40, Engagement: 0.10},
}

// Preset returns a named weight preset.
func Preset(name string) (Weights, error) {
	w, ok := presets[name]
	if !ok {
		return Weights{}, fmt.Errorf("unknown weight preset %q", name)
	}
	return w, nil
}

// Validate checks that the weights sum to 1.0 ± 0.01.
func (w Weights) Validate() error {
	sum := w.Recency + w.Mention + w.Source + w.Engagement
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("relevance weights sum to %.3f, want 1.0 ± 0.01", sum)
	}
	return nil
}
