package examgen

import (
	"context"
	"fmt"
	"time"
)

// ExamGenerator maps a requested stage to its fixed prompt template and
// submits it to the text-generation provider. The provider's JSON output
// is returned unmodified; it is not re-validated or re-shaped here.
type ExamGenerator struct {
	provider    Provider
	model       string
	temperature *float64
	meter       Meter
}

// GeneratorOption configures an ExamGenerator.
type GeneratorOption func(*ExamGenerator)

// WithTemperature sets the sampling temperature passed to the provider.
func WithTemperature(t float64) GeneratorOption {
	return func(g *ExamGenerator) { g.temperature = Float64Ptr(t) }
}

// WithGeneratorMeter sets the meter.
func WithGeneratorMeter(m Meter) GeneratorOption {
	return func(g *ExamGenerator) { g.meter = m }
}

// NewExamGenerator creates an ExamGenerator backed by the given provider
// and model.
func NewExamGenerator(provider Provider, model string, opts ...GeneratorOption) (*ExamGenerator, error) {
	if provider == nil {
		return nil, fmt.Errorf("examgen: provider is required")
	}
	if model == "" {
		return nil, fmt.Errorf("examgen: model is required")
	}

	g := &ExamGenerator{
		provider: provider,
		model:    model,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.meter == nil {
		g.meter = noopMeter{}
	}
	return g, nil
}

// Generate produces one exam set for the given stage. A single provider
// failure is a single failed request; there are no retries.
func (g *ExamGenerator) Generate(ctx context.Context, stage Stage) ([]byte, error) {
	prompt, ok := stageTemplates[stage]
	if !ok {
		prompt = stageTemplates[DefaultStage]
	}

	start := time.Now()
	resp, err := g.provider.Complete(ctx, CompletionRequest{
		Model:       g.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
		JSONObject:  true,
	})
	duration := time.Since(start)

	if err != nil {
		g.meter.OnGenerate(GenerateEvent{Stage: stage, Duration: duration, Error: err})
		return nil, fmt.Errorf("examgen: generate %s: %w", stage, err)
	}

	out := []byte(resp.Content)
	g.meter.OnGenerate(GenerateEvent{Stage: stage, Success: true, Duration: duration, Bytes: len(out)})
	return out, nil
}
