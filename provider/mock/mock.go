// Package mock provides a test double for the provider boundary.
package mock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/beplab/examgen"
)

// DefaultContent is the exam JSON the mock returns unless overridden.
const DefaultContent = `{"exam_set":[{"passage":"Mock passage.","question":"Mock question?","options":["A","B","C","D"],"correct":0}]}`

// Provider is a mock text-generation provider for testing.
type Provider struct {
	name         string
	latency      time.Duration
	callCount    atomic.Int64
	staticErr    error
	content      string
	responseFunc func(examgen.CompletionRequest) (examgen.CompletionResponse, error)
}

var _ examgen.Provider = (*Provider)(nil)

// Option configures a mock Provider.
type Option func(*Provider)

// New creates a mock provider with the given options.
func New(opts ...Option) *Provider {
	p := &Provider{
		name:    "mock",
		content: DefaultContent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithName sets the provider name.
func WithName(name string) Option {
	return func(p *Provider) { p.name = name }
}

// WithLatency adds simulated latency to each call.
func WithLatency(d time.Duration) Option {
	return func(p *Provider) { p.latency = d }
}

// WithError makes the provider always return this error.
func WithError(err error) Option {
	return func(p *Provider) { p.staticErr = err }
}

// WithContent sets the content returned by the mock.
func WithContent(content string) Option {
	return func(p *Provider) { p.content = content }
}

// WithResponseFunc sets a custom response function.
func WithResponseFunc(fn func(examgen.CompletionRequest) (examgen.CompletionResponse, error)) Option {
	return func(p *Provider) { p.responseFunc = fn }
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Complete(ctx context.Context, req examgen.CompletionRequest) (examgen.CompletionResponse, error) {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return examgen.CompletionResponse{}, ctx.Err()
		}
	}

	p.callCount.Add(1)

	if p.staticErr != nil {
		return examgen.CompletionResponse{}, p.staticErr
	}

	if p.responseFunc != nil {
		return p.responseFunc(req)
	}

	return examgen.CompletionResponse{
		ID:           "mock-response-id",
		Content:      p.content,
		FinishReason: "stop",
		Model:        req.Model,
	}, nil
}

// CallCount returns the number of calls made to the provider.
func (p *Provider) CallCount() int64 { return p.callCount.Load() }
