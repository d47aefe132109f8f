// Package openaicompat implements the provider boundary against any
// OpenAI-compatible chat completions API.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beplab/examgen"
)

// Provider is a universal OpenAI-compatible API adapter.
// Works with OpenAI, Grok/xAI, Cerebras, Together, Ollama, and others.
type Provider struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ examgen.Provider = (*Provider)(nil)

// Option configures the provider.
type Option func(*Provider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// New creates a new OpenAI-compatible provider.
func New(name, baseURL, apiKey string, opts ...Option) *Provider {
	p := &Provider{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewOpenAI creates a provider for OpenAI.
func NewOpenAI(apiKey string, opts ...Option) *Provider {
	return New("openai", "https://api.openai.com/v1", apiKey, opts...)
}

func (p *Provider) Name() string { return p.name }

// apiRequest is the OpenAI chat completion request format.
type apiRequest struct {
	Model          string             `json:"model"`
	Messages       []apiMessage       `json:"messages"`
	Temperature    *float64           `json:"temperature,omitempty"`
	ResponseFormat *apiResponseFormat `json:"response_format,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponseFormat struct {
	Type string `json:"type"`
}

// apiResponse is the OpenAI chat completion response format.
type apiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int        `json:"index"`
		Message      apiMessage `json:"message"`
		FinishReason string     `json:"finish_reason"`
	} `json:"choices"`
}

// Complete performs a single chat completion. No retries.
func (p *Provider) Complete(ctx context.Context, req examgen.CompletionRequest) (examgen.CompletionResponse, error) {
	body := p.buildRequest(req)

	httpResp, err := p.doRequest(ctx, body)
	if err != nil {
		return examgen.CompletionResponse{}, err
	}
	defer httpResp.Body.Close()

	if err := mapHTTPError(httpResp); err != nil {
		return examgen.CompletionResponse{}, err
	}

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return examgen.CompletionResponse{}, fmt.Errorf("examgen: decode response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return examgen.CompletionResponse{}, fmt.Errorf("examgen: empty choices in response")
	}

	return examgen.CompletionResponse{
		ID:           resp.ID,
		Content:      resp.Choices[0].Message.Content,
		FinishReason: resp.Choices[0].FinishReason,
		Model:        resp.Model,
	}, nil
}

func (p *Provider) buildRequest(req examgen.CompletionRequest) apiRequest {
	msgs := make([]apiMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = apiMessage{Role: m.Role, Content: m.Content}
	}
	out := apiRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
	}
	if req.JSONObject {
		out.ResponseFormat = &apiResponseFormat{Type: "json_object"}
	}
	return out
}

func (p *Provider) doRequest(ctx context.Context, body apiRequest) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("examgen: marshal request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("examgen: create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", examgen.ErrProviderUnavailable, err)
	}

	return resp, nil
}

func mapHTTPError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Read body for error context, but don't fail if we can't.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return examgen.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return examgen.ErrAuthFailed
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", examgen.ErrInvalidRequest, string(body))
	default:
		return examgen.ErrProviderUnavailable
	}
}
