package examgen

import "context"

// Provider is the interface that text-generation provider adapters must
// implement.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string

	// Complete performs a single synchronous completion. Implementations
	// do not retry; a failed call is a failed request.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the request sent to a provider adapter.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature *float64

	// JSONObject requests a structured JSON object response from
	// providers that support constrained output.
	JSONObject bool
}

// CompletionResponse is the response from a provider adapter.
type CompletionResponse struct {
	ID           string
	Content      string
	FinishReason string
	Model        string
}

// Float64Ptr returns a pointer to the given float64.
func Float64Ptr(v float64) *float64 { return &v }
