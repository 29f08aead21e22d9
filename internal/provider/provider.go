// Package provider implements AI provider adapters for plan drafting and
// review assistance.
package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTimeout is the default timeout for AI provider calls
const DefaultTimeout = 60 * time.Second

// Provider defines the interface for AI providers
type Provider interface {
	// Name returns the provider name (e.g., "anthropic", "openai", "gemini")
	Name() string

	// Available checks if the provider is available (CLI found or API key present)
	Available() bool

	// Complete sends a prompt and returns the completion text
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request is a completion request.
type Request struct {
	Prompt string
	System string // Optional system prompt
	Model  string // Optional model override
}

// Response is a completion response.
type Response struct {
	Text         string
	ProviderName string
	LatencyMs    int64
}

// CacheKey derives the response-cache key for a request. Provider and model
// are part of the key so switching either never serves a stale answer.
func CacheKey(providerName string, req *Request) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%s\x00%s",
		providerName, req.Model, req.System, req.Prompt)))
	return hex.EncodeToString(sum[:])
}
