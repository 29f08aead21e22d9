package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const xaiAPIBase = "https://api.x.ai/v1/chat/completions"

// XAIProvider implements the Provider interface for xAI (Grok). It talks to
// the HTTP API directly; there is no official CLI.
type XAIProvider struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewXAIProvider creates a new xAI provider
func NewXAIProvider() *XAIProvider {
	return &XAIProvider{
		model:      "grok-3-mini",
		baseURL:    xaiAPIBase,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewXAIProviderWithModel creates an xAI provider with a specific model
func NewXAIProviderWithModel(model string) *XAIProvider {
	p := NewXAIProvider()
	p.model = model
	return p
}

// Name returns the provider name
func (p *XAIProvider) Name() string {
	return "xai"
}

// Available checks if the API key is set
func (p *XAIProvider) Available() bool {
	return os.Getenv("XAI_API_KEY") != ""
}

type xaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type xaiRequest struct {
	Model    string       `json:"model"`
	Messages []xaiMessage `json:"messages"`
}

type xaiResponse struct {
	Choices []struct {
		Message xaiMessage `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a prompt to the xAI chat completions API.
func (p *XAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	apiKey := os.Getenv("XAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("xai provider not available: set XAI_API_KEY")
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	var messages []xaiMessage
	if req.System != "" {
		messages = append(messages, xaiMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, xaiMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(xaiRequest{Model: model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("timeout: AI request took longer than %v", DefaultTimeout)
		}
		return nil, fmt.Errorf("failed to get response from xAI: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read xAI response: %w", err)
	}

	var parsed xaiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse xAI response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return nil, fmt.Errorf("xai error: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("xai error: HTTP %d", httpResp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("xai returned no choices")
	}

	return &Response{
		Text:         strings.TrimSpace(parsed.Choices[0].Message.Content),
		ProviderName: p.Name(),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
