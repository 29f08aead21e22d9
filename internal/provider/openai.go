package provider

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// OpenAIProvider implements the Provider interface for OpenAI
type OpenAIProvider struct {
	cliPath    string
	model      string
	cliChecked bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider() *OpenAIProvider {
	return &OpenAIProvider{
		model: "gpt-4o", // Default to GPT-4o
	}
}

// NewOpenAIProviderWithModel creates an OpenAI provider with a specific model
func NewOpenAIProviderWithModel(model string) *OpenAIProvider {
	return &OpenAIProvider{
		model: model,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Available checks if OpenAI CLI is available or API key is set
func (p *OpenAIProvider) Available() bool {
	if path, err := exec.LookPath("openai"); err == nil {
		p.cliPath = path
		return true
	}

	// Fallback: check for API key
	return os.Getenv("OPENAI_API_KEY") != ""
}

// Complete sends a prompt through the OpenAI CLI.
func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	response, err := p.query(ctx, req)
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:         response,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// query sends a prompt to OpenAI
func (p *OpenAIProvider) query(ctx context.Context, req *Request) (string, error) {
	// Apply timeout
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	// Lazily resolve CLI path if not already checked
	if !p.cliChecked {
		if path, err := exec.LookPath("openai"); err == nil {
			p.cliPath = path
		}
		p.cliChecked = true
	}

	if p.cliPath != "" {
		return p.queryViaCLI(ctx, req)
	}

	// Check for API key - if present, we could implement direct API calls
	// For now, return an error indicating CLI-only support
	if os.Getenv("OPENAI_API_KEY") != "" {
		return "", fmt.Errorf("openai direct API not yet implemented; install OpenAI CLI: pip install openai && openai migrate")
	}

	return "", fmt.Errorf("openai provider not available: install OpenAI CLI (pip install openai) or set OPENAI_API_KEY")
}

// queryViaCLI uses the OpenAI CLI to make requests
func (p *OpenAIProvider) queryViaCLI(ctx context.Context, req *Request) (string, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	args := []string{"api", "chat.completions.create", "-m", model}
	if req.System != "" {
		args = append(args, "-g", "system", req.System)
	}
	args = append(args, "-g", "user", req.Prompt)

	cmd := exec.CommandContext(ctx, "openai", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.Canceled {
			return "", fmt.Errorf("interrupted")
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("timeout: AI request took longer than %v", DefaultTimeout)
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("openai error: %s", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to get response from OpenAI: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
