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

// AnthropicProvider implements the Provider interface for Claude/Anthropic
type AnthropicProvider struct {
	cliPath string
	model   string
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider() *AnthropicProvider {
	return &AnthropicProvider{
		model: "", // Use default model
	}
}

// NewAnthropicProviderWithModel creates an Anthropic provider with a specific model
func NewAnthropicProviderWithModel(model string) *AnthropicProvider {
	return &AnthropicProvider{
		model: model,
	}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Available checks if Claude CLI is available or API key is set
func (p *AnthropicProvider) Available() bool {
	// First check for Claude CLI
	if path, err := exec.LookPath("claude"); err == nil {
		p.cliPath = path
		return true
	}

	// Fallback: check for API key (for future direct API support)
	return os.Getenv("ANTHROPIC_API_KEY") != ""
}

// Complete sends a prompt to the Claude CLI and returns the completion.
func (p *AnthropicProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
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

// query sends a prompt to Claude CLI
func (p *AnthropicProvider) query(ctx context.Context, req *Request) (string, error) {
	// Apply timeout
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	args := []string{"--print"}
	model := req.Model
	if model == "" {
		model = p.model
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if req.System != "" {
		args = append(args, "--append-system-prompt", req.System)
	}

	cmd := exec.CommandContext(ctx, "claude", args...)
	cmd.Stdin = strings.NewReader(req.Prompt)

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
			return "", fmt.Errorf("claude error: %s", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to get response from Claude: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
