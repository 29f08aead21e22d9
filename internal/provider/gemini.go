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

// GeminiProvider implements the Provider interface for Google Gemini
type GeminiProvider struct {
	cliPath    string
	model      string
	cliChecked bool
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider() *GeminiProvider {
	return &GeminiProvider{
		model: "", // Use CLI default model
	}
}

// NewGeminiProviderWithModel creates a Gemini provider with a specific model
func NewGeminiProviderWithModel(model string) *GeminiProvider {
	return &GeminiProvider{
		model: model,
	}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Available checks if Gemini CLI is available or API key is set
func (p *GeminiProvider) Available() bool {
	if path, err := exec.LookPath("gemini"); err == nil {
		p.cliPath = path
		return true
	}

	return os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != ""
}

// Complete sends a prompt through the Gemini CLI.
func (p *GeminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
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

// query sends a prompt to Gemini
func (p *GeminiProvider) query(ctx context.Context, req *Request) (string, error) {
	// Apply timeout
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	// Lazily resolve CLI path if not already checked
	if !p.cliChecked {
		if path, err := exec.LookPath("gemini"); err == nil {
			p.cliPath = path
		}
		p.cliChecked = true
	}

	if p.cliPath == "" {
		if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
			return "", fmt.Errorf("gemini direct API not yet implemented; install Gemini CLI: https://github.com/google-gemini/gemini-cli")
		}
		return "", fmt.Errorf("gemini provider not available: install Gemini CLI (https://github.com/google-gemini/gemini-cli) or set GEMINI_API_KEY")
	}

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + prompt
	}

	args := []string{"--prompt", prompt}
	model := req.Model
	if model == "" {
		model = p.model
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	cmd := exec.CommandContext(ctx, "gemini", args...)

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
			return "", fmt.Errorf("gemini error: %s", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to get response from Gemini: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
