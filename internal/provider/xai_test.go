package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newXAITestServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing or wrong Authorization header: %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("wrong Content-Type: %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestXAIComplete_Success(t *testing.T) {
	t.Setenv("XAI_API_KEY", "test-key")

	srv := newXAITestServer(t, http.StatusOK, map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": "  a refined plan  "}},
		},
	})
	defer srv.Close()

	p := NewXAIProvider()
	p.baseURL = srv.URL

	resp, err := p.Complete(context.Background(), &Request{Prompt: "refine this plan", System: "be terse"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "a refined plan" {
		t.Errorf("expected trimmed completion, got %q", resp.Text)
	}
	if resp.ProviderName != "xai" {
		t.Errorf("expected provider name xai, got %s", resp.ProviderName)
	}
}

func TestXAIComplete_APIError(t *testing.T) {
	t.Setenv("XAI_API_KEY", "test-key")

	srv := newXAITestServer(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]any{"message": "invalid api key"},
	})
	defer srv.Close()

	p := NewXAIProvider()
	p.baseURL = srv.URL

	_, err := p.Complete(context.Background(), &Request{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for HTTP 401")
	}
	if got := err.Error(); got != "xai error: invalid api key" {
		t.Errorf("unexpected error: %v", got)
	}
}

func TestXAIComplete_NoChoices(t *testing.T) {
	t.Setenv("XAI_API_KEY", "test-key")

	srv := newXAITestServer(t, http.StatusOK, map[string]any{"choices": []any{}})
	defer srv.Close()

	p := NewXAIProvider()
	p.baseURL = srv.URL

	if _, err := p.Complete(context.Background(), &Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestXAIAvailable_RequiresKey(t *testing.T) {
	t.Setenv("XAI_API_KEY", "")
	p := NewXAIProvider()
	if p.Available() {
		t.Error("provider must be unavailable without XAI_API_KEY")
	}

	t.Setenv("XAI_API_KEY", "k")
	if !p.Available() {
		t.Error("provider must be available with XAI_API_KEY set")
	}
}

func TestXAIComplete_MissingKey(t *testing.T) {
	t.Setenv("XAI_API_KEY", "")

	p := NewXAIProvider()
	if _, err := p.Complete(context.Background(), &Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error without API key")
	}
}
