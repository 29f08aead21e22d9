package provider

import (
	"context"
	"testing"
)

// MockProvider is a mock implementation of Provider for testing
type MockProvider struct {
	name      string
	available bool
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Available() bool {
	return m.available
}

func (m *MockProvider) Complete(_ context.Context, req *Request) (*Response, error) {
	return &Response{
		Text:         "mock completion",
		ProviderName: m.name,
		LatencyMs:    10,
	}, nil
}

func newMockRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		preferred: "auto",
	}
}

func TestRegistryGetBest_PreferredAvailable(t *testing.T) {
	r := newMockRegistry()
	r.Register(&MockProvider{name: "anthropic", available: true})
	r.Register(&MockProvider{name: "openai", available: true})
	r.SetPreferred("openai")

	p, err := r.GetBest()
	if err != nil {
		t.Fatalf("GetBest failed: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai, got %s", p.Name())
	}
}

func TestRegistryGetBest_PreferredUnavailable(t *testing.T) {
	r := newMockRegistry()
	r.Register(&MockProvider{name: "anthropic", available: false})
	r.SetPreferred("anthropic")

	if _, err := r.GetBest(); err == nil {
		t.Error("expected error for unavailable preferred provider")
	}
}

func TestRegistryGetBest_PreferredNotRegistered(t *testing.T) {
	r := newMockRegistry()
	r.SetPreferred("nonexistent")

	if _, err := r.GetBest(); err == nil {
		t.Error("expected error for unregistered preferred provider")
	}
}

func TestRegistryGetBest_AutoFollowsPriority(t *testing.T) {
	r := newMockRegistry()
	r.Register(&MockProvider{name: "anthropic", available: false})
	r.Register(&MockProvider{name: "openai", available: true})
	r.Register(&MockProvider{name: "gemini", available: true})

	p, err := r.GetBest()
	if err != nil {
		t.Fatalf("GetBest failed: %v", err)
	}
	// openai precedes gemini in ProviderPriority
	if p.Name() != "openai" {
		t.Errorf("expected openai, got %s", p.Name())
	}
}

func TestRegistryGetBest_NoneAvailable(t *testing.T) {
	r := newMockRegistry()
	r.Register(&MockProvider{name: "anthropic", available: false})

	if _, err := r.GetBest(); err == nil {
		t.Error("expected error when no provider is available")
	}
}

func TestRegistryListAvailable(t *testing.T) {
	r := newMockRegistry()
	r.Register(&MockProvider{name: "gemini", available: true})
	r.Register(&MockProvider{name: "anthropic", available: true})
	r.Register(&MockProvider{name: "openai", available: false})

	available := r.ListAvailable()
	if len(available) != 2 {
		t.Fatalf("expected 2 available, got %d", len(available))
	}
	// Sorted order
	if available[0] != "anthropic" || available[1] != "gemini" {
		t.Errorf("unexpected order: %v", available)
	}
}

func TestRegistryListAll(t *testing.T) {
	r := newMockRegistry()
	r.Register(&MockProvider{name: "anthropic", available: true})
	r.Register(&MockProvider{name: "openai", available: false})

	status := r.ListAll()
	if !status["anthropic"] || status["openai"] {
		t.Errorf("unexpected status map: %v", status)
	}
}

func TestNewRegistry_RegistersDefaults(t *testing.T) {
	r := NewRegistry()
	for _, name := range ProviderPriority {
		if _, ok := r.Get(name); !ok {
			t.Errorf("provider %s not registered by default", name)
		}
	}
}

func TestCacheKey_DistinguishesInputs(t *testing.T) {
	base := &Request{Prompt: "summarize this plan"}

	k1 := CacheKey("anthropic", base)
	k2 := CacheKey("openai", base)
	if k1 == k2 {
		t.Error("cache key must include the provider name")
	}

	k3 := CacheKey("anthropic", &Request{Prompt: "summarize this plan", Model: "opus"})
	if k1 == k3 {
		t.Error("cache key must include the model")
	}

	k4 := CacheKey("anthropic", &Request{Prompt: "summarize this plan"})
	if k1 != k4 {
		t.Error("identical requests must produce identical keys")
	}
}
