// Package llm generates section text through pluggable model providers.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Provider names accepted in configuration.
const (
	ProviderMock       = "mock"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// DefaultSystemPrompt frames every chat completion.
const DefaultSystemPrompt = "You are a helpful assistant that writes clear, concise, and well-structured business document content."

// Request is a single generation call.
type Request struct {
	// Prompt is the fully rendered instruction.
	Prompt string
	// Context is optional supporting material appended to the prompt.
	Context string
	// System overrides DefaultSystemPrompt for chat providers.
	System string
}

func (r Request) system() string {
	if r.System != "" {
		return r.System
	}
	return DefaultSystemPrompt
}

// Provider turns a prompt into text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// ServiceConfig holds credentials and overrides for one hosted provider.
type ServiceConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
}

// Settings selects a provider and carries every provider's configuration.
type Settings struct {
	Provider   string
	Timeout    time.Duration
	OpenAI     ServiceConfig
	OpenRouter ServiceConfig
	Gemini     ServiceConfig
}

// Factory builds a provider from settings. It returns errMissingKey when
// the provider cannot run with the given credentials.
type Factory func(s Settings, client *http.Client) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a provider available under name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Registered lists the registered provider names.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type missingKeyError struct{ provider string }

func (e missingKeyError) Error() string {
	return fmt.Sprintf("llm: %s api key is not set", e.provider)
}

// New builds the configured provider. A hosted provider without an API key
// falls back to the mock provider so the service stays usable offline.
func New(s Settings, logger *slog.Logger) (Provider, error) {
	name := s.Provider
	if name == "" {
		name = ProviderMock
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}

	p, err := f(s, client)
	if err != nil {
		if _, missing := err.(missingKeyError); missing {
			logger.Warn("llm: falling back to mock provider", slog.String("provider", name), slog.String("reason", err.Error()))
			return NewMock(), nil
		}
		return nil, err
	}
	return p, nil
}
