package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starford/draftdeck/internal/apperr"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openAIModel        = "gpt-3.5-turbo"
	openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel    = "google/gemini-2.5-flash-lite"
)

func init() {
	Register(ProviderOpenAI, func(s Settings, c *http.Client) (Provider, error) {
		return newChat(ProviderOpenAI, s.OpenAI, openAIEndpoint, openAIModel,
			"Please produce a polished section of approximately 150-300 words, suitable for business documents. Use clear headings or bullets if requested.", c)
	})
	Register(ProviderOpenRouter, func(s Settings, c *http.Client) (Provider, error) {
		return newChat(ProviderOpenRouter, s.OpenRouter, openRouterEndpoint, openRouterModel,
			"Please produce a polished section of approximately 150-300 words, suitable for business documents.", c)
	})
}

// Chat talks to an OpenAI compatible chat completions endpoint.
type Chat struct {
	name     string
	apiKey   string
	model    string
	endpoint string
	closing  string
	client   *http.Client
}

func newChat(name string, cfg ServiceConfig, endpoint, model, closing string, client *http.Client) (*Chat, error) {
	if cfg.APIKey == "" {
		return nil, missingKeyError{provider: name}
	}
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	return &Chat{
		name:     name,
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		closing:  closing,
		client:   client,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Text    string      `json:"text"`
	} `json:"choices"`
}

// Name implements Provider.
func (c *Chat) Name() string { return c.name }

// Generate implements Provider.
func (c *Chat) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.system()},
			{Role: "user", Content: fmt.Sprintf("%s\n\nContext:\n%s\n\n%s", req.Prompt, req.Context, c.closing)},
		},
		MaxTokens:   600,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("llm: %s: encode request: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: %s: build request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: %s: %w: %w", c.name, apperr.ErrGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("llm: %s: read response: %w", c.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: %s error %d: %s: %w", c.name, resp.StatusCode, strings.TrimSpace(string(raw)), apperr.ErrGeneration)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("llm: %s: decode response: %w: %w", c.name, apperr.ErrGeneration, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("llm: %s returned no choices: %w", c.name, apperr.ErrGeneration)
	}
	text := out.Choices[0].Message.Content
	if text == "" {
		text = out.Choices[0].Text
	}
	return strings.TrimSpace(text), nil
}
