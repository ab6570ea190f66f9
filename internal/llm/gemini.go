package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/starford/draftdeck/internal/apperr"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com"
	geminiModel   = "text-bison@001"
)

func init() {
	Register(ProviderGemini, func(s Settings, c *http.Client) (Provider, error) {
		return newGemini(s.Gemini, c)
	})
}

// Gemini calls the Google Generative Language text generation endpoint.
type Gemini struct {
	apiKey   string
	model    string
	endpoint string // explicit override; disables the v1beta2 fallback
	baseURL  string
	client   *http.Client
}

func newGemini(cfg ServiceConfig, client *http.Client) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, missingKeyError{provider: ProviderGemini}
	}
	model := cfg.Model
	if model == "" {
		model = geminiModel
	}
	return &Gemini{
		apiKey:   cfg.APIKey,
		model:    strings.ReplaceAll(model, "@", "-"),
		endpoint: cfg.Endpoint,
		baseURL:  geminiBaseURL,
		client:   client,
	}, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return ProviderGemini }

type geminiRequest struct {
	Prompt struct {
		Text string `json:"text"`
	} `json:"prompt"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content string `json:"content"`
		Output  string `json:"output"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"candidates"`
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
}

func (g *Gemini) url(version string) string {
	endpoint := g.endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s/models/%s:generate", g.baseURL, version, g.model)
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "key=" + url.QueryEscape(g.apiKey)
}

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	var body geminiRequest
	body.Prompt.Text = fmt.Sprintf("%s\n\nContext:\n%s\n\nPlease respond with a polished business-style section.", req.Prompt, req.Context)
	body.MaxOutputTokens = 512
	body.Temperature = 0.2
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: gemini: encode request: %w", err)
	}

	status, raw, err := g.post(ctx, g.url("v1"), payload)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound && g.endpoint == "" {
		status, raw, err = g.post(ctx, g.url("v1beta2"), payload)
		if err != nil {
			return "", err
		}
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("llm: gemini error %d: %s: %w", status, strings.TrimSpace(string(raw)), apperr.ErrGeneration)
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("llm: gemini: decode response: %w: %w", apperr.ErrGeneration, err)
	}
	if len(out.Candidates) > 0 {
		c := out.Candidates[0]
		for _, text := range []string{c.Content, c.Output, c.Message.Content} {
			if text != "" {
				return strings.TrimSpace(text), nil
			}
		}
	}
	if out.Output.Text != "" {
		return strings.TrimSpace(out.Output.Text), nil
	}
	return "", fmt.Errorf("llm: gemini returned no text: %w", apperr.ErrGeneration)
}

func (g *Gemini) post(ctx context.Context, target string, payload []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("llm: gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		// The request URL carries the API key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return 0, nil, fmt.Errorf("llm: gemini: %w: %w", apperr.ErrGeneration, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("llm: gemini: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
