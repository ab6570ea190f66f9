package llm

import (
	"context"
	"net/http"
	"strings"
)

func init() {
	Register(ProviderMock, func(Settings, *http.Client) (Provider, error) {
		return NewMock(), nil
	})
}

// Mock echoes the prompt with placeholder text.
type Mock struct{}

// NewMock returns the offline provider.
func NewMock() *Mock {
	return &Mock{}
}

// Name implements Provider.
func (*Mock) Name() string { return ProviderMock }

// Generate implements Provider.
func (*Mock) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Generated content for: ")
	b.WriteString(req.Prompt)
	b.WriteString("\n")
	if req.Context != "" {
		b.WriteString("(context: ")
		b.WriteString(req.Context)
		b.WriteString(")\n")
	}
	b.WriteString("\nThis is placeholder generated content. To enable real LLM outputs, set the appropriate API key in your `.env` and set LLM_PROVIDER=openai or gemini.")
	return b.String(), nil
}
