// Package prompts renders the instructions sent to the language model.
// Built-in templates can be overridden by files in a directory.
package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/starford/draftdeck/internal/llm"
)

// Template names; an override file is <name>.tmpl.
const (
	NameSection = "section"
	NameRefine  = "refine"
	NameOutline = "outline"
	NameSystem  = "system"
)

var defaults = map[string]string{
	NameSection: `Write content for section titled '{{.Title}}' about: {{.Prompt}}`,
	NameRefine:  "Refine the following section content with instructions: {{.Instructions}}\nCurrent content:\n{{.Content}}",
	NameOutline: `Suggest {{.Count}} concise section or slide titles (one per line) for a document about: {{.Topic}}. Return titles only.`,
	NameSystem:  llm.DefaultSystemPrompt,
}

// Set is a reloadable collection of prompt templates. It is safe for
// concurrent use.
type Set struct {
	dir string

	mu    sync.RWMutex
	tmpls map[string]*template.Template
}

// New builds a Set from the defaults and any overrides found in dir.
// An empty dir uses the defaults only.
func New(dir string) (*Set, error) {
	s := &Set{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the override directory, if any.
func (s *Set) Dir() string {
	return s.dir
}

// Reload re-reads overrides from disk. On error the current templates stay.
func (s *Set) Reload() error {
	next := make(map[string]*template.Template, len(defaults))
	for name, text := range defaults {
		src := text
		if s.dir != "" {
			data, err := os.ReadFile(filepath.Join(s.dir, name+".tmpl"))
			switch {
			case err == nil:
				src = strings.TrimRight(string(data), "\r\n")
			case errors.Is(err, fs.ErrNotExist):
			default:
				return fmt.Errorf("prompts: read %s: %w", name, err)
			}
		}
		t, err := template.New(name).Option("missingkey=error").Parse(src)
		if err != nil {
			return fmt.Errorf("prompts: parse %s: %w", name, err)
		}
		next[name] = t
	}

	s.mu.Lock()
	s.tmpls = next
	s.mu.Unlock()
	return nil
}

func (s *Set) render(name string, data any) (string, error) {
	s.mu.RLock()
	t := s.tmpls[name]
	s.mu.RUnlock()

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompts: render %s: %w", name, err)
	}
	return b.String(), nil
}

// Section renders the instruction for generating one section.
func (s *Set) Section(title, prompt string) (string, error) {
	return s.render(NameSection, struct{ Title, Prompt string }{title, prompt})
}

// Refine renders the instruction for rewriting existing content.
func (s *Set) Refine(instructions, content string) (string, error) {
	return s.render(NameRefine, struct{ Instructions, Content string }{instructions, content})
}

// Outline renders the instruction for suggesting count titles about topic.
func (s *Set) Outline(count int, topic string) (string, error) {
	return s.render(NameOutline, struct {
		Count int
		Topic string
	}{count, topic})
}

// System returns the system prompt for chat providers.
func (s *Set) System() string {
	out, err := s.render(NameSystem, nil)
	if err != nil {
		return llm.DefaultSystemPrompt
	}
	return out
}
