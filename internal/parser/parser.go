// Package parser splits generated section text into typed blocks
// (headings, bullet items, paragraphs) for the exporters and search snippets.
package parser

import (
	"regexp"
	"strings"
)

// Kind classifies a block.
type Kind int

const (
	Paragraph Kind = iota
	Heading
	Bullet
)

// Block is one renderable unit of section content.
type Block struct {
	Kind Kind
	// Level is the heading depth (1 for "#") and 0 for other kinds.
	Level int
	Text  string
}

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe  = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+(.*)$`)
	emphRe    = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
)

// Parse splits content into blocks. Consecutive plain lines join into one
// paragraph; blank lines end a paragraph.
func Parse(content string) []Block {
	var (
		blocks []Block
		para   []string
	)
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, Block{Kind: Paragraph, Text: strings.Join(para, " ")})
			para = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case headingRe.MatchString(line):
			flush()
			m := headingRe.FindStringSubmatch(line)
			blocks = append(blocks, Block{Kind: Heading, Level: len(m[1]), Text: clean(m[2])})
		case bulletRe.MatchString(line):
			flush()
			m := bulletRe.FindStringSubmatch(line)
			blocks = append(blocks, Block{Kind: Bullet, Text: clean(m[1])})
		default:
			para = append(para, clean(line))
		}
	}
	flush()
	return blocks
}

// PlainText flattens content to lines without Markdown markers.
func PlainText(content string) string {
	blocks := Parse(content)
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Kind == Bullet {
			lines = append(lines, "• "+b.Text)
			continue
		}
		lines = append(lines, b.Text)
	}
	return strings.Join(lines, "\n")
}

// clean strips inline bold markers.
func clean(s string) string {
	return strings.TrimSpace(emphRe.ReplaceAllString(s, "$1$2"))
}
