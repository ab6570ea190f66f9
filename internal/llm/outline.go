package llm

import (
	"regexp"
	"strings"
)

// markerRe matches a single leading "N." or bullet marker.
var markerRe = regexp.MustCompile(`^\s*\d+\.|^\s*[-*•]\s*`)

// ParseTitles splits a model reply into outline titles: one per non-blank
// line with one leading "N." or bullet marker removed. When no line survives the
// whole trimmed reply is returned as the only title.
func ParseTitles(text string) []string {
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(markerRe.ReplaceAllString(line, ""))
		if line != "" {
			titles = append(titles, line)
		}
	}
	if len(titles) == 0 {
		if whole := strings.TrimSpace(text); whole != "" {
			return []string{whole}
		}
		return []string{}
	}
	return titles
}
