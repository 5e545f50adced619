// Package citation pulls inline `[source: <title>]` markers out of model replies
// so the body and the source list can be rendered separately.
package citation

import (
	"regexp"
	"strings"
)

var sourcePattern = regexp.MustCompile(`\[source:\s*(.*?)\]`)

type Rendered struct {
	Body    string   `json:"body"`
	Sources []string `json:"sources"`
}

// Extract returns the content with every marker removed (trimmed) and the marker
// titles in order of appearance. Duplicates are kept.
func Extract(content string) Rendered {
	matches := sourcePattern.FindAllStringSubmatch(content, -1)
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, m[1])
	}

	return Rendered{
		Body:    strings.TrimSpace(sourcePattern.ReplaceAllString(content, "")),
		Sources: sources,
	}
}

// Sources is Extract without the body.
func Sources(content string) []string {
	return Extract(content).Sources
}
