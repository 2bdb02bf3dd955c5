package loader

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var errUnclosedFrontmatter = errors.New("frontmatter has no closing delimiter")

// frontmatter holds the recognised metadata keys. Unknown keys are ignored.
type frontmatter struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
}

// splitFrontmatter separates a leading "---" delimited yaml block from the
// body. Text without a leading delimiter line is all body.
func splitFrontmatter(text string) (frontmatter, string, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	first, rest, ok := cutLine(text)
	if !ok || strings.TrimRight(first, " \t") != delimiter {
		return frontmatter{}, text, nil
	}

	var metaLines []string
	for {
		line, next, more := cutLine(rest)
		if strings.TrimRight(line, " \t") == delimiter {
			var meta frontmatter
			if err := yaml.Unmarshal([]byte(strings.Join(metaLines, "\n")), &meta); err != nil {
				return frontmatter{}, "", fmt.Errorf("parse frontmatter: %w", err)
			}
			return meta, next, nil
		}
		if !more {
			return frontmatter{}, "", errUnclosedFrontmatter
		}
		metaLines = append(metaLines, line)
		rest = next
	}
}

// cutLine splits s at the first newline. ok is false when s has no newline,
// in which case line is all of s.
func cutLine(s string) (line, rest string, ok bool) {
	line, rest, ok = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, ok
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
