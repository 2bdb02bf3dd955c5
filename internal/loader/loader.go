// Package loader discovers input files and turns them into documents:
// frontmatter is split from the body, the title and publication date are
// resolved and the word count and freshness score are computed.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"semgraph/internal/domain"
)

// Source is one raw input item: a name (usually a file path) and its content.
type Source struct {
	Name    string
	Content []byte
}

// Options configures a Loader.
type Options struct {
	StripMarkdown bool
	// Now returns the reference time for freshness and missing dates.
	// Defaults to time.Now.
	Now    func() time.Time
	Logger *log.Logger
}

// Loader builds documents from raw sources.
type Loader struct {
	stripMarkdown bool
	now           func() time.Time
	log           *log.Logger
}

// New creates a loader.
func New(opts Options) *Loader {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	l := opts.Logger
	if l == nil {
		l = log.Default()
	}
	return &Loader{stripMarkdown: opts.StripMarkdown, now: now, log: l}
}

// LoadGlob reads every regular file matching pattern, in the lexical order
// filepath.Glob reports them. Unreadable files are skipped with a warning.
func (l *Loader) LoadGlob(pattern string) ([]domain.Document, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			l.log.Warn("skipping unreadable file", "path", m, "err", err)
			continue
		}
		if info.IsDir() {
			continue
		}
		data, err := os.ReadFile(m)
		if err != nil {
			l.log.Warn("skipping unreadable file", "path", m, "err", err)
			continue
		}
		sources = append(sources, Source{Name: m, Content: data})
	}
	return l.Load(sources), nil
}

// Load parses sources in order. When two sources map to the same id the later
// one replaces the earlier document in place.
func (l *Loader) Load(sources []Source) []domain.Document {
	now := l.now()
	docs := make([]domain.Document, 0, len(sources))
	positions := make(map[string]int, len(sources))
	for _, src := range sources {
		doc := l.Parse(src.Name, src.Content, now)
		if pos, ok := positions[doc.ID]; ok {
			l.log.Warn("duplicate document id, later file wins", "id", doc.ID, "replaced", docs[pos].Path, "path", doc.Path)
			docs[pos] = doc
			continue
		}
		positions[doc.ID] = len(docs)
		docs = append(docs, doc)
	}
	return docs
}

// Parse builds a single document. A malformed frontmatter block never fails
// the document: the whole raw text becomes the body and metadata is empty.
func (l *Loader) Parse(name string, content []byte, now time.Time) domain.Document {
	raw := string(content)
	id := DocumentID(name)

	meta, body, err := splitFrontmatter(raw)
	if err != nil {
		l.log.Warn("malformed frontmatter, using raw text", "path", name, "err", err)
		meta, body = frontmatter{}, raw
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = id
	}

	published := now
	if meta.Date != "" {
		if t, ok := parseDate(meta.Date, now.Location()); ok {
			published = t
		} else {
			l.log.Warn("unparseable date, using now", "path", name, "date", meta.Date)
		}
	}

	if l.stripMarkdown {
		body = markdownToText([]byte(body))
	}

	return domain.Document{
		ID:             id,
		Path:           name,
		Title:          title,
		Body:           body,
		PublishedAt:    published,
		WordCount:      len(strings.Fields(body)),
		FreshnessScore: Freshness(published, now),
	}
}

// DocumentID derives the document id from a file name: the base name with
// its extension removed.
func DocumentID(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
