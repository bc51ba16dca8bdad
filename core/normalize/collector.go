// Package normalize converts translation sources into flat bible.Verse records.
//
// Every reader funnels leaves through a Collector, which canonicalizes book
// names, enforces positive chapter/verse numbers and non-empty text, drops
// duplicate references and records per-book problems in a Report instead of
// failing the whole translation.
package normalize

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
)

// Report summarizes one normalization run.
type Report struct {
	Version bible.Version `json:"version"`
	Format  string        `json:"format"`
	Books   int           `json:"books"`
	Verses  int           `json:"verses"`

	// Skipped counts leaves dropped without a problem entry, such as
	// non-string verse values in nested sources.
	Skipped int `json:"skipped"`

	// Problems holds per-book or per-chapter parse failures.
	Problems []error `json:"-"`
}

// Err joins all problems, or returns nil.
func (r *Report) Err() error {
	if r == nil || len(r.Problems) == 0 {
		return nil
	}
	return stderrors.Join(r.Problems...)
}

// Collector accumulates verses for one translation.
type Collector struct {
	version bible.Version
	verses  []bible.Verse
	seen    map[string]struct{}
	books   map[string]struct{}
	report  *Report
}

// NewCollector creates a collector for version. format labels problems.
func NewCollector(version bible.Version, format string) *Collector {
	return &Collector{
		version: version,
		seen:    make(map[string]struct{}),
		books:   make(map[string]struct{}),
		report:  &Report{Version: version, Format: format},
	}
}

// Add records one leaf. Invalid leaves are reported and dropped.
func (c *Collector) Add(book string, chapter, verse int, text string) {
	name, _ := bible.CanonicalBook(strings.TrimSpace(book))
	if name == "" {
		c.Problem(name, "empty book name")
		return
	}
	if chapter < 1 || verse < 1 {
		c.Problem(name, fmt.Sprintf("non-positive reference %d:%d", chapter, verse))
		return
	}
	if strings.TrimSpace(text) == "" {
		c.Problem(name, fmt.Sprintf("empty text at %d:%d", chapter, verse))
		return
	}

	id := bible.VerseID(c.version, name, chapter, verse)
	if _, dup := c.seen[id]; dup {
		c.Problem(name, fmt.Sprintf("duplicate verse %d:%d", chapter, verse))
		return
	}
	c.seen[id] = struct{}{}
	c.books[name] = struct{}{}

	c.verses = append(c.verses, bible.Verse{
		ID:      id,
		Version: c.version,
		Book:    name,
		Chapter: chapter,
		Verse:   verse,
		Text:    text,
	})
}

// Skip counts a silently dropped leaf.
func (c *Collector) Skip() {
	c.report.Skipped++
}

// Problem records a parse failure scoped to book.
func (c *Collector) Problem(book, message string) {
	c.report.Problems = append(c.report.Problems, errors.NewBookParse(c.report.Format, book, message))
}

// Result returns the collected verses and the final report.
func (c *Collector) Result() ([]bible.Verse, *Report) {
	c.report.Books = len(c.books)
	c.report.Verses = len(c.verses)
	return c.verses, c.report
}
