// Package store holds the in-memory corpus: every loaded verse and the
// document catalog. The corpus is loaded once by Initialize; afterwards the
// only mutator is BulkInsertVerses, which appends.
package store

import (
	"context"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// Corpus is what a Source hands to the store.
type Corpus struct {
	Verses       []bible.Verse
	Documents    []bible.Document
	Translations []bible.Version
	Digest       string
	LoadErrors   []error
}

// Source produces the corpus. Implementations report per-translation failures
// in Corpus.LoadErrors and reserve the error return for total failure.
type Source interface {
	Load(ctx context.Context) (*Corpus, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Corpus, error)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) (*Corpus, error) { return f(ctx) }

// Criteria selects verses by exact field match. Zero fields match anything.
type Criteria struct {
	Version bible.Version
	Book    string
	Chapter int
}

func (c Criteria) matches(v *bible.Verse) bool {
	if c.Version != "" && c.Version != v.Version {
		return false
	}
	if c.Book != "" && c.Book != v.Book {
		return false
	}
	if c.Chapter != 0 && c.Chapter != v.Chapter {
		return false
	}
	return true
}

// Document sort keys accepted by ListDocuments.
const (
	SortCreatedDesc = "-created_date"
	SortCreatedAsc  = "created_date"
)

// Status is a snapshot of the load state.
type Status struct {
	Ready        bool            `json:"ready"`
	Verses       int             `json:"verses"`
	Translations []bible.Version `json:"translations"`
	Documents    int             `json:"documents"`
	Digest       string          `json:"digest"`
	LoadErrors   []string        `json:"load_errors"`
}

// Store is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	verses       []bible.Verse
	documents    []bible.Document
	translations []bible.Version
	digest       string
	loadErrors   []error
	ready        bool
	inserts      int

	initOnce sync.Once
	initErr  error
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Initialize loads the corpus from src. Only the first call does any work;
// later calls return the first call's error. Readers see an empty corpus
// until Initialize completes.
func (s *Store) Initialize(ctx context.Context, src Source) error {
	s.initOnce.Do(func() {
		start := time.Now()
		corpus, err := src.Load(ctx)
		if err != nil {
			logging.Error("corpus_load_failed", "error", err.Error())
			s.mu.Lock()
			s.initErr = err
			s.ready = true
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.verses = append(s.verses, corpus.Verses...)
		s.documents = append(s.documents, corpus.Documents...)
		s.translations = slices.Clone(corpus.Translations)
		s.digest = corpus.Digest
		s.loadErrors = slices.Clone(corpus.LoadErrors)
		s.ready = true
		verses, translations := len(s.verses), len(s.translations)
		s.mu.Unlock()

		logging.CorpusReady(verses, translations, time.Since(start),
			"documents", len(corpus.Documents), "load_errors", len(corpus.LoadErrors))
	})
	return s.initErr
}

// Ready reports whether Initialize has finished.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Digest identifies the loaded corpus generation. Empty until ready.
func (s *Store) Digest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.digest
}

// Generation changes whenever the searchable corpus does: on load and on
// every bulk insert. Caches key on it.
func (s *Store) Generation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return "loading"
	}
	return s.digest + "/" + strconv.Itoa(s.inserts)
}

// Status returns a snapshot for health reporting.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	errs := make([]string, 0, len(s.loadErrors))
	for _, err := range s.loadErrors {
		errs = append(errs, err.Error())
	}
	if s.initErr != nil {
		errs = append(errs, s.initErr.Error())
	}
	return Status{
		Ready:        s.ready,
		Verses:       len(s.verses),
		Translations: slices.Clone(s.translations),
		Documents:    len(s.documents),
		Digest:       s.digest,
		LoadErrors:   errs,
	}
}

// Translations lists the translations that loaded, in catalog order.
func (s *Store) Translations() []bible.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.translations)
}

// FilterVerses returns a copy of every verse matching c.
func (s *Store) FilterVerses(c Criteria) []bible.Verse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []bible.Verse{}
	for i := range s.verses {
		if c.matches(&s.verses[i]) {
			out = append(out, s.verses[i])
		}
	}
	return out
}

// Chapter returns one chapter's verses sorted by verse number.
func (s *Store) Chapter(version bible.Version, book string, chapter int) []bible.Verse {
	verses := s.FilterVerses(Criteria{Version: version, Book: book, Chapter: chapter})
	sort.SliceStable(verses, func(i, j int) bool { return verses[i].Verse < verses[j].Verse })
	return verses
}

// BulkInsertVerses appends items, assigning each a fresh time-ordered UUID.
// Existing verses with the same reference are kept; no deduplication happens.
func (s *Store) BulkInsertVerses(items []bible.VerseInput) []bible.Verse {
	out := make([]bible.Verse, 0, len(items))
	for _, item := range items {
		out = append(out, item.WithID(newID()))
	}

	s.mu.Lock()
	s.verses = append(s.verses, out...)
	s.inserts++
	s.mu.Unlock()

	return slices.Clone(out)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ListDocuments returns a copy of the documents ordered by sortKey.
// Unknown keys keep catalog order.
func (s *Store) ListDocuments(sortKey string) []bible.Document {
	s.mu.RLock()
	docs := slices.Clone(s.documents)
	s.mu.RUnlock()

	if docs == nil {
		docs = []bible.Document{}
	}
	switch sortKey {
	case SortCreatedDesc:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Created > docs[j].Created })
	case SortCreatedAsc:
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].Created < docs[j].Created })
	}
	return docs
}

// AvailableDocuments counts documents that can be downloaded.
func (s *Store) AvailableDocuments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, d := range s.documents {
		if d.Downloadable() {
			n++
		}
	}
	return n
}

// Search runs the query engine over the corpus.
func (s *Store) Search(term string) search.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return search.Search(term, s.verses)
}

// ChapterCount returns the highest chapter of book in version, or 1 when the
// book is absent.
func (s *Store) ChapterCount(version bible.Version, book string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	highest := 1
	for i := range s.verses {
		v := &s.verses[i]
		if v.Version == version && v.Book == book && v.Chapter > highest {
			highest = v.Chapter
		}
	}
	return highest
}

// ChapterCounter binds ChapterCount to one version for chapter navigation.
func (s *Store) ChapterCounter(version bible.Version) bible.ChapterCounter {
	return func(book string) int { return s.ChapterCount(version, book) }
}

// RandomVerse picks a verse uniformly. ok is false when the corpus is empty.
func (s *Store) RandomVerse() (bible.Verse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.verses) == 0 {
		return bible.Verse{}, false
	}
	return s.verses[rand.IntN(len(s.verses))], true
}

// Len returns the number of verses.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.verses)
}
