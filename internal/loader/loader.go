package loader

import (
	"context"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/store"
	"github.com/FocuswithJustin/JuniperSearch/internal/workerpool"
)

//go:embed sample
var sampleFS embed.FS

// Sample returns the bundled demo catalog.
func Sample() fs.FS {
	sub, err := fs.Sub(sampleFS, "sample")
	if err != nil {
		panic(err)
	}
	return sub
}

// Loader reads a catalog and its sources. It implements store.Source.
type Loader struct {
	fsys    fs.FS
	dir     string
	workers int
}

// Option configures a Loader.
type Option func(*Loader)

// WithWorkers bounds the number of translations parsed in parallel.
func WithWorkers(n int) Option {
	return func(l *Loader) { l.workers = n }
}

// New returns a loader over fsys. SQLite sources are copied to a temporary
// file before opening.
func New(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{fsys: fsys}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDir returns a loader for a catalog directory on disk, or for the bundled
// sample when dir is empty.
func NewDir(dir string, opts ...Option) *Loader {
	if dir == "" {
		return New(Sample(), opts...)
	}
	l := New(os.DirFS(dir), opts...)
	l.dir = dir
	return l
}

type translationResult struct {
	version bible.Version
	source  string
	verses  []bible.Verse
	sum     [32]byte
	err     error
}

// Load reads the catalog, loads every translation in parallel and builds the
// document list. A translation that fails is left out and reported in
// Corpus.LoadErrors; only an unreadable catalog fails the whole load.
func (l *Loader) Load(ctx context.Context) (*store.Corpus, error) {
	cat, err := ReadCatalog(l.fsys)
	if err != nil {
		return nil, err
	}

	results := workerpool.Map(ctx, l.workers, cat.Translations, l.loadTranslation)

	corpus := &store.Corpus{}
	h := blake3.New()
	for _, r := range results {
		if r.err != nil {
			loadErr := errors.NewLoad(string(r.version), r.source, r.err)
			logging.LoadFailure(string(r.version), r.source, r.err)
			corpus.LoadErrors = append(corpus.LoadErrors, loadErr)
			continue
		}
		corpus.Verses = append(corpus.Verses, r.verses...)
		corpus.Translations = append(corpus.Translations, r.version)
		fmt.Fprintf(h, "%s:%x\n", r.version, r.sum)
	}

	corpus.Documents = l.documents(cat.Documents)
	for _, d := range corpus.Documents {
		fmt.Fprintf(h, "doc:%s:%s\n", d.ID, d.FileURL)
	}
	corpus.Digest = hex.EncodeToString(h.Sum(nil))

	return corpus, nil
}

func (l *Loader) loadTranslation(ctx context.Context, t TranslationEntry) translationResult {
	res := translationResult{version: t.Version(), source: t.Path}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	verses, report, raw, err := readSource(ctx, l.fsys, l.dir, t.Path, res.version)
	if err != nil {
		res.err = err
		return res
	}
	if len(verses) == 0 {
		res.err = errors.NewParse(report.Format, t.Path, "no verses")
		return res
	}

	if problems := report.Problems; len(problems) > 0 {
		logging.Warn("translation_problems",
			"version", string(res.version),
			"source", t.Path,
			"problems", len(problems),
			"first", problems[0].Error())
	}
	res.verses = verses
	res.sum = blake3.Sum256(raw)
	logging.TranslationLoaded(string(res.version), t.Path, len(verses),
		"books", report.Books, "skipped", report.Skipped, "format", report.Format)
	return res
}

// documents converts catalog entries. Catalog order is creation order.
func (l *Loader) documents(entries []DocumentEntry) []bible.Document {
	docs := make([]bible.Document, 0, len(entries))
	for i, e := range entries {
		size := e.FileSize
		if size == "" && e.File != "" {
			if info, err := fs.Stat(l.fsys, cleanPath(e.File)); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
			} else {
				logging.Warn("document_file_missing", "id", e.ID, "file", e.File, "error", err.Error())
			}
		}
		docs = append(docs, bible.Document{
			ID:          e.ID,
			Title:       e.Title,
			Description: strings.TrimSpace(e.Description),
			FileURL:     e.FileURL,
			Category:    bible.Category(e.Category),
			FileSize:    size,
			Created:     i + 1,
		})
	}
	return docs
}
