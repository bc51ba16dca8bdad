// Package loader reads the catalog manifest and its translation sources and
// assembles the corpus handed to the store.
package loader

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
)

// CatalogFile is the manifest name looked up in a data directory.
const CatalogFile = "catalog.yaml"

// Catalog lists the translations and documents to load.
type Catalog struct {
	Translations []TranslationEntry `yaml:"translations"`
	Documents    []DocumentEntry    `yaml:"documents"`
}

// TranslationEntry names one translation source. Path is relative to the manifest.
type TranslationEntry struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Version returns the upper-cased translation code.
func (t TranslationEntry) Version() bible.Version {
	return bible.Version(strings.ToUpper(strings.TrimSpace(t.Code)))
}

// DocumentEntry describes one downloadable document. When FileSize is empty and
// File names a local file, the size is computed from it.
type DocumentEntry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	FileURL     string `yaml:"file_url"`
	Category    string `yaml:"category"`
	FileSize    string `yaml:"file_size"`
	File        string `yaml:"file"`
}

// ParseCatalog decodes a manifest. Unknown keys are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, &errors.ParseError{Format: "YAML", Path: CatalogFile, Message: "invalid catalog", Err: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadCatalog loads CatalogFile from fsys.
func ReadCatalog(fsys fs.FS) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, CatalogFile)
	if err != nil {
		return nil, errors.NewIO("read", CatalogFile, err)
	}
	return ParseCatalog(data)
}

// Validate checks required fields and uniqueness.
func (c *Catalog) Validate() error {
	codes := make(map[bible.Version]bool)
	for i, t := range c.Translations {
		if t.Version() == "" {
			return errors.NewValidation("translations.code", "entry "+strconv.Itoa(i+1)+" has no code")
		}
		if codes[t.Version()] {
			return &errors.ValidationError{Field: "translations.code", Value: string(t.Version()), Message: "duplicate translation code"}
		}
		codes[t.Version()] = true
		if strings.TrimSpace(t.Path) == "" {
			return &errors.ValidationError{Field: "translations.path", Value: string(t.Version()), Message: "missing path"}
		}
		if !fs.ValidPath(cleanPath(t.Path)) {
			return &errors.ValidationError{Field: "translations.path", Value: t.Path, Message: "path escapes the catalog directory"}
		}
	}

	ids := make(map[string]bool)
	for i, d := range c.Documents {
		if d.ID == "" || d.Title == "" {
			return errors.NewValidation("documents", "entry "+strconv.Itoa(i+1)+" needs id and title")
		}
		if ids[d.ID] {
			return &errors.ValidationError{Field: "documents.id", Value: d.ID, Message: "duplicate document id"}
		}
		ids[d.ID] = true
		if !bible.Category(d.Category).IsValid() {
			return &errors.ValidationError{Field: "documents.category", Value: d.Category, Message: "unknown category"}
		}
		if d.File != "" && !fs.ValidPath(cleanPath(d.File)) {
			return &errors.ValidationError{Field: "documents.file", Value: d.File, Message: "path escapes the catalog directory"}
		}
	}
	return nil
}

func cleanPath(p string) string {
	return path.Clean(strings.TrimPrefix(strings.TrimSpace(p), "./"))
}
