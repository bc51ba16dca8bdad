package loader

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/normalize"
	"github.com/FocuswithJustin/JuniperSearch/internal/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/validation"
)

// Format is a translation source encoding, chosen by file extension.
type Format string

const (
	FormatJSON   Format = "json"
	FormatXML    Format = "xml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat maps a path to its format. A trailing .xz marks xz compression,
// which is supported for JSON and XML.
func DetectFormat(p string) (format Format, compressed bool, err error) {
	name := strings.ToLower(p)
	if strings.HasSuffix(name, ".xz") {
		compressed = true
		name = strings.TrimSuffix(name, ".xz")
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compressed, nil
	case ".xml":
		return FormatXML, compressed, nil
	case ".sqlite", ".db", ".sqlite3":
		if compressed {
			return "", false, errors.NewUnsupported("source format", "compressed SQLite databases are not supported")
		}
		return FormatSQLite, false, nil
	}
	return "", false, errors.NewUnsupported("source format", filepath.Ext(name))
}

// decompress unwraps xz data.
func decompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// readSource loads one translation. raw holds the source bytes as stored,
// which feed the corpus digest.
func readSource(ctx context.Context, fsys fs.FS, dir, p string, version bible.Version) (verses []bible.Verse, report *normalize.Report, raw []byte, err error) {
	format, compressed, err := DetectFormat(p)
	if err != nil {
		return nil, nil, nil, err
	}

	p = cleanPath(p)
	raw, err = fs.ReadFile(fsys, p)
	if err != nil {
		return nil, nil, nil, errors.NewIO("read", p, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	if err := validation.CheckSource(raw, p); err != nil {
		return nil, nil, nil, &errors.ParseError{Format: string(format), Path: p, Message: "content check", Err: err}
	}

	data := raw
	if compressed {
		if data, err = decompress(raw); err != nil {
			return nil, nil, nil, &errors.ParseError{Format: "xz", Path: p, Message: "decompress", Err: err}
		}
	}

	switch format {
	case FormatJSON:
		verses, report, err = normalize.Normalize(data, version)
	case FormatXML:
		verses, report, err = normalize.Zefania(bytes.NewReader(data), version)
	case FormatSQLite:
		verses, report, err = readSQLite(ctx, dir, p, raw, version)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return verses, report, raw, nil
}

// readSQLite opens the database in place when the catalog lives on disk and
// from a temporary copy otherwise.
func readSQLite(ctx context.Context, dir, p string, raw []byte, version bible.Version) ([]bible.Verse, *normalize.Report, error) {
	file := ""
	if dir != "" {
		var err error
		if file, err = validation.SanitizePath(dir, p); err != nil {
			return nil, nil, errors.NewIO("open", p, err)
		}
	} else {
		tmp, err := os.CreateTemp("", "juniper-*.sqlite")
		if err != nil {
			return nil, nil, errors.NewIO("create", "temporary database", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(raw); err != nil {
			tmp.Close()
			return nil, nil, errors.NewIO("write", tmp.Name(), err)
		}
		if err := tmp.Close(); err != nil {
			return nil, nil, errors.NewIO("close", tmp.Name(), err)
		}
		file = tmp.Name()
	}

	db, err := sqlite.OpenReadOnly(file)
	if err != nil {
		return nil, nil, errors.NewIO("open", p, err)
	}
	defer db.Close()
	return normalize.Table(ctx, db, version)
}
