// Package validation checks translation source files before they are parsed:
// catalog paths must stay inside the catalog directory and file contents must
// match the format their extension claims.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxSourceSize is the largest translation source accepted (256 MB).
const MaxSourceSize = 256 << 20

// MaxPathLength is the maximum allowed catalog path length.
const MaxPathLength = 4096

var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrPathTooLong   = errors.New("path too long")
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrTooLarge      = errors.New("source too large")
	ErrTypeMismatch  = errors.New("content does not match extension")
)

// SanitizePath resolves userPath against baseDir and returns the joined path.
// Paths that are absolute or escape baseDir are rejected.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	clean := filepath.Clean(filepath.FromSlash(userPath))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}
	full := filepath.Join(absBase, clean)
	rel, err := filepath.Rel(absBase, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return full, nil
}

// FileType is a source encoding recognized from content.
type FileType string

const (
	FileTypeXZ      FileType = "xz"
	FileTypeSQLite  FileType = "sqlite"
	FileTypeXML     FileType = "xml"
	FileTypeJSON    FileType = "json"
	FileTypeUnknown FileType = "unknown"
)

var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3\x00")},
}

// Detect identifies data by magic bytes, then by its first non-space byte
// for text formats.
func Detect(data []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.fileType
		}
	}
	if !isLikelyText(head(data)) {
		return FileTypeUnknown
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FileTypeXML
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("[")):
		return FileTypeJSON
	}
	return FileTypeUnknown
}

// ExpectedType maps a file name to the type its content should have. Only the
// outermost extension counts, so "kjv.json.xz" expects xz.
func ExpectedType(name string) FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xz":
		return FileTypeXZ
	case ".sqlite", ".sqlite3", ".db":
		return FileTypeSQLite
	case ".xml":
		return FileTypeXML
	case ".json":
		return FileTypeJSON
	}
	return FileTypeUnknown
}

// CheckSource verifies that data is a plausible source for name. Text formats
// are only checked loosely; their parsers report the details.
func CheckSource(data []byte, name string) error {
	if len(data) > MaxSourceSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	want := ExpectedType(name)
	if want == FileTypeUnknown {
		return nil
	}
	got := Detect(data)
	if got == want {
		return nil
	}
	switch want {
	case FileTypeJSON, FileTypeXML:
		if got == FileTypeUnknown && isLikelyText(head(data)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is %s", ErrTypeMismatch, filepath.Base(name), got)
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}

// isLikelyText reports whether buf is mostly printable with no NUL bytes.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b >= 0x20 || b == '\t' || b == '\n' || b == '\r':
			printable++
		default:
			control++
		}
	}
	return float64(printable)/float64(printable+control) > 0.95
}
