package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
)

// Shape identifies the layout of a JSON translation source.
type Shape int

const (
	// ShapeUnknown means the source is not a JSON object.
	ShapeUnknown Shape = iota
	// ShapeBooks is {"books":[{"name","chapters":[{"chapter","verses":[{"verse","text"}]}]}]}.
	ShapeBooks
	// ShapeNested is {"<book>":{"<chapter>":{"<verse>":"text"}}}.
	ShapeNested
)

func (s Shape) String() string {
	switch s {
	case ShapeBooks:
		return "books"
	case ShapeNested:
		return "nested"
	default:
		return "unknown"
	}
}

// translationKey is the reserved top-level key in nested sources.
const translationKey = "translation"

// Detect picks the parser for a decoded top-level object: a "books" array
// selects ShapeBooks, anything else is ShapeNested.
func Detect(top map[string]json.RawMessage) Shape {
	if top == nil {
		return ShapeUnknown
	}
	if raw, ok := top["books"]; ok && isArray(raw) {
		return ShapeBooks
	}
	return ShapeNested
}

// Normalize converts a JSON translation source of either shape.
// An error is returned only when data is not a JSON object; structural
// problems inside books are collected in the report.
func Normalize(data []byte, version bible.Version) ([]bible.Verse, *Report, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, &errors.ParseError{Format: "JSON", Message: "top level is not an object", Err: err}
	}
	if top == nil {
		return nil, nil, errors.NewParse("JSON", "", "top level is null")
	}

	switch Detect(top) {
	case ShapeBooks:
		verses, report := parseBooks(top["books"], version)
		return verses, report, nil
	default:
		verses, report := parseNested(top, version)
		return verses, report, nil
	}
}

type booksBook struct {
	Name     string          `json:"name"`
	Chapters json.RawMessage `json:"chapters"`
}

type booksChapter struct {
	Chapter flexInt         `json:"chapter"`
	Verses  json.RawMessage `json:"verses"`
}

type booksVerse struct {
	Verse flexInt         `json:"verse"`
	Text  json.RawMessage `json:"text"`
}

// parseBooks handles ShapeBooks. Source order is preserved.
func parseBooks(raw json.RawMessage, version bible.Version) ([]bible.Verse, *Report) {
	c := NewCollector(version, "JSON")

	var books []json.RawMessage
	if err := json.Unmarshal(raw, &books); err != nil {
		c.Problem("", "books is not an array")
		return c.Result()
	}

	for i, rawBook := range books {
		var book booksBook
		if err := json.Unmarshal(rawBook, &book); err != nil {
			c.Problem(fmt.Sprintf("#%d", i+1), "book is not an object")
			continue
		}
		if book.Name == "" {
			c.Problem(fmt.Sprintf("#%d", i+1), "book has no name")
			continue
		}

		var chapters []json.RawMessage
		if !isArray(book.Chapters) || json.Unmarshal(book.Chapters, &chapters) != nil {
			c.Problem(book.Name, "chapters is not an array")
			continue
		}

		for _, rawChapter := range chapters {
			var ch booksChapter
			if err := json.Unmarshal(rawChapter, &ch); err != nil {
				c.Problem(book.Name, fmt.Sprintf("malformed chapter: %v", err))
				continue
			}
			var verses []json.RawMessage
			if !isArray(ch.Verses) || json.Unmarshal(ch.Verses, &verses) != nil {
				c.Problem(book.Name, fmt.Sprintf("chapter %d: verses is not an array", ch.Chapter))
				continue
			}
			for _, rawVerse := range verses {
				var v booksVerse
				if err := json.Unmarshal(rawVerse, &v); err != nil {
					c.Problem(book.Name, fmt.Sprintf("chapter %d: malformed verse: %v", ch.Chapter, err))
					continue
				}
				var text string
				if err := json.Unmarshal(v.Text, &text); err != nil {
					c.Problem(book.Name, fmt.Sprintf("%d:%d: text is not a string", ch.Chapter, v.Verse))
					continue
				}
				c.Add(book.Name, int(ch.Chapter), int(v.Verse), text)
			}
		}
	}
	return c.Result()
}

// parseNested handles ShapeNested. Map keys carry no order, so books follow
// the canon and chapters/verses ascend numerically.
func parseNested(top map[string]json.RawMessage, version bible.Version) ([]bible.Verse, *Report) {
	c := NewCollector(version, "JSON")

	names := make([]string, 0, len(top))
	for name := range top {
		if name == translationKey {
			continue
		}
		names = append(names, name)
	}
	sortBooks(names)

	for _, name := range names {
		var chapters map[string]json.RawMessage
		if err := json.Unmarshal(top[name], &chapters); err != nil || chapters == nil {
			c.Problem(name, "chapters is not an object")
			continue
		}

		for _, chKey := range sortedNumericKeys(chapters) {
			chapter, err := strconv.Atoi(strings.TrimSpace(chKey))
			if err != nil {
				c.Problem(name, fmt.Sprintf("chapter key %q is not a number", chKey))
				continue
			}

			var verses map[string]json.RawMessage
			if err := json.Unmarshal(chapters[chKey], &verses); err != nil || verses == nil {
				c.Problem(name, fmt.Sprintf("chapter %d is not an object", chapter))
				continue
			}

			for _, vKey := range sortedNumericKeys(verses) {
				verse, err := strconv.Atoi(strings.TrimSpace(vKey))
				if err != nil {
					c.Problem(name, fmt.Sprintf("verse key %q in chapter %d is not a number", vKey, chapter))
					continue
				}
				var text string
				if err := json.Unmarshal(verses[vKey], &text); err != nil {
					c.Skip()
					continue
				}
				c.Add(name, chapter, verse, text)
			}
		}
	}
	return c.Result()
}

// flexInt accepts 3 and "3".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// sortBooks orders canonical books first, then unknown names alphabetically.
func sortBooks(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		bi, bj := bible.BookIndex(names[i]), bible.BookIndex(names[j])
		switch {
		case bi >= 0 && bj >= 0:
			return bi < bj
		case bi >= 0:
			return true
		case bj >= 0:
			return false
		default:
			return names[i] < names[j]
		}
	})
}

// sortedNumericKeys returns keys ascending by numeric value; non-numeric keys sort last.
func sortedNumericKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(strings.TrimSpace(keys[i]))
		nj, errJ := strconv.Atoi(strings.TrimSpace(keys[j]))
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
