package bible

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// referenceRegex matches "John 3", "John 3:16", "1 John 4:8" and "Song of Solomon 2:1".
var referenceRegex = regexp.MustCompile(`^\s*((?:[1-3]\s*)?[A-Za-z][A-Za-z .]*?)\s+(\d+)(?::(\d+))?\s*$`)

// Reference is a parsed verse reference. Verse is 0 when only a chapter was given.
type Reference struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse,omitempty"`
}

func (r Reference) String() string {
	if r.Verse == 0 {
		return fmt.Sprintf("%s %d", r.Book, r.Chapter)
	}
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

// ParseReference parses a reference such as "John 3:16". The book must be
// one of the 66 canonical books (aliases accepted).
func ParseReference(s string) (Reference, error) {
	m := referenceRegex.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, fmt.Errorf("invalid reference %q", s)
	}

	book := strings.TrimSpace(m[1])
	// "1John" -> "1 John"
	if len(book) > 1 && book[0] >= '1' && book[0] <= '3' && book[1] != ' ' {
		book = book[:1] + " " + book[1:]
	}
	canon, ok := CanonicalBook(book)
	if !ok {
		return Reference{}, fmt.Errorf("unknown book %q", book)
	}

	chapter, _ := strconv.Atoi(m[2])
	if chapter < 1 {
		return Reference{}, fmt.Errorf("invalid chapter in %q", s)
	}
	ref := Reference{Book: canon, Chapter: chapter}
	if m[3] != "" {
		ref.Verse, _ = strconv.Atoi(m[3])
		if ref.Verse < 1 {
			return Reference{}, fmt.Errorf("invalid verse in %q", s)
		}
	}
	return ref, nil
}
