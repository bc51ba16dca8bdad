// Package highlight splits verse text into plain and matched runs for display.
package highlight

import (
	"regexp"
	"strings"
)

// Segment is one run of text. Matched runs are rendered emphasized.
type Segment struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched,omitempty"`
}

// Highlight returns the segments of text with every case-insensitive occurrence
// of term marked. The term is matched literally. Joining the segment texts
// reproduces text exactly, including its original casing.
func Highlight(text, term string) []Segment {
	if text == "" {
		return []Segment{}
	}
	if term == "" {
		return []Segment{{Text: text}}
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Segment{{Text: text}}
	}

	segments := make([]Segment, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: text[loc[0]:loc[1]], Matched: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}

// Join concatenates segment texts.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Render joins segments, passing matched runs through mark.
func Render(segments []Segment, mark func(string) string) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Matched && mark != nil {
			b.WriteString(mark(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}
