// Package search implements the verse query engine: case-insensitive substring
// matching over the in-memory corpus with a fixed result cap and a true total.
package search

import (
	"strings"
	"unicode/utf16"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
)

const (
	// MinTermLength is the shortest trimmed term that is searched at all,
	// measured in UTF-16 code units.
	MinTermLength = 2

	// Limit caps the matches returned by one query.
	Limit = 100
)

// Result is the outcome of one query.
type Result struct {
	Term       string        `json:"term"`
	Matches    []bible.Verse `json:"matches"`
	TotalCount int           `json:"total"`
}

// Truncated reports whether the result hit the cap. Displays append "+" to the count.
func (r Result) Truncated() bool {
	return r.TotalCount >= Limit
}

// Search returns verses whose text contains term, ignoring case.
// Matches hold the first Limit hits in corpus order; TotalCount counts all of them.
// Terms shorter than MinTermLength after trimming yield an empty result.
// Trimming only gates the query; surrounding spaces are part of the match.
func Search(term string, corpus []bible.Verse) Result {
	res := Result{Term: term, Matches: []bible.Verse{}}
	if TermLength(strings.TrimSpace(term)) < MinTermLength {
		return res
	}

	needle := strings.ToLower(term)
	for _, v := range corpus {
		if !strings.Contains(strings.ToLower(v.Text), needle) {
			continue
		}
		res.TotalCount++
		if len(res.Matches) < Limit {
			res.Matches = append(res.Matches, v)
		}
	}
	return res
}

// TermLength counts s in UTF-16 code units, so a character outside the Basic
// Multilingual Plane counts as two.
func TermLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Group is the matches of one translation.
type Group struct {
	Version bible.Version `json:"version"`
	Count   int           `json:"count"`
	Verses  []bible.Verse `json:"-"`
}

// GroupByVersion partitions matches by translation. Groups appear in the order
// their translation is first seen; verses keep their relative order.
func GroupByVersion(matches []bible.Verse) []Group {
	groups := []Group{}
	index := make(map[bible.Version]int)
	for _, v := range matches {
		i, ok := index[v.Version]
		if !ok {
			i = len(groups)
			index[v.Version] = i
			groups = append(groups, Group{Version: v.Version})
		}
		groups[i].Verses = append(groups[i].Verses, v)
		groups[i].Count++
	}
	return groups
}

// Groups is shorthand for GroupByVersion(r.Matches).
func (r Result) Groups() []Group {
	return GroupByVersion(r.Matches)
}
