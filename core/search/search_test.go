package search

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
)

func verse(version bible.Version, book string, ch, v int, text string) bible.Verse {
	return bible.Verse{
		ID:      bible.VerseID(version, book, ch, v),
		Version: version,
		Book:    book,
		Chapter: ch,
		Verse:   v,
		Text:    text,
	}
}

func sampleCorpus() []bible.Verse {
	return []bible.Verse{
		verse(bible.KJV, "Genesis", 1, 1, "In the beginning God created the heaven and the earth."),
		verse(bible.KJV, "John", 3, 16, "For God so loved the world, that he gave his only begotten Son."),
		verse(bible.ESV, "John", 3, 16, "For God so loved the world, that he gave his only Son,"),
		verse(bible.KJV, "John", 11, 35, "Jesus wept."),
		verse(bible.NIV, "1 John", 4, 8, "Whoever does not love does not know God, because God is love."),
	}
}

func TestSearch(t *testing.T) {
	corpus := sampleCorpus()

	tests := []struct {
		name  string
		term  string
		ids   []string
		total int
	}{
		{"empty", "", nil, 0},
		{"single character", "a", nil, 0},
		{"single character padded", "  a ", nil, 0},
		{"case insensitive", "LOVED", []string{"KJV-John-3-16", "ESV-John-3-16"}, 2},
		{"substring not word", "lov", []string{"KJV-John-3-16", "ESV-John-3-16", "NIV-1 John-4-8"}, 3},
		{"leading space is matched", " wept", []string{"KJV-John-11-35"}, 1},
		{"trailing space is matched", "wept ", nil, 0},
		{"phrase with punctuation", "world, that", []string{"KJV-John-3-16", "ESV-John-3-16"}, 2},
		{"regexp metacharacters are literal", "wept.*", nil, 0},
		{"no match", "zebra", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Search(tt.term, corpus)
			var ids []string
			for _, v := range res.Matches {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.total, res.TotalCount)
			assert.NotNil(t, res.Matches)
		})
	}
}

func TestSearchKeepsSurroundingSpaces(t *testing.T) {
	corpus := []bible.Verse{
		verse(bible.KJV, "Genesis", 1, 3, "and there was light"),
		verse(bible.KJV, "Genesis", 1, 1, "in the beginning"),
	}

	res := Search("the ", corpus)
	assert.Equal(t, "the ", res.Term)
	assert.Equal(t, 1, res.TotalCount)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "in the beginning", res.Matches[0].Text)

	assert.Equal(t, 2, Search("the", corpus).TotalCount)
}

func TestSearchThresholdCountsUTF16Units(t *testing.T) {
	corpus := []bible.Verse{
		verse(bible.KJV, "Psalms", 150, 6, "praise \U0001F64F the LORD"),
		verse(bible.KJV, "Psalms", 150, 1, "praise ye the LORD \u00e9"),
	}

	assert.Equal(t, 2, TermLength("\U0001F64F"))
	assert.Equal(t, 1, TermLength("\u00e9"))

	assert.Equal(t, 1, Search("\U0001F64F", corpus).TotalCount, "astral character is two units")
	assert.Zero(t, Search(" \u00e9 ", corpus).TotalCount, "one unit after trimming")
}

func TestSearchCapsMatchesButCountsAll(t *testing.T) {
	corpus := make([]bible.Verse, 0, 150)
	for i := 1; i <= 150; i++ {
		corpus = append(corpus, verse(bible.KJV, "Psalms", 119, i, fmt.Sprintf("verse %d of the longest psalm", i)))
	}

	res := Search("the", corpus)
	assert.Equal(t, 150, res.TotalCount)
	require.Len(t, res.Matches, Limit)
	assert.Equal(t, 1, res.Matches[0].Verse)
	assert.Equal(t, 100, res.Matches[99].Verse)
	assert.True(t, res.Truncated())

	small := Search("psalm", corpus[:99])
	assert.Equal(t, 99, small.TotalCount)
	assert.False(t, small.Truncated())

	exact := Search("psalm", corpus[:100])
	assert.True(t, exact.Truncated())
}

func TestSearchMatchesAreSubsetOfCorpus(t *testing.T) {
	corpus := sampleCorpus()
	byID := make(map[string]bible.Verse)
	for _, v := range corpus {
		byID[v.ID] = v
	}

	for _, term := range []string{"god", "the", "so", "love"} {
		res := Search(term, corpus)
		assert.LessOrEqual(t, len(res.Matches), res.TotalCount)
		for _, m := range res.Matches {
			assert.Equal(t, byID[m.ID], m)
		}
	}
}

func TestGroupByVersion(t *testing.T) {
	res := Search("god", sampleCorpus())
	groups := res.Groups()

	require.Len(t, groups, 3)
	assert.Equal(t, bible.KJV, groups[0].Version)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "KJV-Genesis-1-1", groups[0].Verses[0].ID)
	assert.Equal(t, bible.ESV, groups[1].Version)
	assert.Equal(t, bible.NIV, groups[2].Version)

	sum := 0
	for _, g := range groups {
		sum += g.Count
		assert.Len(t, g.Verses, g.Count)
	}
	assert.Equal(t, len(res.Matches), sum)

	assert.Empty(t, GroupByVersion(nil))
}

func isLatest(s *Sequencer, t Ticket) bool {
	return s.Deliver(t, func() {})
}

func TestSequencer(t *testing.T) {
	var s Sequencer

	first := s.Next("lo")
	second := s.Next("love")
	assert.Equal(t, uint64(1), first.Seq)
	assert.False(t, isLatest(&s, first))
	assert.True(t, isLatest(&s, second))

	var sent []string
	assert.False(t, s.Deliver(first, func() { sent = append(sent, first.Term) }))
	assert.True(t, s.Deliver(second, func() { sent = append(sent, second.Term) }))
	assert.Equal(t, []string{"love"}, sent, "superseded tickets are not delivered")

	t.Run("client numbers", func(t *testing.T) {
		var s Sequencer
		t5, ok := s.Observe(5, "gra")
		require.True(t, ok)
		_, ok = s.Observe(3, "gr")
		assert.False(t, ok, "older numbers are rejected")
		_, ok = s.Observe(5, "gra")
		assert.False(t, ok, "repeated numbers are rejected")
		assert.True(t, isLatest(&s, t5))

		t6, ok := s.Observe(6, "grace")
		require.True(t, ok)
		assert.False(t, isLatest(&s, t5))
		assert.True(t, isLatest(&s, t6))
	})

	t.Run("concurrent issue", func(t *testing.T) {
		var s Sequencer
		var wg sync.WaitGroup
		seen := make(chan uint64, 50)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				seen <- s.Next("x").Seq
			}()
		}
		wg.Wait()
		close(seen)

		unique := make(map[uint64]bool)
		for seq := range seen {
			unique[seq] = true
		}
		assert.Len(t, unique, 50)
	})

	t.Run("deliver excludes newer tickets", func(t *testing.T) {
		var s Sequencer
		var delivered []uint64
		done := make(chan struct{})

		go func() {
			defer close(done)
			for seq := uint64(1); seq <= 500; seq++ {
				s.Observe(seq, "x")
			}
		}()

		for seq := uint64(1); seq <= 500; seq++ {
			tk := Ticket{Seq: seq, Term: "x"}
			s.Deliver(tk, func() {
				delivered = append(delivered, tk.Seq)
				// Observe cannot advance while send runs.
				assert.Equal(t, tk.Seq, s.latest)
			})
		}
		<-done

		assert.True(t, sort.SliceIsSorted(delivered, func(i, j int) bool { return delivered[i] < delivered[j] }))
	})
}
