package bible

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooks(t *testing.T) {
	require.Len(t, Books, 66)
	assert.Equal(t, "Genesis", Books[0])
	assert.Equal(t, "Matthew", Books[firstNTBook])
	assert.Equal(t, "Revelation", Books[65])
}

func TestCanonicalBook(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Genesis", "Genesis", true},
		{"genesis", "Genesis", true},
		{"  1   John ", "1 John", true},
		{"Psalm", "Psalms", true},
		{"Song Of Solomon", "Song of Solomon", true},
		{"Revelations", "Revelation", true},
		{"Tobit", "Tobit", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalBook(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestBookIndexAndTestament(t *testing.T) {
	assert.Equal(t, 0, BookIndex("Genesis"))
	assert.Equal(t, 42, BookIndex("John"))
	assert.Equal(t, -1, BookIndex("Enoch"))

	assert.False(t, IsNewTestament("Malachi"))
	assert.True(t, IsNewTestament("Matthew"))
	assert.True(t, IsNewTestament("revelation"))
	assert.False(t, IsNewTestament("Enoch"))
}

func TestChapterNavigation(t *testing.T) {
	counts := map[string]int{"Genesis": 50, "Exodus": 40, "Malachi": 4, "Matthew": 28, "Revelation": 22}
	count := func(book string) int { return counts[book] }

	tests := []struct {
		name   string
		loc    Location
		next   Location
		nextOK bool
		prev   Location
		prevOK bool
	}{
		{
			name:   "middle of book",
			loc:    Location{"Genesis", 10},
			next:   Location{"Genesis", 11},
			nextOK: true,
			prev:   Location{"Genesis", 9},
			prevOK: true,
		},
		{
			name:   "first chapter of canon",
			loc:    Location{"Genesis", 1},
			next:   Location{"Genesis", 2},
			nextOK: true,
			prev:   Location{"Genesis", 1},
			prevOK: false,
		},
		{
			name:   "book boundary",
			loc:    Location{"Exodus", 1},
			next:   Location{"Exodus", 2},
			nextOK: true,
			prev:   Location{"Genesis", 50},
			prevOK: true,
		},
		{
			name:   "testament boundary",
			loc:    Location{"Malachi", 4},
			next:   Location{"Matthew", 1},
			nextOK: true,
			prev:   Location{"Malachi", 3},
			prevOK: true,
		},
		{
			name:   "last chapter of canon",
			loc:    Location{"Revelation", 22},
			next:   Location{"Revelation", 22},
			nextOK: false,
			prev:   Location{"Revelation", 21},
			prevOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextChapter(tt.loc, count)
			assert.Equal(t, tt.nextOK, ok)
			assert.Equal(t, tt.next, next)

			prev, ok := PrevChapter(tt.loc, count)
			assert.Equal(t, tt.prevOK, ok)
			assert.Equal(t, tt.prev, prev)
		})
	}

	t.Run("previous book not loaded", func(t *testing.T) {
		prev, ok := PrevChapter(Location{"Leviticus", 1}, count)
		require.True(t, ok)
		assert.Equal(t, Location{"Exodus", 40}, prev)

		prev, ok = PrevChapter(Location{"Numbers", 1}, count)
		require.True(t, ok)
		assert.Equal(t, Location{"Leviticus", 1}, prev)
	})
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		in      string
		want    Reference
		wantErr bool
	}{
		{in: "John 3:16", want: Reference{"John", 3, 16}},
		{in: "john 3", want: Reference{"John", 3, 0}},
		{in: "1 John 4:8", want: Reference{"1 John", 4, 8}},
		{in: "1John 4:8", want: Reference{"1 John", 4, 8}},
		{in: "Song of Solomon 2:1", want: Reference{"Song of Solomon", 2, 1}},
		{in: "Psalm 23", want: Reference{"Psalms", 23, 0}},
		{in: "Genesis 0", wantErr: true},
		{in: "Genesis 1:0", wantErr: true},
		{in: "Enoch 1:1", wantErr: true},
		{in: "John", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReference(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "John 3:16", Reference{"John", 3, 16}.String())
	assert.Equal(t, "John 3", Reference{"John", 3, 0}.String())
}

func TestVerseHelpers(t *testing.T) {
	assert.Equal(t, "KJV-John-3-16", VerseID(KJV, "John", 3, 16))

	v := VerseInput{Version: ESV, Book: "John", Chapter: 3, Verse: 16, Text: "For God so loved"}.WithID("x")
	assert.Equal(t, "x", v.ID)
	assert.Equal(t, "John 3:16", v.Reference())

	assert.True(t, KJV.IsKnown())
	assert.False(t, Version("WEB").IsKnown())
}

func TestDocument(t *testing.T) {
	assert.True(t, Document{FileURL: "/files/guide.docx"}.Downloadable())
	assert.False(t, Document{}.Downloadable())

	assert.True(t, CategoryReference.IsValid())
	assert.True(t, Category("").IsValid())
	assert.False(t, Category("Sermon").IsValid())
}
