package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/internal/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func verse(version bible.Version, book string, ch, vs int, text string) bible.Verse {
	return bible.Verse{ID: bible.VerseID(version, book, ch, vs), Version: version, Book: book, Chapter: ch, Verse: vs, Text: text}
}

func testCorpus() *store.Corpus {
	return &store.Corpus{
		Verses: []bible.Verse{
			verse(bible.KJV, "Genesis", 1, 1, "In the beginning God created the heaven and the earth."),
			verse(bible.KJV, "John", 3, 17, "For God sent not his Son into the world to condemn the world."),
			verse(bible.KJV, "John", 3, 16, "For God so loved the world, that he gave his only begotten Son."),
			verse(bible.KJV, "John", 11, 35, "Jesus wept."),
			verse(bible.ESV, "John", 3, 16, "For God so loved the world, that he gave his only Son,"),
		},
		Documents: []bible.Document{
			{ID: "d1", Title: "Study Guide", FileURL: "/files/guide.pdf", Category: bible.CategoryStudyGuide, Created: 1},
			{ID: "d2", Title: "Commentary", Category: bible.CategoryCommentary, Created: 2},
			{ID: "d3", Title: "Bad Link", FileURL: "javascript:alert(1)", Created: 3},
		},
		Translations: []bible.Version{bible.KJV, bible.ESV},
		Digest:       "digest",
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	require.NoError(t, st.Initialize(context.Background(), store.SourceFunc(func(context.Context) (*store.Corpus, error) {
		return testCorpus(), nil
	})))
	return st
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(newTestStore(t), DefaultConfig())
}

func get(t *testing.T, h http.Handler, target string, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Code != http.StatusNotModified {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealth(t *testing.T) {
	rec, env := get(t, newTestServer(t).Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestStatus(t *testing.T) {
	_, env := get(t, newTestServer(t).Handler(), "/api/status")
	st := decode[StatusResponse](t, env.Data)
	assert.True(t, st.Ready)
	assert.Equal(t, "ready", st.Phase)
	assert.Equal(t, 5, st.Verses)
	assert.Equal(t, []bible.Version{bible.KJV, bible.ESV}, st.Translations)

	_, env = get(t, NewServer(store.New(), DefaultConfig()).Handler(), "/api/status")
	st = decode[StatusResponse](t, env.Data)
	assert.False(t, st.Ready)
	assert.Equal(t, "loading", st.Phase)
}

func TestStatusReportsDriverAndCache(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	_, env := get(t, h, "/api/status")
	st := decode[StatusResponse](t, env.Data)
	assert.Equal(t, sqlite.GetInfo(), st.Driver)
	assert.NotEmpty(t, st.Driver.DriverName)
	require.NotNil(t, st.Cache)
	assert.Equal(t, 0, st.Cache.Entries)
	assert.False(t, st.Cache.Fresh)

	s.search("wept")
	_, env = get(t, h, "/api/status")
	st = decode[StatusResponse](t, env.Data)
	assert.Equal(t, 1, st.Cache.Entries)
	assert.True(t, st.Cache.Fresh)

	s.NotifyStatus()
	_, env = get(t, h, "/api/status")
	st = decode[StatusResponse](t, env.Data)
	assert.Equal(t, 0, st.Cache.Entries, "status changes drop cached responses")
	assert.False(t, st.Cache.Fresh)

	cfg := DefaultConfig()
	cfg.SearchCacheTTL = 0
	_, env = get(t, NewServer(newTestStore(t), cfg).Handler(), "/api/status")
	assert.Nil(t, decode[StatusResponse](t, env.Data).Cache)
}

func TestSearch(t *testing.T) {
	h := newTestServer(t).Handler()

	rec, env := get(t, h, "/api/search?q=so+loved")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SearchResponse](t, env.Data)
	assert.Equal(t, "so loved", resp.Query)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, env.Meta.Total)
	assert.False(t, resp.Truncated)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "John 3:16", resp.Matches[0].Reference)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, bible.KJV, resp.Groups[0].Version)

	var marked []string
	for _, seg := range resp.Matches[0].Segments {
		if seg.Matched {
			marked = append(marked, seg.Text)
		}
	}
	assert.Equal(t, []string{"so loved"}, marked)
}

func TestSearchShortTerm(t *testing.T) {
	_, env := get(t, newTestServer(t).Handler(), "/api/search?q=+g+")
	resp := decode[SearchResponse](t, env.Data)
	assert.Equal(t, 0, resp.Total)
	assert.NotNil(t, resp.Matches)
	assert.Empty(t, resp.Matches)
}

func TestSearchKeepsTermSpaces(t *testing.T) {
	st := newTestStore(t)
	st.BulkInsertVerses([]bible.VerseInput{{Version: bible.KJV, Book: "Genesis", Chapter: 1, Verse: 27, Text: "male and female created he them."}})
	s := NewServer(st, DefaultConfig())
	h := s.Handler()

	_, env := get(t, h, "/api/search?q=the+")
	spaced := decode[SearchResponse](t, env.Data)
	assert.Equal(t, "the ", spaced.Query)

	_, env = get(t, h, "/api/search?q=the")
	bare := decode[SearchResponse](t, env.Data)
	assert.Equal(t, 4, spaced.Total)
	assert.Equal(t, 5, bare.Total, "\"them.\" only matches without the space")

	for _, m := range spaced.Matches {
		for _, seg := range m.Segments {
			if seg.Matched {
				assert.Equal(t, "the ", strings.ToLower(seg.Text))
			}
		}
	}

	assert.Equal(t, "the ", cleanTerm("the\x00 "))
	assert.NotSame(t, s.search("the "), s.search("the"), "cached separately")
}

func TestSearchETag(t *testing.T) {
	h := newTestServer(t).Handler()

	rec, _ := get(t, h, "/api/search?q=God")
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)
	assert.True(t, strings.HasPrefix(tag, `W/"`))

	rec, _ = get(t, h, "/api/search?q=god", "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, rec.Code, "tags ignore case")

	rec, _ = get(t, h, "/api/search?q=world", "If-None-Match", tag)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = get(t, NewServer(store.New(), DefaultConfig()).Handler(), "/api/search?q=god")
	assert.Empty(t, rec.Header().Get("ETag"), "no tag while loading")
}

func TestSearchCacheFollowsCorpus(t *testing.T) {
	st := newTestStore(t)
	s := NewServer(st, DefaultConfig())

	first := s.search("wept")
	assert.Equal(t, 1, first.Total)
	assert.Same(t, first, s.search("WEPT"), "cached by lower-cased term")
	assert.Equal(t, 1, s.cache.Len())

	rec, _ := get(t, s.Handler(), "/api/search?q=wept")
	before := rec.Header().Get("ETag")

	st.BulkInsertVerses([]bible.VerseInput{{Version: bible.ASV, Book: "John", Chapter: 11, Verse: 35, Text: "Jesus wept."}})

	second := s.search("wept")
	assert.Equal(t, 2, second.Total)
	assert.NotSame(t, first, second)

	rec, _ = get(t, s.Handler(), "/api/search?q=wept", "If-None-Match", before)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, before, rec.Header().Get("ETag"))
}

func TestSearchWithoutCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SearchCacheTTL = 0
	s := NewServer(newTestStore(t), cfg)
	assert.Nil(t, s.cache)
	assert.Equal(t, 3, s.search("the world").Total)
}

func TestVerses(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		name   string
		target string
		status int
		ids    []string
	}{
		{
			name:   "all",
			target: "/api/verses",
			status: http.StatusOK,
			ids:    []string{"KJV-Genesis-1-1", "KJV-John-3-17", "KJV-John-3-16", "KJV-John-11-35", "ESV-John-3-16"},
		},
		{
			name:   "version is case-insensitive",
			target: "/api/verses?version=esv",
			status: http.StatusOK,
			ids:    []string{"ESV-John-3-16"},
		},
		{
			name:   "chapter sorted by verse",
			target: "/api/verses?version=KJV&book=john&chapter=3",
			status: http.StatusOK,
			ids:    []string{"KJV-John-3-16", "KJV-John-3-17"},
		},
		{
			name:   "unknown book",
			target: "/api/verses?book=Enoch",
			status: http.StatusOK,
			ids:    []string{},
		},
		{name: "bad chapter", target: "/api/verses?chapter=abc", status: http.StatusBadRequest},
		{name: "zero chapter", target: "/api/verses?chapter=0", status: http.StatusBadRequest},
		{name: "bad version", target: "/api/verses?version=K%20J%20V", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := get(t, h, tt.target)
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				assert.False(t, env.Success)
				require.NotNil(t, env.Error)
				return
			}
			ids := []string{}
			for _, v := range decode[[]bible.Verse](t, env.Data) {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, len(tt.ids), env.Meta.Total)
		})
	}
}

func TestLookup(t *testing.T) {
	h := newTestServer(t).Handler()

	rec, env := get(t, h, "/api/lookup?ref=john+3:16&version=kjv")
	require.Equal(t, http.StatusOK, rec.Code)
	verses := decode[[]bible.Verse](t, env.Data)
	require.Len(t, verses, 1)
	assert.Equal(t, "KJV-John-3-16", verses[0].ID)

	_, env = get(t, h, "/api/lookup?ref=John+3")
	assert.Len(t, decode[[]bible.Verse](t, env.Data), 3)

	rec, env = get(t, h, "/api/lookup?ref=Enoch+1:1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REFERENCE", env.Error.Code)

	rec, env = get(t, h, "/api/lookup?ref=Genesis+50")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "reference not found: Genesis 50", env.Error.Message)
}

func TestChapters(t *testing.T) {
	h := newTestServer(t).Handler()

	_, env := get(t, h, "/api/chapters?version=KJV&book=John&chapter=11")
	nav := decode[ChapterNav](t, env.Data)
	assert.Equal(t, 11, nav.ChapterCount)
	require.NotNil(t, nav.Prev)
	assert.Equal(t, bible.Location{Book: "John", Chapter: 10}, *nav.Prev)
	require.NotNil(t, nav.Next)
	assert.Equal(t, bible.Location{Book: "Acts", Chapter: 1}, *nav.Next)
	assert.Equal(t, "new", nav.Testament)

	_, env = get(t, h, "/api/chapters?version=KJV&book=genesis")
	nav = decode[ChapterNav](t, env.Data)
	assert.Equal(t, "Genesis", nav.Book)
	assert.Equal(t, "old", nav.Testament)
	assert.Equal(t, 1, nav.Chapter)
	assert.Nil(t, nav.Prev)
	assert.Contains(t, string(env.Data), `"prev":null`)

	rec, env := get(t, h, "/api/chapters?book=John")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_VERSION", env.Error.Code)

	rec, env = get(t, h, "/api/chapters?version=KJV")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_BOOK", env.Error.Code)
}

func TestRandom(t *testing.T) {
	rec, env := get(t, newTestServer(t).Handler(), "/api/random")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[SearchMatch](t, env.Data)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, m.Verse.Reference(), m.Reference)

	rec, env = get(t, NewServer(store.New(), DefaultConfig()).Handler(), "/api/random")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "verse not found", env.Error.Message)
}

func TestDocuments(t *testing.T) {
	h := newTestServer(t).Handler()

	_, env := get(t, h, "/api/documents")
	list := decode[DocumentList](t, env.Data)
	require.Len(t, list.Documents, 3)
	assert.Equal(t, 3, env.Meta.Total)
	assert.Equal(t, 1, list.Available)

	assert.Equal(t, "d3", list.Documents[0].ID, "newest first by default")
	assert.Empty(t, list.Documents[0].FileURL, "unsafe links are dropped")
	assert.False(t, list.Documents[0].Downloadable)
	assert.True(t, list.Documents[2].Downloadable)

	_, env = get(t, h, "/api/documents?sort=created_date")
	list = decode[DocumentList](t, env.Data)
	assert.Equal(t, "d1", list.Documents[0].ID)
}

func TestPagesAndNotFound(t *testing.T) {
	h := newTestServer(t).Handler()

	_, env := get(t, h, "/api/pages?name=Study+Guides")
	assert.JSONEq(t, `{"name":"Study Guides","url":"/study-guides"}`, string(env.Data))

	rec, env := get(t, h, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "route not found: GET /api/nope", env.Error.Message)
}

func TestCORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"https://example.org"}
	h := NewServer(newTestStore(t), cfg).Handler()

	rec, _ := get(t, h, "/health", "Origin", "https://example.org")
	assert.Equal(t, "https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = get(t, h, "/health", "Origin", "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
