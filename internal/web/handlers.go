package web

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/highlight"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/server"
	"github.com/FocuswithJustin/JuniperSearch/internal/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/store"
)

// maxTermLength bounds search terms accepted from clients.
const maxTermLength = 200

// SearchMatch is one displayed hit.
type SearchMatch struct {
	bible.Verse
	Reference string              `json:"reference"`
	Segments  []highlight.Segment `json:"segments"`
}

// SearchResponse is the body of /api/search and of live results.
type SearchResponse struct {
	Query     string         `json:"query"`
	Total     int            `json:"total"`
	Truncated bool           `json:"truncated"`
	Groups    []search.Group `json:"groups"`
	Matches   []SearchMatch  `json:"matches"`
}

func newSearchResponse(res search.Result) *SearchResponse {
	resp := &SearchResponse{
		Query:     res.Term,
		Total:     res.TotalCount,
		Truncated: res.Truncated(),
		Groups:    res.Groups(),
		Matches:   make([]SearchMatch, 0, len(res.Matches)),
	}
	for _, v := range res.Matches {
		resp.Matches = append(resp.Matches, SearchMatch{
			Verse:     v,
			Reference: v.Reference(),
			Segments:  highlight.Highlight(v.Text, res.Term),
		})
	}
	return resp
}

// cleanTerm drops control characters and bounds the length. Spaces are kept;
// they take part in matching.
func cleanTerm(term string) string {
	return server.LimitStringLength(server.StripControl(term), maxTermLength)
}

// search answers term from the cache when the corpus generation still matches.
// Cached responses are shared and must not be modified.
func (s *Server) search(term string) *SearchResponse {
	term = cleanTerm(term)
	key := strings.ToLower(term)
	gen := s.store.Generation()

	if s.cache != nil {
		s.cache.Rebase(gen)
		if resp, ok := s.cache.Get(key); ok {
			return resp
		}
	}

	resp := newSearchResponse(s.store.Search(term))
	if s.cache != nil && s.store.Generation() == gen {
		s.cache.Set(key, resp)
	}
	return resp
}

// etag identifies a search response by corpus generation and term.
func etag(generation, term string) string {
	sum := blake3.Sum256([]byte(generation + "\x00" + strings.ToLower(cleanTerm(term))))
	return `W/"` + hex.EncodeToString(sum[:12]) + `"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusResponse reports load progress.
type StatusResponse struct {
	store.Status
	Phase   string       `json:"phase"`
	Clients int          `json:"live_clients"`
	Driver  sqlite.Info  `json:"sqlite"`
	Cache   *CacheStatus `json:"search_cache,omitempty"`
}

// CacheStatus describes the search response cache.
type CacheStatus struct {
	Entries int  `json:"entries"`
	Fresh   bool `json:"fresh"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.store.Status()
	phase := "loading"
	if st.Ready {
		phase = "ready"
	}
	resp := StatusResponse{Status: st, Phase: phase, Clients: s.hub.Len(), Driver: sqlite.GetInfo()}
	if s.cache != nil {
		resp.Cache = &CacheStatus{Entries: s.cache.Len(), Fresh: !s.cache.IsExpired()}
	}
	respond(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	if s.store.Ready() {
		tag := etag(s.store.Generation(), q)
		w.Header().Set("ETag", tag)
		if r.Header.Get("If-None-Match") == tag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	resp := s.search(q)
	respondList(w, resp, resp.Total)
}

// parseVersion validates an optional translation code.
func parseVersion(w http.ResponseWriter, raw string, required bool) (bible.Version, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			respondError(w, http.StatusBadRequest, "MISSING_VERSION", "version is required")
			return "", false
		}
		return "", true
	}
	if !server.ValidateIdentifier(raw) {
		respondError(w, http.StatusBadRequest, "INVALID_VERSION", "version must be a translation code")
		return "", false
	}
	return bible.Version(strings.ToUpper(raw)), true
}

// parseBook canonicalizes an optional book name; unknown names pass through.
func parseBook(w http.ResponseWriter, raw string, required bool) (string, bool) {
	raw = server.SanitizeUserInput(raw)
	if raw == "" {
		if required {
			respondError(w, http.StatusBadRequest, "MISSING_BOOK", "book is required")
			return "", false
		}
		return "", true
	}
	book, _ := bible.CanonicalBook(raw)
	return book, true
}

// parseChapter reads an optional positive chapter number; def is returned when absent.
func parseChapter(w http.ResponseWriter, raw string, def int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		respondError(w, http.StatusBadRequest, "INVALID_CHAPTER", "chapter must be a positive integer")
		return 0, false
	}
	return n, true
}

func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	version, ok := parseVersion(w, q.Get("version"), false)
	if !ok {
		return
	}
	book, ok := parseBook(w, q.Get("book"), false)
	if !ok {
		return
	}
	chapter, ok := parseChapter(w, q.Get("chapter"), 0)
	if !ok {
		return
	}

	var verses []bible.Verse
	if chapter > 0 {
		verses = s.store.Chapter(version, book, chapter)
	} else {
		verses = s.store.FilterVerses(store.Criteria{Version: version, Book: book})
	}
	respondList(w, verses, len(verses))
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref, err := bible.ParseReference(q.Get("ref"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REFERENCE", err.Error())
		return
	}
	version, ok := parseVersion(w, q.Get("version"), false)
	if !ok {
		return
	}

	verses := s.store.Chapter(version, ref.Book, ref.Chapter)
	if ref.Verse > 0 {
		kept := verses[:0]
		for _, v := range verses {
			if v.Verse == ref.Verse {
				kept = append(kept, v)
			}
		}
		verses = kept
	}
	if len(verses) == 0 {
		respondNotFound(w, "reference", ref.String())
		return
	}
	respondList(w, verses, len(verses))
}

// ChapterNav describes a chapter and its neighbours.
type ChapterNav struct {
	Version      bible.Version   `json:"version"`
	Book         string          `json:"book"`
	Chapter      int             `json:"chapter"`
	ChapterCount int             `json:"chapter_count"`
	Testament    string          `json:"testament,omitempty"` // "old" or "new"; empty for books outside the canon
	Prev         *bible.Location `json:"prev"`
	Next         *bible.Location `json:"next"`
}

func testament(book string) string {
	switch {
	case bible.BookIndex(book) < 0:
		return ""
	case bible.IsNewTestament(book):
		return "new"
	default:
		return "old"
	}
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	version, ok := parseVersion(w, q.Get("version"), true)
	if !ok {
		return
	}
	book, ok := parseBook(w, q.Get("book"), true)
	if !ok {
		return
	}
	chapter, ok := parseChapter(w, q.Get("chapter"), 1)
	if !ok {
		return
	}

	count := s.store.ChapterCounter(version)
	nav := ChapterNav{
		Version:      version,
		Book:         book,
		Chapter:      chapter,
		ChapterCount: count(book),
		Testament:    testament(book),
	}
	loc := bible.Location{Book: book, Chapter: chapter}
	if prev, ok := bible.PrevChapter(loc, count); ok {
		nav.Prev = &prev
	}
	if next, ok := bible.NextChapter(loc, count); ok {
		nav.Next = &next
	}
	respond(w, http.StatusOK, nav)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	v, ok := s.store.RandomVerse()
	if !ok {
		respondNotFound(w, "verse", "")
		return
	}
	respond(w, http.StatusOK, SearchMatch{Verse: v, Reference: v.Reference(), Segments: highlight.Highlight(v.Text, "")})
}

// DocumentView is a document as listed to clients.
type DocumentView struct {
	bible.Document
	Downloadable bool `json:"downloadable"`
}

// DocumentList is the body of /api/documents.
type DocumentList struct {
	Documents []DocumentView `json:"documents"`
	Available int            `json:"available"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	sortKey := r.URL.Query().Get("sort")
	if sortKey == "" {
		sortKey = store.SortCreatedDesc
	}

	docs := s.store.ListDocuments(sortKey)
	list := DocumentList{Documents: make([]DocumentView, 0, len(docs))}
	for _, d := range docs {
		d.FileURL = server.SanitizeURL(d.FileURL)
		view := DocumentView{Document: d, Downloadable: d.Downloadable()}
		if view.Downloadable {
			list.Available++
		}
		list.Documents = append(list.Documents, view)
	}
	respondList(w, list, len(list.Documents))
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	respond(w, http.StatusOK, map[string]string{"name": name, "url": PageURL(name)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondNotFound(w, "route", r.Method+" "+r.URL.Path)
}
