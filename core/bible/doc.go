// Package bible defines the canonical records shared by every layer of the search service.
//
// # Core Types
//
//   - Verse: one verse of one translation, flattened to (version, book, chapter, verse, text)
//   - VerseInput: a verse without an id, as accepted by bulk insert
//   - Document: a downloadable study resource
//
// # Canon
//
// Books lists the 66 Protestant canon book names in order. Source files spell some names
// differently ("Psalm", "Song Of Solomon"); CanonicalBook folds those spellings onto the
// canonical list so filters and reader navigation agree across translations.
package bible
