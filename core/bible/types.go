package bible

import "fmt"

// Version is a translation code such as "KJV".
type Version string

// Bundled translation codes.
const (
	KJV  Version = "KJV"
	NKJV Version = "NKJV"
	NIV  Version = "NIV"
	ESV  Version = "ESV"
	ISV  Version = "ISV"
	ASV  Version = "ASV"
)

// DefaultVersions is the bundled translation set in load order.
var DefaultVersions = []Version{KJV, NKJV, NIV, ESV, ISV, ASV}

// validVersions is the set of bundled translation codes.
var validVersions = map[Version]bool{
	KJV:  true,
	NKJV: true,
	NIV:  true,
	ESV:  true,
	ISV:  true,
	ASV:  true,
}

// IsKnown returns true if v is one of the bundled translation codes.
// Catalogs may still declare other codes.
func (v Version) IsKnown() bool {
	return validVersions[v]
}

// Verse is a single verse of a single translation.
type Verse struct {
	// ID is unique within the store. Normalized verses use VerseID; bulk
	// inserted verses get a generated id.
	ID string `json:"id"`

	Version Version `json:"version"`
	Book    string  `json:"book"`
	Chapter int     `json:"chapter"`
	Verse   int     `json:"verse"`
	Text    string  `json:"text"`
}

// Reference returns the human-readable location, e.g. "John 3:16".
func (v Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.Book, v.Chapter, v.Verse)
}

// VerseInput is a verse awaiting an id.
type VerseInput struct {
	Version Version `json:"version"`
	Book    string  `json:"book"`
	Chapter int     `json:"chapter"`
	Verse   int     `json:"verse"`
	Text    string  `json:"text"`
}

// WithID attaches an id to the input.
func (in VerseInput) WithID(id string) Verse {
	return Verse{
		ID:      id,
		Version: in.Version,
		Book:    in.Book,
		Chapter: in.Chapter,
		Verse:   in.Verse,
		Text:    in.Text,
	}
}

// VerseID builds the stable id "{version}-{book}-{chapter}-{verse}".
func VerseID(version Version, book string, chapter, verse int) string {
	return fmt.Sprintf("%s-%s-%d-%d", version, book, chapter, verse)
}

// Category labels a document.
type Category string

// Document categories.
const (
	CategoryStudyGuide Category = "Study Guide"
	CategoryCommentary Category = "Commentary"
	CategoryDevotional Category = "Devotional"
	CategoryReference  Category = "Reference"
	CategoryOther      Category = "Other"
)

var validCategories = map[Category]bool{
	CategoryStudyGuide: true,
	CategoryCommentary: true,
	CategoryDevotional: true,
	CategoryReference:  true,
	CategoryOther:      true,
}

// IsValid returns true if c is a known label. The empty category is valid.
func (c Category) IsValid() bool {
	return c == "" || validCategories[c]
}

// Document is a downloadable study resource.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	FileURL     string   `json:"file_url,omitempty"`
	Category    Category `json:"category,omitempty"`
	FileSize    string   `json:"file_size,omitempty"`

	// Created is the load ordinal; higher means created later.
	Created int `json:"-"`
}

// Downloadable reports whether the document has a download location.
// Documents without one render as "Not available".
func (d Document) Downloadable() bool {
	return d.FileURL != ""
}
