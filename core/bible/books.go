package bible

import "strings"

// Books is the 66-book canon in order.
var Books = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles",
	"Ezra", "Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah",
	"Lamentations", "Ezekiel", "Daniel", "Hosea", "Joel",
	"Amos", "Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians",
	"Ephesians", "Philippians", "Colossians", "1 Thessalonians",
	"2 Thessalonians", "1 Timothy", "2 Timothy", "Titus",
	"Philemon", "Hebrews", "James", "1 Peter", "2 Peter",
	"1 John", "2 John", "3 John", "Jude", "Revelation",
}

// firstNTBook is the index of Matthew in Books.
const firstNTBook = 39

// bookAliases maps folded spellings seen in source files to canonical names.
var bookAliases = map[string]string{
	"psalm":              "Psalms",
	"song of songs":      "Song of Solomon",
	"canticles":          "Song of Solomon",
	"revelation of john": "Revelation",
	"revelations":        "Revelation",
}

// bookIndex maps the folded canonical name to its position.
var bookIndex = func() map[string]int {
	m := make(map[string]int, len(Books))
	for i, b := range Books {
		m[foldBook(b)] = i
	}
	return m
}()

func foldBook(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// CanonicalBook returns the canonical spelling of name and true, or name
// unchanged and false when it is not one of the 66 books.
func CanonicalBook(name string) (string, bool) {
	folded := foldBook(name)
	if i, ok := bookIndex[folded]; ok {
		return Books[i], true
	}
	if alias, ok := bookAliases[folded]; ok {
		return alias, true
	}
	return name, false
}

// BookIndex returns the canonical position of name, or -1.
func BookIndex(name string) int {
	canon, ok := CanonicalBook(name)
	if !ok {
		return -1
	}
	return bookIndex[foldBook(canon)]
}

// IsNewTestament reports whether name is Matthew through Revelation.
func IsNewTestament(name string) bool {
	return BookIndex(name) >= firstNTBook
}

// Location is a (book, chapter) pair used for reader navigation.
type Location struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// ChapterCounter reports how many chapters a book has in the active translation.
type ChapterCounter func(book string) int

// NextChapter returns the chapter after loc, crossing into the next book
// after the last chapter. ok is false at the end of Revelation.
func NextChapter(loc Location, count ChapterCounter) (Location, bool) {
	if loc.Chapter < count(loc.Book) {
		return Location{Book: loc.Book, Chapter: loc.Chapter + 1}, true
	}
	i := BookIndex(loc.Book)
	if i < 0 || i >= len(Books)-1 {
		return loc, false
	}
	return Location{Book: Books[i+1], Chapter: 1}, true
}

// PrevChapter returns the chapter before loc, crossing into the last chapter
// of the previous book. ok is false at Genesis 1.
func PrevChapter(loc Location, count ChapterCounter) (Location, bool) {
	if loc.Chapter > 1 {
		return Location{Book: loc.Book, Chapter: loc.Chapter - 1}, true
	}
	i := BookIndex(loc.Book)
	if i <= 0 {
		return loc, false
	}
	prev := Books[i-1]
	last := count(prev)
	if last < 1 {
		last = 1
	}
	return Location{Book: prev, Chapter: last}, true
}
