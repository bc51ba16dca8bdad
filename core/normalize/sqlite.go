package normalize

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
)

// VersesQuery reads a verses(book, chapter, verse, text) table in storage order.
// book may hold a name or a 1-based canonical book number.
const VersesQuery = `SELECT book, chapter, verse, text FROM verses ORDER BY rowid`

// Table normalizes the verses table of an open SQLite database.
func Table(ctx context.Context, db *sql.DB, version bible.Version) ([]bible.Verse, *Report, error) {
	rows, err := db.QueryContext(ctx, VersesQuery)
	if err != nil {
		return nil, nil, &errors.ParseError{Format: "SQLite", Message: "query verses table", Err: err}
	}
	defer rows.Close()

	c := NewCollector(version, "SQLite")
	for rows.Next() {
		var (
			book           string
			chapter, verse int
			text           sql.NullString
		)
		if err := rows.Scan(&book, &chapter, &verse, &text); err != nil {
			c.Problem("", "scan row: "+err.Error())
			continue
		}
		if !text.Valid {
			c.Skip()
			continue
		}
		c.Add(tableBookName(book), chapter, verse, text.String)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &errors.ParseError{Format: "SQLite", Message: "read verses table", Err: err}
	}

	verses, report := c.Result()
	return verses, report, nil
}

func tableBookName(book string) string {
	book = strings.TrimSpace(book)
	if n, err := strconv.Atoi(book); err == nil && n >= 1 && n <= len(bible.Books) {
		return bible.Books[n-1]
	}
	return book
}
