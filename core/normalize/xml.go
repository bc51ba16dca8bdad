package normalize

import (
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/JuniperSearch/core/bible"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
)

// Zefania normalizes a Zefania XML Bible:
//
//	<XMLBIBLE><BIBLEBOOK bnumber="43" bname="John"><CHAPTER cnumber="3"><VERS vnumber="16">...</VERS>
//
// bname wins over bnumber when both are present.
func Zefania(r io.Reader, version bible.Version) ([]bible.Verse, *Report, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, nil, &errors.ParseError{Format: "XML", Message: "malformed document", Err: err}
	}

	books := xmlquery.Find(doc, "//BIBLEBOOK")
	if len(books) == 0 {
		return nil, nil, errors.NewParse("XML", "", "no BIBLEBOOK elements")
	}

	c := NewCollector(version, "XML")
	for _, book := range books {
		name := zefaniaBookName(book)
		if name == "" {
			c.Problem(book.SelectAttr("bnumber"), "book has neither bname nor a valid bnumber")
			continue
		}

		for _, chapter := range xmlquery.Find(book, "CHAPTER") {
			cnum, err := strconv.Atoi(strings.TrimSpace(chapter.SelectAttr("cnumber")))
			if err != nil {
				c.Problem(name, "chapter without numeric cnumber")
				continue
			}
			for _, vers := range xmlquery.Find(chapter, "VERS") {
				vnum, err := strconv.Atoi(strings.TrimSpace(vers.SelectAttr("vnumber")))
				if err != nil {
					c.Problem(name, "verse without numeric vnumber in chapter "+strconv.Itoa(cnum))
					continue
				}
				c.Add(name, cnum, vnum, collapseSpace(vers.InnerText()))
			}
		}
	}

	verses, report := c.Result()
	return verses, report, nil
}

func zefaniaBookName(book *xmlquery.Node) string {
	if name := strings.TrimSpace(book.SelectAttr("bname")); name != "" {
		return name
	}
	n, err := strconv.Atoi(strings.TrimSpace(book.SelectAttr("bnumber")))
	if err != nil || n < 1 || n > len(bible.Books) {
		return ""
	}
	return bible.Books[n-1]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
