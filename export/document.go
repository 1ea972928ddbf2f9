// Package export flattens a book into a single downloadable text document.
package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/kevinaaaquil/digilib/models"
)

// Separator is the line written between consecutive pages.
var Separator = strings.Repeat("—", 60)

// Extension is appended to every exported filename.
const Extension = ".txt"

const pageJoin = "\n\n"

// Document joins the pages of b into one text document. Text pages are
// written verbatim and image pages become a one-line reference. The output
// depends only on b.Pages, so the same book always yields the same bytes.
//
// This is a one-way export. Page text may itself contain the separator line,
// so the page boundaries of the original cannot be recovered from the result.
func Document(b *models.Book) []byte {
	var buf bytes.Buffer
	for i, p := range b.Pages {
		if i > 0 {
			buf.WriteString(pageJoin)
			buf.WriteString(Separator)
			buf.WriteString(pageJoin)
		}
		if p.IsImage() {
			fmt.Fprintf(&buf, "[Image page %d: %s]", i+1, p.URI)
			continue
		}
		buf.WriteString(p.Text)
	}
	return buf.Bytes()
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9 ]+`)
	spaces      = regexp.MustCompile(`\s+`)
)

// Filename derives the download name from a title: only ASCII letters,
// digits and spaces survive, runs of spaces become one underscore.
func Filename(title string) string {
	name := strings.TrimSpace(unsafeChars.ReplaceAllString(title, ""))
	name = spaces.ReplaceAllString(name, "_")
	if name == "" {
		name = "book"
	}
	return name + Extension
}
