package content

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/kevinaaaquil/digilib/models"
)

// PageSeparator divides the pages an administrator types into the add-book form.
const PageSeparator = "\n\n"

// Upload is a file attached to an add-book request.
type Upload struct {
	// FileName is the stored handle, recorded on the book for later cleanup.
	FileName string
	// OriginalName is the name the client sent, used for type detection.
	OriginalName string
	Data         []byte
}

// Manual is a book entered by an administrator.
type Manual struct {
	ID       string
	Title    string
	Author   string
	Category string
	Cover    string
	RawPages string
	Upload   *Upload
}

func (m Manual) assemble() (models.Book, error) {
	b := Meta{ID: m.ID, Title: m.Title, Author: m.Author, Category: m.Category, Cover: m.Cover}.book()
	if b.Title == "" {
		return models.Book{}, ErrNoTitle
	}
	if m.Upload != nil {
		b.FileName = m.Upload.FileName
	}

	if strings.TrimSpace(m.RawPages) != "" {
		for _, seg := range strings.Split(NormalizeNewlines(m.RawPages), PageSeparator) {
			if seg = strings.TrimSpace(seg); seg != "" {
				b.Pages = append(b.Pages, models.TextPage(seg))
			}
		}
		return b, nil
	}

	if m.Upload == nil {
		b.Pages = models.TextPages("Content from uploaded file: No file")
		return b, nil
	}

	name := m.Upload.OriginalName
	if name == "" {
		name = m.Upload.FileName
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		if chunks := Paragraphs(ParagraphTarget).Chunk(DecodeText(m.Upload.Data)); len(chunks) > 0 {
			b.Pages = models.TextPages(chunks...)
			b.IsEbook = true
			return b, nil
		}
	case ".epub":
		if et, err := ExtractEPUBText(m.Upload.Data); err == nil {
			if chunks := Paragraphs(ParagraphTarget).Chunk(et.Text); len(chunks) > 0 {
				if b.Author == "" {
					b.Author = et.Author
				}
				b.Pages = models.TextPages(chunks...)
				b.IsEbook = true
				return b, nil
			}
		}
	case ".pdf":
		if n, err := api.PageCount(bytes.NewReader(m.Upload.Data), nil); err == nil {
			b.Pages = models.TextPages(fmt.Sprintf(
				"Content from uploaded file: %s\n\nThe original PDF has %d pages.", name, n))
			return b, nil
		}
	}
	b.Pages = models.TextPages("Content from uploaded file: " + name)
	return b, nil
}
