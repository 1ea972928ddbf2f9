package content

import (
	"fmt"
	"strings"

	"github.com/kevinaaaquil/digilib/models"
)

// Column positions in the library workbook.
const (
	ColTitle     = 3
	ColAuthor    = 5
	ColCategory  = 9
	ColPublisher = 11
	ColPageCount = 15
	ColYear      = 16
)

// RowPageCount is the number of templated pages a row-derived book gets.
const RowPageCount = 5

// Row is one spreadsheet row. Index is its position among data rows and
// determines the book id.
type Row struct {
	Index int
	Cells []string
}

func (r Row) cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// assemble synthesizes a metadata-only book. The pages reference the real
// metadata but carry filler body text, so IsEbook is false.
func (r Row) assemble() (models.Book, error) {
	title := r.cell(ColTitle)
	if title == "" {
		return models.Book{}, fmt.Errorf("row %d: %w", r.Index+1, ErrNoTitle)
	}
	author := r.cell(ColAuthor)
	category := orDefault(r.cell(ColCategory), DefaultCategory)
	pageCount := orDefault(r.cell(ColPageCount), "0")

	pages := models.TextPages(
		fmt.Sprintf("Title: %s\nAuthor: %s\nCategory: %s\n\n(Cover Page)", title, orDefault(author, "Unknown"), category),
		fmt.Sprintf("About this Book:\nThis is a digital copy of %s.\nPublished by: %s\nYear: %s",
			title, orDefault(r.cell(ColPublisher), "Unknown"), orDefault(r.cell(ColYear), "Unknown")),
		"Chapter 1: Introduction\n\nLorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		"Chapter 2: Core Concepts\n\nUt enim ad minim veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat.",
		fmt.Sprintf("Summary:\n\nThis book contains %s pages in its physical edition.", pageCount),
	)
	return models.Book{
		ID:       fmt.Sprintf("xl-%d", r.Index+1),
		Title:    title,
		Author:   author,
		Category: category,
		Pages:    pages,
		IsEbook:  false,
		Ratings:  []int{},
	}, nil
}
