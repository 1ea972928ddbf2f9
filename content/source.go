// Package content turns every kind of raw book input into validated
// models.Book records with a uniform page sequence.
package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kevinaaaquil/digilib/models"
)

var (
	ErrNoTitle   = errors.New("source has no title")
	ErrNoContent = errors.New("source produced no pages")
)

// Source is one of Curated, Row, Scraped or Manual. Assemble is the only way
// to turn a Source into a Book.
type Source interface {
	assemble() (models.Book, error)
}

// Meta is the descriptive part shared by curated and scraped books.
type Meta struct {
	ID       string
	Title    string
	Author   string
	Category string
	Cover    string
}

func (m Meta) book() models.Book {
	return models.Book{
		ID:       strings.TrimSpace(m.ID),
		Title:    strings.TrimSpace(m.Title),
		Author:   strings.TrimSpace(m.Author),
		Category: strings.TrimSpace(m.Category),
		Cover:    strings.TrimSpace(m.Cover),
		Ratings:  []int{},
	}
}

// Curated pages were written ahead of time and pass through trimmed.
// FileName and CreatedAt carry over for books that were assembled before.
type Curated struct {
	Meta
	Pages     []models.Page
	IsEbook   bool
	Ratings   []int
	FileName  string
	CreatedAt time.Time
}

func (c Curated) assemble() (models.Book, error) {
	b := c.Meta.book()
	b.IsEbook = c.IsEbook
	b.FileName = strings.TrimSpace(c.FileName)
	b.CreatedAt = c.CreatedAt
	if len(c.Ratings) > 0 {
		b.Ratings = append([]int{}, c.Ratings...)
	}
	// Blank pages are dropped.
	for _, p := range c.Pages {
		if p.IsImage() {
			if uri := strings.TrimSpace(p.URI); uri != "" {
				b.Pages = append(b.Pages, models.ImagePage(uri))
			}
			continue
		}
		if text := strings.TrimSpace(p.Text); text != "" {
			b.Pages = append(b.Pages, models.TextPage(text))
		}
	}
	return b, nil
}

// Scraped is a long text blob fetched from somewhere and chunked into pages.
type Scraped struct {
	Meta
	Text string
	// Chunker defaults to Paragraphs(ParagraphTarget).
	Chunker Chunker
	// StripBoilerplate removes Project Gutenberg front and back matter first.
	StripBoilerplate bool
	// Preface, when set, becomes page 1 ahead of the chunked text.
	Preface string
}

func (s Scraped) assemble() (models.Book, error) {
	b := s.Meta.book()
	b.IsEbook = true
	text := NormalizeNewlines(s.Text)
	if s.StripBoilerplate {
		text = StripBoilerplate(text)
	}
	ch := s.Chunker
	if ch.Split == nil {
		ch = Paragraphs(ParagraphTarget)
	}
	chunks := ch.Chunk(text)
	if len(chunks) == 0 {
		return models.Book{}, fmt.Errorf("%w: %q", ErrNoContent, b.Title)
	}
	if p := strings.TrimSpace(s.Preface); p != "" {
		b.Pages = append(b.Pages, models.TextPage(p))
	}
	b.Pages = append(b.Pages, models.TextPages(chunks...)...)
	return b, nil
}

// Assemble builds the Book for src and enforces the record rules:
// trimmed non-empty title and category, at least one page.
func Assemble(src Source) (models.Book, error) {
	b, err := src.assemble()
	if err != nil {
		return models.Book{}, err
	}
	if b.Title == "" {
		return models.Book{}, ErrNoTitle
	}
	if b.Category == "" {
		b.Category = DefaultCategory
	}
	if len(b.Pages) == 0 {
		return models.Book{}, fmt.Errorf("%w: %q", ErrNoContent, b.Title)
	}
	return b, nil
}

// DefaultCategory is used when a source carries no category.
const DefaultCategory = "General"

// Placeholder stands in for a source that failed so the book stays
// discoverable. It has a single page describing the failure.
func Placeholder(m Meta, cause error) models.Book {
	b := m.book()
	if b.Category == "" {
		b.Category = DefaultCategory
	}
	b.IsEbook = true
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	b.Pages = models.TextPages(fmt.Sprintf(
		"Could not load %q.\nError: %s\n\nRun the import job again to refresh this book:\n  digilib import",
		b.Title, msg,
	))
	return b
}
