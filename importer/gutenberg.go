package importer

import (
	"context"

	"github.com/kevinaaaquil/digilib/content"
	"github.com/kevinaaaquil/digilib/models"
)

// Gutenberg downloads one plain-text book and pages it by paragraph.
type Gutenberg struct {
	content.Meta
	URL     string
	Fetcher *Fetcher
}

func (g Gutenberg) Name() string { return "gutenberg:" + g.ID }

// Fetch returns a placeholder book along with the error when the download
// or parse fails.
func (g Gutenberg) Fetch(ctx context.Context) ([]models.Book, error) {
	body, err := g.Fetcher.Get(ctx, g.URL)
	if err == nil {
		var b models.Book
		b, err = content.Assemble(content.Scraped{
			Meta:             g.Meta,
			Text:             content.DecodeText(body),
			Chunker:          content.Paragraphs(content.ParagraphTarget),
			StripBoilerplate: true,
		})
		if err == nil {
			return []models.Book{b}, nil
		}
	}
	return []models.Book{content.Placeholder(g.Meta, err)}, err
}

// GutenbergClassics is the default set of public-domain novels.
func GutenbergClassics(f *Fetcher) []Source {
	books := []Gutenberg{
		{Meta: content.Meta{ID: "ebook-artofwar", Title: "The Art of War", Author: "Sun Tzu", Category: "Philosophy & Strategy", Cover: "⚔️"},
			URL: "https://www.gutenberg.org/cache/epub/132/pg132.txt"},
		{Meta: content.Meta{ID: "ebook-alice", Title: "Alice's Adventures in Wonderland", Author: "Lewis Carroll", Category: "Classic Literature", Cover: "🐇"},
			URL: "https://www.gutenberg.org/cache/epub/11/pg11.txt"},
		{Meta: content.Meta{ID: "ebook-pride", Title: "Pride and Prejudice", Author: "Jane Austen", Category: "Classic Literature", Cover: "🌹"},
			URL: "https://www.gutenberg.org/cache/epub/1342/pg1342.txt"},
		{Meta: content.Meta{ID: "ebook-sherlock", Title: "A Study in Scarlet", Author: "Arthur Conan Doyle", Category: "Mystery & Detective Fiction", Cover: "🔍"},
			URL: "https://www.gutenberg.org/cache/epub/244/pg244.txt"},
		{Meta: content.Meta{ID: "ebook-frankenstein", Title: "Frankenstein", Author: "Mary Shelley", Category: "Gothic Fiction", Cover: "⚡"},
			URL: "https://www.gutenberg.org/cache/epub/84/pg84.txt"},
	}
	out := make([]Source, len(books))
	for i, b := range books {
		b.Fetcher = f
		out[i] = b
	}
	return out
}
