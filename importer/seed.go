package importer

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kevinaaaquil/digilib/content"
	"github.com/kevinaaaquil/digilib/models"
	"github.com/kevinaaaquil/digilib/store"
)

const lectureNotePages = 100

//go:embed engineering.yaml
var engineeringYAML []byte

type engineeringBook struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Author   string   `yaml:"author"`
	Category string   `yaml:"category"`
	Cover    string   `yaml:"cover"`
	Pages    []string `yaml:"pages"`
}

// CuratedSeeds are the hand-built books placed at the front of the catalog:
// the scanned EDC lecture notes, served as page images from the upload
// directory, followed by the hand-authored engineering e-books.
func CuratedSeeds() ([]models.Book, error) {
	notes := make([]models.Page, lectureNotePages)
	for i := range notes {
		notes[i] = models.ImagePage(fmt.Sprintf("/uploads/edc_pages/page_%d.png", i+1))
	}
	sources := []content.Source{content.Curated{
		Meta:     content.Meta{ID: "edc-notes", Title: "EDC Lecture Notes", Category: "Electronics and Communication Engg"},
		Pages:    notes,
		FileName: "EDC-Lecture-Notes.pdf",
		Ratings:  []int{5, 5, 5},
	}}

	var texts []engineeringBook
	if err := yaml.Unmarshal(engineeringYAML, &texts); err != nil {
		return nil, fmt.Errorf("engineering.yaml: %w", err)
	}
	for _, t := range texts {
		sources = append(sources, content.Curated{
			Meta:    content.Meta{ID: t.ID, Title: t.Title, Author: t.Author, Category: t.Category, Cover: t.Cover},
			Pages:   models.TextPages(t.Pages...),
			IsEbook: true,
		})
	}
	return assembleAll(sources)
}

func assembleAll(sources []content.Source) ([]models.Book, error) {
	books := make([]models.Book, 0, len(sources))
	for _, src := range sources {
		b, err := content.Assemble(src)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// ReadSeedFile decodes a JSON array of books. Pages may be bare strings.
func ReadSeedFile(path string) ([]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return books, nil
}

// WriteSeedFile replaces path with books, writing through a temporary file
// so a reader never sees a partial catalog.
func WriteSeedFile(path string, books []models.Book) error {
	if books == nil {
		books = []models.Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".seed-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load adds books to the catalog in order. Each book is reassembled first,
// which trims its fields and drops blank pages, so a seed file or snapshot
// is held to the same rules as a book added through the API. Books whose id
// is already taken are skipped, as are invalid ones; both are logged.
func Load(c *store.Catalog, books []models.Book, origin string, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	added := 0
	for _, b := range books {
		clean, err := reassemble(b)
		if err == nil {
			_, err = c.Add(clean)
		}
		if err != nil {
			if errors.Is(err, store.ErrConflictingID) {
				logger.Warn("duplicate book id skipped", "origin", origin, "id", b.ID, "title", b.Title)
			} else {
				logger.Warn("book skipped", "origin", origin, "id", b.ID, "title", b.Title, "error", err)
			}
			continue
		}
		added++
	}
	logger.Info("books loaded", "origin", origin, "added", added, "total", c.Len())
	return added
}

func reassemble(b models.Book) (models.Book, error) {
	return content.Assemble(content.Curated{
		Meta:      content.Meta{ID: b.ID, Title: b.Title, Author: b.Author, Category: b.Category, Cover: b.Cover},
		Pages:     b.Pages,
		IsEbook:   b.IsEbook,
		Ratings:   b.Ratings,
		FileName:  b.FileName,
		CreatedAt: b.CreatedAt,
	})
}
