package reader

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kevinaaaquil/digilib/models"
)

// Meta is hand-written chapter metadata for a curated book.
type Meta struct {
	Subject          string            `yaml:"subject" json:"subject,omitempty"`
	Keywords         []string          `yaml:"keywords" json:"keywords,omitempty"`
	Edition          string            `yaml:"edition" json:"edition,omitempty"`
	Publisher        string            `yaml:"publisher" json:"publisher,omitempty"`
	Year             string            `yaml:"year" json:"year,omitempty"`
	Level            string            `yaml:"level" json:"level,omitempty"`
	Language         string            `yaml:"language" json:"language,omitempty"`
	Summary          string            `yaml:"summary" json:"summary,omitempty"`
	TOC              []models.TOCEntry `yaml:"toc" json:"toc,omitempty"`
	ChapterSummaries []string          `yaml:"chapterSummaries" json:"chapterSummaries,omitempty"`
}

// Library maps book ids to their metadata.
type Library map[string]*Meta

// Lookup returns nil for a book with no metadata.
func (l Library) Lookup(id string) *Meta {
	if l == nil {
		return nil
	}
	return l[id]
}

// Merge copies other's entries over l's.
func (l Library) Merge(other Library) {
	for id, m := range other {
		l[id] = m
	}
}

//go:embed curated.yaml
var curatedYAML []byte

var (
	builtinOnce sync.Once
	builtin     Library
	builtinErr  error
)

// Builtin is the metadata shipped with the binary. The result is shared and
// must not be modified.
func Builtin() (Library, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = decodeLibrary(curatedYAML)
	})
	return builtin, builtinErr
}

// LoadLibrary reads a YAML document in the same shape as the built-in one.
func LoadLibrary(r io.Reader) (Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeLibrary(data)
}

// LoadLibraryFile is LoadLibrary for a path.
func LoadLibraryFile(path string) (Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadLibrary(f)
}

func decodeLibrary(data []byte) (Library, error) {
	lib := Library{}
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse book metadata: %w", err)
	}
	for id, m := range lib {
		if m == nil {
			delete(lib, id)
		}
	}
	return lib, nil
}

// Fits reports whether the metadata describes a book of this many pages:
// every TOC target is a content page and no summary runs past the end.
// Metadata written for a different edition of the book does not fit.
func (m *Meta) Fits(pages int) bool {
	if m == nil || len(m.ChapterSummaries) > pages {
		return false
	}
	for _, e := range m.TOC {
		if e.Page < 1 || e.Page > pages {
			return false
		}
	}
	return true
}

// BuildTOC uses the curated entries when they fit the book and otherwise
// lists every content page.
func BuildTOC(b *models.Book, meta *Meta) []models.TOCEntry {
	if len(meta.tocFor(len(b.Pages))) > 0 {
		return append([]models.TOCEntry(nil), meta.TOC...)
	}
	toc := make([]models.TOCEntry, len(b.Pages))
	for i := range toc {
		toc[i] = models.TOCEntry{Label: fmt.Sprintf("Page %d", i+1), Page: i + 1}
	}
	return toc
}

// CuratedTOC reports whether BuildTOC will use meta's entries.
func CuratedTOC(b *models.Book, meta *Meta) bool {
	return len(meta.tocFor(len(b.Pages))) > 0
}

func (m *Meta) tocFor(pages int) []models.TOCEntry {
	if !m.Fits(pages) {
		return nil
	}
	return m.TOC
}

// ChapterSummary returns the summary for a content position; summary i
// belongs to page i+1. Metadata that does not fit the book has none.
func ChapterSummary(meta *Meta, pos, pages int) string {
	if !meta.Fits(pages) || pos < 1 || pos > pages || pos > len(meta.ChapterSummaries) {
		return ""
	}
	return meta.ChapterSummaries[pos-1]
}
