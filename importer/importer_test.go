package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kevinaaaquil/digilib/content"
	"github.com/kevinaaaquil/digilib/models"
	"github.com/kevinaaaquil/digilib/reader"
	"github.com/kevinaaaquil/digilib/store"
)

func testFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: 5 * time.Second}, Attempts: 3}
}

const gutenbergText = "Produced by volunteers\r\n\r\n*** START OF THE PROJECT GUTENBERG EBOOK TEST ***\r\n\r\nFirst paragraph.\r\n\r\nSecond paragraph.\r\n\r\n*** END OF THE PROJECT GUTENBERG EBOOK TEST ***\r\nLicense text"

func TestGutenberg_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, gutenbergText)
	}))
	defer srv.Close()

	g := Gutenberg{Meta: content.Meta{ID: "g-1", Title: "Test", Category: "Fiction"}, URL: srv.URL, Fetcher: testFetcher()}
	books, err := g.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "g-1", books[0].ID)
	assert.True(t, books[0].IsEbook)
	assert.Equal(t, models.TextPages("First paragraph.\n\nSecond paragraph."), books[0].Pages)
}

func TestGutenberg_FailureBecomesPlaceholder(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := Gutenberg{Meta: content.Meta{ID: "g-2", Title: "Gone", Category: "Fiction"}, URL: srv.URL, Fetcher: testFetcher()}
	books, err := g.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
	require.Len(t, books, 1)
	require.Len(t, books[0].Pages, 1)
	assert.Contains(t, books[0].Pages[0].Text, `Could not load "Gone"`)
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	body, err := testFetcher().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func wikiServer(t *testing.T, articles map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "extracts", r.URL.Query().Get("prop"))
		title := r.URL.Query().Get("titles")
		text, ok := articles[title]
		page := map[string]any{"title": title, "extract": text}
		if !ok {
			page = map[string]any{"title": title, "missing": true}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"query": map[string]any{"pages": map[string]any{"1": page}}})
	}))
}

func TestWikipedia_Fetch(t *testing.T) {
	srv := wikiServer(t, map[string]string{
		"Diode":  "A diode conducts one way.\n\n== History ==\nEarly diodes were tubes.",
		"MOSFET": "A MOSFET is a transistor.",
	})
	defer srv.Close()

	w := Wikipedia{
		Meta:     content.Meta{ID: "ebook-test", Title: "Devices", Author: "Anon", Category: "Electronics", Cover: "⚡"},
		Topics:   []string{"Diode", "Nonexistent", "MOSFET"},
		Fetcher:  testFetcher(),
		Endpoint: srv.URL,
	}
	books, err := w.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	b := books[0]
	assert.True(t, b.IsEbook)
	require.GreaterOrEqual(t, len(b.Pages), 2)
	assert.Contains(t, b.Pages[0].Text, "DEVICES")
	assert.Contains(t, b.Pages[0].Text, "Topics   : Diode, Nonexistent, MOSFET")

	var body strings.Builder
	for _, p := range b.Pages[1:] {
		body.WriteString(p.Text)
	}
	assert.Contains(t, body.String(), "A diode conducts one way.")
	assert.Contains(t, body.String(), "== History ==")
	assert.Contains(t, body.String(), "A MOSFET is a transistor.")
	assert.NotContains(t, body.String(), "Nonexistent\n")
}

func TestWikipedia_NothingFetched(t *testing.T) {
	srv := wikiServer(t, nil)
	defer srv.Close()

	w := Wikipedia{Meta: content.Meta{ID: "w", Title: "Empty", Category: "X"}, Topics: []string{"A"}, Fetcher: testFetcher(), Endpoint: srv.URL}
	books, err := w.Fetch(context.Background())
	require.ErrorIs(t, err, errNoArticles)
	require.Len(t, books, 1)
	assert.Contains(t, books[0].Pages[0].Text, `Could not load "Empty"`)
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := 0; i < HeaderRows; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, fmt.Sprintf("header %d", i+1)))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, HeaderRows+i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "books.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func bookRow(title, author, category, publisher, pages, year string) []any {
	row := make([]any, 17)
	for i := range row {
		row[i] = ""
	}
	row[content.ColTitle] = title
	row[content.ColAuthor] = author
	row[content.ColCategory] = category
	row[content.ColPublisher] = publisher
	row[content.ColPageCount] = pages
	row[content.ColYear] = year
	return row
}

func TestExcel_Fetch(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		bookRow("Signals and Systems", "Oppenheim", "ECE", "Pearson", "957", "1996"),
		bookRow("", "Nobody", "ECE", "", "", ""),
		bookRow("Data Structures", "", "", "", "", ""),
	})

	books, err := Excel{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "xl-1", books[0].ID)
	assert.Equal(t, "Signals and Systems", books[0].Title)
	assert.Equal(t, "Oppenheim", books[0].Author)
	assert.Len(t, books[0].Pages, content.RowPageCount)
	assert.Contains(t, books[0].Pages[1].Text, "Published by: Pearson")
	assert.False(t, books[0].IsEbook)

	assert.Equal(t, "xl-3", books[1].ID)
	assert.Equal(t, content.DefaultCategory, books[1].Category)
}

func TestExcel_MissingWorkbookUsesSamples(t *testing.T) {
	books, err := Excel{Path: filepath.Join(t.TempDir(), "absent.xlsx")}.Fetch(context.Background())
	require.NoError(t, err)
	samples, err := SampleBooks()
	require.NoError(t, err)
	assert.Equal(t, samples, books)
	require.Len(t, books, 2)
	assert.Equal(t, []int{}, books[0].Ratings)
}

func TestExcel_CorruptWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	books, err := Excel{Path: path}.Fetch(context.Background())
	require.Error(t, err)
	assert.Empty(t, books)
}

type funcSource struct {
	name  string
	fetch func(ctx context.Context) ([]models.Book, error)
}

func (f funcSource) Name() string                                     { return f.name }
func (f funcSource) Fetch(ctx context.Context) ([]models.Book, error) { return f.fetch(ctx) }

func titled(titles ...string) []models.Book {
	out := make([]models.Book, len(titles))
	for i, t := range titles {
		out[i] = models.Book{Title: t, Category: "X", Pages: models.TextPages("p")}
	}
	return out
}

func TestRunner_OrderAndIsolation(t *testing.T) {
	sources := []Source{
		funcSource{"slow", func(ctx context.Context) ([]models.Book, error) {
			time.Sleep(50 * time.Millisecond)
			return titled("a1", "a2"), nil
		}},
		funcSource{"broken", func(ctx context.Context) ([]models.Book, error) {
			return titled("placeholder"), errors.New("boom")
		}},
		funcSource{"hangs", func(ctx context.Context) ([]models.Book, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
		funcSource{"fast", func(ctx context.Context) ([]models.Book, error) {
			return titled("c1"), nil
		}},
	}

	r := &Runner{Timeout: 200 * time.Millisecond, Concurrency: 2}
	rep := r.Run(context.Background(), sources)

	var got []string
	for _, b := range rep.Books {
		got = append(got, b.Title)
	}
	assert.Equal(t, []string{"a1", "a2", "placeholder", "c1"}, got)

	require.Len(t, rep.Failed, 2)
	assert.Equal(t, "broken", rep.Failed[0].Source)
	assert.Equal(t, "hangs", rep.Failed[1].Source)
	assert.ErrorIs(t, rep.Failed[1], context.DeadlineExceeded)
}

func TestCuratedSeeds(t *testing.T) {
	books, err := CuratedSeeds()
	require.NoError(t, err)

	var ids []string
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"edc-notes", "ebook-edct", "ebook-bee", "ebook-bee10c", "ebook-beece", "ebook-circuit-theory"}, ids)

	notes := books[0]
	require.Len(t, notes.Pages, lectureNotePages)
	assert.Equal(t, "/uploads/edc_pages/page_1.png", notes.Pages[0].URI)
	assert.Equal(t, "EDC-Lecture-Notes.pdf", notes.FileName)
	assert.False(t, notes.IsEbook)

	lib, err := reader.Builtin()
	require.NoError(t, err)
	for _, b := range books[1:] {
		t.Run(b.ID, func(t *testing.T) {
			assert.True(t, b.IsEbook)
			assert.NotEmpty(t, b.Author)
			meta := lib.Lookup(b.ID)
			require.NotNil(t, meta)
			assert.True(t, meta.Fits(len(b.Pages)), "%d pages", len(b.Pages))
			assert.True(t, reader.CuratedTOC(&b, meta))
			for _, e := range reader.BuildTOC(&b, meta) {
				_, err := reader.View(&b, meta, e.Page)
				assert.NoError(t, err, "toc entry %q", e.Label)
			}
			for pos := range b.Pages {
				assert.NotEmpty(t, strings.TrimSpace(b.Pages[pos].Text))
			}
		})
	}
}

func TestSeedFile_RoundTripAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ebooks.json")
	curated, err := CuratedSeeds()
	require.NoError(t, err)
	books := append(curated[:1], titled("Extra")...)
	books[1].ID = "extra-1"
	require.NoError(t, WriteSeedFile(path, books))

	read, err := ReadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, "edc-notes", read[0].ID)
	require.Len(t, read[0].Pages, lectureNotePages)
	assert.True(t, read[0].Pages[0].IsImage())
	assert.Equal(t, "/uploads/edc_pages/page_1.png", read[0].Pages[0].URI)

	c := store.NewCatalog()
	assert.Equal(t, 2, Load(c, read, "seed", nil))
	assert.Equal(t, 0, Load(c, read, "seed", nil), "existing ids are skipped")
	assert.Equal(t, 2, c.Len())

	avg, rated, err := c.AverageRating("edc-notes")
	require.NoError(t, err)
	assert.True(t, rated)
	assert.Equal(t, 5.0, avg)
}

func TestLoad_DropsBlankPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"gaps","title":" Gaps ","category":"X","ratings":[],"pages":["  ","kept","\n"]},
		{"id":"empty","title":"Empty","category":"X","ratings":[],"pages":["   ",""]},
		{"id":"nocat","title":"No category","ratings":[],"pages":["one"]}
	]`), 0o644))
	books, err := ReadSeedFile(path)
	require.NoError(t, err)

	c := store.NewCatalog()
	assert.Equal(t, 2, Load(c, books, "seed", nil))

	got, err := c.FindByID("gaps")
	require.NoError(t, err)
	assert.Equal(t, "Gaps", got.Title)
	assert.Equal(t, models.TextPages("kept"), got.Pages)

	_, err = c.FindByID("empty")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err = c.FindByID("nocat")
	require.NoError(t, err)
	assert.Equal(t, content.DefaultCategory, got.Category)
}

func TestReadSeedFile_LegacyStringPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"ebook-alice","title":"Alice","category":"Classic","isEbook":true,"ratings":[],"pages":["one","two"]}]`), 0o644))
	books, err := ReadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, models.TextPages("one", "two"), books[0].Pages)
}
