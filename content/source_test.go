package content

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/digilib/models"
)

func TestAssemble_Row(t *testing.T) {
	cells := []string{"", "", "", "Intro to X", "", "A. Author", "", "", "", "CS", "", "Pub House", "", "", "", "320", "2019"}
	b, err := Assemble(Row{Index: 6, Cells: cells})
	require.NoError(t, err)

	assert.Equal(t, "xl-7", b.ID)
	assert.Equal(t, "Intro to X", b.Title)
	assert.Equal(t, "A. Author", b.Author)
	assert.Equal(t, "CS", b.Category)
	assert.False(t, b.IsEbook)
	require.Len(t, b.Pages, RowPageCount)
	assert.Contains(t, b.Pages[0].Text, "Intro to X")
	assert.Contains(t, b.Pages[1].Text, "Pub House")
	assert.Contains(t, b.Pages[1].Text, "2019")
	assert.Contains(t, b.Pages[4].Text, "320 pages")
}

func TestAssemble_RowDefaults(t *testing.T) {
	b, err := Assemble(Row{Index: 0, Cells: []string{"", "", "", "  Short Row  "}})
	require.NoError(t, err)
	assert.Equal(t, "Short Row", b.Title)
	assert.Equal(t, DefaultCategory, b.Category)
	assert.Len(t, b.Pages, RowPageCount)
}

func TestAssemble_RowWithoutTitle(t *testing.T) {
	_, err := Assemble(Row{Index: 2, Cells: []string{"a", "b", "c", "   ", "", "Someone"}})
	assert.ErrorIs(t, err, ErrNoTitle)
}

func TestAssemble_Curated(t *testing.T) {
	b, err := Assemble(Curated{
		Meta:    Meta{ID: " c1 ", Title: " Notes ", Category: "Engineering"},
		Pages:   []models.Page{models.TextPage("  first  "), models.ImagePage(" /uploads/p2.png ")},
		IsEbook: true,
		Ratings: []int{5, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", b.ID)
	assert.Equal(t, "Notes", b.Title)
	assert.Equal(t, []models.Page{models.TextPage("first"), models.ImagePage("/uploads/p2.png")}, b.Pages)
	assert.Equal(t, []int{5, 4}, b.Ratings)
}

func TestAssemble_CuratedWithoutPages(t *testing.T) {
	_, err := Assemble(Curated{Meta: Meta{Title: "Empty"}})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestAssemble_CuratedDropsBlankPages(t *testing.T) {
	b, err := Assemble(Curated{
		Meta:     Meta{Title: "Gaps", Category: "X"},
		Pages:    []models.Page{models.TextPage("  "), models.TextPage("kept"), models.ImagePage(" "), models.TextPage("\n\t")},
		FileName: " notes.pdf ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TextPages("kept"), b.Pages)
	assert.Equal(t, "notes.pdf", b.FileName)

	_, err = Assemble(Curated{Meta: Meta{Title: "Blank", Category: "X"}, Pages: models.TextPages("  ", "")})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestAssemble_Scraped(t *testing.T) {
	text := "*** START OF THE PROJECT GUTENBERG EBOOK T ***\nFirst.\n\nSecond.\n*** END OF THE PROJECT GUTENBERG EBOOK T ***"
	b, err := Assemble(Scraped{
		Meta:             Meta{ID: "g1", Title: "T", Category: "Classic"},
		Text:             text,
		StripBoilerplate: true,
		Preface:          "T\n\nA classic.",
	})
	require.NoError(t, err)
	assert.True(t, b.IsEbook)
	assert.Equal(t, models.TextPages("T\n\nA classic.", "First.\n\nSecond."), b.Pages)
}

func TestAssemble_ScrapedEmpty(t *testing.T) {
	_, err := Assemble(Scraped{Meta: Meta{Title: "Nothing"}, Text: "   "})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestPlaceholder(t *testing.T) {
	b := Placeholder(Meta{ID: "w1", Title: "Quantum"}, errors.New("timeout"))
	assert.Equal(t, "w1", b.ID)
	assert.Equal(t, DefaultCategory, b.Category)
	require.Len(t, b.Pages, 1)
	assert.Contains(t, b.Pages[0].Text, "timeout")
	assert.Contains(t, b.Pages[0].Text, `"Quantum"`)
}

func TestAssemble_ManualRawPages(t *testing.T) {
	b, err := Assemble(Manual{Title: "Typed", Category: "Notes", RawPages: "intro\n\nchapter 1\n\n\n\nchapter 2\n\n"})
	require.NoError(t, err)
	assert.Equal(t, models.TextPages("intro", "chapter 1", "chapter 2"), b.Pages)
	assert.False(t, b.IsEbook)
}

func TestAssemble_ManualUploads(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		b, err := Assemble(Manual{Title: "Bare", Category: "X"})
		require.NoError(t, err)
		assert.Equal(t, models.TextPages("Content from uploaded file: No file"), b.Pages)
	})
	t.Run("plain text", func(t *testing.T) {
		b, err := Assemble(Manual{Title: "Txt", Category: "X", Upload: &Upload{
			FileName: "1700000000000-book.txt", OriginalName: "book.txt", Data: []byte("one\n\ntwo"),
		}})
		require.NoError(t, err)
		assert.Equal(t, "1700000000000-book.txt", b.FileName)
		assert.True(t, b.IsEbook)
		assert.Equal(t, models.TextPages("one\n\ntwo"), b.Pages)
	})
	t.Run("unknown type", func(t *testing.T) {
		b, err := Assemble(Manual{Title: "Doc", Category: "X", Upload: &Upload{FileName: "f.docx", OriginalName: "f.docx", Data: []byte{1}}})
		require.NoError(t, err)
		assert.Equal(t, models.TextPages("Content from uploaded file: f.docx"), b.Pages)
	})
	t.Run("broken pdf", func(t *testing.T) {
		b, err := Assemble(Manual{Title: "Pdf", Category: "X", Upload: &Upload{FileName: "f.pdf", OriginalName: "f.pdf", Data: []byte("not a pdf")}})
		require.NoError(t, err)
		assert.Equal(t, models.TextPages("Content from uploaded file: f.pdf"), b.Pages)
	})
	t.Run("epub", func(t *testing.T) {
		b, err := Assemble(Manual{Title: "Epub", Category: "X", Upload: &Upload{FileName: "f.epub", OriginalName: "f.epub", Data: buildEPUB(t)}})
		require.NoError(t, err)
		assert.True(t, b.IsEbook)
		assert.Equal(t, "Jane Doe", b.Author)
		require.Len(t, b.Pages, 1)
		assert.Equal(t, "Chapter One\n\nIt was a bright day.\n\nChapter Two\n\nThe end.", b.Pages[0].Text)
	})
}

func TestAssemble_ManualWithoutTitle(t *testing.T) {
	_, err := Assemble(Manual{Category: "X", RawPages: "p"})
	assert.ErrorIs(t, err, ErrNoTitle)
}

func buildEPUB(t *testing.T) []byte {
	t.Helper()
	files := map[string]string{
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Sample</dc:title><dc:creator>Jane Doe</dc:creator>
  </metadata>
  <manifest>
    <item id="c2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="c1"/><itemref idref="c2"/></spine>
</package>`,
		"OEBPS/ch1.xhtml": `<html><head><title>ignored</title><style>p{}</style></head>
<body><h1>Chapter One</h1><p>It was a
   bright day.</p></body></html>`,
		"OEBPS/ch2.xhtml": `<html><body><h1>Chapter Two</h1><p>The end.</p><script>x()</script></body></html>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"META-INF/container.xml", "OEBPS/content.opf", "OEBPS/ch1.xhtml", "OEBPS/ch2.xhtml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractEPUBText(t *testing.T) {
	et, err := ExtractEPUBText(buildEPUB(t))
	require.NoError(t, err)
	assert.Equal(t, "Sample", et.Title)
	assert.Equal(t, "Jane Doe", et.Author)
	assert.True(t, strings.HasPrefix(et.Text, "Chapter One"))

	_, err = ExtractEPUBText([]byte("not a zip"))
	assert.Error(t, err)
}
