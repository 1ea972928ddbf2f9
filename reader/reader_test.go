package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/digilib/models"
)

func TestNavigator_WalkThrough(t *testing.T) {
	n := NewNavigator(2)
	assert.Equal(t, State{Kind: Cover}, n.State())
	assert.Equal(t, State{Kind: Cover}, n.Prev())

	assert.Equal(t, State{Kind: Content, Page: 1}, n.Next())
	assert.Equal(t, State{Kind: Content, Page: 2}, n.Next())
	assert.Equal(t, State{Kind: End}, n.Next())
	assert.Equal(t, State{Kind: End}, n.Next())
	assert.Equal(t, 3, n.Position())
	assert.Equal(t, 1.0, n.Progress())

	assert.Equal(t, State{Kind: Content, Page: 2}, n.Prev())
}

func TestNavigator_JumpTo(t *testing.T) {
	n := NewNavigator(5)
	s, err := n.JumpTo(3)
	require.NoError(t, err)
	assert.Equal(t, State{Kind: Content, Page: 3}, s)
	assert.InDelta(t, 0.5, n.Progress(), 1e-9)

	for _, pos := range []int{-1, 7, 100} {
		s, err := n.JumpTo(pos)
		assert.ErrorIs(t, err, ErrOutOfRange, "pos %d", pos)
		assert.Equal(t, State{Kind: Content, Page: 3}, s)
		assert.Equal(t, 3, n.Position())
	}

	s, err = n.JumpTo(6)
	require.NoError(t, err)
	assert.Equal(t, State{Kind: End}, s)
	s, err = n.JumpTo(0)
	require.NoError(t, err)
	assert.Equal(t, State{Kind: Cover}, s)
}

func TestNavigator_EmptyBook(t *testing.T) {
	n := NewNavigator(0)
	assert.Equal(t, State{Kind: End}, n.Next())
	assert.Equal(t, State{Kind: End}, n.Next())
	_, err := n.JumpTo(2)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBuiltinLibrary(t *testing.T) {
	lib, err := Builtin()
	require.NoError(t, err)

	m := lib.Lookup("ebook-edct")
	require.NotNil(t, m)
	assert.Equal(t, "Pearson Education", m.Publisher)
	assert.Equal(t, "2015", m.Year)
	require.Len(t, m.TOC, 7)
	assert.Equal(t, models.TOCEntry{Label: "Cover & Preface", Page: 1}, m.TOC[0])
	assert.Len(t, m.ChapterSummaries, 7)

	for id, meta := range lib {
		for _, e := range meta.TOC {
			assert.Positive(t, e.Page, "%s %q", id, e.Label)
		}
	}
	assert.Nil(t, lib.Lookup("missing"))
}

func TestLoadLibrary(t *testing.T) {
	lib, err := LoadLibrary(strings.NewReader(`
custom-1:
  subject: Testing
  toc:
    - {label: Start, page: 1}
  chapterSummaries: [first]
`))
	require.NoError(t, err)
	require.Contains(t, lib, "custom-1")
	assert.Equal(t, "Testing", lib["custom-1"].Subject)

	_, err = LoadLibrary(strings.NewReader("- not a map"))
	assert.Error(t, err)
}

func TestBuildTOC(t *testing.T) {
	b := &models.Book{Pages: models.TextPages("a", "b", "c")}
	assert.Equal(t, []models.TOCEntry{
		{Label: "Page 1", Page: 1},
		{Label: "Page 2", Page: 2},
		{Label: "Page 3", Page: 3},
	}, BuildTOC(b, nil))

	meta := &Meta{TOC: []models.TOCEntry{{Label: "Intro", Page: 1}}}
	assert.Equal(t, meta.TOC, BuildTOC(b, meta))
	assert.Equal(t, BuildTOC(b, nil), BuildTOC(b, &Meta{}))

	beyond := &Meta{TOC: []models.TOCEntry{{Label: "Intro", Page: 1}, {Label: "Late", Page: 4}}}
	assert.Equal(t, BuildTOC(b, nil), BuildTOC(b, beyond))
	assert.False(t, CuratedTOC(b, beyond))

	tooManySummaries := &Meta{TOC: meta.TOC, ChapterSummaries: []string{"1", "2", "3", "4"}}
	assert.Equal(t, BuildTOC(b, nil), BuildTOC(b, tooManySummaries))
	assert.Empty(t, ChapterSummary(tooManySummaries, 1, len(b.Pages)))
}

func TestCuratedMetaOnShortBook(t *testing.T) {
	lib, err := Builtin()
	require.NoError(t, err)
	meta := lib.Lookup("ebook-edct")
	require.NotNil(t, meta)

	short := &models.Book{ID: "ebook-edct", Title: "Electronic Devices and Circuit Theory",
		Pages: models.TextPages("This book could not be loaded: connection refused")}
	assert.False(t, meta.Fits(len(short.Pages)))
	assert.False(t, CuratedTOC(short, meta))

	toc := BuildTOC(short, meta)
	assert.Equal(t, []models.TOCEntry{{Label: "Page 1", Page: 1}}, toc)
	for _, e := range toc {
		v, err := View(short, meta, e.Page)
		require.NoError(t, err, "toc entry %q", e.Label)
		assert.Empty(t, v.Chapter)
	}

	full := &models.Book{ID: "ebook-edct", Title: "EDC", Pages: models.TextPages("1", "2", "3", "4", "5", "6", "7")}
	assert.True(t, CuratedTOC(full, meta))
	for _, e := range BuildTOC(full, meta) {
		_, err := View(full, meta, e.Page)
		require.NoError(t, err, "toc entry %q", e.Label)
	}
	v, err := View(full, meta, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, v.Chapter)
}

func TestView(t *testing.T) {
	b := &models.Book{ID: "b1", Title: "T", Pages: []models.Page{models.TextPage("one"), models.ImagePage("/img/2.png")}}
	meta := &Meta{ChapterSummaries: []string{"first chapter"}}

	v, err := View(b, meta, 0)
	require.NoError(t, err)
	assert.Equal(t, Cover, v.State.Kind)
	assert.Nil(t, v.Page)
	assert.Nil(t, v.Prev)
	require.NotNil(t, v.Next)
	assert.Equal(t, 1, *v.Next)

	v, err = View(b, meta, 1)
	require.NoError(t, err)
	require.NotNil(t, v.Page)
	assert.Equal(t, "one", v.Page.Text)
	assert.Equal(t, "first chapter", v.Chapter)

	v, err = View(b, meta, 2)
	require.NoError(t, err)
	assert.True(t, v.Page.IsImage())
	assert.Empty(t, v.Chapter)

	v, err = View(b, meta, 3)
	require.NoError(t, err)
	assert.Equal(t, End, v.State.Kind)
	assert.Nil(t, v.Next)
	assert.Equal(t, 1.0, v.Progress)

	_, err = View(b, meta, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
