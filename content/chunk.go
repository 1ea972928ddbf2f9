package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// ParagraphTarget is the page length used for full-text books.
	ParagraphTarget = 1400
	// SectionTarget is the page length used for compiled encyclopedia articles.
	SectionTarget = 3000
)

var blankLines = regexp.MustCompile(`\n(?:[ \t]*\n)+`)

// Chunker packs consecutive blocks of text into pages of about Target runes.
// A block is never split across pages unless it alone is longer than
// 1.5×Target, in which case it is hard-sliced every Target runes.
type Chunker struct {
	Target int
	Split  func(text string) []string
	Joiner string
}

// Paragraphs chunks on blank lines.
func Paragraphs(target int) Chunker {
	return Chunker{Target: target, Split: SplitParagraphs, Joiner: "\n\n"}
}

// Sections chunks on "== Heading ==" lines.
func Sections(target int) Chunker {
	return Chunker{Target: target, Split: SplitSections, Joiner: "\n"}
}

// Chunk returns the pages for text. Empty or blank input yields no pages.
func (c Chunker) Chunk(text string) []string {
	target := c.Target
	if target <= 0 {
		target = ParagraphTarget
	}
	limit := target + target/2
	joinLen := utf8.RuneCountInString(c.Joiner)

	var (
		pages  []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			pages = append(pages, cur.String())
		}
		cur.Reset()
		curLen = 0
	}

	for _, block := range c.Split(NormalizeNewlines(text)) {
		n := utf8.RuneCountInString(block)
		if n > limit {
			flush()
			pages = append(pages, hardSlice(block, target)...)
			continue
		}
		if curLen > 0 && curLen+joinLen+n > target {
			flush()
		}
		if curLen > 0 {
			cur.WriteString(c.Joiner)
			curLen += joinLen
		}
		cur.WriteString(block)
		curLen += n
	}
	flush()
	return pages
}

// Normalize is the text Chunk's pages reproduce when joined with c.Joiner,
// provided no block needed hard slicing.
func (c Chunker) Normalize(text string) string {
	return strings.Join(c.Split(NormalizeNewlines(text)), c.Joiner)
}

// NormalizeNewlines converts CRLF and bare CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SplitParagraphs returns the trimmed, non-empty blocks between blank lines.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range blankLines.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSections starts a new block at every level-two heading line ("== X ==").
func SplitSections(text string) []string {
	var (
		out []string
		cur []string
	)
	emit := func() {
		if s := strings.TrimSpace(strings.Join(cur, "\n")); s != "" {
			out = append(out, s)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if len(line) > 2 && strings.HasPrefix(line, "==") && line[2] != '=' {
			emit()
		}
		cur = append(cur, line)
	}
	emit()
	return out
}

func hardSlice(block string, size int) []string {
	runes := []rune(block)
	var out []string
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		piece := string(runes[i:end])
		if strings.TrimSpace(piece) == "" {
			continue
		}
		out = append(out, piece)
	}
	return out
}
