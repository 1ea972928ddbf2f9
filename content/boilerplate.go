package content

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	startMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*{3}\s*START OF (?:THIS |THE )?PROJECT GUTENBERG.+\*{3}`),
		regexp.MustCompile(`(?i)\*{3}\s*START OF (?:THIS |THE )?GUTENBERG.+\*{3}`),
	}
	endMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*{3}\s*END OF (?:THIS |THE )?PROJECT GUTENBERG.+\*{3}`),
		regexp.MustCompile(`(?i)\*{3}\s*END OF (?:THIS |THE )?GUTENBERG.+\*{3}`),
	}
)

// StripBoilerplate drops Project Gutenberg front matter (through the end of
// the START marker line) and back matter (from the END marker on). Text with
// neither marker is returned unchanged.
func StripBoilerplate(text string) string {
	found := false
	for _, re := range startMarkers {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		found = true
		if nl := strings.IndexByte(text[loc[1]:], '\n'); nl >= 0 {
			text = text[loc[1]+nl+1:]
		} else {
			text = ""
		}
		break
	}
	for _, re := range endMarkers {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		found = true
		text = text[:loc[0]]
		break
	}
	if !found {
		return text
	}
	return strings.TrimSpace(text)
}

// DecodeText returns b as a string, reading it as Windows-1252 when it is
// not valid UTF-8. Older plain-text e-books are often Latin-1.
func DecodeText(b []byte) string {
	b = trimBOM(b)
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
