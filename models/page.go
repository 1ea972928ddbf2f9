package models

import (
	"encoding/json"
	"fmt"
)

type PageKind string

const (
	PageText  PageKind = "text"
	PageImage PageKind = "image"
)

// Page is either a block of text or a reference to an externally hosted page image.
type Page struct {
	Kind PageKind `bson:"kind" json:"kind"`
	Text string   `bson:"text,omitempty" json:"text,omitempty"`
	URI  string   `bson:"uri,omitempty" json:"uri,omitempty"`
}

func TextPage(text string) Page { return Page{Kind: PageText, Text: text} }

func ImagePage(uri string) Page { return Page{Kind: PageImage, URI: uri} }

func (p Page) IsImage() bool { return p.Kind == PageImage }

// TextPages wraps each string as a text page.
func TextPages(texts ...string) []Page {
	out := make([]Page, len(texts))
	for i, t := range texts {
		out[i] = TextPage(t)
	}
	return out
}

// UnmarshalJSON accepts the tagged object form and the legacy bare-string form
// used by older seed files. A bare string is always a text page.
func (p *Page) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = TextPage(s)
		return nil
	}
	type raw Page
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	switch r.Kind {
	case PageText, "":
		*p = TextPage(r.Text)
	case PageImage:
		*p = ImagePage(r.URI)
	default:
		return fmt.Errorf("unknown page kind %q", r.Kind)
	}
	return nil
}
