package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleBooksBase = "https://www.googleapis.com/books/v1/volumes"

// googleBooksVolumesResp is the response from GET /volumes?q=isbn:...
type googleBooksVolumesResp struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Subtitle            string   `json:"subtitle"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			PageCount           int      `json:"pageCount"`
			Categories          []string `json:"categories"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// BookMetadata is the normalized subset of a Google Books volume.
type BookMetadata struct {
	Title       string
	Authors     []string
	Publisher   string
	PublishDate string
	ISBN        string
	PageCount   int
	CoverURL    string
	Category    string
	Description string
}

// Author joins the listed authors, or returns "".
func (m *BookMetadata) Author() string {
	return strings.Join(m.Authors, ", ")
}

// ISBNLookup queries Google Books by ISBN. It has a short timeout so slow
// responses don't hold up an add-book request.
type ISBNLookup struct {
	BaseURL string
	Client  *http.Client
}

func NewISBNLookup() *ISBNLookup {
	return &ISBNLookup{BaseURL: googleBooksBase, Client: &http.Client{Timeout: 15 * time.Second}}
}

// Lookup fetches metadata for isbn. Hyphens are ignored.
func (l *ISBNLookup) Lookup(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}
	var data googleBooksVolumesResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, fmt.Errorf("no volume found for isbn %s", isbn)
	}
	vi := data.Items[0].VolumeInfo
	meta := &BookMetadata{
		Title:       vi.Title,
		Authors:     vi.Authors,
		Publisher:   vi.Publisher,
		PublishDate: vi.PublishedDate,
		PageCount:   vi.PageCount,
		ISBN:        isbn,
		Description: strings.TrimSpace(vi.Description),
	}
	if vi.Subtitle != "" {
		meta.Title = meta.Title + ": " + vi.Subtitle
	}
	for _, id := range vi.IndustryIdentifiers {
		if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
			meta.ISBN = id.Identifier
			break
		}
	}
	if len(vi.Categories) > 0 {
		meta.Category = vi.Categories[0]
	}
	meta.CoverURL = openLibraryCoverURL(meta.ISBN, "M")
	return meta, nil
}

// openLibraryCoverURL returns a direct cover image URL by ISBN. Size: S, M or L.
func openLibraryCoverURL(isbn, size string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if clean == "" {
		return ""
	}
	return "https://covers.openlibrary.org/b/isbn/" + url.PathEscape(clean) + "-" + size + ".jpg"
}
