package reader

import "github.com/kevinaaaquil/digilib/models"

// PageView is what a client renders at one position.
type PageView struct {
	BookID   string       `json:"bookId"`
	Title    string       `json:"title"`
	Position int          `json:"position"`
	Total    int          `json:"total"`
	State    State        `json:"state"`
	Page     *models.Page `json:"page,omitempty"`
	Progress float64      `json:"progress"`
	Chapter  string       `json:"chapterSummary,omitempty"`
	Prev     *int         `json:"prev,omitempty"`
	Next     *int         `json:"next,omitempty"`
}

// View builds the PageView for pos. Only content positions carry a page.
func View(b *models.Book, meta *Meta, pos int) (*PageView, error) {
	n := len(b.Pages)
	if err := CheckPosition(pos, n); err != nil {
		return nil, err
	}
	v := &PageView{
		BookID:   b.ID,
		Title:    b.Title,
		Position: pos,
		Total:    n,
		State:    StateAt(pos, n),
		Progress: Progress(pos, n),
		Chapter:  ChapterSummary(meta, pos, n),
	}
	if v.State.Kind == Content {
		p := b.Pages[pos-1]
		v.Page = &p
	}
	if pos > 0 {
		prev := pos - 1
		v.Prev = &prev
	}
	if pos < n+1 {
		next := pos + 1
		v.Next = &next
	}
	return v, nil
}
