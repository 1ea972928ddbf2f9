package models

import "time"

// Book is a catalog record. Pages are in reading order and are replaced
// wholesale, never reordered in place.
type Book struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Category  string    `bson:"category" json:"category"`
	Author    string    `bson:"author,omitempty" json:"author,omitempty"`
	Cover     string    `bson:"cover,omitempty" json:"cover,omitempty"`
	Pages     []Page    `bson:"pages" json:"pages"`
	IsEbook   bool      `bson:"isEbook" json:"isEbook"`
	FileName  string    `bson:"fileName,omitempty" json:"fileName,omitempty"` // upload handle, owned by the file store
	Ratings   []int     `bson:"ratings" json:"ratings"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// AverageRating is recomputed from every sample. ok is false for an unrated book.
func (b *Book) AverageRating() (avg float64, ok bool) {
	if len(b.Ratings) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range b.Ratings {
		sum += r
	}
	return float64(sum) / float64(len(b.Ratings)), true
}

// Clone returns a deep copy so callers can't alias the catalog's slices.
func (b *Book) Clone() Book {
	out := *b
	out.Pages = append([]Page(nil), b.Pages...)
	out.Ratings = append([]int(nil), b.Ratings...)
	if out.Ratings == nil {
		out.Ratings = []int{}
	}
	return out
}

// Summary projects the book without page bodies.
func (b *Book) Summary() BookSummary {
	s := BookSummary{
		ID:        b.ID,
		Title:     b.Title,
		Category:  b.Category,
		Author:    b.Author,
		Cover:     b.Cover,
		IsEbook:   b.IsEbook,
		PageCount: len(b.Pages),
		Rating:    RatingSummary{Count: len(b.Ratings)},
	}
	if avg, ok := b.AverageRating(); ok {
		s.Rating.Average = &avg
	}
	return s
}

// BookSummary is the list view of a book.
type BookSummary struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Category  string        `json:"category"`
	Author    string        `json:"author,omitempty"`
	Cover     string        `json:"cover,omitempty"`
	IsEbook   bool          `json:"isEbook"`
	PageCount int           `json:"pageCount"`
	Rating    RatingSummary `json:"rating"`
}

// RatingSummary carries a nil Average when the book is unrated.
type RatingSummary struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// TOCEntry is a navigation target; Page is a reader position.
type TOCEntry struct {
	Label string `json:"label" yaml:"label"`
	Page  int    `json:"page" yaml:"page"`
}
