package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kevinaaaquil/digilib/models"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflictingID = errors.New("book id already exists")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Catalog is the in-memory owner of every Book. One mutex guards the slice,
// the id index and id assignment. Readers always get deep copies.
type Catalog struct {
	mu     sync.RWMutex
	books  []*models.Book
	byID   map[string]*models.Book
	nextID int
	now    func() time.Time
}

func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[string]*models.Book),
		nextID: 1,
		now:    time.Now,
	}
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

// List returns summaries in insertion order.
func (c *Catalog) List() []models.BookSummary {
	return c.Filter("", "")
}

// Filter returns summaries whose category equals category (case-insensitive)
// and whose title or author contains query. Empty arguments match everything.
func (c *Catalog) Filter(category, query string) []models.BookSummary {
	category = strings.TrimSpace(category)
	query = strings.ToLower(strings.TrimSpace(query))

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.BookSummary, 0, len(c.books))
	for _, b := range c.books {
		if category != "" && !strings.EqualFold(b.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Title), query) &&
			!strings.Contains(strings.ToLower(b.Author), query) {
			continue
		}
		out = append(out, b.Summary())
	}
	return out
}

// Categories returns distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, b := range c.books {
		if !seen[b.Category] {
			seen[b.Category] = true
			out = append(out, b.Category)
		}
	}
	return out
}

func (c *Catalog) FindByID(id string) (models.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.byID[id]
	if !ok {
		return models.Book{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b.Clone(), nil
}

// FindByTitle returns the first book in catalog order with exactly this title.
// Titles are not unique, so this is a best-effort join, not a key lookup.
func (c *Catalog) FindByTitle(title string) (models.Book, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.books {
		if b.Title == title {
			return b.Clone(), true
		}
	}
	return models.Book{}, false
}

// Add validates book, assigns an id when it has none and appends it.
// The stored record is complete before it becomes visible.
func (c *Catalog) Add(book models.Book) (models.Book, error) {
	b := book.Clone()
	b.ID = strings.TrimSpace(b.ID)
	b.Title = strings.TrimSpace(b.Title)
	b.Category = strings.TrimSpace(b.Category)
	b.Author = strings.TrimSpace(b.Author)
	if b.Title == "" {
		return models.Book{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if b.Category == "" {
		return models.Book{}, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if len(b.Pages) == 0 {
		return models.Book{}, fmt.Errorf("%w: a book needs at least one page", ErrInvalidInput)
	}
	for _, r := range b.Ratings {
		if r < MinRating || r > MaxRating {
			return models.Book{}, fmt.Errorf("%w: rating %d out of range", ErrInvalidInput, r)
		}
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b.ID == "" {
		b.ID = c.freshIDLocked()
	} else if _, exists := c.byID[b.ID]; exists {
		return models.Book{}, fmt.Errorf("%w: %s", ErrConflictingID, b.ID)
	}
	if n, err := strconv.Atoi(b.ID); err == nil && n >= c.nextID && n < math.MaxInt {
		c.nextID = n + 1
	}
	stored := b
	c.books = append(c.books, &stored)
	c.byID[stored.ID] = &stored
	return stored.Clone(), nil
}

func (c *Catalog) freshIDLocked() string {
	for {
		id := strconv.Itoa(c.nextID)
		c.nextID++
		if _, taken := c.byID[id]; !taken {
			return id
		}
	}
}

// Remove deletes the book if present and returns its upload handle so the
// caller can ask the file store to clean up. Removing an absent id is a no-op.
func (c *Catalog) Remove(id string) (fileName string, removed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.byID[id]
	if !ok {
		return "", false
	}
	delete(c.byID, id)
	for i, cur := range c.books {
		if cur == b {
			c.books = append(c.books[:i], c.books[i+1:]...)
			break
		}
	}
	return b.FileName, true
}

// AddRating appends a sample in [MinRating, MaxRating]. Repeat ratings from the
// same student count as independent samples.
func (c *Catalog) AddRating(id string, value int) error {
	if value < MinRating || value > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d, got %d", ErrInvalidInput, MinRating, MaxRating, value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	b.Ratings = append(b.Ratings, value)
	return nil
}

// AverageRating returns the mean of every accepted sample; rated is false
// when there are none.
func (c *Catalog) AverageRating(id string) (avg float64, rated bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.byID[id]
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	avg, rated = b.AverageRating()
	return avg, rated, nil
}

// Snapshot returns deep copies of every book in catalog order.
func (c *Catalog) Snapshot() []models.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Book, len(c.books))
	for i, b := range c.books {
		out[i] = b.Clone()
	}
	return out
}
