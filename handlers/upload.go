package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kevinaaaquil/digilib/content"
	"github.com/kevinaaaquil/digilib/models"
)

const isbnTimeout = 5 * time.Second

// AddBookRequest is the JSON form of add-book. Pages may be given either as
// a list (strings or tagged page objects) or as one text split on blank lines.
type AddBookRequest struct {
	ID       string        `json:"id"`
	Title    string        `json:"title" validate:"required"`
	Category string        `json:"category" validate:"required"`
	Author   string        `json:"author"`
	Cover    string        `json:"cover"`
	ISBN     string        `json:"isbn"`
	IsEbook  bool          `json:"isEbook"`
	Pages    []models.Page `json:"pages"`
	Text     string        `json:"text"`
}

// Add creates a book from a multipart form (fields title, category, author,
// cover, isbn, pages and an optional bookFile) or a JSON body.
func (h *BooksHandler) Add(w http.ResponseWriter, r *http.Request) {
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	var (
		src    content.Source
		isbn   string
		manual *content.Manual
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		m, err := h.manualFromForm(r)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		isbn = r.FormValue("isbn")
		src, manual = m, m
	} else {
		var req AddBookRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		isbn = req.ISBN
		if len(req.Pages) > 0 {
			src = content.Curated{
				Meta:    content.Meta{ID: req.ID, Title: req.Title, Author: req.Author, Category: req.Category, Cover: req.Cover},
				Pages:   req.Pages,
				IsEbook: req.IsEbook,
			}
		} else {
			m := &content.Manual{ID: req.ID, Title: req.Title, Author: req.Author, Category: req.Category, Cover: req.Cover, RawPages: req.Text}
			src, manual = m, m
		}
	}

	book, err := content.Assemble(src)
	if err != nil {
		h.discardUpload(r.Context(), manual)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.enrich(r.Context(), &book, isbn)

	added, err := h.Catalog.Add(book)
	if err != nil {
		h.discardUpload(r.Context(), manual)
		writeDomainError(w, err)
		return
	}
	h.logger().Info("book added", "id", added.ID, "title", added.Title, "pages", len(added.Pages), "file", added.FileName)
	writeJSON(w, http.StatusCreated, added)
}

func (h *BooksHandler) manualFromForm(r *http.Request) (*content.Manual, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(r.FormValue("title"))
	category := strings.TrimSpace(r.FormValue("category"))
	if title == "" || category == "" {
		return nil, errors.New("title and category are required")
	}
	m := &content.Manual{
		ID:       r.FormValue("id"),
		Title:    title,
		Category: category,
		Author:   r.FormValue("author"),
		Cover:    r.FormValue("cover"),
		RawPages: r.FormValue("pages"),
	}

	file, header, err := r.FormFile("bookFile")
	if errors.Is(err, http.ErrMissingFile) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	upload := &content.Upload{OriginalName: header.Filename, Data: data}
	if h.Files != nil {
		handle, err := h.Files.Save(r.Context(), header.Filename, bytes.NewReader(data), header.Header.Get("Content-Type"))
		if err != nil {
			h.logger().Error("failed to store upload", "file", header.Filename, "error", err)
			return nil, errors.New("failed to store uploaded file")
		}
		upload.FileName = handle
	}
	m.Upload = upload
	return m, nil
}

// enrich fills a missing author and cover from the ISBN. Lookup failures are
// logged and otherwise ignored.
func (h *BooksHandler) enrich(ctx context.Context, b *models.Book, isbn string) {
	isbn = strings.TrimSpace(isbn)
	if h.ISBN == nil || isbn == "" || (b.Author != "" && b.Cover != "") {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, isbnTimeout)
	defer cancel()
	md, err := h.ISBN.Lookup(ctx, isbn)
	if err != nil {
		h.logger().Warn("isbn lookup failed", "isbn", isbn, "error", err)
		return
	}
	if b.Author == "" {
		b.Author = md.Author()
	}
	if b.Cover == "" {
		b.Cover = md.CoverURL
	}
}

func (h *BooksHandler) discardUpload(ctx context.Context, m *content.Manual) {
	if m == nil || m.Upload == nil || m.Upload.FileName == "" || h.Files == nil {
		return
	}
	if err := h.Files.Delete(ctx, m.Upload.FileName); err != nil {
		h.logger().Warn("failed to discard upload", "file", m.Upload.FileName, "error", err)
	}
}
