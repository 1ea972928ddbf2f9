package handlers

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/digilib/export"
	"github.com/kevinaaaquil/digilib/models"
	"github.com/kevinaaaquil/digilib/reader"
	"github.com/kevinaaaquil/digilib/service"
	"github.com/kevinaaaquil/digilib/store"
)

// MetadataLookup fills in details for a book from its ISBN.
type MetadataLookup interface {
	Lookup(ctx context.Context, isbn string) (*service.BookMetadata, error)
}

type BooksHandler struct {
	Catalog  *store.Catalog
	Meta     reader.Library
	Files    service.FileStore
	ISBN     MetadataLookup // optional
	MaxBytes int64
	Logger   *slog.Logger
}

func (h *BooksHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.Catalog.Filter(q.Get("category"), q.Get("q")))
}

func (h *BooksHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Categories())
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

type TOCResponse struct {
	BookID  string            `json:"bookId"`
	Title   string            `json:"title"`
	Pages   int               `json:"pages"`
	Curated bool              `json:"curated"`
	TOC     []models.TOCEntry `json:"toc"`
	Meta    *reader.Meta      `json:"meta,omitempty"`
}

func (h *BooksHandler) TOC(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	meta := h.Meta.Lookup(book.ID)
	writeJSON(w, http.StatusOK, TOCResponse{
		BookID:  book.ID,
		Title:   book.Title,
		Pages:   len(book.Pages),
		Curated: reader.CuratedTOC(&book, meta),
		TOC:     reader.BuildTOC(&book, meta),
		Meta:    meta,
	})
}

// Page serves one reader position: 0 is the cover, N+1 the end.
func (h *BooksHandler) Page(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "position must be an integer")
		return
	}
	book, err := h.Catalog.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := reader.View(&book, h.Meta.Lookup(book.ID), pos)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *BooksHandler) Download(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	doc := export.Document(&book)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename(book.Title)}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// File streams the original upload of a manually added book.
func (h *BooksHandler) File(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if book.FileName == "" || h.Files == nil {
		writeError(w, http.StatusNotFound, "book has no uploaded file")
		return
	}
	body, contentType, err := h.Files.Open(r.Context(), book.FileName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(book.FileName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": path.Base(book.FileName)}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger().Warn("file stream interrupted", "book", book.ID, "error", err)
	}
}

type RatingRequest struct {
	Rating int `json:"rating"`
}

type RatingResponse struct {
	BookID  string   `json:"bookId"`
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

func (h *BooksHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req RatingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Catalog.AddRating(id, req.Rating); err != nil {
		writeDomainError(w, err)
		return
	}
	book, err := h.Catalog.FindByID(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s := book.Summary()
	writeJSON(w, http.StatusOK, RatingResponse{BookID: id, Average: s.Rating.Average, Count: s.Rating.Count})
}

// Delete is idempotent. The uploaded file, if any, is removed after the
// catalog entry; a cleanup failure is logged and does not fail the request.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fileName, removed := h.Catalog.Remove(id)
	if removed && fileName != "" && h.Files != nil {
		if err := h.Files.Delete(r.Context(), fileName); err != nil {
			h.logger().Warn("failed to delete uploaded file", "book", id, "file", fileName, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "removed": removed})
}
