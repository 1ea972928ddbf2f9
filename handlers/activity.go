package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kevinaaaquil/digilib/middleware"
	"github.com/kevinaaaquil/digilib/models"
	"github.com/kevinaaaquil/digilib/service"
	"github.com/kevinaaaquil/digilib/store"
)

const defaultNotifyTimeout = 15 * time.Second

type ActivityHandler struct {
	Catalog       *store.Catalog
	Activity      *store.Activity
	Notifier      service.Notifier
	NotifyTimeout time.Duration
	Logger        *slog.Logger

	// notified, when set, runs after each background send.
	notified func()
}

func (h *ActivityHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// BookRef names a book by id, or by title when the client has no id.
type BookRef struct {
	BookID    string `json:"bookId"`
	BookTitle string `json:"bookTitle"`
}

// resolve prefers the id. A title match takes the first book with that title.
func (h *ActivityHandler) resolve(ref BookRef) (models.Book, bool) {
	if id := strings.TrimSpace(ref.BookID); id != "" {
		b, err := h.Catalog.FindByID(id)
		return b, err == nil
	}
	if title := strings.TrimSpace(ref.BookTitle); title != "" {
		return h.Catalog.FindByTitle(title)
	}
	return models.Book{}, false
}

// studentName falls back to the token subject.
func studentName(r *http.Request, given string) string {
	if s := strings.TrimSpace(given); s != "" {
		return s
	}
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return c.Subject
	}
	return ""
}

type PreBookRequest struct {
	BookRef
	StudentName string `json:"studentName"`
}

// PreBook records a reservation request and notifies the librarian in the
// background so a slow mail server does not hold up the response.
func (h *ActivityHandler) PreBook(w http.ResponseWriter, r *http.Request) {
	var req PreBookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	book, ok := h.resolve(req.BookRef)
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	p := h.Activity.AddPreBooking(models.PreBooking{
		BookID:      book.ID,
		BookTitle:   book.Title,
		StudentName: studentName(r, req.StudentName),
	})
	if h.Notifier != nil {
		go h.notify(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Notification sent to admin",
		"booking": p,
	})
}

func (h *ActivityHandler) notify(p models.PreBooking) {
	if h.notified != nil {
		defer h.notified()
	}
	timeout := h.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := h.Notifier.NotifyPreBooking(ctx, p); err != nil {
		h.logger().Warn("pre-booking notification failed", "id", p.ID, "error", err)
	}
}

type FeedbackRequest struct {
	BookRef
	StudentName string `json:"studentName"`
	Message     string `json:"message"`
	Rating      int    `json:"rating" validate:"min=1,max=5"`
}

// Feedback stores the message and adds the rating as a sample on the book.
func (h *ActivityHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	book, ok := h.resolve(req.BookRef)
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if err := h.Catalog.AddRating(book.ID, req.Rating); err != nil {
		writeDomainError(w, err)
		return
	}
	f := h.Activity.AddFeedback(models.Feedback{
		BookID:      book.ID,
		BookTitle:   book.Title,
		StudentName: studentName(r, req.StudentName),
		Message:     strings.TrimSpace(req.Message),
		Rating:      req.Rating,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "feedback": f})
}

func (h *ActivityHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Activity.PreBookings())
}

func (h *ActivityHandler) Feedbacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Activity.Feedbacks())
}

func (h *ActivityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Activity.Stats())
}
