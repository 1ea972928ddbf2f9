package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kevinaaaquil/digilib/middleware"
	"github.com/kevinaaaquil/digilib/models"
)

type Router struct {
	JWTSecret string
	// UploadDir, when set, is served under /uploads.
	UploadDir string

	Auth     *AuthHandler
	Books    *BooksHandler
	Activity *ActivityHandler
}

// Handler wires every route. Reading the catalog is public; student actions
// need a token and catalog changes need an admin token.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "books": rt.Books.Catalog.Len()})
	})
	if rt.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(rt.UploadDir))))
	}

	authenticated := middleware.Auth(rt.JWTSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login/student", rt.Auth.StudentLogin)
		r.Post("/login/admin", rt.Auth.AdminLogin)

		r.Get("/books", rt.Books.List)
		r.Get("/categories", rt.Books.Categories)
		r.Get("/books/{id}", rt.Books.Get)
		r.Get("/books/{id}/toc", rt.Books.TOC)
		r.Get("/books/{id}/pages/{position}", rt.Books.Page)
		r.Get("/books/{id}/download", rt.Books.Download)
		r.Get("/books/{id}/file", rt.Books.File)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/logout", rt.Auth.Logout)
			r.Post("/books/{id}/ratings", rt.Books.Rate)
			r.Post("/prebook", rt.Activity.PreBook)
			r.Post("/feedback", rt.Activity.Feedback)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/books", rt.Books.Add)
			r.Delete("/books/{id}", rt.Books.Delete)
			r.Get("/admin/notifications", rt.Activity.Notifications)
			r.Get("/admin/feedbacks", rt.Activity.Feedbacks)
			r.Get("/admin/stats", rt.Activity.Stats)
		})
	})
	return r
}
