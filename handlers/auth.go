package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/digilib/middleware"
	"github.com/kevinaaaquil/digilib/models"
	"github.com/kevinaaaquil/digilib/store"
)

type AuthHandler struct {
	JWTSecret string
	TokenTTL  time.Duration
	Activity  *store.Activity

	adminUsername string
	adminHash     []byte
}

// NewAuthHandler hashes the configured admin password once so logins are
// checked with bcrypt rather than by plain comparison.
func NewAuthHandler(jwtSecret string, ttl time.Duration, adminUsername, adminPassword string, activity *store.Activity) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		JWTSecret:     jwtSecret,
		TokenTTL:      ttl,
		Activity:      activity,
		adminUsername: adminUsername,
		adminHash:     hash,
	}, nil
}

type StudentLoginRequest struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department" validate:"required"`
	RollNo     string `json:"rollNo"`
	Year       string `json:"year"`
}

type StudentLoginResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	User    models.Student `json:"user"`
}

// StudentLogin accepts any name and department and counts the login.
func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req StudentLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := middleware.IssueToken(h.JWTSecret, req.Name, models.RoleStudent, req.Department, h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	h.Activity.RecordLogin(req.Department)
	writeJSON(w, http.StatusOK, StudentLoginResponse{
		Success: true,
		Token:   token,
		User: models.Student{
			Name:       req.Name,
			Department: req.Department,
			RollNo:     req.RollNo,
			Year:       req.Year,
			LoginTime:  time.Now(),
		},
	})
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Role    string `json:"role"`
	Token   string `json:"token"`
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.adminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword(h.adminHash, []byte(req.Password))
	if !userOK || passErr != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := middleware.IssueToken(h.JWTSecret, req.Username, models.RoleAdmin, "", h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, AdminLoginResponse{Success: true, Role: models.RoleAdmin, Token: token})
}

type LogoutRequest struct {
	Duration int `json:"duration" validate:"gte=0"`
}

// Logout records how long the session lasted, in seconds as reported by the client.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req LogoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if claims.Role == models.RoleStudent {
		h.Activity.RecordLogout(claims.Subject, req.Duration)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
