package models

import "time"

// Role constants for request authorization.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Student is the session identity a student logs in with. Nothing is verified.
type Student struct {
	Name       string    `json:"name"`
	Department string    `json:"department"`
	RollNo     string    `json:"rollNo,omitempty"`
	Year       string    `json:"year,omitempty"`
	LoginTime  time.Time `json:"loginTime"`
}
