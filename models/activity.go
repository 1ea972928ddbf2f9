package models

import "time"

const PreBookingPending = "pending"

// Feedback correlates to a book by id. BookTitle is a display copy only.
type Feedback struct {
	ID          string    `json:"id"`
	BookID      string    `json:"bookId"`
	BookTitle   string    `json:"bookTitle"`
	StudentName string    `json:"studentName"`
	Message     string    `json:"message,omitempty"`
	Rating      int       `json:"rating"`
	Date        time.Time `json:"date"`
}

// PreBooking is a student's request to reserve a physical copy.
type PreBooking struct {
	ID          string    `json:"id"`
	BookID      string    `json:"bookId"`
	BookTitle   string    `json:"bookTitle"`
	StudentName string    `json:"studentName"`
	Time        time.Time `json:"time"`
	Status      string    `json:"status"`
}

// Usage is one finished student session.
type Usage struct {
	Name     string `json:"name"`
	Duration int    `json:"duration"` // seconds
	Date     string `json:"date"`
}

// Stats is the admin analytics snapshot.
type Stats struct {
	TotalLogins    int            `json:"totalLogins"`
	DeptWiseLogins map[string]int `json:"deptWiseLogins"`
	StudentUsage   []Usage        `json:"studentUsage"`
}
