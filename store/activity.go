package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kevinaaaquil/digilib/models"
)

// DefaultDepartments are always present in the login breakdown, even at zero.
var DefaultDepartments = []string{
	"Computer Science",
	"Information Technology",
	"ECE",
	"EEE",
	"Mechanical",
}

// Activity holds the append-only logs the admin views read: feedback,
// pre-bookings and login statistics.
type Activity struct {
	mu          sync.RWMutex
	feedbacks   []models.Feedback
	preBookings []models.PreBooking
	totalLogins int
	deptLogins  map[string]int
	usage       []models.Usage
	now         func() time.Time
}

func NewActivity() *Activity {
	dept := make(map[string]int, len(DefaultDepartments))
	for _, d := range DefaultDepartments {
		dept[d] = 0
	}
	return &Activity{deptLogins: dept, now: time.Now}
}

func (a *Activity) RecordLogin(department string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalLogins++
	a.deptLogins[department]++
}

func (a *Activity) RecordLogout(name string, duration int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage = append(a.usage, models.Usage{
		Name:     name,
		Duration: duration,
		Date:     a.now().Format("2006-01-02"),
	})
}

func (a *Activity) AddFeedback(f models.Feedback) models.Feedback {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Date.IsZero() {
		f.Date = a.now()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.feedbacks = append(a.feedbacks, f)
	return f
}

func (a *Activity) Feedbacks() []models.Feedback {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Feedback{}, a.feedbacks...)
}

func (a *Activity) AddPreBooking(p models.PreBooking) models.PreBooking {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Time.IsZero() {
		p.Time = a.now()
	}
	if p.Status == "" {
		p.Status = models.PreBookingPending
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.preBookings = append(a.preBookings, p)
	return p
}

func (a *Activity) PreBookings() []models.PreBooking {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.PreBooking{}, a.preBookings...)
}

func (a *Activity) Stats() models.Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	dept := make(map[string]int, len(a.deptLogins))
	for k, v := range a.deptLogins {
		dept[k] = v
	}
	return models.Stats{
		TotalLogins:    a.totalLogins,
		DeptWiseLogins: dept,
		StudentUsage:   append([]models.Usage{}, a.usage...),
	}
}
