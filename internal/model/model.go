// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
)

// TimeCategory is one of the fixed intake slots of a day.
type TimeCategory string

// The five intake slots, in display order.
const (
	Morning    TimeCategory = "Morning (Wake + Breakfast)"
	Midday     TimeCategory = "Midday (Lunch + Afternoon)"
	PreWorkout TimeCategory = "Pre-Workout (Workout days)"
	Evening    TimeCategory = "Evening (Dinner)"
	BeforeBed  TimeCategory = "Before Bed"
)

// TimeCategories lists every valid slot in display order.
var TimeCategories = []TimeCategory{Morning, Midday, PreWorkout, Evening, BeforeBed}

// Valid reports whether c is one of the fixed slots.
func (c TimeCategory) Valid() bool {
	for _, v := range TimeCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account. Passwords are never stored in plaintext.
type User struct {
	ID          uuid.UUID // PK
	Email       string    // unique
	Name        string
	PwdHash     []byte // Argon2id(password, Salt)
	Salt        []byte // per-user salt
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// Supplement is a single intake entry within a day.
type Supplement struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Dosage       string       `json:"dosage"`
	TimeCategory TimeCategory `json:"timeCategory"`
	TakenAt      time.Time    `json:"takenAt"`
	Completed    bool         `json:"completed"`
}

// DayData is the intake record of one user for one calendar date.
type DayData struct {
	Date        civil.Date   `json:"date"`
	Supplements []Supplement `json:"supplements"`
}

// EmptyDay returns the lazily created record for a date with no stored data.
func EmptyDay(d civil.Date) DayData {
	return DayData{Date: d, Supplements: []Supplement{}}
}

// CompletedCount returns the number of completed entries.
func (d DayData) CompletedCount() int {
	n := 0
	for _, s := range d.Supplements {
		if s.Completed {
			n++
		}
	}
	return n
}

// LibraryItem is a catalog entry used to create supplements quickly.
type LibraryItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DefaultDosage string `json:"defaultDosage"`
	Category      string `json:"category"`
}

// TemplateEntry is the instance-free shape of a supplement.
type TemplateEntry struct {
	Name         string       `json:"name"`
	Dosage       string       `json:"dosage"`
	TimeCategory TimeCategory `json:"timeCategory"`
}

// Template is the single saved daily template of a user.
type Template struct {
	UserID    uuid.UUID
	Entries   []TemplateEntry
	UpdatedAt time.Time
}

// EntriesFrom strips per-instance fields (id, completion, taken time) from supplements.
func EntriesFrom(supps []Supplement) []TemplateEntry {
	out := make([]TemplateEntry, 0, len(supps))
	for _, s := range supps {
		out = append(out, TemplateEntry{Name: s.Name, Dosage: s.Dosage, TimeCategory: s.TimeCategory})
	}
	return out
}

// ResetCompletion returns a copy of supps with every completion flag cleared.
func ResetCompletion(supps []Supplement) []Supplement {
	out := make([]Supplement, len(supps))
	copy(out, supps)
	for i := range out {
		out[i].Completed = false
	}
	return out
}
