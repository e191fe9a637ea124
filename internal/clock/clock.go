// Package clock abstracts wall-clock access so day boundaries can be simulated in tests.
package clock

import (
	"sync"
	"time"

	"cloud.google.com/go/civil"
)

// Clock reports the current instant in the user's local zone.
type Clock interface {
	Now() time.Time
}

// Today returns the calendar date of c.Now().
func Today(c Clock) civil.Date { return civil.DateOf(c.Now()) }

// System is the real clock bound to a location (nil means time.Local).
type System struct{ Loc *time.Location }

// Now returns the current time in s.Loc.
func (s System) Now() time.Time {
	if s.Loc == nil {
		return time.Now()
	}
	return time.Now().In(s.Loc)
}

// Fake is a settable clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a fake clock pinned to t.
func NewFake(t time.Time) *Fake { return &Fake{now: t} }

// Now returns the pinned instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
