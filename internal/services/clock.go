package services

import (
	"time"

	"github.com/you/storeapi/domain"
)

// Clock supplies the current time and the zone in which calendar days are
// counted for the daily OTP and login windows.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a wall clock for loc
func NewClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

// Today reports whether t falls on the current calendar day
func (c Clock) Today(t time.Time) bool {
	return domain.SameDay(t, c.Now(), c.Location)
}
