// Package clock supplies the evaluation instant used for expiry windows and
// days-remaining calculations. All instants are in UTC.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall clock in UTC.
func System() Clock { return systemClock{} }

// Fixed always reports the same instant. Used by tests and by export
// requests that must evaluate every row against one instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f).UTC() }
