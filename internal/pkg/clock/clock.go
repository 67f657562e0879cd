// Package clock provides time and timer utilities so deferred work can be
// driven deterministically in tests
package clock

import "time"

//go:generate mockgen -destination=mock/mock.go -package=mockclock github.com/KirkDiggler/chimera-protocol/internal/pkg/clock Clock

// Timer is a pending callback that can be cancelled
type Timer interface {
	// Stop prevents the callback from firing. It reports false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Clock provides time functionality
type Clock interface {
	Now() time.Time
	// AfterFunc runs f on its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time
func (c *Real) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc
func (c *Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}
