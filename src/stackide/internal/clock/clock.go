package clock

import (
	"time"

	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Clock is an interface that abstracts the functionality for measuring and scheduling time.
type Clock interface {
	// Now returns the current local time.
	Now() time.Time
	// AfterFunc waits for the duration to elapse and then calls f in its own goroutine.
	AfterFunc(duration time.Duration, f func()) Timer
	// NewTicker returns a Ticker delivering ticks with the given period.
	NewTicker(duration time.Duration) Ticker
}

// Timer is a single pending event created by AfterFunc.
type Timer interface {
	// Stop prevents the Timer from firing. It returns false if the timer has already fired or been stopped.
	Stop() bool
}

// Ticker delivers ticks at intervals.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type clock struct{}

// New creates a new instance of Clock.
func New() Clock {
	return clock{}
}

func (clock) Now() time.Time {
	return time.Now()
}

func (clock) AfterFunc(duration time.Duration, f func()) Timer {
	return time.AfterFunc(duration, f)
}

func (clock) NewTicker(duration time.Duration) Ticker {
	return ticker{time.NewTicker(duration)}
}

type ticker struct {
	t *time.Ticker
}

func (t ticker) C() <-chan time.Time {
	return t.t.C
}

func (t ticker) Stop() {
	t.t.Stop()
}
