package core

import "time"

// TimeSource returns the current time. Tests swap it for a manual clock.
type TimeSource func() time.Time

type Clock struct {
	source    TimeSource
	startTime time.Time
	running   bool
	// elapsed milliseconds since Start, as of the last Update
	elapsed float64
}

func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

func NewClockWithSource(source TimeSource) *Clock {
	return &Clock{source: source}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = float64(c.source().Sub(c.startTime)) / float64(time.Millisecond)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.source()
	c.running = true
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

// Elapsed returns the milliseconds between Start and the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
