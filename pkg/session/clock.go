package session

import "time"

// Clock is the single time-acquisition capability used by a session, so
// tests can substitute a deterministic source (§9: "Global time acquisition
// is a single capability; tests may substitute a deterministic clock.").
type Clock interface {
	// NowMillis returns the current time as milliseconds since the Unix
	// epoch, used for payload timestamps and for deriving a fresh bdSeq.
	NowMillis() uint64
}

// SystemClock is the real wall-clock implementation.
type SystemClock struct{}

func (SystemClock) NowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}

// FakeClock is a settable Clock for tests.
type FakeClock struct {
	millis uint64
}

// NewFakeClock returns a FakeClock starting at the given time.
func NewFakeClock(startMillis uint64) *FakeClock {
	return &FakeClock{millis: startMillis}
}

func (c *FakeClock) NowMillis() uint64 { return c.millis }

// Advance moves the clock forward by delta milliseconds and returns the new
// value.
func (c *FakeClock) Advance(delta uint64) uint64 {
	c.millis += delta
	return c.millis
}

// Set pins the clock to an exact value.
func (c *FakeClock) Set(millis uint64) { c.millis = millis }
