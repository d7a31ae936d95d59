package enrich

import "time"

// Clock supplies the current time to the engine. Backoff arithmetic depends
// on it, so production injects the system clock and tests a fixed one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
