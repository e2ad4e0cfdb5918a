package ratelimit

import (
	"math"
	"time"
)

// Policy is a request budget per window
type Policy struct {
	Limit  int64
	Window time.Duration
}

// WindowSeconds returns the window rounded up to whole seconds, at least 1
func (p Policy) WindowSeconds() int {
	secs := int(math.Ceil(p.Window.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
