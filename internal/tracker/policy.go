package tracker

import "time"

const (
	DefaultInterval = time.Second
	DefaultTimeout  = 10 * time.Minute
)

// Policy controls the poll and fetch cadence.
type Policy struct {
	// Interval is the delay after the first PROCESSING answer.
	Interval time.Duration
	// MaxInterval caps the doubling delay. Values at or below Interval keep
	// the cadence fixed.
	MaxInterval time.Duration
	// Timeout bounds a whole loop. Zero disables the deadline.
	Timeout time.Duration
}

// DefaultPolicy polls every second and gives up after ten minutes.
func DefaultPolicy() Policy {
	return Policy{
		Interval:    DefaultInterval,
		MaxInterval: DefaultInterval,
		Timeout:     DefaultTimeout,
	}
}

// Delay returns the wait after the given number of consecutive PROCESSING
// answers (zero-based).
func (p Policy) Delay(attempt int) time.Duration {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if p.MaxInterval <= interval || attempt <= 0 {
		return interval
	}

	delay := interval
	for i := 0; i < attempt && delay < p.MaxInterval; i++ {
		delay *= 2
	}
	if delay > p.MaxInterval {
		delay = p.MaxInterval
	}
	return delay
}
