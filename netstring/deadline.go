package netstring

import "time"

// Deadline bounds one frame read attempt. It is a plain stopwatch,
// recreated per attempt and never shared across cycles.
type Deadline struct {
	start time.Time
	limit time.Duration
}

// StartDeadline records the current time against the allowed duration.
func StartDeadline(limit time.Duration) Deadline {
	return Deadline{start: time.Now(), limit: limit}
}

// Expired reports whether the elapsed time has reached the limit.
func (d Deadline) Expired() bool {
	return time.Since(d.start) >= d.limit
}

// Remaining returns the time left before expiry, clamped at zero.
func (d Deadline) Remaining() time.Duration {
	left := d.limit - time.Since(d.start)
	if left < 0 {
		return 0
	}
	return left
}
