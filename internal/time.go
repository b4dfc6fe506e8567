package internal

import (
	"time"
)

var startTime = time.Now()

// NowNano returns a monotonic timestamp in nanoseconds, relative to process start.
// Replays read it twice per run to measure their duration.
func NowNano() int64 {
	return time.Since(startTime).Nanoseconds()
}
