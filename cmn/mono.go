package cmn

import "time"

// processStart anchors a monotonic clock the same way the teacher's
// cmn/mono package does (nanoseconds since process start rather than
// wall-clock, so it is immune to clock adjustments during a long-running
// defragmentation pass).
var processStart = time.Now()

// NanoTime returns a monotonically increasing nanosecond counter.
func NanoTime() int64 {
	return int64(time.Since(processStart))
}

const (
	// ThrottleMin is the smallest sleep the engine's throttle issues between
	// suspension points (spec §5).
	ThrottleMin = time.Millisecond
	// ThrottleMax is the largest single sleep the throttle is allowed to
	// issue (spec §5: "200 ms cap per sleep").
	ThrottleMax = 200 * time.Millisecond
)
