package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewThrottleClampsSpeed(t *testing.T) {
	assert.Equal(t, int64(1), NewThrottle(0).Speed)
	assert.Equal(t, int64(1), NewThrottle(-5).Speed)
	assert.Equal(t, int64(100), NewThrottle(500).Speed)
	assert.Equal(t, int64(50), NewThrottle(50).Speed)
}

func TestThrottleAtFullSpeedNeverSleeps(t *testing.T) {
	th := NewThrottle(100)
	th.RecordRun(time.Second)
	start := time.Now()
	th.MaybeSleep(nil)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestThrottleWakesEarlyOnStop(t *testing.T) {
	th := NewThrottle(1)
	th.RecordRun(time.Second)
	ctrl := NewControl()
	go func() {
		time.Sleep(5 * time.Millisecond)
		ctrl.Stop(-1)
	}()
	start := time.Now()
	th.MaybeSleep(ctrl)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
