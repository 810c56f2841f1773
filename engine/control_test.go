package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestControlStopSignalsShouldStop(t *testing.T) {
	c := NewControl()
	assert.False(t, c.ShouldStop())
	assert.Equal(t, StateRunning, c.State())

	done := make(chan struct{})
	go func() {
		c.Stop(0)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	assert.True(t, c.ShouldStop())
	assert.Equal(t, StateStopping, c.State())

	c.MarkStopped()
	assert.Equal(t, StateStopped, c.State())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop(0) did not return after MarkStopped")
	}
}

func TestControlStopTimeoutExpires(t *testing.T) {
	c := NewControl()
	ok := c.Stop(10 * time.Millisecond)
	assert.False(t, ok)
}

func TestControlStopNegativeReturnsImmediately(t *testing.T) {
	c := NewControl()
	start := time.Now()
	ok := c.Stop(-1)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
