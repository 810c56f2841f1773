// Throttle implements the speed-percentage suspension model (spec §5): the
// engine tracks running time vs. wall time and sleeps to hold running-time
// at speed% of wall-time, capped at 200ms per sleep.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package engine

import (
	"sync/atomic"
	"time"

	"github.com/jkdefrag/godefrag/cmn"
)

// Throttle tracks cumulative running (busy) time against wall-clock time
// since it was created, and sleeps just enough to bring the ratio back to
// Speed percent.
type Throttle struct {
	// Speed is the configured percentage in [1,100]; 100 disables throttling.
	Speed int64

	startNano  int64
	runningNano int64
}

func NewThrottle(speed int64) *Throttle {
	if speed < 1 {
		speed = 1
	}
	if speed > 100 {
		speed = 100
	}
	return &Throttle{Speed: speed, startNano: cmn.NanoTime()}
}

// RecordRun adds d to the accumulated running time, to be called after
// every blocking OS operation the engine issues (spec §5 "suspension
// points").
func (t *Throttle) RecordRun(d time.Duration) {
	atomic.AddInt64(&t.runningNano, int64(d))
}

// MaybeSleep sleeps long enough to bring running-time back down to Speed
// percent of elapsed wall-time, capped at cmn.ThrottleMax, and wakes early
// if ctrl is asked to stop.
func (t *Throttle) MaybeSleep(ctrl *Control) {
	if t.Speed >= 100 {
		return
	}
	wall := cmn.NanoTime() - t.startNano
	running := atomic.LoadInt64(&t.runningNano)
	targetWall := running * 100 / t.Speed
	sleepNanos := targetWall - wall
	if sleepNanos <= 0 {
		return
	}
	sleep := time.Duration(sleepNanos)
	if sleep > cmn.ThrottleMax {
		sleep = cmn.ThrottleMax
	}
	if sleep < cmn.ThrottleMin {
		return
	}
	if ctrl == nil {
		time.Sleep(sleep)
		return
	}
	select {
	case <-time.After(sleep):
	case <-ctrl.StopSignal():
	}
}
