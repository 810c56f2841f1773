// Package engine implements the phase orchestrator (spec §4.8): the single
// worker that drives analyze, defragment, fixup, optimize/sort and the
// optional MFT move, cooperating with a Reporter and honoring the
// cancellation and throttle model of spec §5.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package engine

import (
	"sync/atomic"
	"time"

	"github.com/jkdefrag/godefrag/cmn"
)

// RunState mirrors spec §5's shared `running` flag.
type RunState int32

const (
	StateRunning RunState = iota
	StateStopping
	StateStopped
)

func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	default:
		return "Stopped"
	}
}

// Control is the engine's cancellation primitive: every loop body polls
// ShouldStop, the owner calls Stop to request a cooperative shutdown and
// block (optionally with a timeout) until the engine acknowledges it by
// calling MarkStopped (spec §5 "cancellation & timeout"). The two
// close-once signals are cmn.StopCh (cmn/sync.go), the same idempotent
// "close a channel exactly once" primitive the teacher built for this
// exact shared-running-flag shape.
type Control struct {
	state int32

	stopSig    *cmn.StopCh
	stoppedSig *cmn.StopCh
}

func NewControl() *Control {
	return &Control{stopSig: cmn.NewStopCh(), stoppedSig: cmn.NewStopCh()}
}

func (c *Control) State() RunState { return RunState(atomic.LoadInt32(&c.state)) }

// ShouldStop is the per-loop-body poll point (spec §5 "every loop body
// checks it").
func (c *Control) ShouldStop() bool { return c.State() == StateStopping }

// requestStop is called by Stop; it's also exposed so tests can simulate
// cancellation mid-run.
func (c *Control) requestStop() {
	atomic.StoreInt32(&c.state, int32(StateStopping))
	c.stopSig.Close()
}

// MarkStopped is called by the engine once it has unwound cleanly (closed
// handles, freed the item tree).
func (c *Control) MarkStopped() {
	atomic.StoreInt32(&c.state, int32(StateStopped))
	c.stoppedSig.Close()
}

// StopSignal is the channel the throttle sleep selects on to wake early.
func (c *Control) StopSignal() <-chan struct{} { return c.stopSig.Listen() }

// Stop requests cancellation and waits for acknowledgement (spec §5):
// timeout == 0 waits forever; timeout < 0 returns immediately without
// waiting; otherwise it polls (conceptually) until Stopped or the timeout
// elapses. Returns true once the engine reports Stopped.
func (c *Control) Stop(timeout time.Duration) bool {
	c.requestStop()
	if timeout < 0 {
		return c.State() == StateStopped
	}
	if timeout == 0 {
		<-c.stoppedSig.Listen()
		return true
	}
	select {
	case <-c.stoppedSig.Listen():
		return true
	case <-time.After(timeout):
		return false
	}
}
