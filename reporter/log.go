// LogReporter is the glog-backed Reporter implementation: every event
// becomes a structured log line, the teacher's logging idiom throughout the
// engine (internal/xlog wraps github.com/golang/glog).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package reporter

import (
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn"
	"github.com/jkdefrag/godefrag/internal/xlog"
	"github.com/jkdefrag/godefrag/item"
)

// LogReporter logs every event at a verbosity matched to its DebugLevel;
// OnDrawCluster is logged only at high verbosity since it fires once per
// cluster-map redraw region.
type LogReporter struct {
	// MinLevel suppresses OnDebug calls below it; zero value (Fatal) logs
	// everything.
	MinLevel DebugLevel
}

// interface guard
var _ Reporter = (*LogReporter)(nil)

func NewLogReporter() *LogReporter { return &LogReporter{} }

func (r *LogReporter) OnStatus(s State) {
	pct := cmn.Ratio(s.ItemsTotal, 0, s.ItemsDone)
	xlog.Infof("status: run=%s phase=%s zone=%d items=%d/%d (%d%%) clusters=%d/%d cannot_move_dirs=%d",
		s.RunID, s.Phase, s.Zone, s.ItemsDone, s.ItemsTotal, pct, s.ClustersDone, s.ClustersTotal, s.CannotMoveDirs)
}

func (r *LogReporter) OnAnalyze(s State, it *item.Item) {
	if it == nil {
		return
	}
	xlog.V(1).Infof("analyze: %s bytes=%d clusters=%d dir=%v", it.LongPath, it.Bytes, it.Clusters, it.IsDir)
}

func (r *LogReporter) OnMove(it *item.Item, clusters int64, fromLCN, toLCN cluster.LCN, fromVCN cluster.VCN) {
	xlog.Infof("move: %s (%s) clusters=%d %d->%d (vcn=%d)", it.LongPath, cmn.B2S(it.Bytes, 2), clusters, fromLCN, toLCN, fromVCN)
}

func (r *LogReporter) OnDebug(level DebugLevel, it *item.Item, text string) {
	if level < r.MinLevel {
		return
	}
	path := ""
	if it != nil {
		path = it.LongPath
	}
	switch level {
	case Fatal:
		xlog.Errorf("[%s] %s: %s", level, path, text)
	case Warning:
		xlog.Warningf("[%s] %s: %s", level, path, text)
	default:
		xlog.V(2).Infof("[%s] %s: %s", level, path, text)
	}
}

func (r *LogReporter) OnDrawCluster(lcnBegin, lcnEnd cluster.LCN, color Color) {
	xlog.V(3).Infof("draw: [%d,%d) color=%d", lcnBegin, lcnEnd, color)
}

func (r *LogReporter) OnClearScreen(text string) {
	xlog.Infof("clear: %s", text)
}
