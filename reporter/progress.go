// ProgressReporter renders an mpb progress bar for the cluster-moving
// phases and forwards everything else to an embedded LogReporter, the same
// split the teacher's dsort progress bar uses: a bar for the bulk operation
// count, glog for anything else worth recording (cmd/cli/commands/dsort.go).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package reporter

import (
	"sync"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
)

const progressBarWidth = 64

// ProgressReporter wraps an mpb.Progress with one bar per phase, created
// lazily on the first OnStatus for that phase since the item/cluster totals
// aren't known until analyze completes.
type ProgressReporter struct {
	*LogReporter

	progress *mpb.Progress

	mu    sync.Mutex
	bars  map[string]*mpb.Bar
}

// interface guard
var _ Reporter = (*ProgressReporter)(nil)

func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		LogReporter: NewLogReporter(),
		progress:    mpb.New(mpb.WithWidth(progressBarWidth)),
		bars:        map[string]*mpb.Bar{},
	}
}

func (r *ProgressReporter) OnStatus(s State) {
	r.mu.Lock()
	bar, ok := r.bars[s.Phase]
	if !ok && s.ItemsTotal > 0 {
		bar = r.progress.AddBar(
			s.ItemsTotal,
			mpb.PrependDecorators(
				decor.Name(s.Phase+": ", decor.WC{W: len(s.Phase) + 3, C: decor.DSyncWidthR}),
				decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.Percentage(decor.WCSyncWidth)),
		)
		r.bars[s.Phase] = bar
	}
	r.mu.Unlock()

	if bar != nil {
		bar.SetCurrent(s.ItemsDone)
	}
}

func (r *ProgressReporter) OnMove(it *item.Item, clusters int64, fromLCN, toLCN cluster.LCN, fromVCN cluster.VCN) {
	// bar progress advances via OnStatus; OnMove is logged only.
	r.LogReporter.OnMove(it, clusters, fromLCN, toLCN, fromVCN)
}

// Wait blocks until every bar has been marked complete, for callers that
// want the terminal left clean before printing a final summary.
func (r *ProgressReporter) Wait() { r.progress.Wait() }
