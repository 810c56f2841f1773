// vacate.go implements spec §4.8.1: sliding movable items upward to open a
// run of free clusters at a target LCN, landing every displaced item in a
// gap at or above a watermark (preventing the "worm" ping-pong the spec
// calls out).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package engine

import (
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn/cos"
	"github.com/jkdefrag/godefrag/item"
)

// rangeFree reports whether every cluster in [begin, begin+clusters) is
// unallocated.
func (e *Engine) rangeFree(begin cluster.LCN, clusters int64) (bool, error) {
	free := true
	err := e.bitmap.Iterate(begin, begin+cluster.LCN(clusters), func(_ cluster.LCN, inUse bool) bool {
		if inUse {
			free = false
			return false
		}
		return true
	})
	return free, err
}

// vacate shifts movable items out of [target, target+clusters) upward into
// gaps at or above moveTo until that range is entirely free, or gives up
// with ErrDiskFull if a blocking item is unmovable or no landing gap exists
// above moveTo (spec §4.8.1).
func (e *Engine) vacate(target cluster.LCN, clusters int64, moveTo cluster.LCN) error {
	for {
		if e.ctrl.ShouldStop() {
			return nil
		}
		free, err := e.rangeFree(target, clusters)
		if err != nil {
			return err
		}
		if free {
			return nil
		}

		blocker := target
		if err := e.bitmap.Iterate(target, target+cluster.LCN(clusters), func(lcn cluster.LCN, inUse bool) bool {
			if inUse {
				blocker = lcn
				return false
			}
			return true
		}); err != nil {
			return err
		}
		it := e.tree.FindAtLCN(blocker)
		if it == nil {
			// no item claims this LCN yet the bitmap reports it in use
			// (e.g. an MFT exclusion range); nothing we can move.
			return &cos.ErrDiskFull{NeedClusters: clusters}
		}
		if it.IsUnmovable || it.Clusters == 0 {
			return &cos.ErrDiskFull{NeedClusters: clusters}
		}

		gap, ok, err := e.findGap(moveTo, 0, it.Clusters, true, false)
		if err != nil {
			return err
		}
		if !ok {
			return &cos.ErrDiskFull{NeedClusters: it.Clusters}
		}
		if err := e.moveItem(it, gap.Begin, 0, it.Clusters, item.DirAbove); err != nil {
			if cos.IsItemLevel(err) {
				continue // item now marked unmovable; retry picks the next blocker
			}
			return err
		}
	}
}
