// Package selector implements the two item-tree searches the optimize phase
// and the MFT move use to pick what goes into a gap (spec §4.7), grounded
// directly on find_highest_item / find_best_item
// (jkdefrag_evo/src/tech/defrag/finding.cpp).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package selector

import (
	"time"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn"
	"github.com/jkdefrag/godefrag/item"
)

// BestItemBudget is the wall-clock budget find_best_item is allowed per call
// (spec §4.7).
const BestItemBudget = 500 * time.Millisecond

// eligible reports whether it qualifies as a move candidate at all,
// independent of size: movable, not excluded, and matching the zone filter
// (item.ZoneAll meaning "no filter").
func eligible(it *item.Item, zoneFilter item.Zone) bool {
	if it.IsUnmovable || it.IsExcluded {
		return false
	}
	if zoneFilter != item.ZoneAll && it.PreferredZone() != zoneFilter {
		return false
	}
	return true
}

// crossedGap reports whether the walk, moving in direction, has passed out
// of the side of the gap it is scanning: DirAbove walks ascending from the
// tree's smallest item, so it has crossed once lcn runs past gap.Begin;
// DirBelow walks descending from the biggest item, crossing once lcn drops
// below gap.End.
func crossedGap(lcn cluster.LCN, gap cluster.Extent, direction item.Direction) bool {
	if direction == item.DirAbove {
		return lcn > gap.Begin
	}
	return lcn < gap.End
}

// FindHighestItem walks the tree in direction, and returns the first item
// whose LCN is on the correct side of gap, fits inside it, passes the zone
// filter, and is movable (spec §4.7 find_highest_item). Returns nil if none
// is found, which includes the case where the walk crosses to the other
// side of the gap before finding a fit.
func FindHighestItem(tree *item.Tree, gap cluster.Extent, direction item.Direction, zoneFilter item.Zone) *item.Item {
	if gap.IsZero() {
		return nil
	}
	for it := tree.First(direction); it != nil; it = item.NextPrev(it, direction) {
		lcn := it.LCN()
		if lcn == 0 {
			continue
		}
		if crossedGap(lcn, gap, direction) {
			return nil
		}

		if !eligible(it, zoneFilter) {
			continue
		}
		if it.Clusters > gap.Length() {
			continue
		}
		return it
	}
	return nil
}

// FindBestItem searches for an item (or chain start) that exactly fills the
// gap, combined with subsequently-found fitting items, within a 500ms
// wall-clock budget (spec §4.7 find_best_item). Returns nil on timeout or
// when the candidates above the gap can never sum to its size.
func FindBestItem(tree *item.Tree, gap cluster.Extent, direction item.Direction, zoneFilter item.Zone) *item.Item {
	if gap.IsZero() {
		return nil
	}
	deadline := cmn.NanoTime() + BestItemBudget.Nanoseconds()

	var firstItem *item.Item
	gapSize := gap.Length()
	var totalItemsSize int64

	it := tree.First(direction)
	for it != nil {
		lcn := it.LCN()
		if lcn == 0 {
			it = item.NextPrev(it, direction)
			continue
		}

		if crossedGap(lcn, gap, direction) {
			if firstItem == nil {
				return nil
			}
			if totalItemsSize < gap.Length() {
				return nil
			}
			if cmn.NanoTime() > deadline {
				return nil
			}
			// Rewind and try again from just past the previous starting
			// point: firstItem fit the gap on its own but didn't combine
			// with what followed it, so resume the scan one step beyond it
			// rather than reprocessing it (spec §4.7 find_best_item).
			it = item.NextPrev(firstItem, direction)
			firstItem = nil
			gapSize = gap.Length()
			totalItemsSize = 0
			continue
		}

		if !eligible(it, zoneFilter) {
			it = item.NextPrev(it, direction)
			continue
		}

		if it.Clusters < gap.Length() {
			totalItemsSize += it.Clusters
		}
		if it.Clusters > gapSize {
			it = item.NextPrev(it, direction)
			continue
		}

		if it.Clusters == gapSize {
			if firstItem != nil {
				return firstItem
			}
			return it
		}

		gapSize -= it.Clusters
		if firstItem == nil {
			firstItem = it
		}
		it = item.NextPrev(it, direction)
	}
	return nil
}
