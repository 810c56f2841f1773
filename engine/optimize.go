// optimize.go implements spec §4.8 step 4's optimize/sort phase and the
// mode-4/5 variants from the §6 command grid (ForceTogether, MoveToEnd).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package engine

import (
	"fmt"
	"sort"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn/cos"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/reporter"
	"github.com/jkdefrag/godefrag/selector"
)

// maxGapFillRetries bounds the retry loop in optimizeZone: if moving an
// item into a gap keeps failing, give up on that gap rather than spin
// (spec §4.8 step 4, grounded on optimize_volume's retry < 5 guard).
const maxGapFillRetries = 5

// itemsInZone collects every movable item in z, in current tree (ascending
// LCN) order.
func (e *Engine) itemsInZone(z item.Zone) []*item.Item {
	var out []*item.Item
	e.tree.InOrder(func(it *item.Item) bool {
		if it.IsUnmovable || it.IsExcluded || it.Clusters == 0 {
			return true
		}
		if it.PreferredZone() == z {
			out = append(out, it)
		}
		return true
	})
	return out
}

// placeInOrder walks items (already ordered) and places each one at a
// growing write head starting at zoneBegin, vacating room as needed by
// moving displaced items into gaps at or above moveTo (spec §4.8 step 4,
// §4.8.1). An
// item already sitting at the write head is skipped (spec §4.9).
func (e *Engine) placeInOrder(items []*item.Item, zoneBegin, moveTo cluster.LCN) error {
	writeHead := zoneBegin
	for _, it := range items {
		if e.ctrl.ShouldStop() {
			return nil
		}
		if it.LCN() == writeHead {
			writeHead += cluster.LCN(it.Clusters)
			continue
		}
		if err := e.vacate(writeHead, it.Clusters, moveTo); err != nil {
			if _, ok := err.(*cos.ErrDiskFull); ok {
				continue // can't make room here; leave this item and keep going
			}
			return err
		}
		if err := e.moveItem(it, writeHead, 0, it.Clusters, item.DirAbove); err != nil {
			if cos.IsItemLevel(err) {
				continue
			}
			return err
		}
		writeHead += cluster.LCN(it.Clusters)
	}
	return nil
}

// optimize implements the "fast opt" sub-step of mode 2 (spec §4.8 step 4):
// each zone's gaps are filled from above, preferring combinations of items
// that exactly close a gap before falling back to the single highest item
// that fits (spec §4.7), grounded directly on the original's
// optimize_volume (defrag_lib_methods.cpp).
func (e *Engine) optimize() error {
	for z := item.Zone(0); z < 3; z++ {
		if err := e.optimizeZone(z); err != nil {
			return err
		}
		if e.ctrl.ShouldStop() {
			return nil
		}
	}
	return nil
}

// zoneClustersAbove sums the cluster count of every movable, non-excluded
// item of zone z whose current LCN is at or above lcn -- the original's
// progress-counter loop doubles as the "is there anything left to place"
// check that decides whether a perfect-fit combination could even exist.
func (e *Engine) zoneClustersAbove(z item.Zone, lcn cluster.LCN) int64 {
	var total int64
	for it := e.tree.Biggest(); it != nil; it = item.NextPrev(it, item.DirBelow) {
		if it.LCN() < lcn {
			break
		}
		if it.IsUnmovable || it.IsExcluded {
			continue
		}
		if it.PreferredZone() != z {
			continue
		}
		total += it.Clusters
	}
	return total
}

// optimizeZone walks every gap in zone z from its start, filling each one
// with items found from above via the selector (spec §4.7): find_best_item
// first while a perfect combination is still plausible, falling back
// permanently to find_highest_item once it isn't or once it fails to
// combine within budget.
func (e *Engine) optimizeZone(z item.Zone) error {
	zoneBegin, _ := e.zoneRange(z)
	gapBegin := zoneBegin

	for {
		if e.ctrl.ShouldStop() {
			return nil
		}
		gap, ok, err := e.findGap(gapBegin, 0, 0, true, false)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		begin, end := gap.Begin, gap.End

		total := e.zoneClustersAbove(z, end)
		if total == 0 {
			return nil
		}
		perfectFit := int64(end-begin) <= total

		retry := 0
		for begin < end && retry < maxGapFillRetries {
			if e.ctrl.ShouldStop() {
				return nil
			}
			want := cluster.NewExtent(begin, end)
			var it *item.Item
			if perfectFit {
				it = selector.FindBestItem(e.tree, want, item.DirBelow, z)
				if it == nil {
					perfectFit = false
					it = selector.FindHighestItem(e.tree, want, item.DirBelow, z)
				}
			} else {
				it = selector.FindHighestItem(e.tree, want, item.DirBelow, z)
			}
			if it == nil {
				break
			}
			if err := e.moveItem(it, begin, 0, it.Clusters, item.DirAbove); err != nil {
				if !cos.IsItemLevel(err) {
					return err
				}
				end = begin // force a re-scan of the gap (item now unmovable)
				retry++
				continue
			}
			begin += cluster.LCN(it.Clusters)
			retry = 0
		}

		if begin < end {
			e.Reporter.OnDebug(reporter.Progress, nil, fmt.Sprintf("skipping gap, cannot fill: %d[%d]", begin, end-begin))
			gapBegin = end
		} else {
			gapBegin = begin
		}
	}
}

// sortPhase implements mode 6-10 (spec §4.9): each zone is fully resorted
// by key before being compacted.
func (e *Engine) sortPhase(key SortKey) error {
	bounds := [3][2]cluster.LCN{
		{0, e.boundaries.ZoneEnd[0]},
		{e.boundaries.ZoneEnd[0], e.boundaries.ZoneEnd[1]},
		{e.boundaries.ZoneEnd[1], e.boundaries.ZoneEnd[2]},
	}
	for z := item.Zone(0); z < 3; z++ {
		items := e.itemsInZone(z)
		sort.Slice(items, func(i, j int) bool { return Less(key, items[i], items[j]) })
		if err := e.placeInOrder(items, bounds[z][0], bounds[z][1]); err != nil {
			return err
		}
		if e.ctrl.ShouldStop() {
			return nil
		}
	}
	return nil
}

// forceTogether implements mode 4: pack files from the highest LCNs down
// into gaps at the lowest LCNs, without regard to zone boundaries.
func (e *Engine) forceTogether() error {
	var items []*item.Item
	for it := e.tree.Biggest(); it != nil; it = item.NextPrev(it, item.DirBelow) {
		if it.IsUnmovable || it.IsExcluded || it.Clusters == 0 {
			continue
		}
		items = append(items, it)
	}
	for _, it := range items {
		if e.ctrl.ShouldStop() {
			return nil
		}
		gap, ok, err := e.findGap(0, it.LCN(), it.Clusters, true, false)
		if err != nil {
			return err
		}
		if !ok || gap.Begin >= it.LCN() {
			continue
		}
		if err := e.moveItem(it, gap.Begin, 0, it.Clusters, item.DirAbove); err != nil {
			if !cos.IsItemLevel(err) {
				return err
			}
		}
	}
	return nil
}

// moveToEnd implements mode 5: items above the zone-1 boundary are pushed
// further up, each into the largest free gap above it that can hold it.
func (e *Engine) moveToEnd() error {
	var items []*item.Item
	e.tree.InOrder(func(it *item.Item) bool {
		if it.IsUnmovable || it.IsExcluded || it.Clusters == 0 {
			return true
		}
		if it.LCN() >= e.boundaries.ZoneEnd[0] {
			items = append(items, it)
		}
		return true
	})
	for _, it := range items {
		if e.ctrl.ShouldStop() {
			return nil
		}
		gap, ok, err := e.findGap(it.LCN(), 0, it.Clusters, true, true)
		if err != nil {
			return err
		}
		if !ok || gap.Begin <= it.LCN() {
			continue
		}
		if err := e.moveItem(it, gap.Begin, 0, it.Clusters, item.DirAbove); err != nil {
			if !cos.IsItemLevel(err) {
				return err
			}
		}
	}
	return nil
}
