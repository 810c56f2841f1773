// Package analyzer implements the fragment analyzer (spec §4.4): querying
// the OS extent map for an item and deciding whether a given virtual range
// of the item is fragmented.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package analyzer

import (
	"github.com/pkg/errors"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn/cos"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
)

// MaxRetrievalCalls caps the "get retrieval pointers" loop at 1000 calls
// (~100,000 fragments), defending against a documented OS pathology where
// the call returns ERROR_MORE_DATA with an empty payload (spec §4.4).
const MaxRetrievalCalls = 1000

// StrictFragmentCap is the process-wide setting for the open question in
// spec §9 / SPEC_FULL.md, filled by config.ApplyGlobals. GetFragments does
// not read it: exceeding MaxRetrievalCalls always returns a non-nil
// *cos.ErrExtentMapFailed, which the parser and the mover treat as
// item-level by marking the item unmovable, so no phase is aborted whichever
// value it holds.
var StrictFragmentCap = false

// GetFragments issues GetRetrievalPointers in a loop and replaces it.Fragments
// (spec §4.4). Fragment lists are replaced wholesale, never patched in
// place (spec §3 lifecycle).
func GetFragments(os volume.OSHandle, it *item.Item, h volume.ItemHandle) error {
	var (
		fragments []item.Fragment
		startVCN  cluster.VCN
		calls     int
	)
	for {
		calls++
		if calls > MaxRetrievalCalls {
			err := &cos.ErrExtentMapFailed{Path: it.LongPath, Err: errTooManyFragments}
			return err
		}
		extents, more, err := os.GetRetrievalPointers(h, startVCN)
		if err != nil {
			return &cos.ErrExtentMapFailed{Path: it.LongPath, Err: errors.Wrapf(err, "get retrieval pointers at vcn=%d", startVCN)}
		}
		for _, e := range extents {
			fragments = append(fragments, item.Fragment{LCN: e.LCN, NextVCN: e.NextVCN})
			startVCN = e.NextVCN
		}
		if !more || len(extents) == 0 {
			break
		}
	}
	it.Fragments = fragments
	it.Clusters = it.SumClusters()
	return nil
}

var errTooManyFragments = errTooManyFragmentsErr("retrieval pointer loop exceeded MaxRetrievalCalls")

type errTooManyFragmentsErr string

func (e errTooManyFragmentsErr) Error() string { return string(e) }

// IsFragmented walks it's cached fragments and reports whether the virtual
// range [offset, offset+size) crosses a fragment boundary that is not
// aligned (spec §4.4): two adjacent fragments are treated as unfragmented
// when the second's LCN equals the first's LCN plus its length, matching OS
// behavior that splits large files on metadata boundaries without actually
// fragmenting them physically.
func IsFragmented(it *item.Item, offset, size int64) bool {
	if size == 0 {
		return false
	}
	rangeBegin := cluster.VCN(offset)
	rangeEnd := cluster.VCN(offset + size)

	var (
		prevBegin, prevEnd cluster.VCN
		prevLCN            cluster.LCN
		prevVirtual        bool
		havePrev           bool
	)
	for _, f := range it.Fragments {
		begin, end := prevEnd, f.NextVCN

		if havePrev {
			prevLength := cluster.LCN(prevEnd - prevBegin)
			aligned := !prevVirtual && !f.IsVirtual() && f.LCN == prevLCN+prevLength
			boundaryInRange := begin > rangeBegin && begin < rangeEnd
			if boundaryInRange && !aligned {
				return true
			}
		}

		prevBegin, prevEnd, prevLCN, prevVirtual, havePrev = begin, end, f.LCN, f.IsVirtual(), true
	}
	return false
}
