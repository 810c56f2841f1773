// Package mover implements the cluster-move primitive (spec §4.5): moving an
// item's clusters to a new location, falling back to a per-fragment
// piecewise move when a direct move leaves the item fragmented.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package mover

import (
	"github.com/pkg/errors"

	"github.com/jkdefrag/godefrag/analyzer"
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn/cos"
	"github.com/jkdefrag/godefrag/internal/xlog"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
)

// MaxChunkClusters bounds a single move request to 262,144 clusters (spec
// §4.5 step 3), independent of the 1 GiB/bytes_per_cluster bound computed
// per volume.
const MaxChunkClusters = 262144

// MaxCannotMoveDirs is the threshold past which a directory is declared
// permanently unmovable (spec §4.5 step 2): some FAT variants cannot
// relocate directory entries at all, and the original gives up retrying
// after 20 failures rather than loop forever.
const MaxCannotMoveDirs = 20

// GapFinder locates a free extent, the shape the mover needs from the
// volume package (spec §4.3) to retry a fragmented chunk with move_piecewise
// or to find somewhere else to put it.
type GapFinder func(minLCN, maxLCN cluster.LCN, minSize int64, mustFit, findHighest bool) (cluster.Extent, bool, error)

// Mover performs item moves against an OSHandle, tracking the one piece of
// cross-call state the original keeps: the running count of consecutive
// directory-move failures (spec §4.5: "the mover is the only component
// allowed to mutate is_unmovable and cannot_move_dirs").
type Mover struct {
	os              volume.OSHandle
	bytesPerCluster int64
	findGap         GapFinder

	cannotMoveDirs int
}

// New returns a Mover. findGap is used only by the piecewise-fallback retry
// path to locate a landing spot for a still-fragmented chunk.
func New(os volume.OSHandle, bytesPerCluster int64, findGap GapFinder) *Mover {
	return &Mover{os: os, bytesPerCluster: bytesPerCluster, findGap: findGap}
}

// CannotMoveDirs reports the current consecutive-directory-failure count.
func (m *Mover) CannotMoveDirs() int { return m.cannotMoveDirs }

// moveDirect issues a single OS move call covering [offset, offset+size)
// virtual clusters (spec §4.5 move_direct).
func (m *Mover) moveDirect(h volume.ItemHandle, offset, size int64, newLCN cluster.LCN) error {
	return m.os.MoveFile(h, cluster.VCN(offset), size, newLCN)
}

// movePiecewise walks it's fragments inside [offset, offset+size) and issues
// one OS move call per fragment, landing them adjacent on disk in the order
// stored (spec §4.5 move_piecewise).
func (m *Mover) movePiecewise(h volume.ItemHandle, it *item.Item, offset, size int64, newLCN cluster.LCN) error {
	rangeEnd := cluster.VCN(offset + size)
	cursor := newLCN

	var prevVCN cluster.VCN
	for _, f := range it.Fragments {
		fBegin, fEnd := prevVCN, f.NextVCN
		prevVCN = f.NextVCN
		if f.IsVirtual() || fEnd <= cluster.VCN(offset) || fBegin >= rangeEnd {
			continue
		}
		begin := fBegin
		if begin < cluster.VCN(offset) {
			begin = cluster.VCN(offset)
		}
		end := fEnd
		if end > rangeEnd {
			end = rangeEnd
		}
		length := int64(end - begin)
		if length == 0 {
			continue
		}
		if err := m.os.MoveFile(h, begin, length, cursor); err != nil {
			return err
		}
		cursor += cluster.LCN(length)
	}
	return nil
}

// Move is the public entry point (spec §4.5 move): relocates [offset,
// offset+size) virtual clusters of it to begin at newLCN, chunked and with a
// move_piecewise fallback when a direct move leaves a chunk fragmented.
// direction is accepted but not consulted: the fallback gap search always
// takes the first gap that fits.
func (m *Mover) Move(it *item.Item, newLCN cluster.LCN, offset, size int64, direction item.Direction) error {
	if it.IsUnmovable || it.IsExcluded || it.Clusters == 0 {
		return &cos.ErrMoveFailed{Path: it.LongPath, Err: errUnmovable}
	}
	if it.IsDir && m.cannotMoveDirs > MaxCannotMoveDirs {
		it.IsUnmovable = true
		return &cos.ErrMoveFailed{Path: it.LongPath, Err: errTooManyDirFailures}
	}

	h, err := m.os.OpenItem(it.LongPath)
	if err != nil {
		return &cos.ErrMoveFailed{Path: it.LongPath, Err: errors.Wrap(err, "open item")}
	}
	defer m.os.CloseItem(h)

	maxChunk := (1 << 30) / m.bytesPerCluster
	if maxChunk > MaxChunkClusters || maxChunk <= 0 {
		maxChunk = MaxChunkClusters
	}

	remaining := size
	curOffset := offset
	curLCN := newLCN
	for remaining > 0 {
		chunk := remaining
		if chunk > maxChunk {
			chunk = maxChunk
		}
		if err := m.moveChunk(h, it, curOffset, chunk, curLCN, direction); err != nil {
			m.onChunkFailure(it)
			return &cos.ErrMoveFailed{Path: it.LongPath, Err: errors.Wrapf(err, "move chunk at offset=%d size=%d", curOffset, chunk)}
		}
		remaining -= chunk
		curOffset += chunk
		curLCN += cluster.LCN(chunk)
	}

	if it.IsDir {
		m.cannotMoveDirs = 0
	}
	return nil
}

// moveChunk implements spec §4.5 step 4: try move_direct, re-read fragments,
// and if the moved region is still fragmented retry with move_piecewise into
// a freshly located gap.
func (m *Mover) moveChunk(h volume.ItemHandle, it *item.Item, offset, size int64, newLCN cluster.LCN, direction item.Direction) error {
	if err := m.moveDirect(h, offset, size, newLCN); err != nil {
		return err
	}
	if err := analyzer.GetFragments(m.os, it, h); err != nil {
		return err
	}
	if !analyzer.IsFragmented(it, offset, size) {
		return nil
	}

	xlog.V(2).Infof("mover: %s still fragmented after move_direct, retrying piecewise", it.LongPath)

	gap, ok, err := m.findGapFor(size)
	if err != nil {
		return err
	}
	if !ok {
		return errNoGapForPiecewise
	}
	if err := m.movePiecewise(h, it, offset, size, gap.Begin); err != nil {
		return err
	}
	if err := analyzer.GetFragments(m.os, it, h); err != nil {
		return err
	}
	if analyzer.IsFragmented(it, offset, size) {
		return errStillFragmentedAfterPiecewise
	}
	return nil
}

func (m *Mover) findGapFor(size int64) (cluster.Extent, bool, error) {
	if m.findGap == nil {
		return cluster.Extent{}, false, errNoGapFinder
	}
	return m.findGap(0, 0, size, true, false)
}

// onChunkFailure implements spec §4.5 step 5: on any chunk failure, mark the
// item unmovable and bump cannot_move_dirs if it's a directory.
func (m *Mover) onChunkFailure(it *item.Item) {
	it.IsUnmovable = true
	if it.IsDir {
		m.cannotMoveDirs++
	}
}

type moverErr string

func (e moverErr) Error() string { return string(e) }

const (
	errUnmovable                    = moverErr("item is unmovable, excluded, or has no clusters")
	errTooManyDirFailures            = moverErr("directory move failures exceeded MaxCannotMoveDirs")
	errNoGapForPiecewise             = moverErr("no gap available for move_piecewise fallback")
	errStillFragmentedAfterPiecewise = moverErr("item still fragmented after move_piecewise fallback")
	errNoGapFinder                   = moverErr("mover has no GapFinder configured")
)
