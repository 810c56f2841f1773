// Package item holds the in-memory representation of a single file or
// directory (spec §3) and the self-balancing binary search tree that
// indexes every item by its on-disk logical cluster number (spec §4.2).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package item

import (
	"time"

	"github.com/jkdefrag/godefrag/cluster"
)

// Zone identifies one of the volume's three logical regions (spec §3).
type Zone int

const (
	ZoneDirectories Zone = 0
	ZoneRegular     Zone = 1
	ZoneSpaceHogs   Zone = 2
	// ZoneAll is used by the selector (spec §4.7) as a "no zone filter"
	// sentinel, matching the original's Zone::ZoneAll_MaxValue.
	ZoneAll Zone = 3
)

// Fragment covers virtual clusters [prevNextVCN, NextVCN) mapped to
// physical clusters starting at LCN. A fragment with LCN == cluster.VirtualLCN
// is virtual and occupies no physical clusters (spec §3).
type Fragment struct {
	LCN     cluster.LCN
	NextVCN cluster.VCN
}

func (f Fragment) IsVirtual() bool { return f.LCN.IsVirtual() }

// Item is a file or directory in the volume's item tree.
type Item struct {
	// identifying strings -- any may be empty (absent)
	LongName  string
	ShortName string
	LongPath  string
	ShortPath string

	// sizes
	Bytes    int64
	Clusters int64 // sum of non-virtual fragment lengths

	// timestamps, 100-ns ticks since the epoch fixed by the parser collaborator
	CreationTime   int64
	MFTChangeTime  int64
	LastAccessTime int64

	// ordered by VCN, non-overlapping, strictly increasing NextVCN
	Fragments []Fragment

	ParentInode int64
	Parent      *Item

	IsDir       bool
	IsUnmovable bool
	IsExcluded  bool
	IsHog       bool

	// tree pointers (spec §3 invariant 3)
	parent  *Item
	smaller *Item
	bigger  *Item
}

// PreferredZone implements spec §3: "0 if is_dir, else 2 if is_hog, else 1".
func (it *Item) PreferredZone() Zone {
	switch {
	case it.IsDir:
		return ZoneDirectories
	case it.IsHog:
		return ZoneSpaceHogs
	default:
		return ZoneRegular
	}
}

// LCN is the BST key (spec §3 invariant 3): the first non-virtual
// fragment's LCN, or 0 if the item has none (e.g. a fully sparse file).
func (it *Item) LCN() cluster.LCN {
	for _, f := range it.Fragments {
		if !f.IsVirtual() {
			return f.LCN
		}
	}
	return 0
}

// SumClusters recomputes Clusters from Fragments (spec §3 invariant 2),
// used by the analyzer after every fragment-list replacement.
func (it *Item) SumClusters() int64 {
	var prevVCN cluster.VCN
	var sum int64
	for _, f := range it.Fragments {
		length := int64(f.NextVCN - prevVCN)
		if !f.IsVirtual() {
			sum += length
		}
		prevVCN = f.NextVCN
	}
	return sum
}

// LastAccessBefore reports whether the item's last-access time is at least
// `age` in the past, relative to now expressed in the same 100-ns-tick
// epoch the parser uses (used by the analyze phase's space-hog/age rules,
// spec §4.8 step 1).
func LastAccessBefore(ticksNow, ticksAccess int64, age time.Duration) bool {
	delta := ticksNow - ticksAccess
	return delta >= age.Nanoseconds()/100
}
