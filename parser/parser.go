// Package parser defines the NTFS/FAT metadata-parsing collaborator (spec
// §1, §6: "out of scope, a collaborator interface only") and supplies the
// one concrete implementation this repo carries: a generic directory-walk
// fallback used when the volume's filesystem isn't one the fast path
// understands (spec §4.8 step 1 wiring of cos.ErrUnsupportedFilesystem).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package parser

import (
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
)

// Parser populates an item tree from a volume. The real NTFS/FAT
// implementations (reading $MFT records or FAT directory entries directly)
// are out of scope per spec §1 -- this interface is what the analyze phase
// (spec §4.8 step 1) calls, and what WalkFallback and any future real
// parser must implement.
type Parser interface {
	// Parse populates tree with every item found on the volume and returns
	// the volume metadata spec §6 requires (bytes_per_cluster, total
	// clusters, MFT exclusion ranges, filesystem type).
	Parse(volumePath string, tree *item.Tree) (*volume.Info, error)
}
