// Package zone computes the three zone boundaries (spec §4.6): a fixpoint
// iteration over the item tree that settles where the Directories, Regular
// and SpaceHogs zones end, accounting for unmovable fragments and MFT
// exclusion ranges that pin clusters in place regardless of preference.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package zone

import (
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
)

// MaxIterations bounds the fixpoint loop (spec §4.6 step 4).
const MaxIterations = 10

// Boundaries holds the end LCN of each of the three zones, in ascending
// order: Directories, Regular, SpaceHogs. ZoneEnd[2] need not equal the
// volume's total cluster count; clusters beyond it are unclaimed free space.
type Boundaries struct {
	ZoneEnd    [3]cluster.LCN
	Iterations int
}

// ZoneOf returns which zone lcn currently falls in, given boundaries b:
// zone 0 below ZoneEnd[0], zone 1 below ZoneEnd[1], zone 2 otherwise.
func (b Boundaries) ZoneOf(lcn cluster.LCN) item.Zone {
	switch {
	case lcn < b.ZoneEnd[0]:
		return item.ZoneDirectories
	case lcn < b.ZoneEnd[1]:
		return item.ZoneRegular
	default:
		return item.ZoneSpaceHogs
	}
}

// Compute runs the fixpoint described in spec §4.6. freeSpacePercent is the
// configured reserve (applied to zones 0 and 1 only, per step 2); tree is
// walked read-only -- Compute never mutates items.
func Compute(tree *item.Tree, info *volume.Info, freeSpacePercent int64) Boundaries {
	var b Boundaries
	reserve := info.TotalClusters * freeSpacePercent / 100

	for iter := 0; iter < MaxIterations; iter++ {
		var movable, unmovable [3]int64

		tree.InOrder(func(it *item.Item) bool {
			if it.IsUnmovable {
				z := unmovableZone(it, b, iter)
				unmovable[z] += it.Clusters
			} else {
				movable[it.PreferredZone()] += it.Clusters
			}
			return true
		})
		for _, ex := range info.MFTExcludes {
			z := zoneForExclusion(ex, b, iter)
			unmovable[z] += int64(ex.Length())
		}

		next := Boundaries{
			Iterations: iter + 1,
		}
		next.ZoneEnd[0] = cluster.LCN(movable[0]+unmovable[0]) + cluster.LCN(reserve)
		next.ZoneEnd[1] = next.ZoneEnd[0] + cluster.LCN(movable[1]+unmovable[1]) + cluster.LCN(reserve)
		next.ZoneEnd[2] = next.ZoneEnd[1] + cluster.LCN(movable[2]+unmovable[2])

		converged := next.ZoneEnd == b.ZoneEnd && iter > 0
		b = next
		if converged {
			break
		}
	}
	return b
}

// unmovableZone attributes an unmovable item to a zone: on the seeding
// iteration (no boundaries computed yet) its preferred zone is used, since
// nothing else is known; afterward its actual on-disk location against the
// previous iteration's boundaries decides (spec §4.6 step 3).
func unmovableZone(it *item.Item, b Boundaries, iter int) item.Zone {
	if iter == 0 {
		return it.PreferredZone()
	}
	return b.ZoneOf(it.LCN())
}

func zoneForExclusion(ex cluster.Extent, b Boundaries, iter int) item.Zone {
	if iter == 0 {
		return item.ZoneDirectories
	}
	return b.ZoneOf(ex.Begin)
}
