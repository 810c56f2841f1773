package volume

import "github.com/jkdefrag/godefrag/cluster"

// FindGap scans the bitmap cache for a free extent meeting the given
// constraints (spec §4.3), grounded directly on the original's
// DefragRunner::find_gap (jkdefrag_evo/src/tech/defrag/finding.cpp).
//
//   - minLCN >= the volume's total clusters returns (zero, false, nil).
//   - maxLCN == 0 means "end of volume".
//   - An LCN inside an active MFT exclusion range counts as in-use unless
//     ignoreMFTExcludes is set.
//   - findHighest == false returns the first gap with length >= minSize.
//   - findHighest == true scans the whole range and returns the largest gap
//     that fits.
//   - If mustFit == false and no gap of length >= minSize exists, the
//     largest gap seen is returned instead (best-effort placement).
//
// onGap, if non-nil, is invoked for every gap the scan passes over (not
// just the one ultimately returned) -- the original logs a DetailedGapFinding
// debug message at this point for every gap; the engine wires onGap to the
// reporter to reproduce that verbosity (SPEC_FULL.md supplemented feature 2).
func FindGap(
	bc *BitmapCache, info *Info,
	minLCN, maxLCN cluster.LCN, minSize int64,
	mustFit, findHighest, ignoreMFTExcludes bool,
	onGap func(cluster.Extent),
) (cluster.Extent, bool, error) {
	if minLCN >= cluster.LCN(info.TotalClusters) {
		return cluster.Extent{}, false, nil
	}
	if maxLCN == 0 {
		maxLCN = cluster.LCN(info.TotalClusters)
	}

	var (
		clusterStart              cluster.LCN
		prevInUse                 = true
		haveHighest, haveLargest  bool
		highestBegin, highestEnd  cluster.LCN
		largestBegin, largestEnd  cluster.LCN
	)

	// onGapClosed is invoked with a just-closed free extent [begin, end);
	// it logs it, and remembers it as the returned gap if it qualifies.
	onGapClosed := func(begin, end cluster.LCN) (cluster.Extent, bool) {
		if onGap != nil {
			onGap(cluster.NewExtent(begin, end))
		}
		length := end - begin
		if begin >= minLCN && length >= cluster.LCN(minSize) {
			if !findHighest {
				return cluster.NewExtent(begin, end), true
			}
			if !haveHighest || length > highestEnd-highestBegin {
				highestBegin, highestEnd = begin, end
			}
			haveHighest = true
		}
		if !haveLargest || largestEnd-largestBegin < length {
			largestBegin, largestEnd = begin, end
			haveLargest = true
		}
		return cluster.Extent{}, false
	}

	lcn := minLCN
	for ; lcn < maxLCN; lcn++ {
		inUse, err := bc.InUse(lcn)
		if err != nil {
			return cluster.Extent{}, false, err
		}
		if !ignoreMFTExcludes && info.IsExcluded(lcn) {
			inUse = true
		}

		if !prevInUse && inUse {
			if gap, ok := onGapClosed(clusterStart, lcn); ok {
				return gap, true, nil
			}
		}
		if prevInUse && !inUse {
			clusterStart = lcn
		}
		prevInUse = inUse
	}

	if !prevInUse {
		if gap, ok := onGapClosed(clusterStart, lcn); ok {
			return gap, true, nil
		}
	}

	if findHighest && haveHighest {
		return cluster.NewExtent(highestBegin, highestEnd), true, nil
	}
	if !mustFit && haveLargest {
		return cluster.NewExtent(largestBegin, largestEnd), true, nil
	}
	return cluster.Extent{}, false, nil
}
