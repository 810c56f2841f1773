// Package cluster defines the cluster-number arithmetic shared by every
// other package: LCN (physical position on the volume) and VCN (virtual
// position within a file), per spec §3.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package cluster

// LCN is a 64-bit logical cluster index: a physical position on the volume.
type LCN int64

// VCN is a 64-bit virtual cluster index: a position within a file's linear
// address space.
type VCN int64

// VirtualLCN is the reserved sentinel marking a fragment that occupies no
// physical clusters (a sparse or compressed hole).
const VirtualLCN LCN = -1

// IsVirtual reports whether lcn is the virtual-fragment sentinel.
func (l LCN) IsVirtual() bool { return l == VirtualLCN }

// Extent is a half-open range of LCNs, [Begin, End).
type Extent struct {
	Begin LCN
	End   LCN
}

func NewExtent(begin, end LCN) Extent { return Extent{Begin: begin, End: end} }

func (e Extent) Length() int64 { return int64(e.End - e.Begin) }

func (e Extent) Contains(lcn LCN) bool { return lcn >= e.Begin && lcn < e.End }

func (e Extent) IsZero() bool { return e.Begin == 0 && e.End == 0 }
