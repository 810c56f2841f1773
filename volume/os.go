package volume

import "github.com/jkdefrag/godefrag/cluster"

// ItemHandle is an opaque OS-level handle to an open file or directory,
// analogous to the Windows HANDLE returned by CreateFile in the source this
// engine replaces. Out of scope per spec §1/§6: this package only defines
// the shape the real implementation (not included here) must have.
type ItemHandle interface{}

// BitmapFragment is one fixed-size window of the volume's allocation
// bitmap, as returned by the OS "get volume bitmap" call (spec §4.1).
type BitmapFragment struct {
	StartLCN     cluster.LCN
	ClusterCount int64 // clusters actually covered by Bits, counted from StartLCN
	Bits         []byte
}

// InUse reports the allocation state of lcn, which must fall inside
// [StartLCN, StartLCN+ClusterCount).
func (f *BitmapFragment) InUse(lcn cluster.LCN) bool {
	rel := int64(lcn - f.StartLCN)
	idx := rel / 8
	bit := uint(rel % 8)
	return f.Bits[idx]&(1<<bit) != 0
}

// RetrievedExtent is one fragment as reported by the OS "get retrieval
// pointers" call (spec §4.4), before it is attached to an item.Fragment.
type RetrievedExtent struct {
	LCN     cluster.LCN
	NextVCN cluster.VCN
}

// OSHandle abstracts every blocking OS primitive the engine needs (spec §5
// "the only blocking calls are: OS cluster-bitmap read, OS extent-map read,
// OS cluster move, file open/close"). The real Windows implementation
// (FSCTL_GET_VOLUME_BITMAP / FSCTL_GET_RETRIEVAL_POINTERS /
// FSCTL_MOVE_FILE) is an out-of-scope collaborator per spec §1; this
// interface is what volume, analyzer and mover code against, and what
// MockOSHandle (os_mock.go) implements for tests.
type OSHandle interface {
	// ReadBitmapFragment returns the bitmap window starting at startLCN.
	ReadBitmapFragment(startLCN cluster.LCN) (BitmapFragment, error)

	// OpenItem opens the item at path for a move/retrieval-pointers call.
	OpenItem(path string) (ItemHandle, error)
	// CloseItem releases a handle obtained from OpenItem. Always called on
	// every exit path, including cancellation and errors (spec §5 "handle
	// hygiene").
	CloseItem(h ItemHandle) error

	// GetRetrievalPointers returns up to a bounded number of extents
	// starting at startVCN, and whether more data remains (the OS
	// ERROR_MORE_DATA convention, spec §4.4).
	GetRetrievalPointers(h ItemHandle, startVCN cluster.VCN) (extents []RetrievedExtent, more bool, err error)

	// MoveFile relocates clusterCount virtual clusters starting at startVCN
	// to begin at targetLCN.
	MoveFile(h ItemHandle, startVCN cluster.VCN, clusterCount int64, targetLCN cluster.LCN) error
}
