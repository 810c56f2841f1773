package volume

import (
	"fmt"

	"github.com/jkdefrag/godefrag/cluster"
)

// interface guard
var _ OSHandle = (*MockOSHandle)(nil)

// run is a physical cluster range [LCN, LCN+Length) backing Length virtual
// clusters starting at VCN, the mock's internal (and simpler) fragment
// representation. It is converted to/from the cumulative-NextVCN
// RetrievedExtent shape at the OSHandle boundary.
type run struct {
	VCN    cluster.VCN
	LCN    cluster.LCN
	Length int64
}

// MockOSHandle is an in-memory stand-in for the real Windows OS
// collaborator, in the same spirit as the teacher's ios.IOStaterMock: a
// fully scriptable fake that lets the volume/mover/analyzer/engine test
// suites drive every code path without a real disk.
type MockOSHandle struct {
	TotalClusters int64
	InUseSet      map[cluster.LCN]bool

	items map[string][]run

	// FailMoves, when set, makes every MoveFile call return this error
	// instead of performing the move (used to exercise mover fallback).
	FailMoves error
	// SplitOnMove, when set for a path, makes the next N calls to MoveFile
	// for that path land the chunk as two non-adjacent runs instead of one,
	// simulating the OS splitting on a metadata boundary (used to exercise
	// the move_piecewise fallback path of spec §4.5).
	SplitOnMove map[string]int
}

type mockHandle struct {
	path string
}

func NewMockOSHandle(totalClusters int64) *MockOSHandle {
	return &MockOSHandle{
		TotalClusters: totalClusters,
		InUseSet:      map[cluster.LCN]bool{},
		items:         map[string][]run{},
		SplitOnMove:   map[string]int{},
	}
}

// AddItem registers an item at path with the given VCN-ordered fragments
// (same shape the real OS's retrieval-pointers call returns), marking their
// physical clusters in-use.
func (m *MockOSHandle) AddItem(path string, fragments []RetrievedExtent) {
	runs := fragmentsToRuns(fragments)
	m.items[path] = runs
	m.setUsed(runs, true)
}

func fragmentsToRuns(fragments []RetrievedExtent) []run {
	var out []run
	var prev cluster.VCN
	for _, f := range fragments {
		length := int64(f.NextVCN - prev)
		if !f.LCN.IsVirtual() {
			out = append(out, run{VCN: prev, LCN: f.LCN, Length: length})
		}
		prev = f.NextVCN
	}
	return out
}

func runsToFragments(runs []run, totalVCN cluster.VCN) []RetrievedExtent {
	out := make([]RetrievedExtent, 0, len(runs))
	for _, r := range runs {
		out = append(out, RetrievedExtent{LCN: r.LCN, NextVCN: r.VCN + cluster.VCN(r.Length)})
	}
	return out
}

func (m *MockOSHandle) setUsed(runs []run, used bool) {
	for _, r := range runs {
		for i := int64(0); i < r.Length; i++ {
			lcn := r.LCN + cluster.LCN(i)
			if used {
				m.InUseSet[lcn] = true
			} else {
				delete(m.InUseSet, lcn)
			}
		}
	}
}

func (m *MockOSHandle) ReadBitmapFragment(startLCN cluster.LCN) (BitmapFragment, error) {
	count := m.TotalClusters - int64(startLCN)
	if count > DefaultBitmapBufferBytes*8 {
		count = DefaultBitmapBufferBytes * 8
	}
	if count < 0 {
		count = 0
	}
	bits := make([]byte, (count+7)/8)
	for i := int64(0); i < count; i++ {
		lcn := startLCN + cluster.LCN(i)
		if m.InUseSet[lcn] {
			bits[i/8] |= 1 << uint(i%8)
		}
	}
	return BitmapFragment{StartLCN: startLCN, ClusterCount: count, Bits: bits}, nil
}

func (m *MockOSHandle) OpenItem(path string) (ItemHandle, error) {
	if _, ok := m.items[path]; !ok {
		return nil, fmt.Errorf("mock: no such item %q", path)
	}
	return &mockHandle{path: path}, nil
}

func (m *MockOSHandle) CloseItem(h ItemHandle) error {
	if h == nil {
		return fmt.Errorf("mock: nil handle")
	}
	return nil
}

func (m *MockOSHandle) GetRetrievalPointers(h ItemHandle, startVCN cluster.VCN) ([]RetrievedExtent, bool, error) {
	mh, ok := h.(*mockHandle)
	if !ok {
		return nil, false, fmt.Errorf("mock: bad handle")
	}
	runs := m.items[mh.path]
	var sel []run
	var maxVCN cluster.VCN
	for _, r := range runs {
		if r.VCN+cluster.VCN(r.Length) > startVCN {
			sel = append(sel, r)
		}
		if end := r.VCN + cluster.VCN(r.Length); end > maxVCN {
			maxVCN = end
		}
	}
	return runsToFragments(sel, maxVCN), false, nil
}

// MoveFile relocates [startVCN, startVCN+clusterCount) to targetLCN.
func (m *MockOSHandle) MoveFile(h ItemHandle, startVCN cluster.VCN, clusterCount int64, targetLCN cluster.LCN) error {
	if m.FailMoves != nil {
		return m.FailMoves
	}
	mh, ok := h.(*mockHandle)
	if !ok {
		return fmt.Errorf("mock: bad handle")
	}
	endVCN := startVCN + cluster.VCN(clusterCount)
	runs := m.items[mh.path]

	var (
		kept  []run
		freed []run
	)
	for _, r := range runs {
		rEnd := r.VCN + cluster.VCN(r.Length)
		if rEnd <= startVCN || r.VCN >= endVCN {
			kept = append(kept, r)
			continue
		}
		// the mover always issues chunk-aligned, whole-fragment requests
		// (spec §4.5 splits by chunk boundaries, not mid-fragment), so a
		// moved range always covers whole runs in this mock.
		freed = append(freed, r)
	}
	m.setUsed(freed, false)

	if n := m.SplitOnMove[mh.path]; n > 0 {
		half := clusterCount / 2
		if half == 0 {
			half = clusterCount
		}
		gap := cluster.LCN(1 << 20) // arbitrarily far away: guarantees non-adjacency
		r1 := run{VCN: startVCN, LCN: targetLCN, Length: half}
		r2 := run{VCN: startVCN + cluster.VCN(half), LCN: targetLCN + cluster.LCN(half) + gap, Length: clusterCount - half}
		kept = append(kept, r1)
		if r2.Length > 0 {
			kept = append(kept, r2)
		}
		m.setUsed([]run{r1, r2}, true)
		m.SplitOnMove[mh.path] = n - 1
	} else {
		r := run{VCN: startVCN, LCN: targetLCN, Length: clusterCount}
		kept = append(kept, r)
		m.setUsed([]run{r}, true)
	}

	sortRuns(kept)
	m.items[mh.path] = kept
	return nil
}

func sortRuns(runs []run) {
	for i := 1; i < len(runs); i++ {
		for j := i; j > 0 && runs[j].VCN < runs[j-1].VCN; j-- {
			runs[j], runs[j-1] = runs[j-1], runs[j]
		}
	}
}

// Fragments returns the current VCN-ordered fragment list for path (in the
// same cumulative-NextVCN shape the real OS returns), for test assertions.
func (m *MockOSHandle) Fragments(path string) []RetrievedExtent {
	runs := m.items[path]
	var maxVCN cluster.VCN
	for _, r := range runs {
		if end := r.VCN + cluster.VCN(r.Length); end > maxVCN {
			maxVCN = end
		}
	}
	return runsToFragments(runs, maxVCN)
}
