package analyzer

import (
	"testing"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFragmentsReplacesItemFragments(t *testing.T) {
	os := volume.NewMockOSHandle(1000)
	os.AddItem("a", []volume.RetrievedExtent{{LCN: 100, NextVCN: 10}, {LCN: 300, NextVCN: 20}})
	h, err := os.OpenItem("a")
	require.NoError(t, err)

	it := &item.Item{LongPath: "a"}
	require.NoError(t, GetFragments(os, it, h))

	require.Len(t, it.Fragments, 2)
	assert.Equal(t, cluster.LCN(100), it.Fragments[0].LCN)
	assert.Equal(t, cluster.VCN(10), it.Fragments[0].NextVCN)
	assert.Equal(t, cluster.LCN(300), it.Fragments[1].LCN)
	assert.Equal(t, cluster.VCN(20), it.Fragments[1].NextVCN)
	assert.Equal(t, int64(20), it.Clusters)
}

func TestIsFragmentedSingleFragmentNeverFragmented(t *testing.T) {
	it := &item.Item{Fragments: []item.Fragment{{LCN: 100, NextVCN: 50}}}
	assert.False(t, IsFragmented(it, 0, 50))
}

func TestIsFragmentedTwoAlignedFragmentsNotFragmented(t *testing.T) {
	// fragment 0: VCN [0,10) at LCN 100; fragment 1: VCN [10,20) at LCN 110
	// (contiguous physically, so the VCN boundary at 10 is not real fragmentation)
	it := &item.Item{Fragments: []item.Fragment{
		{LCN: 100, NextVCN: 10},
		{LCN: 110, NextVCN: 20},
	}}
	assert.False(t, IsFragmented(it, 0, 20))
}

func TestIsFragmentedTwoDisjointFragmentsIsFragmented(t *testing.T) {
	it := &item.Item{Fragments: []item.Fragment{
		{LCN: 100, NextVCN: 10},
		{LCN: 300, NextVCN: 20},
	}}
	assert.True(t, IsFragmented(it, 0, 20))
}

func TestIsFragmentedBoundaryOutsideRangeIgnored(t *testing.T) {
	it := &item.Item{Fragments: []item.Fragment{
		{LCN: 100, NextVCN: 10},
		{LCN: 300, NextVCN: 20},
	}}
	// querying only within the first fragment's range never crosses the
	// VCN=10 boundary
	assert.False(t, IsFragmented(it, 0, 5))
}

// infiniteHandle is a volume.ItemHandle stand-in paired with infiniteOS
// below, used only to exercise the MaxRetrievalCalls guard.
type infiniteHandle struct{}

// infiniteOS always reports "more data" with one fragment, to exercise the
// MaxRetrievalCalls guard.
type infiniteOS struct{ volume.OSHandle }

func (infiniteOS) GetRetrievalPointers(h volume.ItemHandle, startVCN cluster.VCN) ([]volume.RetrievedExtent, bool, error) {
	return []volume.RetrievedExtent{{LCN: cluster.LCN(startVCN), NextVCN: startVCN + 1}}, true, nil
}

func TestGetFragmentsCapEnforced(t *testing.T) {
	it := &item.Item{LongPath: "huge"}
	err := GetFragments(infiniteOS{}, it, &infiniteHandle{})
	require.Error(t, err)
}
