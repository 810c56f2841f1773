package engine

import (
	"testing"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/reporter"
	"github.com/jkdefrag/godefrag/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefragmentRekeysTreeAfterMove guards against the tree going stale
// after a move: once a.txt is consolidated elsewhere, FindAtLCN at its new
// location must resolve via the BST descent itself, and a full ascending
// walk must still visit every item exactly once in LCN order.
func TestDefragmentRekeysTreeAfterMove(t *testing.T) {
	os := volume.NewMockOSHandle(1000)
	os.AddItem("C:\\a.txt", []volume.RetrievedExtent{
		{LCN: 100, NextVCN: 10},
		{LCN: 300, NextVCN: 20},
	})
	os.AddItem("C:\\b.txt", []volume.RetrievedExtent{{LCN: 600, NextVCN: 5}})

	info := volume.Info{Path: "C:\\", BytesPerCluster: 4096, TotalClusters: 1000, FSType: volume.FSNTFS}
	p := &fakeParser{
		os:    os,
		info:  info,
		paths: []string{"C:\\a.txt", "C:\\b.txt"},
		dirs:  map[string]bool{},
	}

	e := New(os, &info, p, reporter.NewLogReporter(), RunOptions{
		OptimizeMode: AnalyzeFixup,
		Speed:        100,
	})
	require.NoError(t, e.Run())

	order := snapshotOrder(e.tree)
	assert.Len(t, order, 2, "both items must still be reachable after the move re-keyed the tree")

	var prev cluster.LCN = -1
	seen := 0
	e.tree.InOrder(func(it *item.Item) bool {
		assert.GreaterOrEqual(t, it.LCN(), prev, "ascending walk must stay ordered by LCN after re-keying")
		prev = it.LCN()
		seen++
		return true
	})
	assert.Equal(t, 2, seen)

	it := e.tree.FindAtLCN(e.tree.Smallest().LCN())
	require.NotNil(t, it)
}
