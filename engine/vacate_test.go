package engine

import (
	"testing"

	"github.com/jkdefrag/godefrag/reporter"
	"github.com/jkdefrag/godefrag/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVacateZeroClustersIsNoOp(t *testing.T) {
	e, os := newTestEngine(t, AnalyzeOnly)
	require.NoError(t, e.Run())

	before := os.Fragments("C:\\dir1\\b.txt")
	err := e.vacate(100, 0, 0)
	require.NoError(t, err)
	after := os.Fragments("C:\\dir1\\b.txt")

	assert.Equal(t, before, after, "vacate with clusters=0 must not move anything")
}

func TestVacateFailsWhenBlockerIsUnmovable(t *testing.T) {
	os := volume.NewMockOSHandle(1000)
	os.AddItem("C:\\sys.dat", []volume.RetrievedExtent{{LCN: 50, NextVCN: 10}})

	p := &fakeParser{
		os:    os,
		info:  volume.Info{Path: "C:\\", BytesPerCluster: 4096, TotalClusters: 1000, FSType: volume.FSNTFS},
		paths: []string{"C:\\sys.dat"},
		dirs:  map[string]bool{},
	}

	e := New(os, &volume.Info{Path: "C:\\", BytesPerCluster: 4096, TotalClusters: 1000, FSType: volume.FSNTFS}, p, reporter.NewLogReporter(), RunOptions{
		OptimizeMode: AnalyzeOnly,
		Speed:        100,
	})
	require.NoError(t, e.Run())

	it := e.tree.FindAtLCN(50)
	require.NotNil(t, it)
	it.IsUnmovable = true

	err := e.vacate(50, 10, 0)
	assert.Error(t, err)
}
