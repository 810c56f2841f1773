package engine

import (
	"testing"

	"github.com/jkdefrag/godefrag/analyzer"
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/reporter"
	"github.com/jkdefrag/godefrag/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeParser populates a tree from a fixed list of (path, fragments, isDir)
// tuples already registered on a MockOSHandle, standing in for a real NTFS
// $MFT scan in these tests.
type fakeParser struct {
	os    *volume.MockOSHandle
	info  volume.Info
	paths []string
	dirs  map[string]bool
}

func (p *fakeParser) Parse(_ string, tree *item.Tree) (*volume.Info, error) {
	for _, path := range p.paths {
		it := &item.Item{LongPath: path, IsDir: p.dirs[path]}
		if !it.IsDir {
			h, err := p.os.OpenItem(path)
			if err != nil {
				return nil, err
			}
			if err := analyzer.GetFragments(p.os, it, h); err != nil {
				return nil, err
			}
			_ = p.os.CloseItem(h)
		}
		tree.Insert(it)
	}
	info := p.info
	return &info, nil
}

func newTestEngine(t *testing.T, mode OptimizeMode) (*Engine, *volume.MockOSHandle) {
	t.Helper()
	os := volume.NewMockOSHandle(1000)

	os.AddItem("C:\\dir1", nil)
	os.AddItem("C:\\dir1\\a.txt", []volume.RetrievedExtent{{LCN: 10, NextVCN: 15}})
	os.AddItem("C:\\dir1\\b.txt", []volume.RetrievedExtent{
		{LCN: 100, NextVCN: 5},
		{LCN: 200, NextVCN: 10},
	})
	os.AddItem("C:\\dir1\\c.txt", []volume.RetrievedExtent{{LCN: 50, NextVCN: 3}})

	initialInfo := volume.Info{
		Path:            "C:\\",
		BytesPerCluster: 4096,
		TotalClusters:   1000,
		FSType:          volume.FSNTFS,
	}
	p := &fakeParser{
		os:    os,
		info:  initialInfo,
		paths: []string{"C:\\dir1", "C:\\dir1\\a.txt", "C:\\dir1\\b.txt", "C:\\dir1\\c.txt"},
		dirs:  map[string]bool{"C:\\dir1": true},
	}

	e := New(os, &initialInfo, p, reporter.NewLogReporter(), RunOptions{
		OptimizeMode:     mode,
		Speed:            100,
		FreeSpacePercent: 0,
	})
	return e, os
}

func TestEngineRunAnalyzeOnlyLeavesItemsInPlace(t *testing.T) {
	e, os := newTestEngine(t, AnalyzeOnly)
	before := os.Fragments("C:\\dir1\\b.txt")

	err := e.Run()
	require.NoError(t, err)

	after := os.Fragments("C:\\dir1\\b.txt")
	assert.Equal(t, before, after)
	assert.Equal(t, StateStopped, e.Control().State())
}

func TestEngineRunDefragmentDefragmentsFragmentedItem(t *testing.T) {
	e, os := newTestEngine(t, AnalyzeFixup)
	err := e.Run()
	require.NoError(t, err)

	frags := os.Fragments("C:\\dir1\\b.txt")
	nonVirtual := 0
	for _, f := range frags {
		if !f.LCN.IsVirtual() {
			nonVirtual++
		}
	}
	assert.Equal(t, 1, nonVirtual, "fragmented item should be consolidated to one run")
}

func TestEngineRunFullFastOptCompletesWithoutError(t *testing.T) {
	e, _ := newTestEngine(t, AnalyzeFixupFastOpt)
	err := e.Run()
	require.NoError(t, err)
}

func TestEngineRunSortByNameCompletesWithoutError(t *testing.T) {
	e, _ := newTestEngine(t, SortByNameMode)
	err := e.Run()
	require.NoError(t, err)
}

func TestEngineRunHonorsCancellation(t *testing.T) {
	e, _ := newTestEngine(t, AnalyzeFixupFastOpt)
	e.Control().Stop(-1) // request stop before Run even starts its loops
	err := e.Run()
	require.Error(t, err)
	assert.Equal(t, StateStopped, e.Control().State())
}

func TestClassifyFlagsSpaceHogBySizeThreshold(t *testing.T) {
	e, _ := newTestEngine(t, AnalyzeOnly)
	it := &item.Item{LongPath: `C:\big.bin`, Bytes: spaceHogSizeThresholdBytes + 1}
	e.classify(it, 0)
	assert.True(t, it.IsHog)
}

func TestClassifyFlagsExcludedByMask(t *testing.T) {
	e, _ := newTestEngine(t, AnalyzeOnly)
	e.Opts.ExcludeMasks = []string{`*.tmp`}
	it := &item.Item{LongPath: `C:\scratch.tmp`}
	e.classify(it, 0)
	assert.True(t, it.IsExcluded)
}

func TestEngineRunIDIsStampedAndStable(t *testing.T) {
	e1, _ := newTestEngine(t, AnalyzeOnly)
	e2, _ := newTestEngine(t, AnalyzeOnly)
	assert.NotEmpty(t, e1.RunID())
	assert.NotEqual(t, e1.RunID(), e2.RunID())
	assert.Equal(t, e1.RunID(), e1.RunID())
}

func TestZoneRangeCoversWholeVolumeAcrossZones(t *testing.T) {
	e, _ := newTestEngine(t, AnalyzeOnly)
	e.boundaries.ZoneEnd = [3]cluster.LCN{100, 500, 1000}

	b0, e0 := e.zoneRange(item.ZoneDirectories)
	assert.Equal(t, cluster.LCN(0), b0)
	assert.Equal(t, cluster.LCN(100), e0)

	b1, e1 := e.zoneRange(item.ZoneRegular)
	assert.Equal(t, cluster.LCN(100), b1)
	assert.Equal(t, cluster.LCN(500), e1)

	b2, e2 := e.zoneRange(item.ZoneSpaceHogs)
	assert.Equal(t, cluster.LCN(500), b2)
	assert.Equal(t, cluster.LCN(1000), e2)
}
