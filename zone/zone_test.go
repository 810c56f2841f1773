package zone

import (
	"testing"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
	"github.com/stretchr/testify/assert"
)

func TestComputeNoFreeSpaceReserveSumsPreferredZones(t *testing.T) {
	tree := item.New()
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 10, NextVCN: 5}}, Clusters: 5, IsDir: true})
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 50, NextVCN: 5}}, Clusters: 5})
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 90, NextVCN: 5}}, Clusters: 5, IsHog: true})

	info := &volume.Info{TotalClusters: 1000}
	b := Compute(tree, info, 0)

	assert.Equal(t, cluster.LCN(5), b.ZoneEnd[0])
	assert.Equal(t, cluster.LCN(10), b.ZoneEnd[1])
	assert.Equal(t, cluster.LCN(15), b.ZoneEnd[2])
}

func TestComputeAppliesFreeSpaceReserveToFirstTwoZonesOnly(t *testing.T) {
	tree := item.New()
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 10, NextVCN: 5}}, Clusters: 5, IsDir: true})

	info := &volume.Info{TotalClusters: 1000}
	b := Compute(tree, info, 10) // 10% of 1000 = 100

	assert.Equal(t, cluster.LCN(105), b.ZoneEnd[0])
	assert.Equal(t, cluster.LCN(205), b.ZoneEnd[1])
	assert.Equal(t, cluster.LCN(205), b.ZoneEnd[2])
}

func TestComputeConvergesWithinMaxIterations(t *testing.T) {
	tree := item.New()
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 500, NextVCN: 5}}, Clusters: 5, IsUnmovable: true})

	info := &volume.Info{TotalClusters: 1000}
	b := Compute(tree, info, 0)
	assert.LessOrEqual(t, b.Iterations, MaxIterations)
}

func TestZoneOf(t *testing.T) {
	b := Boundaries{ZoneEnd: [3]cluster.LCN{10, 20, 30}}
	assert.Equal(t, item.ZoneDirectories, b.ZoneOf(5))
	assert.Equal(t, item.ZoneRegular, b.ZoneOf(15))
	assert.Equal(t, item.ZoneSpaceHogs, b.ZoneOf(25))
	assert.Equal(t, item.ZoneSpaceHogs, b.ZoneOf(1000))
}
