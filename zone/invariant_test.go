package zone

import (
	"testing"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
	"github.com/stretchr/testify/assert"
)

// TestComputeBoundariesAreMonotone checks spec §8's zone invariant as this
// package models it: the implicit zone-0 start is 0 and ZoneEnd is monotone
// non-decreasing. ZoneEnd[2] marks where claimed content ends, not the
// volume's total cluster count (see Boundaries' doc comment) -- unclaimed
// free space beyond it is not part of any zone.
func TestComputeBoundariesAreMonotone(t *testing.T) {
	tree := item.New()
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 5, NextVCN: 5}}, Clusters: 5, IsDir: true})
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 300, NextVCN: 5}}, Clusters: 5})
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 700, NextVCN: 5}}, Clusters: 5, IsHog: true})
	tree.Insert(&item.Item{Fragments: []item.Fragment{{LCN: 150, NextVCN: 20}}, Clusters: 20, IsUnmovable: true})

	info := &volume.Info{TotalClusters: 1000}
	b := Compute(tree, info, 5)

	assert.GreaterOrEqual(t, b.ZoneEnd[0], cluster.LCN(0))
	assert.LessOrEqual(t, b.ZoneEnd[0], b.ZoneEnd[1])
	assert.LessOrEqual(t, b.ZoneEnd[1], b.ZoneEnd[2])
	assert.LessOrEqual(t, b.ZoneEnd[2], info.TotalClusters, "claimed zones must not exceed the volume")
}
