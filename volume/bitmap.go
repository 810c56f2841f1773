package volume

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jkdefrag/godefrag/bufpool"
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn/cos"
)

// DefaultBitmapBufferBytes is the tuning constant from spec §4.1: a 64 KiB
// buffer covers 524,288 clusters on a typical 4 KiB-cluster volume (8 bits
// per byte).
const DefaultBitmapBufferBytes = 64 * 1024

// BitmapCache lazily loads fixed-size bitmap fragments from the OS and
// answers per-cluster in_use queries (spec §4.1). It does not track
// dirtiness -- the bitmap is assumed to change under the engine's feet, so
// Invalidate forces the next query to re-read even if the requested LCN
// falls inside the currently cached window.
type BitmapCache struct {
	os   OSHandle
	pool *bufpool.Pool

	mu     sync.Mutex
	cur    BitmapFragment
	loaded bool
}

// NewBitmapCache returns a cache backed by os, using the default 64 KiB
// fragment size.
func NewBitmapCache(os OSHandle) *BitmapCache {
	return &BitmapCache{os: os, pool: bufpool.New(DefaultBitmapBufferBytes)}
}

// Invalidate drops the cached window so the next query re-reads from the
// OS, regardless of whether the requested LCN would otherwise be a hit.
func (c *BitmapCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// InUse answers whether lcn is allocated, re-reading the cached window from
// the OS on a miss (spec §4.1). Failure is returned as *cos.ErrBitmapReadFailed.
func (c *BitmapCache) InUse(lcn cluster.LCN) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoaded(lcn); err != nil {
		return false, err
	}
	return c.cur.InUse(lcn), nil
}

// ensureLoaded must be called with c.mu held.
func (c *BitmapCache) ensureLoaded(lcn cluster.LCN) error {
	if c.loaded && lcn >= c.cur.StartLCN && lcn < c.cur.StartLCN+cluster.LCN(c.cur.ClusterCount) {
		return nil
	}
	frag, err := c.os.ReadBitmapFragment(lcn)
	if err != nil {
		return &cos.ErrBitmapReadFailed{LCN: int64(lcn), Err: errors.Wrapf(err, "read bitmap fragment at lcn=%d", lcn)}
	}
	c.cur = frag
	c.loaded = true
	return nil
}

// Iterate walks [minLCN, maxLCN) calling cb for every cluster's allocation
// state, re-reading bitmap windows from the OS as needed. cb returning
// false stops the walk early. Used by the gap finder (spec §4.3).
func (c *BitmapCache) Iterate(minLCN, maxLCN cluster.LCN, cb func(lcn cluster.LCN, inUse bool) bool) error {
	for lcn := minLCN; lcn < maxLCN; lcn++ {
		inUse, err := c.InUse(lcn)
		if err != nil {
			return err
		}
		if !cb(lcn, inUse) {
			return nil
		}
	}
	return nil
}
