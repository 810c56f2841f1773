// Package bufpool provides a fixed-size byte-buffer pool, a scaled-down
// descendant of the teacher's memsys slab allocator (memsys/mmsa.go). The
// teacher's MMSA manages a whole ring of slab sizes for an object-storage
// I/O path; the bitmap cache only ever needs one buffer size (spec §4.1's
// tuning constant), so this package keeps memsys's sync.Pool-backed
// alloc/free idiom but drops the multi-slab ring, SGL chaining and
// memory-pressure tuning that don't apply here.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package bufpool

import "sync"

// Pool hands out fixed-size byte slices and recycles them on Free, the same
// buffer-reuse idiom as memsys.Slab.Alloc/Slab.Free.
type Pool struct {
	size int
	pool sync.Pool
}

// New returns a Pool of buffers of exactly size bytes.
func New(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() interface{} {
		return make([]byte, p.size)
	}
	return p
}

func (p *Pool) Size() int { return p.size }

func (p *Pool) Alloc() []byte {
	buf := p.pool.Get().([]byte)
	return buf[:p.size]
}

func (p *Pool) Free(buf []byte) {
	if cap(buf) < p.size {
		return
	}
	p.pool.Put(buf[:p.size]) //nolint:staticcheck // reusing the backing array is the point
}
