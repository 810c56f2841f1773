// multivolume.go fans a run out across several volumes concurrently (spec
// §6: "absent path means every fixed, writable, local volume"), bounded by
// a semaphore, grounded on the teacher's dsort shard-creation fan-out
// (cmd/cli/commands/dsort.go: an errgroup.WithContext plus a
// concurrency-limiting semaphore), using the teacher's own DynSemaphore
// (cmn/sync.go) rather than reinventing the buffered-channel idiom inline.
// Each volume still runs its own phase sequence serially per spec §5 --
// concurrency here is only across volumes, never within one.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jkdefrag/godefrag/cmn"
)

// VolumeResult pairs one engine's outcome with the volume it ran against,
// for RunMany's caller to report per-volume success/failure.
type VolumeResult struct {
	Path string
	Err  error
}

// RunMany runs engines concurrently, at most concurrency at a time (0 or
// negative means unbounded), and returns one VolumeResult per engine in the
// order the engines were given. A Stop on one engine's own Control()
// cancels that volume's run independently; RunMany
// itself never aborts the whole fan-out because one volume failed, since a
// single bad volume must not block defragmenting the others.
func RunMany(ctx context.Context, engines []*Engine, concurrency int) []VolumeResult {
	results := make([]VolumeResult, len(engines))
	if len(engines) == 0 {
		return results
	}
	if concurrency <= 0 {
		concurrency = len(engines)
	}

	group, gctx := errgroup.WithContext(ctx)
	sem := cmn.NewDynSemaphore(concurrency)

	for i, e := range engines {
		i, e := i, e
		results[i].Path = e.Info.Path
		sem.Acquire()
		group.Go(func() error {
			defer sem.Release()
			stopOnCancel := make(chan struct{})
			defer close(stopOnCancel)
			go func() {
				select {
				case <-gctx.Done():
					e.Control().Stop(-1)
				case <-stopOnCancel:
				}
			}()
			results[i].Err = e.Run()
			return nil // one volume's error never aborts the others
		})
	}
	_ = group.Wait()
	return results
}
