// WalkFallback implements Parser by walking the directory tree directly
// instead of reading filesystem metadata structures, for the
// cos.ErrUnsupportedFilesystem path (spec §6): any item this walk can see
// still has an OS-assigned cluster layout, so fragment data still comes from
// the same OSHandle.GetRetrievalPointers primitive the fast path uses.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/jkdefrag/godefrag/analyzer"
	"github.com/jkdefrag/godefrag/cmn/cos"
	"github.com/jkdefrag/godefrag/internal/xlog"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/volume"
)

// errThreshold halts the walk once this many per-file errors accumulate,
// matching the teacher's fs.Walk halting convention.
const errThreshold = 1000

// WalkFallback is a Parser that derives the item tree from a plain
// filesystem walk, used when the volume's filesystem type does not have a
// fast-path parser (spec §4.8 step 1: analyze on unsupported filesystems
// falls back here instead of aborting the whole volume).
type WalkFallback struct {
	OS   volume.OSHandle
	Info *volume.Info
}

func NewWalkFallback(os volume.OSHandle, info *volume.Info) *WalkFallback {
	return &WalkFallback{OS: os, Info: info}
}

// interface guard
var _ Parser = (*WalkFallback)(nil)

func (w *WalkFallback) Parse(volumePath string, tree *item.Tree) (*volume.Info, error) {
	var errCount int

	err := godirwalk.Walk(volumePath, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == volumePath {
				return nil
			}
			it := w.buildItem(path, de)
			if it != nil {
				tree.Insert(it)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			errCount++
			xlog.Warningf("walkfallback: %s: %v", path, err)
			if errCount > errThreshold {
				return godirwalk.Halt
			}
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, &cos.ErrVolumeOpenFailed{Path: volumePath, Err: errors.Wrapf(err, "walk %s", volumePath)}
	}
	return w.Info, nil
}

func (w *WalkFallback) buildItem(path string, de *godirwalk.Dirent) *item.Item {
	fi, err := os.Lstat(path)
	if err != nil {
		xlog.Warningf("walkfallback: lstat %s: %v", path, err)
		return nil
	}

	it := &item.Item{
		LongName: filepath.Base(path),
		LongPath: path,
		Bytes:    fi.Size(),
		IsDir:    de.IsDir(),
	}
	it.IsUnmovable = isHardcodedUnmovable(path)

	if de.IsDir() {
		return it
	}

	h, err := w.OS.OpenItem(path)
	if err != nil {
		xlog.Warningf("walkfallback: open %s: %v", path, err)
		it.IsUnmovable = true
		return it
	}
	defer w.OS.CloseItem(h)

	if err := analyzer.GetFragments(w.OS, it, h); err != nil {
		xlog.Warningf("walkfallback: retrieval pointers for %s: %v", path, err)
		it.IsUnmovable = true
	}
	return it
}

// isHardcodedUnmovable matches the fixed unmovable-item list (spec §4.8 step
// 1): hiberfil.sys, pagefile.sys, $MFT, $BadClus.
func isHardcodedUnmovable(path string) bool {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, `\hiberfil.sys`), strings.HasSuffix(lower, "/hiberfil.sys"):
		return true
	case strings.HasSuffix(lower, `\pagefile.sys`), strings.HasSuffix(lower, "/pagefile.sys"):
		return true
	case strings.HasSuffix(lower, "$mft"):
		return true
	case strings.HasSuffix(lower, "$badclus"):
		return true
	default:
		return false
	}
}
