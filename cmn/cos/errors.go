// Package cos provides the engine's typed error kinds (spec §7): a tagged
// result style where every fallible operation returns a plain error, and
// callers that need to distinguish volume-level failures from item-level
// ones use errors.As against one of the kinds below.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
)

type (
	// ErrVolumeOpenFailed is fatal for the volume: the caller skips to the
	// next volume in a multi-volume run.
	ErrVolumeOpenFailed struct {
		Path string
		Err  error
	}
	// ErrBitmapReadFailed aborts the current phase; the run continues with
	// the next volume.
	ErrBitmapReadFailed struct {
		LCN int64
		Err error
	}
	// ErrExtentMapFailed marks the item unmovable; the run continues.
	ErrExtentMapFailed struct {
		Path string
		Err  error
	}
	// ErrMoveFailed is raised only after the mover's fallback (move_direct,
	// then move_piecewise) has also failed; the item is left in place and
	// marked unmovable.
	ErrMoveFailed struct {
		Path string
		Err  error
	}
	// ErrDiskFull means no gap could be found for a required placement.
	ErrDiskFull struct {
		NeedClusters int64
	}
	// ErrUnsupportedFilesystem causes analyze to fall back to a generic
	// directory walk (parser.WalkFallback).
	ErrUnsupportedFilesystem struct {
		FSType string
	}
)

func (e *ErrVolumeOpenFailed) Error() string {
	return fmt.Sprintf("open volume %s: %v", e.Path, e.Err)
}
func (e *ErrVolumeOpenFailed) Unwrap() error { return e.Err }

func (e *ErrBitmapReadFailed) Error() string {
	return fmt.Sprintf("read volume bitmap at lcn=%d: %v", e.LCN, e.Err)
}
func (e *ErrBitmapReadFailed) Unwrap() error { return e.Err }

func (e *ErrExtentMapFailed) Error() string {
	return fmt.Sprintf("read retrieval pointers for %s: %v", e.Path, e.Err)
}
func (e *ErrExtentMapFailed) Unwrap() error { return e.Err }

func (e *ErrMoveFailed) Error() string {
	return fmt.Sprintf("move %s: %v", e.Path, e.Err)
}
func (e *ErrMoveFailed) Unwrap() error { return e.Err }

func (e *ErrDiskFull) Error() string {
	return fmt.Sprintf("disk full: no gap for %d clusters", e.NeedClusters)
}

func (e *ErrUnsupportedFilesystem) Error() string {
	return fmt.Sprintf("unsupported filesystem: %s", e.FSType)
}

// IsVolumeLevel reports whether err is one of the kinds that must abort the
// current volume (as opposed to being isolated to a single item).
func IsVolumeLevel(err error) bool {
	var (
		openErr   *ErrVolumeOpenFailed
		bitmapErr *ErrBitmapReadFailed
	)
	return errors.As(err, &openErr) || errors.As(err, &bitmapErr)
}

// IsItemLevel reports whether err is isolated to a single item and should
// not abort the run.
func IsItemLevel(err error) bool {
	var (
		extentErr *ErrExtentMapFailed
		moveErr   *ErrMoveFailed
	)
	return errors.As(err, &extentErr) || errors.As(err, &moveErr)
}
