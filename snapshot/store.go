// Package snapshot persists a compact record of an item tree after Analyze,
// grounded on the teacher's dbdriver.BuntDriver (dbdriver/bunt.go): a
// buntdb-backed key/value store with jsoniter marshaling, scaled down to the
// one collection this engine needs. It exists for two SPEC_FULL.md
// supplemented uses: diffing two AnalyzeOnly runs for the idempotence
// property (spec §8), and the `-q` convenience mode that runs analyze only
// and reports drift against the last recorded run.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package snapshot

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"

	"github.com/jkdefrag/godefrag/item"
)

// autoShrinkSize matches the teacher's BuntDriver tuning: compact only once
// the on-disk file exceeds 1 MiB (dbdriver/bunt.go).
const autoShrinkSize = 1024 * 1024

var jsonCompat = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is the durable shape of one item, intentionally narrower than
// item.Item: only the fields the idempotence check and the `-q` drift
// report need (spec §8 "item trees" compare path, LCN, size and flags, not
// the full Fragment list).
type Record struct {
	Path        string `json:"path"`
	LCN         int64  `json:"lcn"`
	Clusters    int64  `json:"clusters"`
	Bytes       int64  `json:"bytes"`
	IsDir       bool   `json:"is_dir"`
	IsUnmovable bool   `json:"is_unmovable"`
	IsExcluded  bool   `json:"is_excluded"`
	IsHog       bool   `json:"is_hog"`
}

func toRecord(it *item.Item) Record {
	return Record{
		Path:        it.LongPath,
		LCN:         int64(it.LCN()),
		Clusters:    it.Clusters,
		Bytes:       it.Bytes,
		IsDir:       it.IsDir,
		IsUnmovable: it.IsUnmovable,
		IsExcluded:  it.IsExcluded,
		IsHog:       it.IsHog,
	}
}

// Store wraps one buntdb database file, one collection per volume path.
type Store struct {
	db *buntdb.DB
}

// Open creates or opens the snapshot database at path, matching the
// teacher's NewBuntDB + SyncPolicy/auto-shrink configuration.
func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot db %s", path)
	}
	db.SetConfig(buntdb.Config{
		SyncPolicy:           buntdb.EverySecond,
		AutoShrinkMinSize:    autoShrinkSize,
		AutoShrinkPercentage: 50,
	})
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func collectionKey(volumePath, itemPath string) string {
	return volumePath + "##" + itemPath
}

// Save replaces the stored snapshot for volumePath with the given tree,
// clearing every previously stored record for that volume first so a
// shrunk tree doesn't leave stale entries behind.
func (s *Store) Save(volumePath string, tree *item.Tree) error {
	if err := s.clear(volumePath); err != nil {
		return err
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		var saveErr error
		tree.InOrder(func(it *item.Item) bool {
			b, err := jsonCompat.Marshal(toRecord(it))
			if err != nil {
				saveErr = errors.Wrapf(err, "marshal record for %s", it.LongPath)
				return false
			}
			if _, _, err := tx.Set(collectionKey(volumePath, it.LongPath), string(b), nil); err != nil {
				saveErr = err
				return false
			}
			return true
		})
		return saveErr
	})
}

func (s *Store) clear(volumePath string) error {
	var keys []string
	err := s.db.View(func(tx *buntdb.Tx) error {
		prefix := volumePath + "##"
		tx.AscendKeys(prefix+"*", func(key, _ string) bool {
			keys = append(keys, key)
			return true
		})
		return nil
	})
	if err != nil || len(keys) == 0 {
		return err
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		for _, k := range keys {
			if _, err := tx.Delete(k); err != nil && err != buntdb.ErrNotFound {
				return err
			}
		}
		return nil
	})
}

// Load returns every record last saved for volumePath, keyed by item path.
func (s *Store) Load(volumePath string) (map[string]Record, error) {
	out := map[string]Record{}
	prefix := volumePath + "##"
	err := s.db.View(func(tx *buntdb.Tx) error {
		var viewErr error
		tx.AscendKeys(prefix+"*", func(key, value string) bool {
			var rec Record
			if err := jsonCompat.Unmarshal([]byte(value), &rec); err != nil {
				viewErr = errors.Wrapf(err, "unmarshal record at key %s", key)
				return false
			}
			out[rec.Path] = rec
			return true
		})
		return viewErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Diff compares tree against the last snapshot saved for volumePath,
// returning the paths that changed LCN, size or flags plus any path present
// in one side only. Used to verify spec §8's "running AnalyzeOnly twice
// produces byte-for-byte identical item trees" invariant, and to back the
// `-q` convenience mode's drift report.
func (s *Store) Diff(volumePath string, tree *item.Tree) ([]string, error) {
	prev, err := s.Load(volumePath)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var changed []string
	tree.InOrder(func(it *item.Item) bool {
		seen[it.LongPath] = true
		now := toRecord(it)
		if old, ok := prev[it.LongPath]; !ok || old != now {
			changed = append(changed, it.LongPath)
		}
		return true
	})
	for path := range prev {
		if !seen[path] {
			changed = append(changed, path)
		}
	}
	return changed, nil
}
