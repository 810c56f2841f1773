package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/jkdefrag/godefrag/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(items ...*item.Item) *item.Tree {
	tree := item.New()
	for _, it := range items {
		tree.Insert(it)
	}
	return tree
}

func TestSaveAndLoadRoundTrips(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snap.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	tree := buildTree(
		&item.Item{LongPath: `C:\a.txt`, Bytes: 100, Fragments: []item.Fragment{{LCN: 10, NextVCN: 5}}},
		&item.Item{LongPath: `C:\b.txt`, Bytes: 200, Fragments: []item.Fragment{{LCN: 50, NextVCN: 3}}},
	)
	for it := tree.Smallest(); it != nil; it = item.Next(it) {
		it.Clusters = it.SumClusters()
	}

	require.NoError(t, store.Save(`C:\`, tree))

	loaded, err := store.Load(`C:\`)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, int64(100), loaded[`C:\a.txt`].Bytes)
	assert.Equal(t, int64(10), loaded[`C:\a.txt`].LCN)
}

func TestDiffReportsNoChangesAfterIdenticalSave(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snap.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	tree := buildTree(&item.Item{LongPath: `C:\a.txt`, Bytes: 10, Fragments: []item.Fragment{{LCN: 1, NextVCN: 1}}})
	tree.Smallest().Clusters = tree.Smallest().SumClusters()

	require.NoError(t, store.Save(`C:\`, tree))

	changed, err := store.Diff(`C:\`, tree)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestDiffReportsMovedAndRemovedItems(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snap.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	before := buildTree(
		&item.Item{LongPath: `C:\a.txt`, Bytes: 10, Fragments: []item.Fragment{{LCN: 1, NextVCN: 1}}},
		&item.Item{LongPath: `C:\b.txt`, Bytes: 20, Fragments: []item.Fragment{{LCN: 5, NextVCN: 1}}},
	)
	for it := before.Smallest(); it != nil; it = item.Next(it) {
		it.Clusters = it.SumClusters()
	}
	require.NoError(t, store.Save(`C:\`, before))

	after := buildTree(
		&item.Item{LongPath: `C:\a.txt`, Bytes: 10, Fragments: []item.Fragment{{LCN: 99, NextVCN: 1}}},
	)
	after.Smallest().Clusters = after.Smallest().SumClusters()

	changed, err := store.Diff(`C:\`, after)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{`C:\a.txt`, `C:\b.txt`}, changed)
}

func TestSaveClearsStalePriorRecords(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snap.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	first := buildTree(&item.Item{LongPath: `C:\a.txt`}, &item.Item{LongPath: `C:\b.txt`})
	require.NoError(t, store.Save(`C:\`, first))

	second := buildTree(&item.Item{LongPath: `C:\a.txt`})
	require.NoError(t, store.Save(`C:\`, second))

	loaded, err := store.Load(`C:\`)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
