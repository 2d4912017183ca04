package internal

import (
	"github.com/google/btree"
)

// indexDegree is the btree degree of the key index
const indexDegree = 32

// --------------------------------------------------------------------------
// Ordered key index (btree)
// --------------------------------------------------------------------------

// Index holds the set of keys of the database in ascending byte order.
// Go strings compare bytewise, so the string form of a key orders exactly like bytes.Compare.
//
// Thread-safety: Index is not safe for concurrent use, the caller must synchronize access.
type Index struct {
	tree *btree.BTreeG[string]
}

func lessKey(a, b string) bool { return a < b }

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{tree: btree.NewG(indexDegree, lessKey)}
}

// Insert adds key to the index. It returns false if the key was already present.
func (idx *Index) Insert(key string) bool {
	_, replaced := idx.tree.ReplaceOrInsert(key)
	return !replaced
}

// Delete removes key from the index. It returns false if the key was not present.
func (idx *Index) Delete(key string) bool {
	_, found := idx.tree.Delete(key)
	return found
}

// Seek returns the smallest key >= key (inclusive) or > key (exclusive).
func (idx *Index) Seek(key string, inclusive bool) (next string, ok bool) {
	idx.tree.AscendGreaterOrEqual(key, func(k string) bool {
		if !inclusive && k == key {
			return true
		}
		next, ok = k, true
		return false
	})
	return next, ok
}

// Contains reports whether key is present in the index.
func (idx *Index) Contains(key string) bool {
	return idx.tree.Has(key)
}

// Len returns the number of keys in the index.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// Degree returns the btree degree of the index.
func (idx *Index) Degree() int {
	return indexDegree
}

// Clear removes all keys.
func (idx *Index) Clear() {
	idx.tree.Clear(false)
}
