package containers

import (
	"fmt"
	"iter"

	"github.com/ValentinKolb/tKV/lib/store"
)

// MapKey is the decoded key of a map entry: the map's own key plus the key
// within the inner container (struct{} when the values are Items).
type MapKey[K, IK any] struct {
	Key  K
	Rest IK
}

// --------------------------------------------------------------------------
// Map (container)
// --------------------------------------------------------------------------

// Map is a container mapping keys of type K to inner containers. Every inner
// container lives in its own branch at
//
//	prefix ++ [len(seg)] ++ seg
//
// where seg is the encoded key (at most 255 bytes). Maps nest: the inner container
// may be another Map, giving prefix ++ [len(s1)] ++ s1 ++ [len(s2)] ++ s2 ++ ...
//
// Iteration is in byte order of the stored keys. Because the length byte comes
// first, keys of different lengths do not come out in their natural order
// (e.g. "b" sorts before "aa").
type Map[K, IK, V, A any] struct {
	prefix []byte
	keys   KeyCodec[K]
	inner  Storable[IK, V, A]
}

// NewMap declares a Map stored under the single byte prefix.
func NewMap[K, IK, V, A any](prefix byte, keys KeyCodec[K], inner Storable[IK, V, A]) *Map[K, IK, V, A] {
	return NewMapAt([]byte{prefix}, keys, inner)
}

// NewMapAt declares a Map stored under a multi byte prefix.
func NewMapAt[K, IK, V, A any](prefix []byte, keys KeyCodec[K], inner Storable[IK, V, A]) *Map[K, IK, V, A] {
	return &Map[K, IK, V, A]{prefix: concat(prefix, nil), keys: keys, inner: inner}
}

// MapValue declares a Map used as the value of another Map.
func MapValue[K, IK, V, A any](keys KeyCodec[K], inner Storable[IK, V, A]) Storable[MapKey[K, IK], V, *MapAccess[K, IK, V, A]] {
	return &Map[K, IK, V, A]{keys: keys, inner: inner}
}

// Access binds the map to s at the map's prefix.
func (m *Map[K, IK, V, A]) Access(s store.IStore) *MapAccess[K, IK, V, A] {
	return m.AccessImpl(NewBranch(s, m.prefix))
}

func (m *Map[K, IK, V, A]) AccessImpl(s store.IStore) *MapAccess[K, IK, V, A] {
	return &MapAccess[K, IK, V, A]{m: m, storage: s}
}

// DecodeKey splits a key suffix into the map's key segment and the remainder,
// which is decoded by the inner container. All bounds are checked, malformed
// input yields a *KeyDecodeError.
func (m *Map[K, IK, V, A]) DecodeKey(key []byte) (MapKey[K, IK], error) {
	var decoded MapKey[K, IK]

	if len(key) == 0 {
		return decoded, &KeyDecodeError{Reason: "missing length byte", Key: concat(key, nil)}
	}

	n := int(key[0])
	if len(key)-1 < n {
		return decoded, &KeyDecodeError{
			Reason: fmt.Sprintf("truncated segment: length byte %d, %d bytes remain", n, len(key)-1),
			Key:    concat(key, nil),
		}
	}

	k, err := m.keys.FromBytes(key[1 : 1+n])
	if err != nil {
		return decoded, &KeyDecodeError{Reason: "invalid key segment", Key: concat(key, nil), Err: err}
	}

	rest, err := m.inner.DecodeKey(key[1+n:])
	if err != nil {
		return decoded, &KeyDecodeError{Reason: "invalid inner key", Key: concat(key, nil), Err: err}
	}

	decoded.Key, decoded.Rest = k, rest
	return decoded, nil
}

func (m *Map[K, IK, V, A]) DecodeValue(value []byte) (V, error) {
	return m.inner.DecodeValue(value)
}

// --------------------------------------------------------------------------
// MapAccess (accessor)
// --------------------------------------------------------------------------

// MapAccess gives access to the entries of a Map bound to a store.
type MapAccess[K, IK, V, A any] struct {
	m       *Map[K, IK, V, A]
	storage store.IStore
}

// Get returns the accessor of the inner container stored under key.
// It fails only if the key cannot be encoded (see KeyEncodeError).
func (a *MapAccess[K, IK, V, A]) Get(key K) (A, error) {
	seg, err := encodeSegment(a.m.keys, key)
	if err != nil {
		var zero A
		return zero, err
	}
	return a.m.inner.AccessImpl(NewBranch(a.storage, seg)), nil
}

// Entries lazily yields the decoded entries with start <= key < end, compared on
// the encoded segments. A nil bound is open on that side.
//
// Each call performs a new scan. Entries that fail to decode are yielded as
// *KeyValueDecodeError without ending the iteration.
func (a *MapAccess[K, IK, V, A]) Entries(start, end *K) iter.Seq2[Entry[MapKey[K, IK], V], error] {
	lo, err := a.bound(start)
	if err == nil {
		var hi []byte
		if hi, err = a.bound(end); err == nil {
			return decodeEntries(NewBranch(a.storage, nil).Pairs(lo, hi), a.m.DecodeKey, a.m.DecodeValue)
		}
	}
	return func(yield func(Entry[MapKey[K, IK], V], error) bool) {
		yield(Entry[MapKey[K, IK], V]{}, err)
	}
}

func (a *MapAccess[K, IK, V, A]) bound(k *K) ([]byte, error) {
	if k == nil {
		return nil, nil
	}
	return encodeSegment(a.m.keys, *k)
}

// Iter yields all entries of the map.
func (a *MapAccess[K, IK, V, A]) Iter() iter.Seq2[Entry[MapKey[K, IK], V], error] {
	return a.Entries(nil, nil)
}

// Keys yields the decoded keys of all entries.
func (a *MapAccess[K, IK, V, A]) Keys() iter.Seq2[MapKey[K, IK], error] {
	return func(yield func(MapKey[K, IK], error) bool) {
		for entry, err := range a.Iter() {
			if !yield(entry.Key, err) {
				return
			}
		}
	}
}

// Values yields the decoded values of all entries.
func (a *MapAccess[K, IK, V, A]) Values() iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		for entry, err := range a.Iter() {
			if !yield(entry.Value, err) {
				return
			}
		}
	}
}
