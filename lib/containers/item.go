package containers

import (
	"errors"

	"github.com/ValentinKolb/tKV/lib/encoding"
	"github.com/ValentinKolb/tKV/lib/store"
)

// --------------------------------------------------------------------------
// Item (container)
// --------------------------------------------------------------------------

// Item is a container holding a single value of type T.
// The value is stored at the container's own prefix (the empty key suffix).
type Item[T any] struct {
	key   []byte
	codec encoding.Codec[T]
}

// NewItem declares an Item stored under the single byte key.
func NewItem[T any](key byte, codec encoding.Codec[T]) *Item[T] {
	return NewItemAt([]byte{key}, codec)
}

// NewItemAt declares an Item stored under a multi byte key.
func NewItemAt[T any](key []byte, codec encoding.Codec[T]) *Item[T] {
	return &Item[T]{key: concat(key, nil), codec: codec}
}

// ItemValue declares an Item used as the value of a Map. It has no key of its own,
// the map positions it.
func ItemValue[T any](codec encoding.Codec[T]) Storable[struct{}, T, *ItemAccess[T]] {
	return &Item[T]{codec: codec}
}

// Access binds the item to s at the item's key.
func (i *Item[T]) Access(s store.IStore) *ItemAccess[T] {
	return i.AccessImpl(NewBranch(s, i.key))
}

func (i *Item[T]) AccessImpl(s store.IStore) *ItemAccess[T] {
	return &ItemAccess[T]{storage: s, codec: i.codec}
}

// DecodeKey only accepts the empty suffix. Anything else belongs to a different
// container sharing the prefix and indicates a corrupted key space.
func (i *Item[T]) DecodeKey(key []byte) (struct{}, error) {
	if len(key) != 0 {
		return struct{}{}, &KeyDecodeError{
			Reason: "invalid key length, expected empty key",
			Key:    concat(key, nil),
		}
	}
	return struct{}{}, nil
}

func (i *Item[T]) DecodeValue(value []byte) (T, error) {
	return i.codec.Decode(value)
}

// --------------------------------------------------------------------------
// ItemAccess (accessor)
// --------------------------------------------------------------------------

// ItemAccess reads and writes the value of an Item.
//
// Thread-safety: ItemAccess adds no synchronization. Concurrent use is as safe as the
// underlying store, and Update is not atomic (see Update).
type ItemAccess[T any] struct {
	storage store.IStore
	codec   encoding.Codec[T]
}

// Get returns the stored value. ok is false if no value is stored.
// A stored value that fails to decode is reported with the codec's *encoding.DecodeError.
func (a *ItemAccess[T]) Get() (value T, ok bool, err error) {
	raw, ok, err := a.storage.Get(nil)
	if err != nil || !ok {
		return value, false, err
	}
	value, err = a.codec.Decode(raw)
	return value, true, err
}

// TryGet is like Get but reports a missing value as ErrEmpty.
func (a *ItemAccess[T]) TryGet() (T, error) {
	value, ok, err := a.Get()
	if err != nil {
		return value, err
	}
	if !ok {
		return value, ErrEmpty
	}
	return value, nil
}

// GetOr returns def if no value is stored.
func (a *ItemAccess[T]) GetOr(def T) (T, error) {
	value, ok, err := a.Get()
	if err != nil {
		return value, err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}

// Set encodes v and overwrites the stored value.
func (a *ItemAccess[T]) Set(v T) error {
	data, err := a.codec.Encode(v)
	if err != nil {
		return err
	}
	return a.storage.Set(nil, data)
}

// Update replaces the stored value with f(old, ok), where ok reports whether a
// value was stored. Failures are returned as *UpdateError.
//
// Update is a plain read followed by a write. It is not atomic: if two callers
// update the same item concurrently, one of the writes may be lost. Callers that
// need atomicity must serialize access themselves.
func (a *ItemAccess[T]) Update(f func(old T, ok bool) T) error {
	raw, ok, err := a.storage.Get(nil)
	if err != nil {
		return &UpdateError{Phase: UpdatePhaseStore, Err: err}
	}

	var old T
	if ok {
		if old, err = a.codec.Decode(raw); err != nil {
			return &UpdateError{Phase: UpdatePhaseDecode, Err: err}
		}
	}

	data, err := a.codec.Encode(f(old, ok))
	if err != nil {
		return &UpdateError{Phase: UpdatePhaseEncode, Err: err}
	}

	if err := a.storage.Set(nil, data); err != nil {
		return &UpdateError{Phase: UpdatePhaseStore, Err: err}
	}
	return nil
}

// Remove deletes the stored value. Removing a missing value is not an error.
func (a *ItemAccess[T]) Remove() error {
	return a.storage.Delete(nil)
}

// IsEmpty reports whether err is ErrEmpty.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrEmpty)
}
