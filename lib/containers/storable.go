package containers

import (
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("containers")

// Storable is the contract shared by all containers.
//
//   - K is the type a stored key suffix decodes to (struct{} for an Item, MapKey for a Map)
//   - V is the type a stored value decodes to
//   - A is the accessor type returned when the container is bound to a store
//
// The set of containers is closed: Item and Map are the only implementations.
type Storable[K, V, A any] interface {
	// AccessImpl binds the container to s. s is already positioned at the
	// container's namespace (usually a *Branch).
	AccessImpl(s store.IStore) A
	// DecodeKey decodes a key suffix relative to the container's namespace.
	// Malformed input yields a *KeyDecodeError.
	DecodeKey(key []byte) (K, error)
	// DecodeValue decodes a stored value with the container's value codec.
	DecodeValue(value []byte) (V, error)
}
