package containers

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Sentinel Errors
// --------------------------------------------------------------------------

var (
	// ErrEmpty is returned by ItemAccess.TryGet when no value is stored.
	ErrEmpty = errors.New("containers: no value present")

	// ErrSegmentTooLong is wrapped by *KeyEncodeError when an encoded map key
	// does not fit the single length byte of the key layout.
	ErrSegmentTooLong = errors.New("containers: key segment longer than 255 bytes")
)

// --------------------------------------------------------------------------
// Key Errors
// --------------------------------------------------------------------------

// KeyDecodeError is returned when a stored key suffix does not match the layout
// of the container that is decoding it.
type KeyDecodeError struct {
	Reason string // What was wrong with the key
	Key    []byte // The offending key suffix
	Err    error  // Optional cause (segment codec or nested container)
}

func (e *KeyDecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("containers: invalid key %x: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("containers: invalid key %x: %s", e.Key, e.Reason)
}

func (e *KeyDecodeError) Unwrap() error {
	return e.Err
}

// KeyEncodeError is returned when a map key cannot be turned into a key segment.
type KeyEncodeError struct {
	Len int   // Length of the encoded segment, if encoding got that far
	Err error // ErrSegmentTooLong or the key codec's error
}

func (e *KeyEncodeError) Error() string {
	if errors.Is(e.Err, ErrSegmentTooLong) {
		return fmt.Sprintf("containers: cannot encode key segment of %d bytes: %v", e.Len, e.Err)
	}
	return fmt.Sprintf("containers: cannot encode key segment: %v", e.Err)
}

func (e *KeyEncodeError) Unwrap() error {
	return e.Err
}

// --------------------------------------------------------------------------
// Iteration Errors
// --------------------------------------------------------------------------

// DecodeKind tells which half of a stored pair failed to decode.
type DecodeKind int

const (
	KindKey DecodeKind = iota
	KindValue
)

func (k DecodeKind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// KeyValueDecodeError is yielded by container iterators for a single pair that
// could not be decoded. The iteration itself continues with the next pair.
type KeyValueDecodeError struct {
	Kind   DecodeKind // Whether the key or the value failed
	RawKey []byte     // Key of the pair, relative to the iterated container
	Err    error      // *KeyDecodeError for KindKey, the codec's *encoding.DecodeError for KindValue
}

func (e *KeyValueDecodeError) Error() string {
	return fmt.Sprintf("containers: cannot decode %s of entry %x: %v", e.Kind, e.RawKey, e.Err)
}

func (e *KeyValueDecodeError) Unwrap() error {
	return e.Err
}

// --------------------------------------------------------------------------
// Update Errors
// --------------------------------------------------------------------------

// UpdatePhase names the step of a read-modify-write that failed.
type UpdatePhase int

const (
	UpdatePhaseDecode UpdatePhase = iota // decoding the current value
	UpdatePhaseEncode                    // encoding the new value
	UpdatePhaseStore                     // reading from or writing to the store
)

func (p UpdatePhase) String() string {
	switch p {
	case UpdatePhaseDecode:
		return "decode"
	case UpdatePhaseEncode:
		return "encode"
	case UpdatePhaseStore:
		return "store"
	default:
		return "unknown"
	}
}

// UpdateError is returned by ItemAccess.Update.
type UpdateError struct {
	Phase UpdatePhase
	Err   error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("containers: update failed during %s: %v", e.Phase, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
