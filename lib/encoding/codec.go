package encoding

import "fmt"

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Codec converts values of type T to and from their stored byte form.
// Implementations must be pure: Decode(Encode(v)) == v for every v accepted by Encode,
// and malformed input must produce a *DecodeError, never a panic.
type Codec[T any] interface {
	// Encode serializes v. Failures are reported as *EncodeError.
	Encode(v T) ([]byte, error)
	// Decode deserializes data. Failures are reported as *DecodeError.
	Decode(data []byte) (T, error)
	// Name returns the codec identifier used in errors and logs.
	Name() string
}

// --------------------------------------------------------------------------
// Error Types
// --------------------------------------------------------------------------

// EncodeError is returned when a codec cannot serialize a value.
type EncodeError struct {
	Codec string // Name of the codec that failed
	Err   error  // Underlying error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding: %s encode failed: %v", e.Codec, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when stored bytes cannot be deserialized.
type DecodeError struct {
	Codec string // Name of the codec that failed
	Err   error  // Underlying error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("encoding: %s decode failed: %v", e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
