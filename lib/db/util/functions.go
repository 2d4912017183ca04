package util

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// GenerateSeed returns a random seed for the shard hash of an engine.
// The seed differs per database, so the key distribution cannot be predicted from outside.
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// UintKey is the 64 bit hash of a key
type UintKey uint64

// FNV-1a parameters
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// HashString hashes the bytes of s with seeded FNV-1a. Byte keys are hashed as string(key),
// which does not copy when used as a call argument.
//
// The same function maps replica names (e.g. "node-1") to raft replica ids with seed 0,
// so every node derives the same id from the same name.
func HashString(s string, seed uint64) UintKey {
	hash := uint64(fnvOffset64) ^ seed
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= fnvPrime64
	}
	return UintKey(hash)
}
