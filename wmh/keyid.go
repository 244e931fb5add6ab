package wmh

import "github.com/dgryski/go-farm"

// KeyID normalizes an arbitrary byte-string item key into the dense u64 id
// every engine operates on.
//
// Collisions between two distinct keys are possible (KeyID is a hash, not
// an injection); callers needing guaranteed-unique ids should assign them
// directly instead of deriving them from content.
func KeyID(key []byte) uint64 {
	return farm.Hash64(key)
}

// KeyIDString is a convenience wrapper over KeyID for string keys.
func KeyIDString(key string) uint64 {
	return KeyID([]byte(key))
}
