// Package bloomfilter implements the probabilistic substrate shared by the
// TinyLFU insertion policy and the GDSF eviction policy: a deterministic
// hash-mixer, a plain bloom filter, and a counting bloom filter.
package bloomfilter

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// seed hashes an arbitrary comparable key down to a uint64 seed for the
// hash-mixer. Keys outside the supported shapes below should be converted
// to string before reaching the cache.
func seed[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return murmur3.Sum64([]byte(v))
	case []byte:
		return murmur3.Sum64(v)
	case [16]byte:
		return murmur3.Sum64(v[:])
	case [32]byte:
		return murmur3.Sum64(v[:])
	case [64]byte:
		return murmur3.Sum64(v[:])
	case uint8:
		return murmur3.Sum64(leBytes(uint64(v)))
	case uint16:
		return murmur3.Sum64(leBytes(uint64(v)))
	case uint32:
		return murmur3.Sum64(leBytes(uint64(v)))
	case uint64:
		return murmur3.Sum64(leBytes(v))
	case uint:
		return murmur3.Sum64(leBytes(uint64(v)))
	case uintptr:
		return murmur3.Sum64(leBytes(uint64(v)))
	case int8:
		return murmur3.Sum64(leBytes(uint64(uint8(v))))
	case int16:
		return murmur3.Sum64(leBytes(uint64(uint16(v))))
	case int32:
		return murmur3.Sum64(leBytes(uint64(uint32(v))))
	case int64:
		return murmur3.Sum64(leBytes(uint64(v)))
	case int:
		return murmur3.Sum64(leBytes(uint64(v)))
	case fmt.Stringer:
		return murmur3.Sum64([]byte(v.String()))
	default:
		panic(fmt.Sprintf("bloomfilter: unsupported key type %T; convert key to string or implement fmt.Stringer", k))
	}
}

func leBytes(u uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return b[:]
}
