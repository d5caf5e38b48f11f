// Package fnv implements the FNV-1a 64-bit hash with an 8-byte unrolled
// main loop. The batch indexer precomputes these hashes at parse time so
// lookups never re-hash, and stores the lower 32 bits in each table slot
// for quick rejection.
package fnv

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// Hash64 returns the FNV-1a 64-bit hash of b.
func Hash64(b []byte) uint64 {
	h := uint64(offset64)
	for len(b) >= 8 {
		h = (h ^ uint64(b[0])) * prime64
		h = (h ^ uint64(b[1])) * prime64
		h = (h ^ uint64(b[2])) * prime64
		h = (h ^ uint64(b[3])) * prime64
		h = (h ^ uint64(b[4])) * prime64
		h = (h ^ uint64(b[5])) * prime64
		h = (h ^ uint64(b[6])) * prime64
		h = (h ^ uint64(b[7])) * prime64
		b = b[8:]
	}
	for _, c := range b {
		h = (h ^ uint64(c)) * prime64
	}
	return h
}

// Hash64String is Hash64 for strings without an intermediate copy.
func Hash64String(s string) uint64 {
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h = (h ^ uint64(s[i])) * prime64
	}
	return h
}
