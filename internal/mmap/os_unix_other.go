//go:build unix && !linux

package mmap

func populateFlag(bool) int { return 0 }

func osMapAnonHuge(size int) ([]byte, func([]byte) error, error) {
	// Huge pages are a Linux feature; plain anonymous mapping elsewhere.
	return osMapAnon(size)
}
