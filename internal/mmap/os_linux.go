package mmap

import "golang.org/x/sys/unix"

func populateFlag(populate bool) int {
	if populate {
		return unix.MAP_POPULATE
	}
	return 0
}

func osMapAnonHuge(size int) ([]byte, func([]byte) error, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE

	// Explicit 2 MiB pages first.
	data, err := unix.Mmap(-1, 0, size, prot, unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_HUGETLB)
	if err == nil {
		return data, unix.Munmap, nil
	}

	// Transparent huge pages via advice.
	data, unmapFunc, err := osMapAnon(size)
	if err != nil {
		return nil, nil, err
	}
	_ = unix.Madvise(data, unix.MADV_HUGEPAGE)
	return data, unmapFunc, nil
}
