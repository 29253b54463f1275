// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Create creates an anonymous shared memory file.
func Create() (*os.File, error) {
	fd, err := unix.MemfdCreate("wlshell-buffer", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		return os.NewFile(uintptr(fd), "wlshell-buffer"), nil
	}

	// Fall back to an unlinked file in /dev/shm.
	path := fmt.Sprintf("/dev/shm/wlshell-%v-%v", os.Getpid(), nextName())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	return file, os.Remove(path)
}

var names atomic.Uint64

func nextName() uint64 {
	return names.Add(1)
}

type Mmap []byte

// MapShared maps size bytes of file into memory with MAP_SHARED.
func MapShared(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}
