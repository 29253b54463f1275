package shm

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestMapShared(t *testing.T) {
	file, err := Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer file.Close()

	const size = 4096
	if err := file.Truncate(size); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	a, err := MapShared(file, size, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		t.Fatalf("map a: %v", err)
	}
	defer a.Unmap()

	b, err := MapShared(file, size, unix.PROT_READ)
	if err != nil {
		t.Fatalf("map b: %v", err)
	}
	defer b.Unmap()

	a[0], a[size-1] = 0xAB, 0xCD
	if (b[0] != 0xAB) || (b[size-1] != 0xCD) {
		t.Errorf("writes through one mapping are not visible through another: %x %x", b[0], b[size-1])
	}
}
