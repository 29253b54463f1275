package wl

import (
	"os"

	"deedles.dev/wlshell/wire"
)

const (
	shmInterface = "wl_shm"
	shmVersion   = 1

	shmCreatePool = 0

	shmEventFormat = 0
)

type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
)

type Shm struct {
	Proxy

	Format func(ShmFormat)
}

func IsShm(i Interface) bool {
	return i.Is(shmInterface, 1)
}

func BindShm(display *Display, name uint32, i Interface) *Shm {
	var shm Shm
	display.GetRegistry().Bind(name, shmInterface, i.Clamp(shmVersion), &shm)
	return &shm
}

func (shm *Shm) Interface() string {
	return shmInterface
}

func (shm *Shm) EventName(op uint16) string {
	if op == shmEventFormat {
		return "format"
	}
	return "unknown"
}

// CreatePool shares file with the compositor. The file may be closed
// by the caller once the request has been flushed.
func (shm *Shm) CreatePool(file *os.File, size int32) *ShmPool {
	var pool ShmPool
	shm.display.AddObject(&pool)

	msg := wire.NewMessage(shm, shmCreatePool, "create_pool")
	msg.WriteObject(&pool)
	msg.WriteFile(file)
	msg.WriteInt(size)
	shm.Enqueue(msg)

	return &pool
}

func (shm *Shm) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != shmEventFormat {
		return wire.UnknownOpError{Interface: shmInterface, Type: "event", Op: msg.Op()}
	}

	format := msg.ReadUint()
	if msg.Err() != nil {
		return msg.Err()
	}
	if shm.Format != nil {
		shm.Format(ShmFormat(format))
	}
	return nil
}
