package wl

import "deedles.dev/wlshell/wire"

const (
	shmPoolInterface = "wl_shm_pool"

	shmPoolCreateBuffer = 0
	shmPoolDestroy      = 1
	shmPoolResize       = 2
)

type ShmPool struct {
	Proxy
}

func (pool *ShmPool) Interface() string {
	return shmPoolInterface
}

func (pool *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: shmPoolInterface, Type: "event", Op: msg.Op()}
}

func (pool *ShmPool) CreateBuffer(offset, width, height, stride int32, format ShmFormat) *Buffer {
	var buf Buffer
	pool.display.AddObject(&buf)

	msg := wire.NewMessage(pool, shmPoolCreateBuffer, "create_buffer")
	msg.WriteObject(&buf)
	msg.WriteInt(offset)
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(stride)
	msg.WriteUint(uint32(format))
	pool.Enqueue(msg)

	return &buf
}

// Resize grows the pool. Pools can not shrink.
func (pool *ShmPool) Resize(size int32) {
	msg := wire.NewMessage(pool, shmPoolResize, "resize")
	msg.WriteInt(size)
	pool.Enqueue(msg)
}

func (pool *ShmPool) Destroy() {
	pool.Enqueue(wire.NewMessage(pool, shmPoolDestroy, "destroy"))
	pool.MarkDestroyed()
}
