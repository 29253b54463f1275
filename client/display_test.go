package wl

import (
	"net"
	"os"
	"testing"
	"time"

	"deedles.dev/wlshell/wire"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
)

// remote stands in for an object on the compositor's side of the
// connection.
type remote uint32

func (r remote) ID() uint32 { return uint32(r) }
func (r remote) SetID(uint32) {}
func (r remote) Interface() string { return "remote" }
func (r remote) Dispatch(*wire.MessageBuffer) error { return nil }
func (r remote) Delete() {}

func connPair(t *testing.T) (*wire.Conn, *wire.Conn) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}

	var conns [2]*wire.Conn
	for i, fd := range fds {
		file := os.NewFile(uintptr(fd), "socketpair")
		c, err := net.FileConn(file)
		file.Close()
		if err != nil {
			t.Fatalf("file conn: %v", err)
		}
		conns[i] = wire.NewConn(c.(*net.UnixConn))
	}
	return conns[0], conns[1]
}

// fakeCompositor answers get_registry with a fixed set of globals and
// answers sync immediately.
func fakeCompositor(t *testing.T, c *wire.Conn, globals map[uint32]Interface) {
	defer c.Close()

	var registry uint32
	for {
		msg, err := wire.ReadMessage(c)
		if err != nil {
			return
		}
		if msg.Sender() != 1 {
			continue
		}

		switch msg.Op() {
		case displayGetRegistry:
			registry = msg.ReadObject()
			for name, inter := range globals {
				ev := wire.NewMessage(remote(registry), registryEventGlobal, "global")
				ev.WriteUint(name)
				ev.WriteString(inter.Name)
				ev.WriteUint(inter.Version)
				if err := ev.Build(c); err != nil {
					t.Errorf("send global: %v", err)
					return
				}
			}

		case displaySync:
			callback := msg.ReadObject()
			done := wire.NewMessage(remote(callback), callbackEventDone, "done")
			done.WriteUint(1)
			del := wire.NewMessage(remote(1), displayEventDeleteID, "delete_id")
			del.WriteUint(callback)
			if err := done.Build(c); err != nil {
				t.Errorf("send done: %v", err)
				return
			}
			if err := del.Build(c); err != nil {
				t.Errorf("send delete_id: %v", err)
				return
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	client, server := connPair(t)

	globals := map[uint32]Interface{
		1: {Name: "wl_compositor", Version: 6},
		2: {Name: "wl_output", Version: 4},
		7: {Name: "zwlr_layer_shell_v1", Version: 4},
	}
	go fakeCompositor(t, server, globals)

	display := ConnectDisplay(client)
	defer display.Close()

	var announced []uint32
	registry := display.GetRegistry()
	registry.Global = func(name uint32, inter Interface) {
		announced = append(announced, name)
	}

	errc := make(chan error, 1)
	go func() { errc <- display.RoundTrip() }()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("round trip: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("round trip timed out")
	}

	if diff := cmp.Diff(globals, registry.Globals()); diff != "" {
		t.Errorf("globals (-want +got):\n%s", diff)
	}
	if len(announced) != len(globals) {
		t.Errorf("announced %v globals, want %v", len(announced), len(globals))
	}
}

func TestDeleteID(t *testing.T) {
	client, server := connPair(t)
	go fakeCompositor(t, server, nil)

	display := ConnectDisplay(client)
	defer display.Close()

	var fired bool
	callback := display.Sync(func(uint32) { fired = true })
	id := callback.ID()

	if err := display.RoundTrip(); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !fired {
		t.Error("sync callback did not fire")
	}
	// The round trip's own callback is deleted after it fires, so the
	// first one must have been deleted too.
	if obj := display.GetObject(id); obj != nil {
		t.Errorf("callback %v still registered after delete_id", id)
	}
	if !callback.deleted {
		t.Error("callback was not notified of deletion")
	}
}

func TestInterfaceClamp(t *testing.T) {
	i := Interface{Name: "wl_seat", Version: 9}
	if !IsSeat(i) {
		t.Error("IsSeat rejected wl_seat")
	}
	if v := i.Clamp(seatVersion); v != seatVersion {
		t.Errorf("clamp: got %v, want %v", v, seatVersion)
	}
	if v := (Interface{Name: "wl_seat", Version: 2}).Clamp(seatVersion); v != 2 {
		t.Errorf("clamp: got %v, want 2", v)
	}
}
