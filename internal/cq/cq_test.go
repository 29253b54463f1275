package cq

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestQueueBatches(t *testing.T) {
	q := New[int]()
	defer q.Stop()

	for i := 0; i < 5; i++ {
		if !q.Push(i) {
			t.Fatalf("push %v failed", i)
		}
	}

	var got []int
	timeout := time.After(time.Second)
	for len(got) < 5 {
		select {
		case batch := <-q.Get():
			if len(batch) == 0 {
				t.Fatal("received an empty batch")
			}
			got = append(got, batch...)
		case <-timeout:
			t.Fatalf("timed out with %v", got)
		}
	}

	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, got); diff != "" {
		t.Errorf("queue order (-want +got):\n%s", diff)
	}
}

func TestQueueStop(t *testing.T) {
	q := New[string]()
	q.Stop()
	q.Stop()

	if q.Push("late") {
		t.Error("push succeeded on a stopped queue")
	}
	select {
	case <-q.Done():
	default:
		t.Error("done channel not closed")
	}
}

func TestFlush(t *testing.T) {
	var calls []int
	errBoom := errors.New("boom")
	errs := Flush([]func() error{
		func() error { calls = append(calls, 1); return nil },
		func() error { calls = append(calls, 2); return errBoom },
		func() error { calls = append(calls, 3); return nil },
	})

	if diff := cmp.Diff([]int{1, 2, 3}, calls); diff != "" {
		t.Errorf("call order (-want +got):\n%s", diff)
	}
	if len(errs) != 1 || !errors.Is(errs[0], errBoom) {
		t.Errorf("errors: %v", errs)
	}
}
