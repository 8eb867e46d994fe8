package vfskit

import (
	"testing"
	"time"
)

func TestDispatcherFIFO(t *testing.T) {
	d := NewEventDispatcher(0)
	defer d.Close()

	const n = 50
	got := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		d.Dispatch(func() { got <- i })
	}

	for want := 0; want < n; want++ {
		select {
		case v := <-got:
			if v != want {
				t.Fatalf("out of order: got %d, want %d", v, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for item %d", want)
		}
	}
}

func TestDispatcherCloseDiscardsQueued(t *testing.T) {
	d := NewEventDispatcher(64)

	block := make(chan struct{})
	started := make(chan struct{})
	d.Dispatch(func() {
		close(started)
		<-block
	})
	<-started
	ran := make(chan struct{}, 8)
	for i := 0; i < 8; i++ {
		d.Dispatch(func() { ran <- struct{}{} })
	}

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()
	// release the blocker only once Close has signalled the worker
	<-d.done
	close(block)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not terminate the worker in bounded time")
	}
	// nothing queued behind the blocker should run after close
	select {
	case <-ran:
		t.Fatal("queued item ran after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcherDispatchAfterCloseDropped(t *testing.T) {
	d := NewEventDispatcher(1)
	d.Close()
	// must not block or panic
	d.Dispatch(func() { t.Error("item ran after Close") })
	time.Sleep(20 * time.Millisecond)
}
