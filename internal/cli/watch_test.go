package cli

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatchLoopDebounces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, "maps/tree.json", 50*time.Millisecond, func(error) {}, func() { calls.Add(1) })
	}()

	// One burst of writes, plus noise from other files in the directory.
	for range 5 {
		events <- fsnotify.Event{Name: "maps/tree.json", Op: fsnotify.Write}
		events <- fsnotify.Event{Name: "maps/other.json", Op: fsnotify.Write}
	}
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls after one burst = %d, want 1", got)
	}

	events <- fsnotify.Event{Name: "maps/./tree.json", Op: fsnotify.Create}
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Errorf("calls after second burst = %d, want 2", got)
	}

	events <- fsnotify.Event{Name: "maps/tree.json", Op: fsnotify.Chmod}
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Errorf("chmod should not trigger, calls = %d", got)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("watchLoop() = %v, want context.Canceled", err)
	}
}

func TestWatchLoopErrorsAndClose(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error, 1)
	var seen error
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(context.Background(), events, errs, "tree.json", time.Millisecond, func(err error) { seen = err }, func() {})
	}()

	errs <- errors.New("queue overflow")
	time.Sleep(50 * time.Millisecond)
	close(events)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchLoop() = %v, want nil on close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watchLoop did not return after the event channel closed")
	}
	if seen == nil || seen.Error() != "queue overflow" {
		t.Errorf("onErr saw %v", seen)
	}
}
