package worker

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWrap_CapturesError(t *testing.T) {
	sup := NewSupervisor(nil)
	w := sup.Worker("test")

	boom := errors.New("boom")
	w.Wrap(func() error { return boom })()

	entry, ok := sup.Errors().TryPop()
	if !ok {
		t.Fatal("no entry captured")
	}
	if !errors.Is(entry.Err, boom) {
		t.Errorf("Err = %v, want %v", entry.Err, boom)
	}
	if !strings.HasPrefix(entry.WorkerID, "test/") {
		t.Errorf("WorkerID = %q, want test/<id>", entry.WorkerID)
	}
	if len(entry.Stack) == 0 {
		t.Error("entry has no stack")
	}
}

func TestWrap_CapturesPanic(t *testing.T) {
	sup := NewSupervisor(nil)
	w := sup.Worker("test")

	// must not panic through
	w.Wrap(func() error { panic("kaboom") })()

	entry, ok := sup.Errors().TryPop()
	if !ok {
		t.Fatal("no entry captured")
	}
	if !strings.Contains(entry.Err.Error(), "kaboom") {
		t.Errorf("Err = %v, want panic message", entry.Err)
	}
	if !bytes.Contains(entry.Stack, []byte("worker")) {
		t.Error("stack does not mention the worker package")
	}
}

func TestWrap_NilErrorCapturesNothing(t *testing.T) {
	sup := NewSupervisor(nil)
	w := sup.Worker("test")

	w.Wrap(func() error { return nil })()

	if _, ok := sup.Errors().TryPop(); ok {
		t.Error("entry captured for nil error")
	}
}

func TestWrap_CapturesDuringShutdown(t *testing.T) {
	sup := NewSupervisor(nil)
	w := sup.Worker("test")

	sup.Stop().Set()
	w.Wrap(func() error { return errors.New("late failure") })()

	if _, ok := sup.Errors().TryPop(); !ok {
		t.Error("error raised after stop was dropped")
	}
}

func TestGo_Wait(t *testing.T) {
	sup := NewSupervisor(nil)
	w := sup.Worker("test")

	done := false
	w.Go(func() error {
		done = true
		return nil
	})
	w.Wait()

	if !done {
		t.Error("goroutine did not run")
	}
}

func TestTimer_RunsWrapped(t *testing.T) {
	sup := NewSupervisor(nil)
	w := sup.Worker("test")

	fired := make(chan struct{})
	w.Timer(5*time.Millisecond, func() error {
		close(fired)
		return nil
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimer_IgnoredAfterStop(t *testing.T) {
	sup := NewSupervisor(nil)
	w := sup.Worker("test")

	sup.Stop().Set()

	fired := make(chan struct{}, 1)
	w.Timer(5*time.Millisecond, func() error {
		fired <- struct{}{}
		return nil
	})

	select {
	case <-fired:
		t.Error("timer callback ran despite stop flag")
	case <-time.After(100 * time.Millisecond):
	}
}
