package worker

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lyrebirdhq/clientbase/queue"
)

// Entry is one captured failure: which worker run produced it, the error,
// and the stack at capture time.
type Entry struct {
	WorkerID string
	Err      error
	Stack    []byte
}

// Supervisor holds the error buffer and stop flag shared by all workers of
// one application run.
type Supervisor struct {
	errors *queue.Buffer[Entry]
	stop   *queue.Stop
	logger *slog.Logger
}

// NewSupervisor creates a supervisor with a fresh error buffer and stop
// flag.
func NewSupervisor(logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		errors: queue.NewBuffer[Entry](16),
		stop:   queue.NewStop(),
		logger: logger,
	}
}

// Errors returns the shared error buffer. Only the supervising goroutine
// should drain it.
func (s *Supervisor) Errors() *queue.Buffer[Entry] {
	return s.errors
}

// Stop returns the shared stop flag.
func (s *Supervisor) Stop() *queue.Stop {
	return s.stop
}

// Worker creates a named worker bound to this supervisor. Each worker gets
// a unique run ID so entries can be traced back to their origin.
func (s *Supervisor) Worker(name string) *Worker {
	return &Worker{
		name:   name,
		runID:  uuid.New(),
		sup:    s,
		logger: s.logger.With("worker", name),
	}
}

// Worker runs callbacks on dedicated goroutines under supervision.
type Worker struct {
	name   string
	runID  uuid.UUID
	sup    *Supervisor
	logger *slog.Logger
	wg     sync.WaitGroup
}

// ID returns the worker name qualified with its run ID.
func (w *Worker) ID() string {
	return w.name + "/" + w.runID.String()
}

// Stop returns the supervisor's stop flag.
func (w *Worker) Stop() *queue.Stop {
	return w.sup.stop
}

// Wrap returns a callback that executes fn and captures any returned error
// or panic onto the supervisor's error buffer. The returned callback never
// panics and never lets an error escape. Errors raised while the stop flag
// is set are still captured.
func (w *Worker) Wrap(fn func() error) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				w.capture(fmt.Errorf("panic: %v", r), debug.Stack())
			}
		}()

		if err := fn(); err != nil {
			w.capture(err, debug.Stack())
		}
	}
}

// Go runs the wrapped fn on a new goroutine. Use Wait to join.
func (w *Worker) Go(fn func() error) {
	safe := w.Wrap(fn)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		safe()
	}()
}

// Wait blocks until all goroutines started with Go have finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// Timer schedules the wrapped fn after d. The stop flag is re-checked when
// the timer fires, so a timer scheduled before shutdown never runs a stale
// callback.
func (w *Worker) Timer(d time.Duration, fn func() error) *time.Timer {
	safe := w.Wrap(fn)
	return time.AfterFunc(d, func() {
		if w.sup.stop.IsSet() {
			w.logger.Debug("timer fired after stop, ignoring")
			return
		}
		safe()
	})
}

// capture pushes an entry onto the shared buffer. A failed capture means
// the buffer was closed while workers are still running, which is a
// programming error with no recovery.
func (w *Worker) capture(err error, stack []byte) {
	entry := Entry{WorkerID: w.ID(), Err: err, Stack: stack}
	if !w.sup.errors.Push(entry) {
		panic(fmt.Sprintf("worker %s: error buffer closed: %v", w.ID(), err))
	}
}
