package queue

import "sync"

// Stop is a flag that can be set exactly once. It distinguishes an
// intentional shutdown from an unexpected connection loss: code observing a
// set flag knows the program is closing.
type Stop struct {
	once sync.Once
	ch   chan struct{}
}

// NewStop creates an unset stop flag.
func NewStop() *Stop {
	return &Stop{ch: make(chan struct{})}
}

// Set marks the flag. Subsequent calls are no-ops.
func (s *Stop) Set() {
	s.once.Do(func() { close(s.ch) })
}

// IsSet reports whether the flag has been set.
func (s *Stop) IsSet() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the flag is set.
func (s *Stop) Done() <-chan struct{} {
	return s.ch
}
