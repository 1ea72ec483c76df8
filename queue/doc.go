// Package queue provides the shared coordination primitives used by
// supervised workers:
//   - Buffer, an unbounded multi-producer single-consumer queue
//   - Stop, a settable-once flag distinguishing deliberate shutdown
//     from unexpected failure
package queue
