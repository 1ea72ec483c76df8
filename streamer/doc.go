// Package streamer implements the resilient connection client.
//
// A Client owns one persistent WebSocket connection to the central server.
// It runs its blocking receive loop on a supervised worker goroutine,
// dispatches typed inbound events to registered handlers, reconnects on a
// fixed interval after a loss, and escalates non-transient failures through
// the supervisor's error buffer.
package streamer
