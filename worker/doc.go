// Package worker implements the safe execution supervisor.
//
// A Supervisor owns a shared error buffer and a stop flag. Workers created
// from it wrap callbacks so that any returned error or panic is captured
// and pushed onto the buffer instead of escaping the goroutine: the
// supervising goroutine drains the buffer and decides the program-level
// response. Workers never decide severity themselves.
package worker
