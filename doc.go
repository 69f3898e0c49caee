// Package gochan implements bounded, typed CSP-style channels and a
// multi-way select primitive for goroutines, independent of the native
// `chan` keyword.
//
// A Channel[T] owns its own ring buffer, its own FIFO queues of parked
// senders and receivers, and its own mutex; Send and Receive never block
// an OS thread longer than it takes to touch that mutex — a parked
// operation suspends its goroutine on a private completion channel
// instead. Select races one-shot readiness notifications across any
// number of channels and runs exactly one caller-supplied handler for
// the winner, with uniform-random tie-breaking among cases that were
// simultaneously ready.
//
// Error propagation: Send on a closed channel returns ErrChannelClosed
// synchronously (or asynchronously, if the send was parked and Close
// drained it); Receive never returns an error — closure is signaled by
// ReceiveResult.Ok being false once the buffer has drained. There is no
// retry inside this package; callers decide what a failed Send means.
//
// This package does not implement timeouts on Send/Receive directly;
// compose them externally with After and Select instead.
package gochan
