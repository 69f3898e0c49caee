package gochan

// ReceiveResult carries the outcome of a Receive: the item and whether it
// is valid. Ok is false exactly when the channel had been drained and
// closed at the moment the receive completed.
type ReceiveResult[T any] struct {
	Value T
	Ok    bool
}

// Get unpacks the result as a (value, ok) pair, mirroring the native
// `v, ok := <-ch` idiom.
func (r ReceiveResult[T]) Get() (T, bool) {
	return r.Value, r.Ok
}

// MustGet returns the value, panicking if the channel was closed. It is a
// programmer-error assertion for call sites that have already proven the
// channel cannot close (e.g. immediately after checking Ok), not a
// substitute for handling Ok.
func (r ReceiveResult[T]) MustGet() T {
	if !r.Ok {
		panic("gochan: MustGet called on a closed receive result")
	}
	return r.Value
}
