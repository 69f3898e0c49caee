// Package stream provides high-level combinators over gochan.Channel:
// thin, goroutine-driven compositions of Send, Receive, and Select whose
// correctness reduces entirely to the core channel contracts.
//
// Every combinator that returns a channel spawns exactly one driving
// goroutine and closes its output when its input(s) are exhausted;
// combinators with no natural output (Forward, Spread, Purge, ForEach)
// are blocking calls the caller runs on its own goroutine.
package stream

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/example/gochan"
)

// SendAll sends every item in items to ch, in order, stopping at the
// first SendContext error (typically ErrChannelClosed).
func SendAll[T any](ctx context.Context, ch *gochan.Channel[T], items []T) error {
	for _, item := range items {
		if err := ch.SendContext(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// SendSeq is SendAll over a Go 1.23 iter.Seq, for producers that generate
// values lazily instead of holding them all in a slice.
func SendSeq[T any](ctx context.Context, ch *gochan.Channel[T], seq iter.Seq[T]) error {
	var sendErr error
	for item := range seq {
		if err := ch.SendContext(ctx, item); err != nil {
			sendErr = err
			break
		}
	}
	return sendErr
}

// Merge fans two channels into one output of the given buffer capacity,
// closing the output once both inputs have closed. It is implemented over
// gochan.Select rather than one forwarding goroutine per input, since the
// output must go through a gochan.Channel's own Send/Receive contract.
func Merge[T any](buf int, a, b *gochan.Channel[T]) *gochan.Channel[T] {
	return MergeMany(buf, []*gochan.Channel[T]{a, b})
}

// MergeMany generalizes Merge to any number of input channels.
func MergeMany[T any](buf int, chans []*gochan.Channel[T]) *gochan.Channel[T] {
	out := gochan.MustNewChannel[T](buf)
	open := append([]*gochan.Channel[T](nil), chans...)

	go func() {
		defer out.Close()
		for len(open) > 0 {
			sel := gochan.NewSelect()
			for _, ch := range open {
				ch := ch
				gochan.Case(sel, ch, func(res gochan.ReceiveResult[T]) error {
					if !res.Ok {
						open = removeChannel(open, ch)
						return nil
					}
					return out.Send(res.Value)
				})
			}
			if err := sel.End(); err != nil {
				return
			}
		}
	}()

	return out
}

func removeChannel[T any](chans []*gochan.Channel[T], target *gochan.Channel[T]) []*gochan.Channel[T] {
	out := chans[:0]
	for _, c := range chans {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

// Where forwards only the items matching pred, closing its output when in
// closes.
func Where[T any](buf int, in *gochan.Channel[T], pred func(T) bool) *gochan.Channel[T] {
	out := gochan.MustNewChannel[T](buf)
	go func() {
		defer out.Close()
		for {
			res := in.Receive()
			if !res.Ok {
				return
			}
			if pred(res.Value) {
				if err := out.Send(res.Value); err != nil {
					return
				}
			}
		}
	}()
	return out
}

// Map transforms every item with fn, closing its output when in closes.
func Map[T, U any](buf int, in *gochan.Channel[T], fn func(T) U) *gochan.Channel[U] {
	out := gochan.MustNewChannel[U](buf)
	go func() {
		defer out.Close()
		for {
			res := in.Receive()
			if !res.Ok {
				return
			}
			if err := out.Send(fn(res.Value)); err != nil {
				return
			}
		}
	}()
	return out
}

// Forward drains src into dst until src closes or dst refuses a send. It
// does not close dst, since several forwarders may share one destination.
func Forward[T any](dst, src *gochan.Channel[T]) {
	for {
		res := src.Receive()
		if !res.Ok {
			return
		}
		if err := dst.Send(res.Value); err != nil {
			return
		}
	}
}

// Spread broadcasts every item from src to all of targets, waiting for
// every target to accept an item before pulling the next one from src.
// All targets are closed once src closes.
func Spread[T any](src *gochan.Channel[T], targets ...*gochan.Channel[T]) {
	defer func() {
		for _, t := range targets {
			t.Close()
		}
	}()
	for {
		res := src.Receive()
		if !res.Ok {
			return
		}
		var wg sync.WaitGroup
		wg.Add(len(targets))
		for _, t := range targets {
			t := t
			go func() {
				defer wg.Done()
				_ = t.Send(res.Value)
			}()
		}
		wg.Wait()
	}
}

// Purge drains in and discards every item until it closes — useful when a
// channel must be kept empty (e.g. to unblock parked senders) but its
// contents don't matter.
func Purge[T any](in *gochan.Channel[T]) {
	for {
		res := in.Receive()
		if !res.Ok {
			return
		}
	}
}

// Count drains in with a single goroutine and returns how many items it
// produced before closing. It is CountN(in, 1) — see CountN for the
// concurrent-consumer form.
func Count[T any](in *gochan.Channel[T]) int64 {
	return CountN(in, 1)
}

// CountN drains in with `workers` concurrent goroutines and returns the
// total number of items received across all of them, accumulated with
// sync/atomic rather than a mutex since the only shared state is a single
// counter.
func CountN[T any](in *gochan.Channel[T], workers int) int64 {
	var n int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				res := in.Receive()
				if !res.Ok {
					return
				}
				atomic.AddInt64(&n, 1)
			}
		}()
	}
	wg.Wait()
	return atomic.LoadInt64(&n)
}

// ForEach drains in, calling action on every item, until it closes.
func ForEach[T any](in *gochan.Channel[T], action func(T)) {
	for {
		res := in.Receive()
		if !res.Ok {
			return
		}
		action(res.Value)
	}
}

// ForEachAsync drains in, calling action on every item, and keeps draining
// even after action returns an error so a live producer is never left
// blocked on a full channel. The first error is returned once in closes;
// later errors are discarded.
func ForEachAsync[T any](in *gochan.Channel[T], action func(T) error) error {
	var once sync.Once
	var firstErr error
	for {
		res := in.Receive()
		if !res.Ok {
			return firstErr
		}
		if err := action(res.Value); err != nil {
			once.Do(func() { firstErr = err })
		}
	}
}
