package gochan

import (
	"context"
	"fmt"
	"sync"
)

// parkedSender is a goroutine blocked in Send because the buffer was full
// and no receiver was parked to hand its item to directly. done resolves
// to nil on a successful handoff, or ErrChannelClosed if Close drained it
// first.
type parkedSender[T any] struct {
	item T
	done chan error
}

// parkedReceiver is a goroutine blocked in Receive because the buffer was
// empty and the channel was still open.
type parkedReceiver[T any] struct {
	done chan ReceiveResult[T]
}

// Channel is a bounded, typed conduit between goroutines. It owns its own
// ring buffer, its own FIFO queues of parked senders and receivers, and
// its own close protocol; it is not a wrapper around a native `chan`.
// Buffer occupancy stays within [0, capacity]; a non-empty parked-sender
// queue implies the buffer is full or the channel is closed; a non-empty
// parked-receiver queue implies the buffer is empty and the channel is
// open. The two queues are never both non-empty at once.
//
// The zero value is not usable; construct with NewChannel.
type Channel[T any] struct {
	mu sync.Mutex

	capacity int
	buf      []T // len(buf) == capacity; sendx/recvx index into it
	sendx    int
	recvx    int
	qcount   int

	senders   fifo[*parkedSender[T]]
	receivers fifo[*parkedReceiver[T]]

	closed bool

	notifier receiveNotifier
	hooks    *Hooks

	diag diagnosticID
}

// NewChannel creates a channel with the given fixed capacity. capacity
// must be >= 1; there is no unbuffered (capacity 0) variant, since direct
// handoff to a parked receiver already covers the rendezvous case (Send's
// step 2 below).
func NewChannel[T any](capacity int) (*Channel[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be >= 1, got %d", ErrInvalidArgument, capacity)
	}
	return &Channel[T]{
		capacity: capacity,
		buf:      make([]T, capacity),
	}, nil
}

// MustNewChannel is NewChannel for call sites that treat an invalid
// capacity as a programmer error worth a panic (e.g. package-level
// channel variables), mirroring regexp.MustCompile's idiom.
func MustNewChannel[T any](capacity int) *Channel[T] {
	ch, err := NewChannel[T](capacity)
	if err != nil {
		panic(err)
	}
	return ch
}

// Cap returns the channel's fixed capacity.
func (c *Channel[T]) Cap() int {
	return c.capacity
}

// Len returns the number of items currently buffered. It is a snapshot;
// by the time the caller observes it, it may already be stale.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	n := c.qcount
	c.mu.Unlock()
	return n
}

// Send delivers item to the channel:
//  1. If closed, fail immediately with ErrChannelClosed.
//  2. If a receiver is parked, hand item to it directly (bypassing the
//     buffer) and complete immediately.
//  3. Else if the buffer has room, append item, fire the receive-readiness
//     notifier, and complete immediately.
//  4. Else park until a Receive pulls this sender or Close drains it.
//
// Send blocks only in case 4; cases 1-3 never suspend the goroutine.
func (c *Channel[T]) Send(item T) error {
	return c.SendContext(context.Background(), item)
}

// SendContext is Send with optional cooperative cancellation layered on
// top of it. If ctx is cancelled before the send completes, SendContext
// removes the parked sender from the queue —
// without disturbing FIFO order for the senders behind it — and returns
// ctx.Err(). A ctx that never cancels (context.Background()) makes this
// identical to Send.
func (c *Channel[T]) SendContext(ctx context.Context, item T) error {
	c.mu.Lock()

	// Re-check closed under the lock even though callers may have already
	// observed it open a moment ago: a naive closed-check outside the
	// mutex can race with a concurrent Close slipping in before the
	// enqueue. Every path below either returns or enqueues while still
	// holding c.mu, so no such window exists here.
	if c.closed {
		c.mu.Unlock()
		return &SendError{Channel: c.String(), Err: ErrChannelClosed}
	}

	// Step 2: a parked receiver has priority over buffering. Without this,
	// a Send that finds a parked receiver would have to buffer and then
	// immediately unbuffer, letting the buffer briefly hold an item while
	// a receiver sits parked.
	if r, ok := c.receivers.pop(); ok {
		c.mu.Unlock()
		r.done <- ReceiveResult[T]{Value: item, Ok: true}
		c.fireHook(c.hookSend())
		c.fireQueueDepths()
		return nil
	}

	// Step 3: buffer if there is room.
	if c.qcount < c.capacity {
		c.buf[c.sendx] = item
		c.sendx = (c.sendx + 1) % c.capacity
		c.qcount++
		wake := c.notifier.take()
		c.mu.Unlock()
		if wake != nil {
			wake()
		}
		c.fireHook(c.hookSend())
		c.fireQueueDepths()
		return nil
	}

	// Step 4: park.
	s := &parkedSender[T]{item: item, done: make(chan error, 1)}
	c.senders.push(s)
	c.mu.Unlock()
	c.fireQueueDepths()

	select {
	case err := <-s.done:
		if err == nil {
			c.fireHook(c.hookSend())
		}
		return err
	case <-ctx.Done():
		c.mu.Lock()
		removed := c.senders.remove(s)
		c.mu.Unlock()
		if removed {
			c.fireQueueDepths()
			return ctx.Err()
		}
		// Lost the race: something already resolved s (a Receive pulled
		// it, or Close drained it) between ctx firing and us taking the
		// lock. Honor that resolution instead of reporting cancellation.
		err := <-s.done
		if err == nil {
			c.fireHook(c.hookSend())
		}
		return err
	}
}

// Receive takes the next item:
//  1. If the buffer is non-empty, pop its head; if a sender is parked,
//     move its item into the freed slot and resolve that sender.
//     Otherwise fire the receive-readiness notifier as a wake hint.
//  2. Else if closed, resolve immediately with (zero, false).
//  3. Else park until a Send/Close wakes this receiver.
//
// Receive never returns an error; closure is signaled by ReceiveResult.Ok.
func (c *Channel[T]) Receive() ReceiveResult[T] {
	res, _ := c.ReceiveContext(context.Background())
	return res
}

// ReceiveContext is Receive with optional cooperative cancellation,
// mirroring SendContext. If ctx is cancelled before the receive completes,
// it returns (zero-value ReceiveResult, ctx.Err()); otherwise the returned
// error is always nil, and the ReceiveResult alone carries the (value,
// ok) contract.
func (c *Channel[T]) ReceiveContext(ctx context.Context) (ReceiveResult[T], error) {
	c.mu.Lock()

	if c.qcount > 0 {
		val := c.buf[c.recvx]
		var zero T
		c.buf[c.recvx] = zero
		c.recvx = (c.recvx + 1) % c.capacity
		c.qcount--

		var wake func()
		if s, ok := c.senders.pop(); ok {
			// Move the parked sender's item straight into the slot this
			// receive just freed, and resolve the sender.
			c.buf[c.sendx] = s.item
			c.sendx = (c.sendx + 1) % c.capacity
			c.qcount++
			closed := c.closed
			wake = func() {
				if closed {
					s.done <- ErrChannelClosed
				} else {
					s.done <- nil
				}
			}
		} else {
			wake = c.notifier.take()
		}
		c.mu.Unlock()
		if wake != nil {
			wake()
		}
		c.fireHook(c.hookReceive())
		c.fireQueueDepths()
		return ReceiveResult[T]{Value: val, Ok: true}, nil
	}

	if c.closed {
		c.mu.Unlock()
		var zero T
		c.fireHook(c.hookReceive())
		return ReceiveResult[T]{Value: zero, Ok: false}, nil
	}

	r := &parkedReceiver[T]{done: make(chan ReceiveResult[T], 1)}
	c.receivers.push(r)
	// Spurious wake hint: no item is actually available, but a select
	// waiting on this channel should still get a chance to notice a
	// receiver just parked.
	wake := c.notifier.take()
	c.mu.Unlock()
	if wake != nil {
		wake()
	}
	c.fireQueueDepths()

	select {
	case res := <-r.done:
		c.fireHook(c.hookReceive())
		return res, nil
	case <-ctx.Done():
		c.mu.Lock()
		removed := c.receivers.remove(r)
		c.mu.Unlock()
		if removed {
			var zero T
			c.fireQueueDepths()
			return ReceiveResult[T]{Value: zero}, ctx.Err()
		}
		res := <-r.done
		c.fireHook(c.hookReceive())
		return res, nil
	}
}

// Close transitions the channel to closed. It is
// idempotent; resolves every parked receiver with (zero, false); fails
// every parked sender with ErrChannelClosed, discarding their items; and
// fires the receive-readiness notifier so any waiting Select observes the
// closure. After Close returns, Send always fails synchronously; Receive
// continues to drain whatever remains buffered, then returns (zero,
// false) forever after.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true

	receivers := c.receivers.drain()
	senders := c.senders.drain()
	wake := c.notifier.take()
	c.mu.Unlock()

	var zero T
	for _, r := range receivers {
		r.done <- ReceiveResult[T]{Value: zero, Ok: false}
	}
	for _, s := range senders {
		s.done <- ErrChannelClosed
	}
	if wake != nil {
		wake()
	}
	c.fireHook(c.hooksSnapshot().onCloseOrNil())
	c.fireQueueDepths()
}

// registerReceiveReady is the notifier Register contract, exposed
// internally for Select. cb must be cheap and must not call back into
// this channel — if the channel is already closed or has a buffered
// item, cb runs synchronously before registerReceiveReady returns, still
// under c.mu.
func (c *Channel[T]) registerReceiveReady(cb func()) {
	c.mu.Lock()
	ready := c.closed || c.qcount > 0
	c.notifier.register(cb, ready)
	c.mu.Unlock()
}

// clearReceiveReady clears a previously registered callback without
// firing it, so a Select that already picked a winner doesn't leave a
// stale callback behind on the channels it didn't end up using.
func (c *Channel[T]) clearReceiveReady() {
	c.mu.Lock()
	c.notifier.register(nil, false)
	c.mu.Unlock()
}

func (c *Channel[T]) fireHook(fn func()) {
	if fn != nil {
		fn()
	}
}

func (c *Channel[T]) hookSend() func() {
	h := c.hooksSnapshot()
	if h == nil {
		return nil
	}
	return h.OnSend
}

func (c *Channel[T]) hookReceive() func() {
	h := c.hooksSnapshot()
	if h == nil {
		return nil
	}
	return h.OnReceive
}

func (h *Hooks) onCloseOrNil() func() {
	if h == nil {
		return nil
	}
	return h.OnClose
}
