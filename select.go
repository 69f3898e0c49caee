package gochan

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// selectFairnessDelay is how long End() waits before committing to a
// random pick among the cases already in the immediate pool. The pool is
// fixed at the moment End() sets the built latch; a readiness callback
// that fires after that bypasses the pool and wins outright if it claims
// the winner slot before the delayed pick does. A literal fixed delay is
// used rather than a two-phase barrier (see DESIGN.md for the tradeoff).
const selectFairnessDelay = time.Millisecond

type thunk = func() error

// Select is a multi-way wait primitive: a single-use object that races
// one-shot readiness notifications across any number of channels and runs
// exactly one caller-supplied handler, for whichever case is ready first
// — with uniform random tie-breaking among cases that were all ready by
// the time End was called.
//
// Select's zero value is not usable; construct with NewSelect.
type Select struct {
	mu          sync.Mutex
	built       bool // cases_built latch: false while Building, true once End has started
	done        bool // true once End has returned; further Case/End calls are illegal
	hasSelected bool
	err         error // sticky ErrIllegalState from a Case/End call after done

	immediate []thunk
	clears    []func()

	winner chan thunk
	rng    *rand.Rand
}

// NewSelect creates an empty, single-use Select builder.
func NewSelect() *Select {
	return &Select{
		winner: make(chan thunk, 1),
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(time.Now().UnixNano())+1)),
	}
}

// Case adds a case racing ch's readiness: if ch wins the Select, handler
// is invoked with the result of an actual Receive on ch — the Select
// itself performs the Receive on the winning channel, which is why
// handler sees (item, ok) rather than picking the value out of thin air.
// Case is a free function, not a method on Select, because Go methods
// can't introduce a new type parameter.
//
// Calling Case on a Select whose End has already returned is recorded as
// ErrIllegalState and surfaced by the next End/EndContext call, rather
// than panicking — Select is a builder, and builders in this codebase report
// errors at the point that actually needs one.
func Case[T any](s *Select, ch *Channel[T], handler func(ReceiveResult[T]) error) *Select {
	s.mu.Lock()
	if s.done {
		s.err = ErrIllegalState
		s.mu.Unlock()
		return s
	}
	s.mu.Unlock()

	th := thunk(func() error {
		res, _ := ch.ReceiveContext(context.Background())
		return handler(res)
	})

	ch.registerReceiveReady(func() {
		s.offer(th)
	})

	s.mu.Lock()
	s.clears = append(s.clears, ch.clearReceiveReady)
	s.mu.Unlock()

	return s
}

// offer is what every case's readiness callback runs: while still
// Building, a ready case just joins the immediate pool; once End has
// flipped the latch, the first offer wins outright.
func (s *Select) offer(th thunk) {
	s.mu.Lock()
	if !s.built {
		s.immediate = append(s.immediate, th)
		s.mu.Unlock()
		return
	}
	if s.hasSelected {
		s.mu.Unlock()
		return
	}
	s.hasSelected = true
	s.mu.Unlock()
	s.winner <- th
}

// End finalizes the build, waits for exactly one case to win, performs
// that case's Receive, and runs its handler. It blocks until a winner is
// resolved; there is no built-in timeout, compose one with a Case over
// After(d).
func (s *Select) End() error {
	return s.EndContext(context.Background())
}

// EndContext is End with optional cooperative cancellation: if ctx is
// cancelled before a winner resolves, EndContext returns ctx.Err() and no
// handler ever runs for this Select.
func (s *Select) EndContext(ctx context.Context) error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return ErrIllegalState
	}
	if s.err != nil {
		s.mu.Unlock()
		s.finish()
		return s.err
	}
	s.built = true
	immediate := s.immediate
	s.mu.Unlock()

	if len(immediate) > 0 {
		time.AfterFunc(selectFairnessDelay, func() { s.resolveImmediate(immediate) })
	}

	var winner thunk
	select {
	case winner = <-s.winner:
	case <-ctx.Done():
		s.finish()
		return ctx.Err()
	}

	s.finish()
	return winner()
}

// resolveImmediate picks a uniformly random case from whatever was ready
// at End() and resolves the winner slot with it, unless something else
// (a case that became ready after End() was called, racing in via offer)
// already claimed has_selected first.
func (s *Select) resolveImmediate(pool []thunk) {
	pick := pool[s.rng.IntN(len(pool))]

	s.mu.Lock()
	if s.hasSelected {
		s.mu.Unlock()
		return
	}
	s.hasSelected = true
	s.mu.Unlock()

	s.winner <- pick
}

// finish marks the Select Used and clears every readiness slot it
// installed and did not consume, so a channel this instance lost interest
// in can't fire a stale callback later.
func (s *Select) finish() {
	s.mu.Lock()
	s.done = true
	clears := s.clears
	s.clears = nil
	s.mu.Unlock()

	for _, clear := range clears {
		clear()
	}
}
