package gochan

// Hooks lets an optional instrumentation layer (see the gochanmetrics
// package) observe a channel's operations without the core package taking
// a dependency on a metrics library. Every hook is invoked after the
// channel's internal mutex has been released, so a hook is free to call
// back into the channel (e.g. to read a gauge) without risking deadlock,
// but it still must be cheap and non-blocking — it runs on the caller's
// goroutine, inline with Send/Receive/Close.
type Hooks struct {
	OnSend    func()
	OnReceive func()
	OnClose   func()

	// OnQueueDepths reports the buffer length and parked sender/receiver
	// counts immediately after an operation that changed any of them.
	OnQueueDepths func(bufLen, parkedSenders, parkedReceivers int)
}

// SetHooks installs h, replacing any previously installed hooks. Passing
// nil disables instrumentation.
func (c *Channel[T]) SetHooks(h *Hooks) {
	c.mu.Lock()
	c.hooks = h
	c.mu.Unlock()
}

func (c *Channel[T]) fireQueueDepths() {
	h := c.hooksSnapshot()
	if h == nil || h.OnQueueDepths == nil {
		return
	}
	c.mu.Lock()
	bufLen, senders, receivers := c.qcount, c.senders.len(), c.receivers.len()
	c.mu.Unlock()
	h.OnQueueDepths(bufLen, senders, receivers)
}

func (c *Channel[T]) hooksSnapshot() *Hooks {
	c.mu.Lock()
	h := c.hooks
	c.mu.Unlock()
	return h
}
