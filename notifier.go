package gochan

// receiveNotifier is a single-slot, at-most-one-pending readiness
// callback: Register installs it, Fire (via take) consumes it exactly
// once. Every method here is called with the owning Channel's mutex
// already held by the caller — the notifier itself needs no lock of its
// own, since the channel's mutex already serializes all access to it.
type receiveNotifier struct {
	cb func()
}

// register installs cb as the pending readiness callback. If ready is
// true (the channel is already closed or has a buffered item), cb is
// invoked immediately by the caller — while the channel mutex is still
// held, so cb must not call back into the same channel — and the slot is
// left empty. A nil cb simply clears any previously installed callback.
func (n *receiveNotifier) register(cb func(), ready bool) {
	if cb == nil {
		n.cb = nil
		return
	}
	if ready {
		n.cb = nil
		cb()
		return
	}
	n.cb = cb
}

// take swaps the slot to empty and returns whatever callback was pending,
// for the caller to invoke once it has released the channel mutex. This
// is the "Fire" half of the contract: Send (on buffering an item),
// Receive (as a parking wake hint), and Close all call take while holding
// the lock, then invoke the returned func after unlocking.
func (n *receiveNotifier) take() func() {
	cb := n.cb
	n.cb = nil
	return cb
}
