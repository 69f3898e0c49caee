package gochan

import "time"

// After returns a channel that receives the current time once after d has
// elapsed, then closes — the designated way to compose timeouts with
// Select, since Send/Receive carry no timeout of their own. It drives the
// channel from a scheduled callback rather than blocking a goroutine on
// time.Sleep.
func After(d time.Duration) *Channel[time.Time] {
	ch := MustNewChannel[time.Time](1)
	time.AfterFunc(d, func() {
		// Send cannot fail here: nothing else ever touches this channel,
		// so it is always open and has room for exactly one item.
		_ = ch.Send(time.Now())
		ch.Close()
	})
	return ch
}
