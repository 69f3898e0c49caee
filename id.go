package gochan

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// diagnosticID lazily assigns a channel a uuid, exposed through String
// and ID. It is never consulted by Send/Receive/Close/Select — purely
// cosmetic, so a channel that nobody calls String or ID on never pays for
// a uuid generation.
type diagnosticID struct {
	once sync.Once
	id   string
}

func (d *diagnosticID) get() string {
	d.once.Do(func() {
		d.id = uuid.NewString()
	})
	return d.id
}

// String renders a log/panic-friendly summary of the channel's current
// state. The snapshot is taken under the mutex but the string itself is
// built outside it.
func (c *Channel[T]) String() string {
	c.mu.Lock()
	capacity := c.capacity
	qlen := c.qcount
	closed := c.closed
	c.mu.Unlock()
	return fmt.Sprintf("gochan.Channel[id=%s, cap=%d, len=%d, closed=%t]", c.diag.get(), capacity, qlen, closed)
}

// ID returns the channel's lazily-assigned diagnostic identifier.
func (c *Channel[T]) ID() string {
	return c.diag.get()
}
