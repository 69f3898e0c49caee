package gochan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewChannel_RejectsNonPositiveCapacity(t *testing.T) {
	if _, err := NewChannel[int](0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("capacity 0: got err %v, want ErrInvalidArgument", err)
	}
	if _, err := NewChannel[int](-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("capacity -1: got err %v, want ErrInvalidArgument", err)
	}
}

func TestMustNewChannel_PanicsOnInvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for capacity 0")
		}
	}()
	MustNewChannel[int](0)
}

// TestSendReceive_TenIntegers sends and receives ten integers over a
// capacity-1 channel and checks they arrive in order.
func TestSendReceive_TenIntegers(t *testing.T) {
	ch := MustNewChannel[int](1)

	go func() {
		for i := 0; i < 10; i++ {
			if err := ch.Send(i); err != nil {
				t.Errorf("Send(%d): %v", i, err)
			}
		}
		ch.Close()
	}()

	var got []int
	for {
		res := ch.Receive()
		if !res.Ok {
			break
		}
		got = append(got, res.Value)
	}

	if len(got) != 10 {
		t.Fatalf("got %d items, want 10", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("got[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestSend_DirectHandoffBypassesBuffer(t *testing.T) {
	ch := MustNewChannel[int](1)

	recvDone := make(chan ReceiveResult[int])
	go func() {
		recvDone <- ch.Receive()
	}()

	// Give the receiver a moment to park.
	time.Sleep(10 * time.Millisecond)
	if err := ch.Send(7); err != nil {
		t.Fatalf("Send: %v", err)
	}

	res := <-recvDone
	if !res.Ok || res.Value != 7 {
		t.Errorf("got %+v, want {7 true}", res)
	}
	if n := ch.Len(); n != 0 {
		t.Errorf("buffer len = %d, want 0 (direct handoff should bypass it)", n)
	}
}

func TestSend_ParksWhenBufferFull(t *testing.T) {
	ch := MustNewChannel[int](1)
	if err := ch.Send(1); err != nil {
		t.Fatalf("Send(1): %v", err)
	}

	sendDone := make(chan error, 1)
	go func() {
		sendDone <- ch.Send(2)
	}()

	select {
	case <-sendDone:
		t.Fatal("second Send completed without a receiver draining the buffer")
	case <-time.After(20 * time.Millisecond):
	}

	if res := ch.Receive(); !res.Ok || res.Value != 1 {
		t.Fatalf("first Receive = %+v, want {1 true}", res)
	}

	if err := <-sendDone; err != nil {
		t.Errorf("parked Send: %v", err)
	}
	if res := ch.Receive(); !res.Ok || res.Value != 2 {
		t.Fatalf("second Receive = %+v, want {2 true}", res)
	}
}

func TestSend_FIFOOrderAmongParkedSenders(t *testing.T) {
	ch := MustNewChannel[int](1)
	if err := ch.Send(0); err != nil {
		t.Fatalf("Send(0): %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ch.Send(i); err != nil {
				t.Errorf("Send(%d): %v", i, err)
			}
		}()
		time.Sleep(time.Millisecond) // force arrival order into the parked queue
	}

	var got []int
	for i := 0; i <= n; i++ {
		got = append(got, ch.Receive().Value)
	}
	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Errorf("got[%d] = %d, want %d (FIFO order violated)", i, v, i)
		}
	}
}

func TestSend_AfterCloseFailsSynchronously(t *testing.T) {
	ch := MustNewChannel[int](1)
	ch.Close()

	err := ch.Send(1)
	if !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Send after Close: got %v, want ErrChannelClosed", err)
	}

	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Errorf("Send after Close: got %T, want *SendError", err)
	}
}

func TestClose_ResolvesParkedReceiversWithNotOk(t *testing.T) {
	ch := MustNewChannel[int](1)

	recvDone := make(chan ReceiveResult[int])
	go func() { recvDone <- ch.Receive() }()
	time.Sleep(10 * time.Millisecond)

	ch.Close()

	res := <-recvDone
	if res.Ok {
		t.Errorf("got %+v, want ok=false", res)
	}
}

func TestClose_FailsParkedSendersWithChannelClosed(t *testing.T) {
	ch := MustNewChannel[int](1)
	if err := ch.Send(1); err != nil {
		t.Fatalf("Send(1): %v", err)
	}

	sendDone := make(chan error, 1)
	go func() { sendDone <- ch.Send(2) }()
	time.Sleep(10 * time.Millisecond)

	ch.Close()

	if err := <-sendDone; !errors.Is(err, ErrChannelClosed) {
		t.Errorf("parked Send after Close: got %v, want ErrChannelClosed", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	ch := MustNewChannel[int](1)
	ch.Close()
	ch.Close() // must not panic or double-resolve anything
}

func TestReceive_DrainsBufferThenSignalsCloseForever(t *testing.T) {
	ch := MustNewChannel[int](3)
	for i := 0; i < 3; i++ {
		if err := ch.Send(i); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}
	ch.Close()

	for i := 0; i < 3; i++ {
		res := ch.Receive()
		if !res.Ok || res.Value != i {
			t.Errorf("Receive() = %+v, want {%d true}", res, i)
		}
	}
	for i := 0; i < 3; i++ {
		res := ch.Receive()
		if res.Ok {
			t.Errorf("Receive() after drain = %+v, want ok=false", res)
		}
	}
}

func TestSendContext_CancelWhileParked(t *testing.T) {
	ch := MustNewChannel[int](1)
	if err := ch.Send(1); err != nil {
		t.Fatalf("Send(1): %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- ch.SendContext(ctx, 2) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}

	// The channel must still be usable and FIFO-consistent afterward.
	if res := ch.Receive(); !res.Ok || res.Value != 1 {
		t.Fatalf("Receive() = %+v, want {1 true}", res)
	}
}

func TestReceiveContext_CancelWhileParked(t *testing.T) {
	ch := MustNewChannel[int](1)

	ctx, cancel := context.WithCancel(context.Background())
	resc := make(chan error, 1)
	go func() {
		_, err := ch.ReceiveContext(ctx)
		resc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-resc; !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}

	if err := ch.Send(5); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res := ch.Receive(); !res.Ok || res.Value != 5 {
		t.Fatalf("Receive() = %+v, want {5 true}", res)
	}
}

func TestConcurrentSendersAndReceivers_ExactlyAllDelivered(t *testing.T) {
	ch := MustNewChannel[int](4)
	const producers = 5
	const perProducer = 200
	const total = producers * perProducer

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := ch.Send(i); err != nil {
					t.Errorf("Send: %v", err)
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		ch.Close()
	}()

	var mu sync.Mutex
	var received int
	var consumers sync.WaitGroup
	for c := 0; c < 3; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				res := ch.Receive()
				if !res.Ok {
					return
				}
				mu.Lock()
				received++
				mu.Unlock()
			}
		}()
	}
	consumers.Wait()

	if received != total {
		t.Errorf("received %d items, want %d", received, total)
	}
}

func TestChannel_String(t *testing.T) {
	ch := MustNewChannel[int](2)
	s := ch.String()
	if s == "" {
		t.Error("String() returned empty string")
	}
	if id := ch.ID(); id == "" {
		t.Error("ID() returned empty string")
	}
}
