// Command gochan-demo runs a handful of end-to-end usage scenarios as
// subcommands, one function per scenario: each demo is standalone,
// runnable on its own, and prints what it observed.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/example/gochan"
	"github.com/example/gochan/stream"
)

var scenarios = map[string]func(){
	"send-receive":  demoSendReceive,
	"merge":         demoMerge,
	"spread":        demoSpread,
	"where-count":   demoWhereCount,
	"map-sum":       demoMapSum,
	"timeout-race":  demoTimeoutRace,
	"close-while-selecting": demoCloseWhileSelecting,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: gochan-demo <scenario>")
		fmt.Println("scenarios:")
		for name := range scenarios {
			fmt.Println("  " + name)
		}
		fmt.Println("  all")
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "all" {
		for _, demo := range orderedScenarios() {
			fmt.Printf("=== %s ===\n", demo)
			scenarios[demo]()
			fmt.Println()
		}
		return
	}

	demo, ok := scenarios[name]
	if !ok {
		fmt.Printf("unknown scenario %q\n", name)
		os.Exit(1)
	}
	demo()
}

func orderedScenarios() []string {
	return []string{
		"send-receive", "merge", "spread", "where-count",
		"map-sum", "timeout-race", "close-while-selecting",
	}
}

// demoSendReceive runs a capacity-1 channel with one producer sending
// 0..9 then closing, and one consumer draining it.
func demoSendReceive() {
	ch := gochan.MustNewChannel[int](1)

	go func() {
		for i := 0; i < 10; i++ {
			_ = ch.Send(i)
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
	fmt.Printf("received %v (count=%d)\n", got, len(got))
}

// demoMerge is scenario 2: two producers each send 0..9 and close; a
// Select-based merge drains both into a third channel.
func demoMerge() {
	a := gochan.MustNewChannel[int](1)
	b := gochan.MustNewChannel[int](1)

	go func() {
		for i := 0; i < 10; i++ {
			_ = a.Send(i)
		}
		a.Close()
	}()
	go func() {
		for i := 0; i < 10; i++ {
			_ = b.Send(i)
		}
		b.Close()
	}()

	merged := stream.Merge(1, a, b)
	count := stream.Count(merged)
	fmt.Printf("merged %d items from two producers\n", count)
}

// demoSpread is scenario 3: one source sends 0..9 and closes; a spreader
// broadcasts to three sinks, waiting for all three per item.
func demoSpread() {
	src := gochan.MustNewChannel[int](1)
	s1 := gochan.MustNewChannel[int](1)
	s2 := gochan.MustNewChannel[int](1)
	s3 := gochan.MustNewChannel[int](1)

	go func() {
		for i := 0; i < 10; i++ {
			_ = src.Send(i)
		}
		src.Close()
	}()

	done := make(chan struct{})
	var n1, n2, n3 int64
	go func() {
		stream.Spread(src, s1, s2, s3)
		close(done)
	}()
	go func() { n1 = stream.Count(s1) }()
	go func() { n2 = stream.Count(s2) }()
	go func() { n3 = stream.Count(s3) }()

	<-done
	time.Sleep(10 * time.Millisecond) // let the three Count goroutines settle
	fmt.Printf("sink counts: %d %d %d (total=%d)\n", n1, n2, n3, n1+n2+n3)
}

// demoWhereCount is scenario 4: filter to even numbers, then count.
func demoWhereCount() {
	src := gochan.MustNewChannel[int](1)
	go func() {
		for i := 0; i < 10; i++ {
			_ = src.Send(i)
		}
		src.Close()
	}()

	evens := stream.Where(1, src, func(n int) bool { return n%2 == 0 })
	fmt.Printf("even count = %d\n", stream.Count(evens))
}

// demoMapSum is scenario 5: map x -> x%2, sum via for-each.
func demoMapSum() {
	src := gochan.MustNewChannel[int](1)
	go func() {
		for i := 0; i < 10; i++ {
			_ = src.Send(i)
		}
		src.Close()
	}()

	parities := stream.Map(1, src, func(n int) int { return n % 2 })
	var sum int
	stream.ForEach(parities, func(n int) { sum += n })
	fmt.Printf("sum of parities = %d\n", sum)
}

// demoTimeoutRace is scenario 6: Select over After(d1) and After(d2) with
// |d1-d2| >= 100ms; the smaller duration must win.
func demoTimeoutRace() {
	wins := 0
	const trials = 10
	for i := 0; i < trials; i++ {
		d1 := time.Duration(10+rand.Intn(491)) * time.Millisecond
		d2 := d1 + 100*time.Millisecond + time.Duration(rand.Intn(300))*time.Millisecond

		sel := gochan.NewSelect()
		gotShort := false
		gochan.Case(sel, gochan.After(d1), func(gochan.ReceiveResult[time.Time]) error {
			gotShort = true
			return nil
		})
		gochan.Case(sel, gochan.After(d2), func(gochan.ReceiveResult[time.Time]) error {
			gotShort = false
			return nil
		})
		_ = sel.End()
		if gotShort {
			wins++
		}
	}
	fmt.Printf("shorter timer won %d/%d trials\n", wins, trials)
}

// demoCloseWhileSelecting is scenario 7: loop a Select over msg and close
// channels; close msg, then send true on close. The loop must exit
// cleanly.
func demoCloseWhileSelecting() {
	msg := gochan.MustNewChannel[string](1)
	quit := gochan.MustNewChannel[bool](1)

	go func() {
		time.Sleep(20 * time.Millisecond)
		msg.Close()
		_ = quit.Send(true)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	closedSeen := false
	for {
		sel := gochan.NewSelect()
		stop := false
		gochan.Case(sel, msg, func(res gochan.ReceiveResult[string]) error {
			if !res.Ok {
				closedSeen = true
			}
			return nil
		})
		gochan.Case(sel, quit, func(res gochan.ReceiveResult[bool]) error {
			stop = true
			return nil
		})
		if err := sel.EndContext(ctx); err != nil {
			fmt.Println("select loop aborted:", err)
			return
		}
		if stop {
			break
		}
	}
	fmt.Printf("loop exited cleanly, observed msg closed = %v\n", closedSeen)
}
