// Package gochanmetrics wires a gochan.Channel's operation hooks into
// Prometheus metrics, so a service can export channel health (throughput,
// queue depth, select resolution time) the same way it exports everything
// else.
// The core gochan package never imports prometheus itself — this package
// is the only place that dependency is paid, via the Hooks seam in
// hooks.go.
package gochanmetrics

import (
	"time"

	"github.com/example/gochan"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics every Instrument()-ed channel
// reports into. It implements prometheus.Collector so it can be handed
// straight to a registry.
type Collector struct {
	sends    *prometheus.CounterVec
	receives *prometheus.CounterVec
	closes   *prometheus.CounterVec

	bufferLength    *prometheus.GaugeVec
	parkedSenders   *prometheus.GaugeVec
	parkedReceivers *prometheus.GaugeVec

	selectResolution prometheus.Histogram
}

// NewCollector builds a Collector exposing gochan_sends_total,
// gochan_receives_total, gochan_closes_total, gochan_buffer_length,
// gochan_parked_senders, gochan_parked_receivers, and
// gochan_select_resolution_seconds.
func NewCollector() *Collector {
	labels := []string{"channel"}
	return &Collector{
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gochan_sends_total",
			Help: "Total number of successful Send calls, by channel name.",
		}, labels),
		receives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gochan_receives_total",
			Help: "Total number of completed Receive calls, including those that reported a closed channel, by channel name.",
		}, labels),
		closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gochan_closes_total",
			Help: "Total number of Close calls that actually transitioned a channel, by channel name.",
		}, labels),
		bufferLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gochan_buffer_length",
			Help: "Current number of buffered items, by channel name.",
		}, labels),
		parkedSenders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gochan_parked_senders",
			Help: "Current number of goroutines parked in Send, by channel name.",
		}, labels),
		parkedReceivers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gochan_parked_receivers",
			Help: "Current number of goroutines parked in Receive, by channel name.",
		}, labels),
		selectResolution: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gochan_select_resolution_seconds",
			Help:    "Wall-clock duration of a Select's End/EndContext call, including the winning handler, as timed by TimeSelect.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.sends.Describe(ch)
	c.receives.Describe(ch)
	c.closes.Describe(ch)
	c.bufferLength.Describe(ch)
	c.parkedSenders.Describe(ch)
	c.parkedReceivers.Describe(ch)
	c.selectResolution.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.sends.Collect(ch)
	c.receives.Collect(ch)
	c.closes.Collect(ch)
	c.bufferLength.Collect(ch)
	c.parkedSenders.Collect(ch)
	c.parkedReceivers.Collect(ch)
	c.selectResolution.Collect(ch)
}

// Instrument attaches hooks to ch that report into c under the given
// name label, replacing any hooks ch already had. It returns ch for
// call-site chaining (e.g. ch := gochanmetrics.Instrument(c, "orders",
// gochan.MustNewChannel[Order](64))).
func Instrument[T any](c *Collector, name string, ch *gochan.Channel[T]) *gochan.Channel[T] {
	sends := c.sends.WithLabelValues(name)
	receives := c.receives.WithLabelValues(name)
	closes := c.closes.WithLabelValues(name)
	bufferLength := c.bufferLength.WithLabelValues(name)
	parkedSenders := c.parkedSenders.WithLabelValues(name)
	parkedReceivers := c.parkedReceivers.WithLabelValues(name)

	ch.SetHooks(&gochan.Hooks{
		OnSend:    sends.Inc,
		OnReceive: receives.Inc,
		OnClose:   closes.Inc,
		OnQueueDepths: func(bufLen, senders, receivers int) {
			bufferLength.Set(float64(bufLen))
			parkedSenders.Set(float64(senders))
			parkedReceivers.Set(float64(receivers))
		},
	})

	return ch
}

// TimeSelect runs fn (expected to be a *gochan.Select's End or EndContext
// call) and records its wall-clock duration into the select-resolution
// histogram. Usage: err := c.TimeSelect(sel.End).
func (c *Collector) TimeSelect(fn func() error) error {
	start := time.Now()
	err := fn()
	c.selectResolution.Observe(time.Since(start).Seconds())
	return err
}
