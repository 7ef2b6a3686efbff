package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	commandsTotal        atomic.Uint64
	commandsChangedTotal atomic.Uint64
	deferredTicksTotal   atomic.Uint64
	sessionsCreatedTotal atomic.Uint64
	sessionsExpiredTotal atomic.Uint64
	streamsOpenedTotal   atomic.Uint64
	streamsOpen          atomic.Int64

	commandDuration = newHistogram([]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
)

// IncCommand counts a processed command and whether it changed the session.
func IncCommand(changed bool) {
	commandsTotal.Add(1)
	if changed {
		commandsChangedTotal.Add(1)
	}
}

// IncDeferredTick counts a tick that ran deferred work.
func IncDeferredTick() {
	deferredTicksTotal.Add(1)
}

// IncSessionCreated increments the created sessions counter.
func IncSessionCreated() {
	sessionsCreatedTotal.Add(1)
}

// IncSessionExpired increments the expired sessions counter.
func IncSessionExpired() {
	sessionsExpiredTotal.Add(1)
}

// StreamOpened records a new live stream and returns the func that marks it
// closed.
func StreamOpened() func() {
	streamsOpenedTotal.Add(1)
	streamsOpen.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { streamsOpen.Add(-1) })
	}
}

// ObserveCommandDurationMs records how long a command held the session loop.
func ObserveCommandDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	commandDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "builder_commands_total", "Total commands processed", commandsTotal.Load())
	writeCounter(&buf, "builder_commands_changed_total", "Total commands that changed a session", commandsChangedTotal.Load())
	writeCounter(&buf, "builder_deferred_ticks_total", "Total ticks that ran deferred work", deferredTicksTotal.Load())
	writeCounter(&buf, "builder_sessions_created_total", "Total sessions created", sessionsCreatedTotal.Load())
	writeCounter(&buf, "builder_sessions_expired_total", "Total idle sessions expired", sessionsExpiredTotal.Load())
	writeCounter(&buf, "builder_streams_opened_total", "Total live streams opened", streamsOpenedTotal.Load())
	writeGauge(&buf, "builder_streams_open", "Live streams currently open", streamsOpen.Load())
	writeHistogram(&buf, "builder_command_duration_ms", "Command processing time in milliseconds", commandDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket that holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeGauge(buf *bytes.Buffer, name, help string, value int64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
