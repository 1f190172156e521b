package reserver

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional, nil-safe Prometheus collector for a Reserver.
// A nil *Metrics is valid and every method on it is a no-op, so callers
// that never opt in pay nothing beyond a pointer check (grounded on
// GoogleCloudPlatform/gcsfuse's internal/monitor package, which wires
// client_golang gauges behind a similarly optional collector).
type Metrics struct {
	blocksActive    *prometheus.GaugeVec
	blocksExhausted *prometheus.GaugeVec
	bytesAvailable  *prometheus.GaugeVec
	crossCoreFrees  prometheus.Counter
}

// NewMetrics builds a Metrics collector and registers it with reg. Pass a
// fresh prometheus.NewRegistry() in tests, or prometheus.DefaultRegisterer
// in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		blocksActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "qentengo",
			Subsystem: "reserver",
			Name:      "blocks_active",
			Help:      "Number of active (non-exhausted) memory blocks per core.",
		}, []string{"core"}),
		blocksExhausted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "qentengo",
			Subsystem: "reserver",
			Name:      "blocks_exhausted",
			Help:      "Number of exhausted memory blocks per core.",
		}, []string{"core"}),
		bytesAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "qentengo",
			Subsystem: "reserver",
			Name:      "bytes_available",
			Help:      "Free bytes across active blocks per core.",
		}, []string{"core"}),
		crossCoreFrees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qentengo",
			Subsystem: "reserver",
			Name:      "cross_core_release_total",
			Help:      "Releases served by a core other than the one that reserved the pointer.",
		}),
	}
	reg.MustRegister(m.blocksActive, m.blocksExhausted, m.bytesAvailable, m.crossCoreFrees)
	return m
}

func (m *Metrics) observeCore(core int, blocksActive, blocksExhausted int, bytesAvailable uint64) {
	if m == nil {
		return
	}
	label := strconv.Itoa(core)
	m.blocksActive.WithLabelValues(label).Set(float64(blocksActive))
	m.blocksExhausted.WithLabelValues(label).Set(float64(blocksExhausted))
	m.bytesAvailable.WithLabelValues(label).Set(float64(bytesAvailable))
}

func (m *Metrics) incCrossCoreFree() {
	if m == nil {
		return
	}
	m.crossCoreFrees.Inc()
}

// observe reports this core's current pool shape to its attached Metrics,
// if any. coreLabel is set by the façade when it builds each ReserverCore.
func (c *ReserverCore) observe() {
	if c.metrics == nil {
		return
	}
	available := uint64(0)
	for _, blk := range c.blocks {
		available += uint64(blk.Available())
	}
	label, err := strconv.Atoi(c.coreLabel)
	if err != nil {
		return
	}
	c.metrics.observeCore(label, len(c.blocks), len(c.exhausted), available)
}
