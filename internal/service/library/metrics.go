package library

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts protocol outcomes and reconciliation activity.
// A nil *Metrics records nothing.
type Metrics struct {
	operations    *prometheus.CounterVec
	batches       prometheus.Counter
	batchSize     prometheus.Histogram
	sorts         prometheus.Counter
	storedFolders prometheus.Gauge
}

// NewMetrics creates folder metrics registered on reg (unregistered when reg is nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medialib",
			Subsystem: "folders",
			Name:      "operations_total",
			Help:      "Folder protocol runs by operation and result.",
		}, []string{"operation", "result"}),
		batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "medialib",
			Subsystem: "folders",
			Name:      "reconciled_batches_total",
			Help:      "Change feed batches applied to the folder store.",
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medialib",
			Subsystem: "folders",
			Name:      "reconciled_batch_size",
			Help:      "Change notifications per applied batch.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		sorts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "medialib",
			Subsystem: "folders",
			Name:      "sorts_total",
			Help:      "Coalesced re-sorts of the folder table.",
		}),
		storedFolders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "medialib",
			Subsystem: "folders",
			Name:      "stored",
			Help:      "Folders currently held by the folder store.",
		}),
	}
}

func (m *Metrics) observeOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) observeBatch(size int) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.batchSize.Observe(float64(size))
}

func (m *Metrics) observeSort() {
	if m == nil {
		return
	}
	m.sorts.Inc()
}

func (m *Metrics) setStored(n int) {
	if m == nil {
		return
	}
	m.storedFolders.Set(float64(n))
}
