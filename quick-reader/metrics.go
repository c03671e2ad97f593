package quickreader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics Reader的统计指标. nil表示不统计.
type Metrics struct {
	ChunksPulled   prometheus.Counter
	BytesPulled    prometheus.Counter
	BytesAssembled prometheus.Counter
	PullFailures   prometheus.Counter
}

// NewMetrics 创建Metrics并注册到reg, reg为nil时不注册.
// 同一个Metrics可以被多个Reader共用.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ChunksPulled: f.NewCounter(prometheus.CounterOpts{
			Name: "quickreader_chunks_pulled_total",
			Help: "Number of non-empty chunks pulled from sources.",
		}),
		BytesPulled: f.NewCounter(prometheus.CounterOpts{
			Name: "quickreader_bytes_pulled_total",
			Help: "Number of bytes pulled from sources.",
		}),
		BytesAssembled: f.NewCounter(prometheus.CounterOpts{
			Name: "quickreader_bytes_assembled_total",
			Help: "Number of bytes copied to assemble reads that cross chunk boundaries.",
		}),
		PullFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "quickreader_pull_failures_total",
			Help: "Number of failed chunk pulls.",
		}),
	}
}

func (m *Metrics) pulled(n int) {
	if m == nil {
		return
	}
	m.ChunksPulled.Inc()
	m.BytesPulled.Add(float64(n))
}

func (m *Metrics) assembled(n int) {
	if m == nil {
		return
	}
	m.BytesAssembled.Add(float64(n))
}

func (m *Metrics) pullFailed() {
	if m == nil {
		return
	}
	m.PullFailures.Inc()
}
