// Package metrics 定义链接编辑服务的 prometheus 指标
package metrics

import (
	"sync/atomic"

	"github.com/haierkeys/link-editor-service/pkg/workerpool"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "link_editor"

// Result labels
const (
	ResultOK          = "ok"
	ResultUnsupported = "unsupported"
	ResultInvalid     = "invalid"
	ResultError       = "error"
)

var (
	// LinkResolves counts href resolutions by link type and result
	LinkResolves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "link_resolves_total",
		Help:      "Href resolutions by link type and result.",
	}, []string{"link_type", "result"})

	// LinkConverts counts model to link conversions by link type and result
	LinkConverts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "link_converts_total",
		Help:      "Model to link conversions by link type and result.",
	}, []string{"link_type", "result"})

	// EditorSessionsOpen is the number of editor sessions currently open
	EditorSessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "editor_sessions_open",
		Help:      "Editor sessions currently open.",
	})

	// EditorSessionsClosed counts closed editor sessions by final status
	EditorSessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "editor_sessions_closed_total",
		Help:      "Closed editor sessions by final status.",
	}, []string{"status"})

	// ContentLinks counts links found in scanned content by link type
	ContentLinks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_links_total",
		Help:      "Links found in scanned content by link type.",
	}, []string{"link_type"})
)

// pool is the worker pool the gauges below read from
var pool atomic.Pointer[workerpool.Pool]

// ObserveWorkerPool points the worker pool gauges at p, replacing the previous pool
func ObserveWorkerPool(p *workerpool.Pool) {
	pool.Store(p)
}

func poolStat(read func(workerpool.Stats) float64) func() float64 {
	return func() float64 {
		p := pool.Load()
		if p == nil {
			return 0
		}
		return read(p.Stats())
	}
}

var (
	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "worker_pool_active",
		Help:      "Worker pool tasks running, one per open editor session.",
	}, poolStat(func(s workerpool.Stats) float64 { return float64(s.Active) }))

	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "worker_pool_queued",
		Help:      "Worker pool tasks waiting for a worker.",
	}, poolStat(func(s workerpool.Stats) float64 { return float64(s.Queued) }))

	_ = promauto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_pool_failed_total",
		Help:      "Worker pool tasks that returned an error or panicked.",
	}, poolStat(func(s workerpool.Stats) float64 { return float64(s.Failed) }))
)
