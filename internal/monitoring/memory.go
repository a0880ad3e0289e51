package monitoring

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RuntimeMonitor periodically samples Go runtime stats into gauges.
type RuntimeMonitor struct {
	interval time.Duration
	stop     chan struct{}

	heapAlloc  prometheus.Gauge
	heapSys    prometheus.Gauge
	goroutines prometheus.Gauge
	gcCount    prometheus.Gauge
}

// NewRuntimeMonitor registers the runtime gauges on the metrics
// instance's registry.
func NewRuntimeMonitor(m *Metrics, interval time.Duration) *RuntimeMonitor {
	auto := promauto.With(m.registry)

	return &RuntimeMonitor{
		interval: interval,
		stop:     make(chan struct{}),
		heapAlloc: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsemark",
			Name:      "go_heap_alloc_bytes",
			Help:      "Bytes of allocated heap objects.",
		}),
		heapSys: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsemark",
			Name:      "go_heap_sys_bytes",
			Help:      "Bytes of heap memory obtained from the OS.",
		}),
		goroutines: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsemark",
			Name:      "go_goroutines",
			Help:      "Number of goroutines.",
		}),
		gcCount: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsemark",
			Name:      "go_gc_cycles_total",
			Help:      "Completed GC cycles.",
		}),
	}
}

// Start begins sampling in a goroutine.
func (rm *RuntimeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(rm.interval)
		defer ticker.Stop()

		rm.collect()
		for {
			select {
			case <-ticker.C:
				rm.collect()
			case <-rm.stop:
				return
			}
		}
	}()
}

// Stop halts sampling.
func (rm *RuntimeMonitor) Stop() {
	close(rm.stop)
}

func (rm *RuntimeMonitor) collect() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	rm.heapAlloc.Set(float64(ms.HeapAlloc))
	rm.heapSys.Set(float64(ms.HeapSys))
	rm.goroutines.Set(float64(runtime.NumGoroutine()))
	rm.gcCount.Set(float64(ms.NumGC))
}
