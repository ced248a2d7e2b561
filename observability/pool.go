package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/membuf"
)

// StatsSource is the part of a pool read at scrape time.
type StatsSource interface {
	Stats() membuf.Stats
}

// RegisterPool registers gauges that read the memory accounting of pool on
// every scrape.
func RegisterPool(registry prometheus.Registerer, pool StatsSource) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocated_bytes",
			Help:      "Bytes held by all buffers",
		}, func() float64 { return float64(pool.Stats().BytesAllocated) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_limit_bytes",
			Help:      "Configured memory limit, 0 if unlimited",
		}, func() float64 { return float64(pool.Stats().MemoryLimit) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "max_resources",
			Help:      "Slot capacity of the pool",
		}, func() float64 { return float64(pool.Stats().MaxResources) }),
	}
	for _, g := range gauges {
		if err := registry.Register(g); err != nil {
			return err
		}
	}
	return nil
}
