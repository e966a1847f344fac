// Package metrics exposes playback lifecycle metrics in Prometheus format.
//
// A Collector registers its collectors on a private registry and converts
// engine callbacks into observations:
//
//	m := metrics.New()
//	for _, cb := range m.Callbacks() {
//	    eng.RegisterCallback(cb)
//	}
//	http.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
package metrics
