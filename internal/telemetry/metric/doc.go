// Package metric exposes Prometheus instrumentation for the linking
// service. All collectors live on a dedicated registry so the /metrics
// endpoint never picks up collectors registered elsewhere in the
// process.
package metric
