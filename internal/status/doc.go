// Package status serves the pipeline's observability surface: liveness and
// readiness probes, a JSON progress endpoint backed by the worker monitor,
// build/version information and the Prometheus metrics endpoint.
package status
