// Package httpserver provides the operational HTTP endpoint of respkv.
//
// Routes:
//   - GET /metrics: Prometheus exposition
//   - GET /healthz: liveness
//   - GET /readyz: readiness, 503 until the RESP listeners are up
//   - GET /version: build information
//
// Every route runs behind Recover, RequestID and Instrument, which counts
// requests per route and writes the access log at debug level.
package httpserver
