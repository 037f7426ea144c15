// Package http implements the transport interfaces on net/http.
//
// Key Components:
//
//   - httpServerTransport: Implements IRPCServerTransport. Routes use the
//     method patterns of http.ServeMux ("GET /api/records/{namespace}/...").
//     Every route counts its requests by status code and records its latency
//     with VictoriaMetrics; the metrics are served at GET /metrics. At log
//     level debug every request is logged with status code and duration. A
//     configured CORS origin enables the CORS headers and answers preflight
//     requests.
//
//   - httpClientTransport: Implements IRPCClientTransport. Requests go to the
//     configured endpoints round robin; failed attempts (network errors, not
//     error status codes) are retried on the next endpoint up to RetryCount
//     times. Endpoints may be given as "host:port" or as URL.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	atomic operations for the round-robin counter. Routes must be registered
//	on the server transport before Handler or Listen is called.
package http
