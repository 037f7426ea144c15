// Package transport defines the interfaces of the HTTP layer between the
// REST server, its clients and the handlers that implement the API.
//
// Key Components:
//
//   - IRPCServerTransport: Collects route handlers and serves them, wrapped in
//     the middleware selected by the server configuration (request logging,
//     CORS, metrics).
//
//   - IRPCClientTransport: Sends requests to one of several server endpoints
//     and returns the raw response, leaving the decoding to the client.
package transport
