// Package rpc provides the REST layer of the asadmin console. It connects
// the record browser and the record commands to a backend that owns the
// cluster connection.
//
// The package is organized into several subpackages:
//
//   - common: The wire types of the API, the route table, configuration
//     structures and logging.
//
//   - transport: HTTP communication abstractions for the server (routing and
//     middleware) and the client (endpoint rotation and retries).
//
//   - client: A driver.IDriver implementation on top of the API, so every
//     consumer of a driver can run against a remote backend.
//
//   - server: The REST server that maps the API routes onto a driver.
package rpc
