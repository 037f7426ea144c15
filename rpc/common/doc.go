// Package common provides the configuration, logging and wire definitions
// shared by the REST server, the REST client and the commands.
//
// Key Components:
//
//   - ServerConfig: Configuration of `asadmin serve`: endpoint, CORS origin,
//     database driver (aerospike or memory), default cluster address, scan
//     limit, timeout, sample data and log level. Validate rejects values the
//     server cannot start with.
//
//   - ClientConfig: Configuration of the REST client: endpoints (used round
//     robin), timeout and retry count.
//
//   - Routes: The REST paths and helpers building record, set and scan URLs,
//     so server and client cannot drift apart.
//
//   - ErrorResponse, DeleteResponse: The JSON envelopes of the REST API. All
//     other bodies are the types of lib/record and lib/driver.
//
//   - Logger: Custom logging implementation plugged into the dragonboat logger
//     factory, writing "LEVEL | name | message" lines. InitLoggers sets the
//     level of all application loggers at once.
package common
