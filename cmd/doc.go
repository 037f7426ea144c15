// Package cmd implements the command-line interface of the asadmin console.
// It provides a hierarchical command structure with operations for running
// the REST backend and for working with a cluster as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts and configures the REST backend
//   - records: Commands for namespaces, sets and records (scan, search, get, put, delete, etc.)
//   - profiles: Commands managing saved connection profiles and preferences
//   - browse: The interactive terminal record browser
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See asadmin -help for a list of all commands.
package cmd
