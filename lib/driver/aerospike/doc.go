// Package aerospike implements driver.IDriver on the native Aerospike Go
// client (github.com/aerospike/aerospike-client-go/v7).
//
// Cluster metadata is read through the info protocol of the first node:
//
//   - "namespaces" lists the namespace names (';' separated)
//   - "namespace/<ns>" returns the statistics of a namespace, of which
//     master-objects, replication-factor and storage-engine are used
//   - "sets/<ns>" returns one ':' separated entry per set with set, objects,
//     memory_data_bytes and device_data_bytes
//
// Records are written with SendKey enabled so the user key can be shown on
// scans. Records written by other tools without a stored key are shown with
// the hex encoded digest as key. Searches are scans bounded to ten records
// per wanted match (driver.SearchScanLimit) whose keys are filtered on the
// client.
//
// The client API is not context aware; the driver checks the context before
// every command and stops reading scan results once it is cancelled.
package aerospike
