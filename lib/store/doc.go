// Package store provides the local persistence of the console: a key-value
// blob store with get/set/delete/has semantics that survives restarts.
//
// The record browsing core never touches the store. It is used by the
// profile package, which keeps the saved connection profiles, the active
// profile id and the UI preferences under separate keys.
//
// Key Components:
//
//   - IStore Interface: The operations of the store. Write operations return
//     only an error, read operations return the requested data along with an
//     error. Save and Load move a snapshot of the whole store through an
//     io.Writer / io.Reader.
//
//   - Error System: Failures are reported as *Error carrying a RetCode, so
//     callers can tell an invalid operation from a corrupted snapshot.
//
// Implementations:
//
//	- Local Store (lstore): an in-memory map, optionally backed by a file that
//	  is rewritten after every change and loaded on start.
//	  Available in the "github.com/ValentinKolb/asadmin/lib/store/lstore" package.
package store
