// Package lstore implements store.IStore on top of a concurrent in-memory map
// (xsync.MapOf), optionally persisted to a single file.
//
// Key Features:
//   - Lock-free reads and writes for concurrent access
//   - Optional file persistence: the whole store is rewritten after each change
//   - Crash safe writes through a temporary file and an atomic rename
//   - Versioned binary snapshot format, shared by Save/Load and the file
//
// Snapshot Format:
//
//	The snapshot starts with the magic number "ASADMIN\x00" and a version byte,
//	followed by the number of entries and the entries in ascending key order.
//	Keys and values are length prefixed (little endian uint32). A snapshot with
//	a wrong magic number, an unknown version or a truncated entry is rejected
//	with store.RetCCorrupted and leaves the store unchanged.
//
// The store is meant for small amounts of data (profiles and preferences);
// rewriting the file on every change keeps it simple and always consistent.
//
// Usage Example:
//
//	s, err := lstore.NewFileStore(filepath.Join(configDir, "asadmin", "store.db"))
//	if err != nil {
//		return err
//	}
//	err = s.Set("ui:theme", []byte("dark"))
//	value, exists, err := s.Get("ui:theme")
package lstore
