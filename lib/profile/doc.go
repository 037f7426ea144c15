// Package profile keeps the saved connection profiles and the UI preferences
// of the console in a store.IStore.
//
// Profiles are stored one per key ("profile:<id>") with a random UUID as id.
// The active profile id, the theme and the editor width live under keys of
// their own, so they can change without rewriting the profiles. The active
// profile supplies the connection parameters of `asadmin browse` and
// `asadmin records connect`.
package profile
