/*
Package view implements the record browsing core of the console: what is
selected, which records are shown and on which page.

# Coordinator

The Coordinator is the only owner of the selection (namespace > set > record),
of the namespace, set and record collections and of the pager. Its mutators
apply the cascades of the hierarchy under one lock:

	SelectNamespace(ns)          clears set, record and records
	SelectSet(name)              clears the record (and records of another set)
	SelectRecord(rec | nil)      no side effects
	UpdateConnectionStatus(info) clears everything
	UpdateRecords(ticket, recs)  replaces the records and returns to page 1

Every request that loads a panel takes a Ticket with Begin. When the response
arrives it is applied with the ticket, and it is dropped if a newer request was
issued for the panel or the selection moved on in the meantime. Requests are
never cancelled; late responses simply have no effect.

Each panel is in exactly one of the states empty, loading, error or ready.
A ready panel that is reloaded keeps its data and sets Refreshing.

# Dispatcher

The Dispatcher runs the operations of the console against a driver.IDriver:
connect, listings, scan and key search of the selected set, and the record
mutations. Failures are returned as *Error with a Kind:

	KindConnection  connect or disconnect failed, the view is unchanged
	KindFetch       listing, scan or search failed, the panel is cleared
	KindValidation  input rejected, nothing was sent
	KindMutation    put or delete failed, the records are unchanged

# Pagination

Paginate is a pure function over any slice. The Pager holds the navigation
state; pages outside [1, TotalPages] are rejected, not clamped.
*/
package view
