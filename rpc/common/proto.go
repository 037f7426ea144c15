package common

import (
	"net/url"
	"strconv"
)

// --------------------------------------------------------------------------
// REST routes
// --------------------------------------------------------------------------

const (
	RouteConnect     = "/api/connect"
	RouteDisconnect  = "/api/disconnect"
	RouteClusterInfo = "/api/cluster-info"
	RouteNamespaces  = "/api/namespaces"
	RouteRecords     = "/api/records"
	RouteScan        = "/api/records/scan"
	RouteSearch      = "/api/records/search"
	RouteMetrics     = "/metrics"
)

// SetsPath returns the path listing the sets of a namespace
func SetsPath(namespace string) string {
	return RouteNamespaces + "/" + url.PathEscape(namespace) + "/sets"
}

// RecordPath returns the path of a single record
func RecordPath(namespace, setName, key string) string {
	if setName == "" {
		return RouteRecords + "/" + url.PathEscape(namespace) + "/" + url.PathEscape(key)
	}
	return RouteRecords + "/" + url.PathEscape(namespace) + "/" + url.PathEscape(setName) + "/" + url.PathEscape(key)
}

// ScanQuery returns the query of a scan request
func ScanQuery(namespace, setName string, maxRecords int) string {
	q := url.Values{}
	q.Set("namespace", namespace)
	q.Set("setName", setName)
	if maxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(maxRecords))
	}
	return q.Encode()
}

// --------------------------------------------------------------------------
// Response bodies
// --------------------------------------------------------------------------

// Request and response bodies of the data routes are the types of
// lib/record and lib/driver; only the envelopes below are REST specific.

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeleteResponse is the body of a delete request
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
