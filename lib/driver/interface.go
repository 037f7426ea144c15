package driver

import (
	"context"
	"errors"
	"strings"

	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("driver")

const (
	DefaultHost = "localhost"
	DefaultPort = 3000

	// DefaultMaxRecords bounds unfiltered scans and search results.
	DefaultMaxRecords = 100

	// searchScanFactor is how many records a search scans per wanted match.
	searchScanFactor = 10
	// defaultSearchScan is the scan bound of a search without maxResults.
	defaultSearchScan = 1000
)

var (
	ErrNotConnected   = errors.New("Not connected. Please connect first.")
	ErrRecordNotFound = errors.New("record not found")
)

// ConnectParams are the parameters of a cluster connection.
// Credentials are only used when both User and Password are set.
type ConnectParams struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// WithDefaults fills in the default host and port.
func (p ConnectParams) WithDefaults() ConnectParams {
	if strings.TrimSpace(p.Host) == "" {
		p.Host = DefaultHost
	}
	if p.Port <= 0 {
		p.Port = DefaultPort
	}
	return p
}

// HasCredentials reports whether both user and password are given.
func (p ConnectParams) HasCredentials() bool {
	return p.User != "" && p.Password != ""
}

// IDriver is the backing store consumed by the REST backend and by the
// record browser. Implementations must be safe for concurrent use.
type IDriver interface {
	// Connect opens a connection to the cluster, closing any previous one.
	// A failed connection attempt is reported through ConnectionInfo with
	// Connected=false and a Message; err is reserved for transport failures.
	Connect(ctx context.Context, params ConnectParams) (record.ConnectionInfo, error)

	// Disconnect closes the connection. It is not an error to disconnect twice.
	Disconnect(ctx context.Context) error

	// ClusterInfo returns the current connection status.
	ClusterInfo(ctx context.Context) (record.ConnectionInfo, error)

	ListNamespaces(ctx context.Context) ([]record.Namespace, error)

	ListSets(ctx context.Context, namespace string) ([]record.Set, error)

	// Scan returns at most maxRecords records of a set (DefaultMaxRecords if <= 0).
	Scan(ctx context.Context, namespace, setName string, maxRecords int) ([]record.Record, error)

	// Search returns the records whose key matches the request pattern.
	Search(ctx context.Context, req record.SearchRequest) ([]record.Record, error)

	// GetRecord returns ErrRecordNotFound if the key does not exist.
	GetRecord(ctx context.Context, namespace, setName, key string) (record.Record, error)

	// PutRecord upserts a record and returns it as stored.
	PutRecord(ctx context.Context, rec record.Record) (record.Record, error)

	// DeleteRecord returns whether a record was deleted.
	DeleteRecord(ctx context.Context, namespace, setName, key string) (bool, error)
}

// --------------------------------------------------------------------------
// Helpers shared by the implementations
// --------------------------------------------------------------------------

// MaxResults returns the number of matches a search may return.
func MaxResults(req record.SearchRequest) int {
	if req.MaxResults <= 0 {
		return DefaultMaxRecords
	}
	return req.MaxResults
}

// SearchScanLimit returns how many records a search scans.
func SearchScanLimit(req record.SearchRequest) int {
	if req.MaxResults <= 0 {
		return defaultSearchScan
	}
	return req.MaxResults * searchScanFactor
}

// Filter returns the records matching the request, at most MaxResults(req).
func Filter(records []record.Record, req record.SearchRequest) []record.Record {
	mt := req.SearchType
	if mt == "" {
		mt = record.MatchExact
	}
	limit := MaxResults(req)
	out := make([]record.Record, 0)
	for _, r := range records {
		if len(out) >= limit {
			break
		}
		if mt.Matches(r.Key, req.SearchPattern) {
			out = append(out, r)
		}
	}
	return out
}

// ClusterName derives the cluster name from the name of the first node.
func ClusterName(nodes []record.Node) string {
	if len(nodes) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(nodes[0].Name, ":")
	return name
}
