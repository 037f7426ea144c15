package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
)

var (
	Logger = logger.GetLogger("rpc")
)

// StatusError is returned for error responses of the server
type StatusError struct {
	StatusCode int
	Msg        string
}

func (e *StatusError) Error() string {
	return e.Msg
}

// IRESTClient is a driver.IDriver backed by the REST API of `asadmin serve`
type IRESTClient interface {
	driver.IDriver
	// Stats returns the latency statistics of all operations sent so far
	Stats() []OpStats
	// Close releases the connections of the transport
	Close() error
}

// NewRESTClient creates a new REST client
// The function takes a config and a transport as parameters
// It connects the transport and returns the client
//
// Usage:
//
//	c, err := client.NewRESTClient(
//		common.ClientConfig{Endpoints: []string{"localhost:8080"}, TimeoutSecond: 5, RetryCount: 3},
//		http.NewHttpClientTransport(),
//	)
func NewRESTClient(config common.ClientConfig, transport transport.IRPCClientTransport) (IRESTClient, error) {
	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}
	return &restClient{
		config:    config,
		transport: transport,
		registry:  metrics.NewRegistry(),
	}, nil
}

type restClient struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
	registry  metrics.Registry
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// invoke sends a request and decodes a successful response into out.
// op names the latency timer of the request. out may be nil.
func (c *restClient) invoke(ctx context.Context, op, method, path string, in, out any) error {
	start := time.Now()
	defer metrics.GetOrRegisterTimer(op, c.registry).UpdateSince(start)

	// Serialize the request
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return err
		}
	}

	// Send the request
	resp, err := c.transport.Send(ctx, method, path, body)
	if err != nil {
		return err
	}

	// Check if the response is an error response
	if !resp.OK() {
		return decodeError(resp)
	}

	// Deserialize the response
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// decodeError turns an error response into an error. Errors the server got
// from its driver are mapped back to the driver sentinels.
func decodeError(resp transport.Response) error {
	var e common.ErrorResponse
	if err := json.Unmarshal(resp.Body, &e); err != nil || e.Error == "" {
		e.Error = fmt.Sprintf("http error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", driver.ErrRecordNotFound, e.Error)
	case e.Error == driver.ErrNotConnected.Error():
		return driver.ErrNotConnected
	default:
		return &StatusError{StatusCode: resp.StatusCode, Msg: e.Error}
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the driver package in interface.go)
// --------------------------------------------------------------------------

func (c *restClient) Connect(ctx context.Context, params driver.ConnectParams) (info record.ConnectionInfo, err error) {
	err = c.invoke(ctx, "connect", http.MethodPost, common.RouteConnect, params, &info)
	return info, err
}

func (c *restClient) Disconnect(ctx context.Context) error {
	return c.invoke(ctx, "disconnect", http.MethodPost, common.RouteDisconnect, nil, nil)
}

func (c *restClient) ClusterInfo(ctx context.Context) (info record.ConnectionInfo, err error) {
	err = c.invoke(ctx, "cluster-info", http.MethodGet, common.RouteClusterInfo, nil, &info)
	return info, err
}

func (c *restClient) ListNamespaces(ctx context.Context) ([]record.Namespace, error) {
	out := make([]record.Namespace, 0)
	err := c.invoke(ctx, "namespaces", http.MethodGet, common.RouteNamespaces, nil, &out)
	return out, err
}

func (c *restClient) ListSets(ctx context.Context, namespace string) ([]record.Set, error) {
	out := make([]record.Set, 0)
	err := c.invoke(ctx, "sets", http.MethodGet, common.SetsPath(namespace), nil, &out)
	return out, err
}

func (c *restClient) Scan(ctx context.Context, namespace, setName string, maxRecords int) ([]record.Record, error) {
	out := make([]record.Record, 0)
	path := common.RouteScan + "?" + common.ScanQuery(namespace, setName, maxRecords)
	err := c.invoke(ctx, "scan", http.MethodGet, path, nil, &out)
	return out, err
}

func (c *restClient) Search(ctx context.Context, req record.SearchRequest) ([]record.Record, error) {
	out := make([]record.Record, 0)
	err := c.invoke(ctx, "search", http.MethodPost, common.RouteSearch, req, &out)
	return out, err
}

func (c *restClient) GetRecord(ctx context.Context, namespace, setName, key string) (rec record.Record, err error) {
	err = c.invoke(ctx, "get", http.MethodGet, common.RecordPath(namespace, setName, key), nil, &rec)
	return rec, err
}

func (c *restClient) PutRecord(ctx context.Context, rec record.Record) (stored record.Record, err error) {
	err = c.invoke(ctx, "put", http.MethodPost, common.RouteRecords, rec, &stored)
	return stored, err
}

func (c *restClient) DeleteRecord(ctx context.Context, namespace, setName, key string) (bool, error) {
	var resp common.DeleteResponse
	err := c.invoke(ctx, "delete", http.MethodDelete, common.RecordPath(namespace, setName, key), nil, &resp)
	if errors.Is(err, driver.ErrRecordNotFound) {
		return false, nil
	}
	return resp.Deleted, err
}

func (c *restClient) Close() error {
	return c.transport.Close()
}
