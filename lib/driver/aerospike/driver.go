package aerospike

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/record"
	as "github.com/aerospike/aerospike-client-go/v7"
	"github.com/aerospike/aerospike-client-go/v7/types"
)

var Logger = driver.Logger

// NewDriver creates a driver for an Aerospike cluster. timeout bounds the
// initial connection and every single command; 0 keeps the client defaults.
//
// Usage:
//
//	d := aerospike.NewDriver(5 * time.Second)
//	info, err := d.Connect(ctx, driver.ConnectParams{Host: "localhost", Port: 3000})
func NewDriver(timeout time.Duration) driver.IDriver {
	return &aerospikeImpl{timeout: timeout, now: time.Now}
}

type aerospikeImpl struct {
	mu      sync.RWMutex
	client  *as.Client
	timeout time.Duration
	now     func() time.Time
}

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

func (d *aerospikeImpl) Connect(ctx context.Context, params driver.ConnectParams) (record.ConnectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return record.ConnectionInfo{}, err
	}
	params = params.WithDefaults()

	policy := as.NewClientPolicy()
	if params.HasCredentials() {
		policy.User = params.User
		policy.Password = params.Password
	}
	if d.timeout > 0 {
		policy.Timeout = d.timeout
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		d.client.Close()
		d.client = nil
	}

	client, err := as.NewClientWithPolicyAndHost(policy, as.NewHost(params.Host, params.Port))
	if err != nil {
		Logger.Warningf("failed to connect to %s:%d: %v", params.Host, params.Port, err)
		return record.ConnectionInfo{
			Connected: false,
			Message:   fmt.Sprintf("Failed to connect: %v", err),
		}, nil
	}
	d.client = client
	Logger.Infof("connected to %s:%d", params.Host, params.Port)

	info := d.info()
	info.Message = "Connected successfully"
	return info, nil
}

func (d *aerospikeImpl) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client != nil {
		d.client.Close()
		d.client = nil
		Logger.Infof("disconnected")
	}
	return nil
}

func (d *aerospikeImpl) ClusterInfo(ctx context.Context) (record.ConnectionInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.info(), nil
}

// info must be called with d.mu held.
func (d *aerospikeImpl) info() record.ConnectionInfo {
	if d.client == nil || !d.client.IsConnected() {
		return record.ConnectionInfo{Connected: false, Message: "Not connected"}
	}
	nodes := make([]record.Node, 0)
	for _, n := range d.client.GetNodes() {
		nodes = append(nodes, record.Node{
			Name:    n.GetName(),
			Address: n.GetHost().String(),
			Active:  n.IsActive(),
		})
	}
	return record.ConnectionInfo{
		Connected:   true,
		ClusterName: driver.ClusterName(nodes),
		Nodes:       nodes,
	}
}

// conn returns the connected client.
func (d *aerospikeImpl) conn(ctx context.Context) (*as.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.client == nil || !d.client.IsConnected() {
		return nil, driver.ErrNotConnected
	}
	return d.client, nil
}

// request sends info commands to the first node of the cluster.
func (d *aerospikeImpl) request(ctx context.Context, commands ...string) (map[string]string, bool, error) {
	client, err := d.conn(ctx)
	if err != nil {
		return nil, false, err
	}
	nodes := client.GetNodes()
	if len(nodes) == 0 {
		return nil, false, nil
	}
	policy := as.NewInfoPolicy()
	if d.timeout > 0 {
		policy.Timeout = d.timeout
	}
	resp, aerr := nodes[0].RequestInfo(policy, commands...)
	if aerr != nil {
		return nil, false, aerr
	}
	return resp, true, nil
}

// --------------------------------------------------------------------------
// Namespaces and sets
// --------------------------------------------------------------------------

func (d *aerospikeImpl) ListNamespaces(ctx context.Context) ([]record.Namespace, error) {
	resp, ok, err := d.request(ctx, "namespaces")
	if err != nil {
		return nil, fmt.Errorf("failed to get namespaces: %w", err)
	}
	out := make([]record.Namespace, 0)
	if !ok {
		return out, nil
	}
	names := parseList(resp["namespaces"])
	if len(names) == 0 {
		return out, nil
	}

	commands := make([]string, len(names))
	for i, name := range names {
		commands[i] = "namespace/" + name
	}
	details, _, err := d.request(ctx, commands...)
	if err != nil {
		return nil, fmt.Errorf("failed to get namespaces: %w", err)
	}
	for _, name := range names {
		out = append(out, parseNamespace(name, details["namespace/"+name]))
	}
	return out, nil
}

func (d *aerospikeImpl) ListSets(ctx context.Context, namespace string) ([]record.Set, error) {
	command := "sets/" + namespace
	resp, ok, err := d.request(ctx, command)
	if err != nil {
		return nil, fmt.Errorf("failed to get sets: %w", err)
	}
	if !ok {
		return make([]record.Set, 0), nil
	}
	return parseSets(namespace, resp[command]), nil
}

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

// scan reads at most limit records of a set. A cancelled context closes the
// record set and returns the context error.
func (d *aerospikeImpl) scan(ctx context.Context, namespace, setName string, limit int) ([]record.Record, error) {
	client, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	policy := as.NewScanPolicy()
	policy.MaxRecords = int64(limit)
	if d.timeout > 0 {
		policy.SocketTimeout = d.timeout
	}

	rs, aerr := client.ScanAll(policy, namespace, setName)
	if aerr != nil {
		return nil, aerr
	}
	defer rs.Close()

	now := d.now()
	out := make([]record.Record, 0)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res, ok := <-rs.Results():
			if !ok {
				return out, nil
			}
			if res.Err != nil {
				return nil, res.Err
			}
			out = append(out, toRecord(namespace, setName, res.Record, now))
		}
	}
}

func (d *aerospikeImpl) Scan(ctx context.Context, namespace, setName string, maxRecords int) ([]record.Record, error) {
	if maxRecords <= 0 {
		maxRecords = driver.DefaultMaxRecords
	}
	records, err := d.scan(ctx, namespace, setName, maxRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	return records, nil
}

func (d *aerospikeImpl) Search(ctx context.Context, req record.SearchRequest) ([]record.Record, error) {
	records, err := d.scan(ctx, req.Namespace, req.SetName, driver.SearchScanLimit(req))
	if err != nil {
		return nil, fmt.Errorf("failed to search records: %w", err)
	}
	return driver.Filter(records, req), nil
}

func (d *aerospikeImpl) GetRecord(ctx context.Context, namespace, setName, key string) (record.Record, error) {
	client, err := d.conn(ctx)
	if err != nil {
		return record.Record{}, err
	}
	k, aerr := recordKey(namespace, setName, key)
	if aerr != nil {
		return record.Record{}, fmt.Errorf("failed to get record: %w", aerr)
	}
	rec, aerr := client.Get(nil, k)
	if aerr != nil {
		if aerr.Matches(types.KEY_NOT_FOUND_ERROR) {
			return record.Record{}, driver.ErrRecordNotFound
		}
		return record.Record{}, fmt.Errorf("failed to get record: %w", aerr)
	}
	if rec == nil {
		return record.Record{}, driver.ErrRecordNotFound
	}
	out := toRecord(namespace, setName, rec, d.now())
	out.Key = key
	return out, nil
}

func (d *aerospikeImpl) PutRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	if err := rec.Validate(); err != nil {
		return record.Record{}, err
	}
	client, err := d.conn(ctx)
	if err != nil {
		return record.Record{}, err
	}
	k, aerr := recordKey(rec.Namespace, rec.SetName, rec.Key)
	if aerr != nil {
		return record.Record{}, fmt.Errorf("failed to put record: %w", aerr)
	}
	policy := as.NewWritePolicy(0, expiration(rec.TTL))
	policy.SendKey = true
	if aerr := client.Put(policy, k, fromBins(rec.Bins)); aerr != nil {
		return record.Record{}, fmt.Errorf("failed to put record: %w", aerr)
	}
	stored, err := d.GetRecord(ctx, rec.Namespace, rec.SetName, rec.Key)
	if errors.Is(err, driver.ErrRecordNotFound) {
		return record.Record{}, fmt.Errorf("failed to put record: %s not found after write", rec.Identity())
	}
	return stored, err
}

func (d *aerospikeImpl) DeleteRecord(ctx context.Context, namespace, setName, key string) (bool, error) {
	client, err := d.conn(ctx)
	if err != nil {
		return false, err
	}
	k, aerr := recordKey(namespace, setName, key)
	if aerr != nil {
		return false, fmt.Errorf("failed to delete record: %w", aerr)
	}
	existed, aerr := client.Delete(nil, k)
	if aerr != nil {
		return false, fmt.Errorf("failed to delete record: %w", aerr)
	}
	return existed, nil
}
