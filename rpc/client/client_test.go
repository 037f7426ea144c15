package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/driver/memory"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/server"
	transport "github.com/ValentinKolb/asadmin/rpc/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	config := common.ServerConfig{
		Endpoint:   "127.0.0.1:0",
		Driver:     common.DriverMemory,
		MaxRecords: 100,
		LogLevel:   "info",
	}
	s := server.NewRESTServer(config, transport.NewHttpServerTransport(), memory.NewDriver(memory.WithSampleData()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, endpoints ...string) IRESTClient {
	t.Helper()
	c, err := NewRESTClient(common.ClientConfig{
		Endpoints:     endpoints,
		TimeoutSecond: 5,
		RetryCount:    2,
	}, transport.NewHttpClientTransport())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRESTClient(t *testing.T) {
	ctx := context.Background()
	ts := newBackend(t)
	// endpoints may omit the scheme
	c := newClient(t, strings.TrimPrefix(ts.URL, "http://"))

	_, err := c.ListNamespaces(ctx)
	assert.ErrorIs(t, err, driver.ErrNotConnected)

	info, err := c.Connect(ctx, driver.ConnectParams{})
	require.NoError(t, err)
	require.True(t, info.Connected)

	namespaces, err := c.ListNamespaces(ctx)
	require.NoError(t, err)
	require.Len(t, namespaces, 1)

	sets, err := c.ListSets(ctx, "test")
	require.NoError(t, err)
	assert.Len(t, sets, 2)

	records, err := c.Scan(ctx, "test", "users", 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	found, err := c.Search(ctx, record.SearchRequest{
		Namespace: "test", SetName: "users", SearchPattern: "bob", SearchType: record.MatchPrefix,
	})
	require.NoError(t, err)
	assert.Len(t, found, 3)

	_, err = c.GetRecord(ctx, "test", "users", "nobody")
	assert.ErrorIs(t, err, driver.ErrRecordNotFound)

	ttl := int64(-1)
	stored, err := c.PutRecord(ctx, record.Record{
		Namespace: "test", SetName: "users", Key: "a key/with slash",
		Bins: record.Bins{{Name: "n", Value: record.Int(1)}},
		TTL:  &ttl,
	})
	require.NoError(t, err)
	assert.Equal(t, "a key/with slash", stored.Key)

	got, err := c.GetRecord(ctx, "test", "users", "a key/with slash")
	require.NoError(t, err)
	n, _ := got.Bins.Get("n")
	assert.Equal(t, "1", n.Canonical())

	_, err = c.PutRecord(ctx, record.Record{Namespace: "test", SetName: "users", Key: "k"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)

	deleted, err := c.DeleteRecord(ctx, "test", "users", "a key/with slash")
	require.NoError(t, err)
	assert.True(t, deleted)

	require.NoError(t, c.Disconnect(ctx))
	info, err = c.ClusterInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.Connected)

	stats := c.Stats()
	ops := make([]string, len(stats))
	for i, s := range stats {
		ops[i] = s.Op
		assert.Positive(t, s.Count)
	}
	assert.Subset(t, ops, []string{"connect", "namespaces", "scan", "search", "get", "put", "delete"})
	assert.Contains(t, FormatStats(stats), "OPERATION")
}

func TestRoundRobinRetry(t *testing.T) {
	ctx := context.Background()
	ts := newBackend(t)

	// a closed server makes every other attempt fail
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	c := newClient(t, deadURL, ts.URL)
	for i := 0; i < 4; i++ {
		_, err := c.ClusterInfo(ctx)
		require.NoError(t, err, "attempt %d was not retried on the live endpoint", i)
	}
}

func TestErrorMapping(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case common.RouteNamespaces:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer ts.Close()
	c := newClient(t, ts.URL)

	_, err := c.ListNamespaces(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "boom", statusErr.Msg)

	_, err = c.ClusterInfo(context.Background())
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Msg, "502")

	assert.EqualValues(t, 2, calls.Load(), "error responses are not retried")
}
