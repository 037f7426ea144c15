package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connected(t *testing.T, opts ...Option) driver.IDriver {
	t.Helper()
	d := NewDriver(opts...)
	info, err := d.Connect(context.Background(), driver.ConnectParams{})
	require.NoError(t, err)
	require.True(t, info.Connected)
	return d
}

func keysOf(records []record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Key
	}
	return out
}

func user(key string, bins ...record.Field) record.Record {
	return record.Record{Namespace: "test", SetName: "users", Key: key, Bins: bins}
}

func TestNotConnected(t *testing.T) {
	ctx := context.Background()
	d := NewDriver()

	_, err := d.ListNamespaces(ctx)
	assert.ErrorIs(t, err, driver.ErrNotConnected)
	_, err = d.Scan(ctx, "test", "users", 10)
	assert.ErrorIs(t, err, driver.ErrNotConnected)
	_, err = d.PutRecord(ctx, user("a", record.Field{Name: "x", Value: record.Int(1)}))
	assert.ErrorIs(t, err, driver.ErrNotConnected)

	info, err := d.ClusterInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.Connected)
}

func TestConnect(t *testing.T) {
	ctx := context.Background()
	d := NewDriver(WithCredentials("admin", "secret"))

	info, err := d.Connect(ctx, driver.ConnectParams{User: "admin", Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, info.Connected)
	assert.NotEmpty(t, info.Message)

	info, err = d.Connect(ctx, driver.ConnectParams{User: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Equal(t, NodeName, info.ClusterName)
	require.Len(t, info.Nodes, 1)
	assert.Equal(t, "localhost:3000", info.Nodes[0].Address)

	require.NoError(t, d.Disconnect(ctx))
	require.NoError(t, d.Disconnect(ctx))
	_, err = d.ListSets(ctx, "test")
	assert.ErrorIs(t, err, driver.ErrNotConnected)
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	d := connected(t)

	stored, err := d.PutRecord(ctx, user("bob", record.Field{Name: "age", Value: record.Int(0)}))
	require.NoError(t, err)
	require.NotNil(t, stored.Generation)
	assert.Equal(t, uint32(1), *stored.Generation)
	assert.Equal(t, record.ExpirationNever, stored.Expiration)

	stored, err = d.PutRecord(ctx, user("bob", record.Field{Name: "age", Value: record.Int(1)}))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), *stored.Generation)

	got, err := d.GetRecord(ctx, "test", "users", "bob")
	require.NoError(t, err)
	age, _ := got.Bins.Get("age")
	assert.Equal(t, "1", age.Canonical())

	_, err = d.GetRecord(ctx, "test", "users", "nobody")
	assert.ErrorIs(t, err, driver.ErrRecordNotFound)

	deleted, err := d.DeleteRecord(ctx, "test", "users", "bob")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = d.DeleteRecord(ctx, "test", "users", "bob")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = d.PutRecord(ctx, record.Record{Namespace: "nope", SetName: "s", Key: "k", Bins: record.Bins{{Name: "a", Value: record.Int(1)}}})
	assert.Error(t, err)
	_, err = d.PutRecord(ctx, user("empty"))
	assert.ErrorIs(t, err, record.ErrNoBins)
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := connected(t, WithClock(func() time.Time { return now }), WithDefaultTTL(60))

	bins := record.Field{Name: "a", Value: record.Int(1)}
	ttl := int64(10)
	never := record.TTLNeverExpire

	r, err := d.PutRecord(ctx, record.Record{Namespace: "test", SetName: "s", Key: "short", Bins: record.Bins{bins}, TTL: &ttl})
	require.NoError(t, err)
	assert.Equal(t, int64(10), *r.TTL)
	assert.Equal(t, "2026-01-01T12:00:10Z", r.Expiration)

	r, err = d.PutRecord(ctx, record.Record{Namespace: "test", SetName: "s", Key: "default", Bins: record.Bins{bins}})
	require.NoError(t, err)
	assert.Equal(t, int64(60), *r.TTL)

	r, err = d.PutRecord(ctx, record.Record{Namespace: "test", SetName: "s", Key: "forever", Bins: record.Bins{bins}, TTL: &never})
	require.NoError(t, err)
	assert.Equal(t, record.ExpirationNever, r.Expiration)

	now = now.Add(30 * time.Second)
	records, err := d.Scan(ctx, "test", "s", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "forever"}, keysOf(records))
}

func TestScanAndSearch(t *testing.T) {
	ctx := context.Background()
	d := connected(t, WithSampleData())

	records, err := d.Scan(ctx, "test", "users", 0)
	require.NoError(t, err)
	assert.Len(t, records, 25)
	assert.Equal(t, "alice", records[0].Key)

	records, err = d.Scan(ctx, "test", "users", 5)
	require.NoError(t, err)
	assert.Len(t, records, 5)

	records, err = d.Scan(ctx, "test", "", 0)
	require.NoError(t, err)
	assert.Len(t, records, 28)

	records, err = d.Scan(ctx, "test", "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = d.Scan(ctx, "nope", "users", 0)
	assert.Error(t, err)

	found, err := d.Search(ctx, record.SearchRequest{Namespace: "test", SetName: "users", SearchPattern: "bob", SearchType: record.MatchPrefix})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "bobby", "bobcat"}, keysOf(found))

	// the search scans only maxResults*10 records
	found, err = d.Search(ctx, record.SearchRequest{Namespace: "test", SetName: "users", SearchPattern: "bobcat", MaxResults: 1})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	d := connected(t, WithNamespaces("test", "bar"), WithSampleData())

	namespaces, err := d.ListNamespaces(ctx)
	require.NoError(t, err)
	require.Len(t, namespaces, 2)
	assert.Equal(t, "test", namespaces[0].Name)
	assert.Equal(t, int64(28), namespaces[0].MasterObjects)
	assert.Equal(t, int64(0), namespaces[1].MasterObjects)

	sets, err := d.ListSets(ctx, "test")
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "products", sets[0].SetName)
	assert.Equal(t, int64(3), sets[0].ObjectCount)
	assert.Positive(t, sets[0].MemoryDataBytes)
	assert.Equal(t, "users", sets[1].SetName)

	sets, err = d.ListSets(ctx, "bar")
	require.NoError(t, err)
	assert.NotNil(t, sets)
	assert.Empty(t, sets)
}

func TestListingsDuringWrites(t *testing.T) {
	ctx := context.Background()
	d := connected(t, WithSampleData())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			_, err := d.PutRecord(ctx, user("busy", record.Field{Name: "n", Value: record.Int(int64(i))}))
			assert.NoError(t, err)
			_, err = d.PutRecord(ctx, user("k"+strconv.Itoa(i%7), record.Field{Name: "s", Value: record.String(strconv.Itoa(i))}))
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			_, err := d.ListSets(ctx, "test")
			assert.NoError(t, err)
			_, err = d.ListNamespaces(ctx)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	sets, err := d.ListSets(ctx, "test")
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, int64(25+1+7), sets[1].ObjectCount)
}

func TestNullSetRecord(t *testing.T) {
	ctx := context.Background()
	d := connected(t)

	rec := record.Record{Namespace: "test", Key: "orphan", Bins: record.Bins{{Name: "a", Value: record.Int(1)}}}
	_, err := d.PutRecord(ctx, rec)
	require.NoError(t, err)

	rec.Bins = record.Bins{{Name: "a", Value: record.Int(2)}}
	stored, err := d.PutRecord(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), *stored.Generation)

	got, err := d.GetRecord(ctx, "test", "", "orphan")
	require.NoError(t, err)
	assert.Empty(t, got.SetName)
	v, ok := got.Bins.Get("a")
	require.True(t, ok)
	assert.Equal(t, record.Int(2), v)

	deleted, err := d.DeleteRecord(ctx, "test", "", "orphan")
	require.NoError(t, err)
	assert.True(t, deleted)
}
