package aerospike

import (
	"context"
	"encoding/hex"
	"math"
	"testing"
	"time"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/record"
	as "github.com/aerospike/aerospike-client-go/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs(t *testing.T) {
	got := parsePairs("objects=12:master-objects=10;replication-factor=2;storage-engine=device:garbage;=x")
	want := map[string]string{
		"objects":            "12",
		"master-objects":     "10",
		"replication-factor": "2",
		"storage-engine":     "device",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parsePairs mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, parsePairs(""))
}

func TestParseNamespace(t *testing.T) {
	ns := parseNamespace("test", "master-objects=42;replication-factor=2;storage-engine=memory;nsup-period=120")
	assert.Equal(t, "test", ns.Name)
	assert.EqualValues(t, 42, ns.MasterObjects)
	assert.EqualValues(t, 2, ns.ReplicationFactor)
	assert.Equal(t, "memory", ns.StorageEngine)
	assert.Equal(t, "120", ns.Config["nsup-period"])

	empty := parseNamespace("bar", "")
	assert.Zero(t, empty.MasterObjects)
	assert.Empty(t, empty.StorageEngine)
}

func TestParseSets(t *testing.T) {
	info := "ns=test:set=users:objects=25:memory_data_bytes=2048:device_data_bytes=0;" +
		"ns=test:set_name=legacy:objects=1;" +
		"ns=test:objects=3;" +
		"ns=test:set=products:objects=oops:device_data_bytes=512;"

	want := []record.Set{
		{Namespace: "test", SetName: "legacy", ObjectCount: 1},
		{Namespace: "test", SetName: "products", DeviceDataBytes: 512},
		{Namespace: "test", SetName: "users", ObjectCount: 25, MemoryDataBytes: 2048},
	}
	if diff := cmp.Diff(want, parseSets("test", info)); diff != "" {
		t.Errorf("parseSets mismatch (-want +got):\n%s", diff)
	}

	none := parseSets("test", "")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestToRecord(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	key, err := as.NewKey("test", "users", "alice")
	require.NoError(t, err)

	rec := toRecord("test", "users", &as.Record{
		Key: key,
		Bins: as.BinMap{
			"name":    "Alice",
			"age":     30,
			"tags":    []interface{}{"a", "b"},
			"profile": map[interface{}]interface{}{"city": "Berlin", "zip": 10115},
		},
		Generation: 3,
		Expiration: 60,
	}, now)

	assert.Equal(t, "alice", rec.Key)
	assert.Equal(t, []string{"age", "name", "profile", "tags"}, rec.Bins.Names())
	require.NotNil(t, rec.Generation)
	assert.EqualValues(t, 3, *rec.Generation)
	require.NotNil(t, rec.TTL)
	assert.EqualValues(t, 60, *rec.TTL)
	assert.Equal(t, "2026-01-02T03:05:05Z", rec.Expiration)

	profile, _ := rec.Bins.Get("profile")
	assert.Equal(t, `{"city":"Berlin","zip":10115}`, profile.Canonical())

	never := toRecord("test", "users", &as.Record{Key: key, Bins: as.BinMap{"x": 1}, Expiration: math.MaxUint32}, now)
	assert.EqualValues(t, record.TTLNeverExpire, *never.TTL)
	assert.Equal(t, record.ExpirationNever, never.Expiration)
}

func TestKeyString(t *testing.T) {
	digest := make([]byte, 20)
	for i := range digest {
		digest[i] = byte(i)
	}
	key, err := as.NewKeyWithDigest("test", "users", nil, digest)
	require.NoError(t, err)
	assert.Equal(t, DigestKeyPrefix+hex.EncodeToString(digest), keyString(key))

	intKey, err := as.NewKey("test", "users", 42)
	require.NoError(t, err)
	assert.Equal(t, "42", keyString(intKey))

	assert.Empty(t, keyString(nil))
}

func TestRecordKeyDigest(t *testing.T) {
	digest := make([]byte, 20)
	for i := range digest {
		digest[i] = byte(0xa0 + i)
	}
	stored, err := as.NewKeyWithDigest("test", "", nil, digest)
	require.NoError(t, err)

	k, err := recordKey("test", "", keyString(stored))
	require.NoError(t, err)
	assert.Equal(t, digest, k.Digest())
	assert.Equal(t, "test", k.Namespace())
	assert.Empty(t, k.SetName())

	user, err := recordKey("test", "users", "alice")
	require.NoError(t, err)
	expected, err := as.NewKey("test", "users", "alice")
	require.NoError(t, err)
	assert.Equal(t, expected.Digest(), user.Digest())
	assert.Equal(t, "alice", keyString(user))

	for _, key := range []string{"digest:", "digest:zz", DigestKeyPrefix + hex.EncodeToString(digest[:10])} {
		k, err := recordKey("test", "users", key)
		require.NoError(t, err)
		assert.Equal(t, key, keyString(k), "%q is an ordinary user key", key)
	}
}

func TestFromBins(t *testing.T) {
	nested, err := record.ParseJSON([]byte(`{"a":[1,2.5,true]}`))
	require.NoError(t, err)
	bins := record.Bins{
		{Name: "name", Value: record.String("Bob")},
		{Name: "age", Value: record.Int(41)},
		{Name: "nested", Value: nested},
	}
	want := as.BinMap{
		"name":   "Bob",
		"age":    int64(41),
		"nested": map[string]any{"a": []any{int64(1), 2.5, true}},
	}
	if diff := cmp.Diff(want, fromBins(bins)); diff != "" {
		t.Errorf("fromBins mismatch (-want +got):\n%s", diff)
	}
}

func TestExpiration(t *testing.T) {
	ttl := func(v int64) *int64 { return &v }
	assert.EqualValues(t, as.TTLServerDefault, expiration(nil))
	assert.EqualValues(t, as.TTLServerDefault, expiration(ttl(0)))
	assert.EqualValues(t, uint32(as.TTLDontExpire), expiration(ttl(-1)))
	assert.EqualValues(t, 3600, expiration(ttl(3600)))
	assert.EqualValues(t, math.MaxUint32-2, expiration(ttl(math.MaxUint32)))
}

func TestNotConnected(t *testing.T) {
	ctx := context.Background()
	d := NewDriver(time.Second)

	info, err := d.ClusterInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.Connected)

	_, err = d.ListNamespaces(ctx)
	assert.ErrorIs(t, err, driver.ErrNotConnected)
	_, err = d.Scan(ctx, "test", "users", 10)
	assert.ErrorIs(t, err, driver.ErrNotConnected)
	_, err = d.GetRecord(ctx, "test", "users", "alice")
	assert.ErrorIs(t, err, driver.ErrNotConnected)
	_, err = d.DeleteRecord(ctx, "test", "users", "alice")
	assert.ErrorIs(t, err, driver.ErrNotConnected)
	assert.NoError(t, d.Disconnect(ctx))
}
