package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/driver/memory"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedDriver wraps a driver, counts record requests and can hold them back or fail them.
type gatedDriver struct {
	driver.IDriver

	mu       sync.Mutex
	scans    int
	searches int
	puts     int
	gates    map[string]chan struct{} // pattern ("" for scans) -> release
	entered  chan string
	failWith error
}

func newGatedDriver(d driver.IDriver) *gatedDriver {
	return &gatedDriver{IDriver: d, gates: make(map[string]chan struct{}), entered: make(chan string, 8)}
}

func (p *gatedDriver) hold(pattern string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	p.gates[pattern] = ch
	return ch
}

func (p *gatedDriver) wait(pattern string) error {
	p.mu.Lock()
	gate := p.gates[pattern]
	delete(p.gates, pattern)
	err := p.failWith
	p.mu.Unlock()
	if gate != nil {
		p.entered <- pattern
		<-gate
	}
	return err
}

func (p *gatedDriver) Scan(ctx context.Context, ns, set string, limit int) ([]record.Record, error) {
	p.mu.Lock()
	p.scans++
	p.mu.Unlock()
	if err := p.wait(""); err != nil {
		return nil, err
	}
	return p.IDriver.Scan(ctx, ns, set, limit)
}

func (p *gatedDriver) Search(ctx context.Context, req record.SearchRequest) ([]record.Record, error) {
	p.mu.Lock()
	p.searches++
	p.mu.Unlock()
	if err := p.wait(req.SearchPattern); err != nil {
		return nil, err
	}
	return p.IDriver.Search(ctx, req)
}

func (p *gatedDriver) PutRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	p.mu.Lock()
	p.puts++
	p.mu.Unlock()
	return p.IDriver.PutRecord(ctx, rec)
}

func (p *gatedDriver) counts() (scans, searches, puts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scans, p.searches, p.puts
}

func setup(t *testing.T) (*Dispatcher, *gatedDriver) {
	t.Helper()
	p := newGatedDriver(memory.NewDriver(memory.WithSampleData()))
	d := NewDispatcher(p, NewCoordinator(DefaultPageSize), 0)
	info, err := d.Connect(context.Background(), driver.ConnectParams{})
	require.NoError(t, err)
	require.True(t, info.Connected)
	return d, p
}

func keysOf(records []record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Key
	}
	return out
}

func TestConnectLoadsNamespaces(t *testing.T) {
	d, _ := setup(t)
	s := d.View().Snapshot()
	assert.True(t, s.Connection.Connected)
	require.Len(t, s.Namespaces, 1)
	assert.Equal(t, "test", s.Namespaces[0].Name)
	assert.Equal(t, StateReady, s.Panel(PanelNamespaces).State)

	require.NoError(t, d.SelectNamespace(context.Background(), "test"))
	s = d.View().Snapshot()
	assert.Len(t, s.Sets, 2)
	ns, ok := s.SelectedNamespace()
	assert.True(t, ok)
	assert.Equal(t, int64(28), ns.MasterObjects)
}

func TestConnectRefused(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(memory.NewDriver(memory.WithCredentials("admin", "secret")), NewCoordinator(0), 0)
	info, err := d.Connect(ctx, driver.ConnectParams{User: "admin", Password: "nope"})
	assert.False(t, info.Connected)
	assert.True(t, IsKind(err, KindConnection))
	assert.NotEmpty(t, d.View().Snapshot().Notice)

	_, err = d.Connect(ctx, driver.ConnectParams{User: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Empty(t, d.View().Snapshot().Notice)

	require.NoError(t, d.Disconnect(ctx))
	s := d.View().Snapshot()
	assert.False(t, s.Connection.Connected)
	assert.Empty(t, s.Namespaces)
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	drv := memory.NewDriver()
	_, err := drv.Connect(ctx, driver.ConnectParams{})
	require.NoError(t, err)

	d := NewDispatcher(drv, NewCoordinator(0), 0)
	info, err := d.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, info.Connected)
	assert.Len(t, d.View().Snapshot().Namespaces, 1)
}

func TestLoadSet(t *testing.T) {
	d, p := setup(t)
	require.NoError(t, d.LoadSet(context.Background(), "test", "users"))

	s := d.View().Snapshot()
	assert.Equal(t, "users", s.Selection.Set)
	assert.Len(t, s.Records, 25)
	assert.Equal(t, 2, s.TotalPages)
	assert.Equal(t, []string{"name", "age", "active", "profile"}, s.Columns)
	assert.Len(t, s.Sets, 2, "selecting the namespace loads its sets")

	scans, searches, _ := p.counts()
	assert.Equal(t, 1, scans)
	assert.Equal(t, 0, searches)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("pattern runs a filtered query", func(t *testing.T) {
		d, p := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))
		require.NoError(t, d.View().GoToPage(2))

		require.NoError(t, d.Search(ctx, "bob", record.MatchPrefix, false))
		s := d.View().Snapshot()
		assert.Equal(t, []string{"bob", "bobby", "bobcat"}, keysOf(s.Records))
		assert.Equal(t, 1, s.Page)
		_, searches, _ := p.counts()
		assert.Equal(t, 1, searches)
	})

	t.Run("blank pattern equals clear", func(t *testing.T) {
		for _, pattern := range []string{"", "   ", "\t"} {
			d, p := setup(t)
			require.NoError(t, d.LoadSet(ctx, "test", "users"))
			require.NoError(t, d.Search(ctx, "bob", record.MatchExact, false))
			require.Len(t, d.View().Snapshot().Records, 1)

			require.NoError(t, d.Search(ctx, pattern, record.MatchPrefix, false))
			blank := d.View().Snapshot()
			require.NoError(t, d.Search(ctx, "bob", record.MatchPrefix, true))
			cleared := d.View().Snapshot()

			assert.Equal(t, keysOf(cleared.Records), keysOf(blank.Records))
			assert.Len(t, blank.Records, 25)
			scans, searches, _ := p.counts()
			assert.Equal(t, 3, scans)
			assert.Equal(t, 1, searches)
		}
	})

	t.Run("no selection is a no-op", func(t *testing.T) {
		d, p := setup(t)
		before := d.View().Snapshot()
		require.NoError(t, d.Search(ctx, "bob", record.MatchPrefix, false))
		assert.Equal(t, before, d.View().Snapshot())

		require.NoError(t, d.SelectNamespace(ctx, "test"))
		require.NoError(t, d.Search(ctx, "bob", record.MatchPrefix, false))
		scans, searches, _ := p.counts()
		assert.Zero(t, scans)
		assert.Zero(t, searches)
	})

	t.Run("failure clears the records", func(t *testing.T) {
		d, p := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))
		p.failWith = errors.New("cluster unavailable")

		err := d.Search(ctx, "bob", record.MatchPrefix, false)
		assert.True(t, IsKind(err, KindFetch))
		assert.Contains(t, err.Error(), "cluster unavailable")
		s := d.View().Snapshot()
		assert.Empty(t, s.Records)
		assert.Equal(t, StateError, s.Panel(PanelRecords).State)
	})
}

func TestStaleResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("slow older search is discarded", func(t *testing.T) {
		d, p := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))

		release := p.hold("bob")
		done := make(chan error, 1)
		go func() { done <- d.Search(ctx, "bob", record.MatchPrefix, false) }()
		<-p.entered

		require.NoError(t, d.Search(ctx, "alice", record.MatchExact, false))
		close(release)
		require.NoError(t, <-done)

		assert.Equal(t, []string{"alice"}, keysOf(d.View().Snapshot().Records))
	})

	t.Run("response for a previous set is discarded", func(t *testing.T) {
		d, p := setup(t)
		require.NoError(t, d.SelectNamespace(ctx, "test"))
		require.NoError(t, d.View().SelectSet("users"))

		release := p.hold("")
		done := make(chan error, 1)
		go func() { done <- d.Refresh(ctx) }()
		<-p.entered

		require.NoError(t, d.LoadSet(ctx, "test", "products"))
		close(release)
		require.NoError(t, <-done)

		s := d.View().Snapshot()
		assert.Equal(t, "products", s.Selection.Set)
		assert.Equal(t, []string{"sku-1001", "sku-1002", "sku-1003"}, keysOf(s.Records))
	})

	t.Run("response after a namespace change is discarded", func(t *testing.T) {
		d, p := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))

		release := p.hold("bob")
		done := make(chan error, 1)
		go func() { done <- d.Search(ctx, "bob", record.MatchPrefix, false) }()
		<-p.entered

		d.View().SelectNamespace("test")
		close(release)
		require.NoError(t, <-done)
		assert.Empty(t, d.View().Snapshot().Records)
	})
}

func TestMutations(t *testing.T) {
	ctx := context.Background()
	bins := record.Bins{{Name: "name", Value: record.String("new")}}

	t.Run("save refreshes and closes the editor", func(t *testing.T) {
		d, _ := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))
		rec := d.View().Snapshot().Records[0]
		d.View().SelectRecord(&rec)

		require.NoError(t, d.SaveEdit(ctx, rec, `{"name":"changed","age":0}`, ""))
		s := d.View().Snapshot()
		assert.Nil(t, s.Selection.Record)
		v, _ := s.Records[0].Bins.Get("name")
		assert.Equal(t, "changed", record.Display(v))
		assert.Equal(t, uint32(2), *s.Records[0].Generation)
	})

	t.Run("edit of a record without a set is saved", func(t *testing.T) {
		d, p := setup(t)
		orphan := record.Record{Namespace: "test", Key: "orphan", Bins: bins}
		require.NoError(t, d.AddRecord(ctx, orphan))

		require.NoError(t, d.SaveEdit(ctx, orphan, `{"name":"changed"}`, ""))
		_, _, puts := p.counts()
		assert.Equal(t, 2, puts)
		assert.Empty(t, d.View().Snapshot().Notice)

		got, err := p.GetRecord(ctx, "test", "", "orphan")
		require.NoError(t, err)
		v, _ := got.Bins.Get("name")
		assert.Equal(t, "changed", record.Display(v))
	})

	t.Run("malformed edit is a validation error and writes nothing", func(t *testing.T) {
		d, p := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))
		rec := d.View().Snapshot().Records[0]

		err := d.SaveEdit(ctx, rec, `{"name":`, "")
		assert.True(t, IsKind(err, KindValidation))
		assert.ErrorIs(t, err, record.ErrMalformed)
		_, _, puts := p.counts()
		assert.Zero(t, puts)
		assert.NotEmpty(t, d.View().Snapshot().Notice)
	})

	t.Run("duplicate bins are rejected before any write", func(t *testing.T) {
		d, p := setup(t)
		err := d.AddForm(ctx, record.Form{
			Namespace: "test", SetName: "users", Key: "dup",
			Bins: []record.BinInput{
				{Name: "a", Value: "1", Type: record.FieldString},
				{Name: "a", Value: "2", Type: record.FieldString},
			},
		})
		assert.True(t, IsKind(err, KindValidation))
		assert.ErrorIs(t, err, record.ErrDuplicateBin)
		_, _, puts := p.counts()
		assert.Zero(t, puts)
	})

	t.Run("add refreshes only the displayed set", func(t *testing.T) {
		d, p := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))

		require.NoError(t, d.AddRecord(ctx, record.Record{Namespace: "test", SetName: "products", Key: "sku-9", Bins: bins}))
		scans, _, _ := p.counts()
		assert.Equal(t, 1, scans)

		require.NoError(t, d.AddRecord(ctx, record.Record{Namespace: "test", SetName: "users", Key: "zed", Bins: bins}))
		scans, _, _ = p.counts()
		assert.Equal(t, 2, scans)
		assert.Len(t, d.View().Snapshot().Records, 26)
	})

	t.Run("delete clears the deleted selection", func(t *testing.T) {
		d, _ := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))
		s := d.View().Snapshot()
		other := s.Records[1]
		d.View().SelectRecord(&other)

		require.NoError(t, d.DeleteRecord(ctx, s.Records[0]))
		sel := d.View().Selection()
		require.NotNil(t, sel.Record, "another record stays selected")

		require.NoError(t, d.DeleteRecord(ctx, other))
		s = d.View().Snapshot()
		assert.Nil(t, s.Selection.Record)
		assert.Len(t, s.Records, 23)
	})

	t.Run("mutation failure leaves the records untouched", func(t *testing.T) {
		d, _ := setup(t)
		require.NoError(t, d.LoadSet(ctx, "test", "users"))
		before := d.View().Snapshot().Records

		err := d.AddRecord(ctx, record.Record{Namespace: "missing", SetName: "users", Key: "k", Bins: bins})
		assert.True(t, IsKind(err, KindMutation))
		assert.Equal(t, keysOf(before), keysOf(d.View().Snapshot().Records))
		assert.Contains(t, d.View().Snapshot().Notice, "failed to save record")
	})
}
