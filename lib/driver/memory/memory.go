package memory

import (
	"context"
	"fmt"
	"math"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/puzpuzpuz/xsync/v3"
)

const NodeName = "memory"

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

type Option func(*memoryImpl)

// WithNamespaces sets the namespaces that exist in the store.
// Without this option the store has the single namespace "test".
func WithNamespaces(names ...string) Option {
	return func(m *memoryImpl) {
		m.namespaces = append([]string(nil), names...)
	}
}

// WithCredentials makes Connect fail unless exactly these credentials are given.
func WithCredentials(user, password string) Option {
	return func(m *memoryImpl) {
		m.user, m.password = user, password
	}
}

// WithDefaultTTL sets the ttl used for records written without one. 0 means never expire.
func WithDefaultTTL(seconds int64) Option {
	return func(m *memoryImpl) {
		m.defaultTTL = seconds
	}
}

// WithClock replaces the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(m *memoryImpl) {
		m.now = now
	}
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

type entry struct {
	bins       record.Bins
	generation uint32
	expiresAt  time.Time // zero means never
}

type memSet struct {
	mu      sync.RWMutex
	ns      string
	name    string
	order   []string
	entries map[string]*entry
}

type memoryImpl struct {
	mu        sync.RWMutex
	connected bool
	params    driver.ConnectParams

	namespaces []string
	sets       *xsync.MapOf[string, *memSet]

	user       string
	password   string
	defaultTTL int64
	now        func() time.Time
}

// NewDriver creates an in process driver. It starts disconnected.
func NewDriver(opts ...Option) driver.IDriver {
	m := &memoryImpl{
		namespaces: []string{"test"},
		sets:       xsync.NewMapOf[string, *memSet](),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func setID(ns, set string) string {
	return ns + "\x00" + set
}

func (m *memoryImpl) hasNamespace(ns string) bool {
	for _, n := range m.namespaces {
		if n == ns {
			return true
		}
	}
	return false
}

func (m *memoryImpl) checkConnected(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.connected {
		return driver.ErrNotConnected
	}
	return nil
}

// setsOf returns the sets of a namespace sorted by name.
func (m *memoryImpl) setsOf(ns string) []*memSet {
	var out []*memSet
	m.sets.Range(func(_ string, s *memSet) bool {
		if s.ns == ns {
			out = append(out, s)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

func (m *memoryImpl) Connect(ctx context.Context, params driver.ConnectParams) (record.ConnectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return record.ConnectionInfo{}, err
	}
	params = params.WithDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()

	// a new connection attempt always drops the previous one
	m.connected = false
	if m.user != "" && (params.User != m.user || params.Password != m.password) {
		driver.Logger.Warningf("memory driver rejected credentials for user %q", params.User)
		return record.ConnectionInfo{Connected: false, Message: "Failed to connect: authentication failed"}, nil
	}
	m.connected = true
	m.params = params
	driver.Logger.Infof("memory driver connected as %s", net.JoinHostPort(params.Host, strconv.Itoa(params.Port)))
	return m.info(), nil
}

func (m *memoryImpl) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *memoryImpl) ClusterInfo(ctx context.Context) (record.ConnectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return record.ConnectionInfo{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.connected {
		return record.ConnectionInfo{Connected: false}, nil
	}
	return m.info(), nil
}

// info must be called with m.mu held.
func (m *memoryImpl) info() record.ConnectionInfo {
	nodes := []record.Node{{
		Name:    NodeName,
		Address: net.JoinHostPort(m.params.Host, strconv.Itoa(m.params.Port)),
		Active:  true,
	}}
	return record.ConnectionInfo{
		Connected:   true,
		ClusterName: driver.ClusterName(nodes),
		Nodes:       nodes,
	}
}

// --------------------------------------------------------------------------
// Namespaces and sets
// --------------------------------------------------------------------------

func (m *memoryImpl) ListNamespaces(ctx context.Context) ([]record.Namespace, error) {
	if err := m.checkConnected(ctx); err != nil {
		return nil, err
	}
	out := make([]record.Namespace, 0, len(m.namespaces))
	for _, ns := range m.namespaces {
		sets := m.listSets(ns)
		var objects int64
		for _, s := range sets {
			objects += s.ObjectCount
		}
		out = append(out, record.Namespace{
			Name:              ns,
			MasterObjects:     objects,
			ReplicationFactor: 1,
			StorageEngine:     "memory",
			Config: map[string]string{
				"default-ttl":        strconv.FormatInt(m.defaultTTL, 10),
				"replication-factor": "1",
				"storage-engine":     "memory",
			},
		})
	}
	return out, nil
}

func (m *memoryImpl) ListSets(ctx context.Context, namespace string) ([]record.Set, error) {
	if err := m.checkConnected(ctx); err != nil {
		return nil, err
	}
	return m.listSets(namespace), nil
}

func (m *memoryImpl) listSets(ns string) []record.Set {
	out := make([]record.Set, 0)
	for _, s := range m.setsOf(ns) {
		count, size := s.stats(m.now())
		out = append(out, record.Set{
			Namespace:       ns,
			SetName:         s.name,
			ObjectCount:     count,
			MemoryDataBytes: size,
		})
	}
	return out
}

// stats returns the number of live records and their encoded bin size.
func (s *memSet) stats(now time.Time) (count, size int64) {
	live := s.live(now)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range live {
		raw, _ := e.bins.MarshalJSON()
		size += int64(len(raw))
	}
	return int64(len(live)), size
}

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

// live returns the unexpired entries by key and drops the expired ones.
func (s *memSet) live(now time.Time) map[string]*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*entry, len(s.entries))
	kept := s.order[:0]
	for _, k := range s.order {
		e := s.entries[k]
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.entries, k)
			continue
		}
		kept = append(kept, k)
		out[k] = e
	}
	s.order = kept
	return out
}

func (s *memSet) scan(now time.Time, limit int) []record.Record {
	live := s.live(now)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record.Record, 0)
	for _, k := range s.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		e, ok := live[k]
		if !ok {
			continue
		}
		out = append(out, toRecord(s.ns, s.name, k, e, now))
	}
	return out
}

func toRecord(ns, set, key string, e *entry, now time.Time) record.Record {
	gen := e.generation
	r := record.Record{
		Namespace:  ns,
		SetName:    set,
		Key:        key,
		Bins:       e.bins.Clone(),
		Generation: &gen,
	}
	ttl := record.TTLNeverExpire
	r.Expiration = record.ExpirationNever
	if !e.expiresAt.IsZero() {
		ttl = int64(math.Ceil(e.expiresAt.Sub(now).Seconds()))
		r.Expiration = e.expiresAt.UTC().Format(time.RFC3339)
	}
	r.TTL = &ttl
	return r
}

func (m *memoryImpl) scanNamespace(ns, set string, limit int) ([]record.Record, error) {
	if !m.hasNamespace(ns) {
		return nil, fmt.Errorf("namespace %q not found", ns)
	}
	now := m.now()
	if set != "" {
		s, ok := m.sets.Load(setID(ns, set))
		if !ok {
			return []record.Record{}, nil
		}
		return s.scan(now, limit), nil
	}
	out := make([]record.Record, 0)
	for _, s := range m.setsOf(ns) {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(out)
			if remaining <= 0 {
				break
			}
		}
		out = append(out, s.scan(now, remaining)...)
	}
	return out, nil
}

func (m *memoryImpl) Scan(ctx context.Context, namespace, setName string, maxRecords int) ([]record.Record, error) {
	if err := m.checkConnected(ctx); err != nil {
		return nil, err
	}
	if maxRecords <= 0 {
		maxRecords = driver.DefaultMaxRecords
	}
	return m.scanNamespace(namespace, setName, maxRecords)
}

func (m *memoryImpl) Search(ctx context.Context, req record.SearchRequest) ([]record.Record, error) {
	if err := m.checkConnected(ctx); err != nil {
		return nil, err
	}
	scanned, err := m.scanNamespace(req.Namespace, req.SetName, driver.SearchScanLimit(req))
	if err != nil {
		return nil, err
	}
	return driver.Filter(scanned, req), nil
}

func (m *memoryImpl) GetRecord(ctx context.Context, namespace, setName, key string) (record.Record, error) {
	if err := m.checkConnected(ctx); err != nil {
		return record.Record{}, err
	}
	if !m.hasNamespace(namespace) {
		return record.Record{}, fmt.Errorf("namespace %q not found", namespace)
	}
	s, ok := m.sets.Load(setID(namespace, setName))
	if !ok {
		return record.Record{}, driver.ErrRecordNotFound
	}
	now := m.now()
	e, ok := s.live(now)[key]
	if !ok {
		return record.Record{}, driver.ErrRecordNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toRecord(namespace, setName, key, e, now), nil
}

func (m *memoryImpl) PutRecord(ctx context.Context, rec record.Record) (record.Record, error) {
	if err := m.checkConnected(ctx); err != nil {
		return record.Record{}, err
	}
	return m.put(rec)
}

func (m *memoryImpl) put(rec record.Record) (record.Record, error) {
	if err := rec.Validate(); err != nil {
		return record.Record{}, err
	}
	if !m.hasNamespace(rec.Namespace) {
		return record.Record{}, fmt.Errorf("namespace %q not found", rec.Namespace)
	}

	now := m.now()
	ttl := m.defaultTTL
	if rec.TTL != nil && *rec.TTL != 0 {
		ttl = *rec.TTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(time.Duration(ttl) * time.Second)
	}

	s, _ := m.sets.LoadOrCompute(setID(rec.Namespace, rec.SetName), func() *memSet {
		return &memSet{ns: rec.Namespace, name: rec.SetName, entries: make(map[string]*entry)}
	})
	s.live(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entries[rec.Key]
	if !exists {
		e = &entry{}
		s.entries[rec.Key] = e
		s.order = append(s.order, rec.Key)
	}
	e.bins = rec.Bins.Clone()
	e.generation++
	e.expiresAt = expiresAt
	driver.Logger.Debugf("memory driver put %s (generation %d)", rec.Identity(), e.generation)
	return toRecord(rec.Namespace, rec.SetName, rec.Key, e, now), nil
}

func (m *memoryImpl) DeleteRecord(ctx context.Context, namespace, setName, key string) (bool, error) {
	if err := m.checkConnected(ctx); err != nil {
		return false, err
	}
	if !m.hasNamespace(namespace) {
		return false, fmt.Errorf("namespace %q not found", namespace)
	}
	s, ok := m.sets.Load(setID(namespace, setName))
	if !ok {
		return false, nil
	}
	if _, ok := s.live(m.now())[key]; !ok {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}
