package view

import (
	"sync"

	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("view")

// --------------------------------------------------------------------------
// Panels
// --------------------------------------------------------------------------

// Panel is one of the data panels of the view.
type Panel uint8

const (
	PanelNamespaces Panel = iota
	PanelSets
	PanelRecords
	panelCount
)

func (p Panel) String() string {
	switch p {
	case PanelNamespaces:
		return "namespaces"
	case PanelSets:
		return "sets"
	case PanelRecords:
		return "records"
	default:
		return "unknown"
	}
}

// PanelState is the display state of a panel. The states are exclusive.
type PanelState uint8

const (
	StateEmpty PanelState = iota
	StateLoading
	StateError
	StateReady
)

func (s PanelState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// PanelStatus is the state of a panel. Refreshing is only set in StateReady:
// the panel shows its previous data while a reload is in flight.
type PanelStatus struct {
	State      PanelState
	Refreshing bool
	Message    string // set in StateError
}

// --------------------------------------------------------------------------
// Selection and tickets
// --------------------------------------------------------------------------

// Selection is the strict namespace > set > record hierarchy of the view.
// The set name may be empty, so HasSet tells whether a set is selected.
type Selection struct {
	Namespace string
	Set       string
	HasSet    bool
	Record    *record.Record
}

// Ticket identifies one dispatched request. Only the newest ticket of a
// panel whose selection context still matches may change the view.
type Ticket struct {
	panel     Panel
	seq       uint64
	namespace string
	set       string
}

func (t Ticket) Panel() Panel      { return t.panel }
func (t Ticket) Namespace() string { return t.namespace }
func (t Ticket) Set() string       { return t.set }

// --------------------------------------------------------------------------
// Snapshot
// --------------------------------------------------------------------------

// Snapshot is a consistent copy of the view state.
type Snapshot struct {
	Connection record.ConnectionInfo
	Namespaces []record.Namespace
	Sets       []record.Set
	Selection  Selection

	Records     []record.Record // the whole collection
	PageRecords []record.Record // the records of the current page
	Columns     []string        // bin names of the collection in first seen order
	Page        int
	PageSize    int
	TotalPages  int

	Panels [panelCount]PanelStatus
	Notice string // last connection, validation or mutation message
}

// Panel returns the status of a panel.
func (s Snapshot) Panel(p Panel) PanelStatus { return s.Panels[p] }

// SelectedNamespace returns the namespace entry of the current selection.
func (s Snapshot) SelectedNamespace() (record.Namespace, bool) {
	for _, ns := range s.Namespaces {
		if ns.Name == s.Selection.Namespace {
			return ns, true
		}
	}
	return record.Namespace{}, false
}

// --------------------------------------------------------------------------
// Coordinator
// --------------------------------------------------------------------------

// Coordinator owns the selection, the record collection and the pager. All
// transitions are applied under one lock, so a reader never observes a set
// or record that belongs to a previous namespace.
type Coordinator struct {
	mu sync.Mutex

	conn       record.ConnectionInfo
	namespaces []record.Namespace
	sets       []record.Set
	sel        Selection
	records    []record.Record
	pager      *Pager

	panels [panelCount]PanelStatus
	seq    [panelCount]uint64
	notice string
}

// NewCoordinator returns a disconnected view. A non positive page size uses
// DefaultPageSize.
func NewCoordinator(pageSize int) *Coordinator {
	return &Coordinator{pager: NewPager(pageSize)}
}

// invalidate makes all outstanding tickets of the panels stale and empties them.
func (c *Coordinator) invalidate(panels ...Panel) {
	for _, p := range panels {
		c.seq[p]++
		c.clear(p)
	}
}

func (c *Coordinator) clear(p Panel) {
	c.panels[p] = PanelStatus{}
	switch p {
	case PanelNamespaces:
		c.namespaces = nil
	case PanelSets:
		c.sets = nil
	case PanelRecords:
		c.records = nil
		c.pager.Reset(0)
	}
}

// SelectNamespace selects a namespace and clears the set, the record and
// the record collection.
func (c *Coordinator) SelectNamespace(ns string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = Selection{Namespace: ns}
	c.invalidate(PanelSets, PanelRecords)
	Logger.Debugf("selected namespace %q", ns)
}

// SelectSet selects a set of the selected namespace and clears the selected
// record. Selecting a different set also drops the records of the previous one.
func (c *Coordinator) SelectSet(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sel.Namespace == "" {
		return ErrNoNamespace
	}
	changed := !c.sel.HasSet || c.sel.Set != name
	c.sel.Set = name
	c.sel.HasSet = true
	c.sel.Record = nil
	if changed {
		c.invalidate(PanelRecords)
	}
	Logger.Debugf("selected set %q in namespace %q", name, c.sel.Namespace)
	return nil
}

// SelectRecord sets or (with nil) clears the record opened for editing.
func (c *Coordinator) SelectRecord(rec *record.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec == nil {
		c.sel.Record = nil
		return
	}
	cp := rec.Clone()
	c.sel.Record = &cp
}

// UpdateConnectionStatus stores the connection status and resets the whole
// selection and all data, whether the new status is connected or not.
func (c *Coordinator) UpdateConnectionStatus(info record.ConnectionInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = info
	c.sel = Selection{}
	c.invalidate(PanelNamespaces, PanelSets, PanelRecords)
	Logger.Debugf("connection status changed (connected=%t)", info.Connected)
}

// UpdateRecords replaces the record collection with the result of the
// request t and returns to page 1. Stale results are discarded and false
// is returned.
func (c *Coordinator) UpdateRecords(t Ticket, records []record.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.panel != PanelRecords || !c.current(t) {
		Logger.Debugf("discarding stale %s result for %s/%s", t.panel, t.namespace, t.set)
		return false
	}
	c.records = cloneRecords(records)
	c.pager.Reset(len(c.records))
	c.ready(PanelRecords, len(c.records))
	return true
}

// --------------------------------------------------------------------------
// Request tracking
// --------------------------------------------------------------------------

// Begin issues a ticket for a request that loads a panel. It returns false,
// without changing anything, when the selection does not allow the request:
// sets need a namespace and records need a namespace and a set.
func (c *Coordinator) Begin(p Panel) (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch p {
	case PanelSets:
		if c.sel.Namespace == "" {
			return Ticket{}, false
		}
	case PanelRecords:
		if c.sel.Namespace == "" || !c.sel.HasSet {
			return Ticket{}, false
		}
	}
	c.seq[p]++
	t := Ticket{panel: p, seq: c.seq[p], namespace: c.sel.Namespace, set: c.sel.Set}

	st := &c.panels[p]
	if st.State == StateReady {
		st.Refreshing = true
	} else {
		*st = PanelStatus{State: StateLoading}
	}
	return t, true
}

// current must be called with c.mu held.
func (c *Coordinator) current(t Ticket) bool {
	if t.seq == 0 || t.seq != c.seq[t.panel] {
		return false
	}
	switch t.panel {
	case PanelSets:
		return t.namespace == c.sel.Namespace
	case PanelRecords:
		return c.sel.HasSet && t.namespace == c.sel.Namespace && t.set == c.sel.Set
	}
	return true
}

// Current reports whether t is still the newest request of its panel.
func (c *Coordinator) Current(t Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current(t)
}

func (c *Coordinator) ready(p Panel, n int) {
	if n == 0 {
		c.panels[p] = PanelStatus{State: StateEmpty}
		return
	}
	c.panels[p] = PanelStatus{State: StateReady}
}

// ApplyNamespaces stores the namespace listing of request t.
func (c *Coordinator) ApplyNamespaces(t Ticket, namespaces []record.Namespace) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.panel != PanelNamespaces || !c.current(t) {
		return false
	}
	c.namespaces = append([]record.Namespace(nil), namespaces...)
	c.ready(PanelNamespaces, len(c.namespaces))
	return true
}

// ApplySets stores the set listing of request t.
func (c *Coordinator) ApplySets(t Ticket, sets []record.Set) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.panel != PanelSets || !c.current(t) {
		return false
	}
	c.sets = append([]record.Set(nil), sets...)
	c.ready(PanelSets, len(c.sets))
	return true
}

// Fail records the failure of request t. The data of the panel is cleared so
// that no stale result stays visible. Stale failures are discarded.
func (c *Coordinator) Fail(t Ticket, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(t) {
		Logger.Debugf("discarding stale %s failure: %v", t.panel, err)
		return false
	}
	c.clear(t.panel)
	c.panels[t.panel] = PanelStatus{State: StateError, Message: err.Error()}
	return true
}

// --------------------------------------------------------------------------
// Pagination and notices
// --------------------------------------------------------------------------

// GoToPage moves to a page of the record collection. Pages outside
// [1, TotalPages] are rejected without a state change.
func (c *Coordinator) GoToPage(page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.GoTo(page)
}

// SetPageSize changes the page size and returns to page 1.
func (c *Coordinator) SetPageSize(size int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.SetPageSize(size)
}

// Report sets the notice line to the message of err, or clears it for nil.
func (c *Coordinator) Report(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.notice = ""
		return
	}
	c.notice = err.Error()
}

// Selection returns a copy of the current selection.
func (c *Coordinator) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection()
}

func (c *Coordinator) selection() Selection {
	sel := c.sel
	if sel.Record != nil {
		cp := sel.Record.Clone()
		sel.Record = &cp
	}
	return sel
}

// Snapshot returns a copy of the whole view state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := cloneRecords(c.records)
	start, end := c.pager.Bounds()
	return Snapshot{
		Connection:  c.conn,
		Namespaces:  append([]record.Namespace(nil), c.namespaces...),
		Sets:        append([]record.Set(nil), c.sets...),
		Selection:   c.selection(),
		Records:     records,
		PageRecords: records[start:end],
		Columns:     record.BinNames(records),
		Page:        c.pager.Page(),
		PageSize:    c.pager.PageSize(),
		TotalPages:  c.pager.TotalPages(),
		Panels:      c.panels,
		Notice:      c.notice,
	}
}

func cloneRecords(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
