package view

import (
	"context"
	"errors"
	"strings"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/record"
)

// Dispatcher issues the requests of the view against a driver and applies
// their results to a Coordinator. Its methods block on the driver and may be
// called from several goroutines; the coordinator tickets make sure that
// only the newest request of the current selection changes the view.
type Dispatcher struct {
	drv        driver.IDriver
	view       *Coordinator
	maxRecords int
}

// NewDispatcher binds a driver to a view. maxRecords bounds scans and
// search results (driver.DefaultMaxRecords if <= 0).
func NewDispatcher(drv driver.IDriver, view *Coordinator, maxRecords int) *Dispatcher {
	if maxRecords <= 0 {
		maxRecords = driver.DefaultMaxRecords
	}
	return &Dispatcher{drv: drv, view: view, maxRecords: maxRecords}
}

// View returns the coordinator the dispatcher writes to.
func (d *Dispatcher) View() *Coordinator { return d.view }

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

// Connect connects the driver, resets the view and loads the namespaces.
// A refused connection is returned as a KindConnection error.
func (d *Dispatcher) Connect(ctx context.Context, params driver.ConnectParams) (record.ConnectionInfo, error) {
	info, err := d.drv.Connect(ctx, params)
	if err != nil {
		err = newError(KindConnection, "connect", err)
		d.view.Report(err)
		return info, err
	}
	d.view.UpdateConnectionStatus(info)
	if !info.Connected {
		msg := info.Message
		if msg == "" {
			msg = "connection refused"
		}
		err = &Error{Kind: KindConnection, Err: errors.New(msg)}
		d.view.Report(err)
		return info, err
	}
	d.view.Report(nil)
	return info, d.ListNamespaces(ctx)
}

// Disconnect disconnects the driver and resets the view. A failure leaves
// the view as it is.
func (d *Dispatcher) Disconnect(ctx context.Context) error {
	if err := d.drv.Disconnect(ctx); err != nil {
		err = newError(KindConnection, "disconnect", err)
		d.view.Report(err)
		return err
	}
	d.view.UpdateConnectionStatus(record.ConnectionInfo{Connected: false})
	d.view.Report(nil)
	return nil
}

// Sync adopts the connection status of the driver, e.g. of a backend that
// is already connected, and loads the namespaces when connected.
func (d *Dispatcher) Sync(ctx context.Context) (record.ConnectionInfo, error) {
	info, err := d.drv.ClusterInfo(ctx)
	if err != nil {
		err = newError(KindConnection, "read cluster info", err)
		d.view.Report(err)
		return info, err
	}
	d.view.UpdateConnectionStatus(info)
	if !info.Connected {
		return info, nil
	}
	return info, d.ListNamespaces(ctx)
}

// --------------------------------------------------------------------------
// Listings
// --------------------------------------------------------------------------

// ListNamespaces reloads the namespace panel.
func (d *Dispatcher) ListNamespaces(ctx context.Context) error {
	t, _ := d.view.Begin(PanelNamespaces)
	namespaces, err := d.drv.ListNamespaces(ctx)
	if err != nil {
		return d.fail(t, newError(KindFetch, "load namespaces", err))
	}
	d.view.ApplyNamespaces(t, namespaces)
	return nil
}

// SelectNamespace selects a namespace and loads its sets.
func (d *Dispatcher) SelectNamespace(ctx context.Context, ns string) error {
	d.view.SelectNamespace(ns)
	return d.ListSets(ctx)
}

// ListSets reloads the set panel of the selected namespace. Without a
// selected namespace nothing happens.
func (d *Dispatcher) ListSets(ctx context.Context) error {
	t, ok := d.view.Begin(PanelSets)
	if !ok {
		return nil
	}
	sets, err := d.drv.ListSets(ctx, t.Namespace())
	if err != nil {
		return d.fail(t, newError(KindFetch, "load sets", err))
	}
	d.view.ApplySets(t, sets)
	return nil
}

// fail applies a failed request; failures of stale requests are dropped.
func (d *Dispatcher) fail(t Ticket, err error) error {
	if !d.view.Fail(t, err) {
		return nil
	}
	return err
}

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

// LoadSet selects a set (and its namespace when it is not selected yet) and
// runs the initial unfiltered scan.
func (d *Dispatcher) LoadSet(ctx context.Context, ns, set string) error {
	if d.view.Selection().Namespace != ns {
		if err := d.SelectNamespace(ctx, ns); err != nil {
			return err
		}
	}
	if err := d.view.SelectSet(set); err != nil {
		return newError(KindValidation, "", err)
	}
	return d.Refresh(ctx)
}

// Refresh scans the selected set again.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	return d.Search(ctx, "", record.MatchExact, true)
}

// Search replaces the record collection with the records of the selected
// set whose key matches pattern. With clear or a blank pattern it runs an
// unfiltered scan instead. Without a selected set it does nothing. A failed
// search clears the collection.
func (d *Dispatcher) Search(ctx context.Context, pattern string, matchType record.MatchType, clear bool) error {
	t, ok := d.view.Begin(PanelRecords)
	if !ok {
		Logger.Debugf("search skipped: no namespace and set selected")
		return nil
	}

	var (
		records []record.Record
		err     error
		op      string
	)
	if clear || strings.TrimSpace(pattern) == "" {
		op = "scan records"
		records, err = d.drv.Scan(ctx, t.Namespace(), t.Set(), d.maxRecords)
	} else {
		op = "search records"
		records, err = d.drv.Search(ctx, record.SearchRequest{
			Namespace:     t.Namespace(),
			SetName:       t.Set(),
			SearchPattern: pattern,
			SearchType:    matchType,
			MaxResults:    d.maxRecords,
		})
	}
	if err != nil {
		return d.fail(t, newError(KindFetch, op, err))
	}
	d.view.UpdateRecords(t, records)
	return nil
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// put validates and writes a record. Nothing is written if validation fails.
func (d *Dispatcher) put(ctx context.Context, rec record.Record) error {
	if err := rec.Validate(); err != nil {
		err = newError(KindValidation, "", err)
		d.view.Report(err)
		return err
	}
	if _, err := d.drv.PutRecord(ctx, rec); err != nil {
		err = newError(KindMutation, "save record", err)
		d.view.Report(err)
		return err
	}
	d.view.Report(nil)
	return nil
}

// SaveRecord writes an edited record, closes the editor and reloads the set.
func (d *Dispatcher) SaveRecord(ctx context.Context, rec record.Record) error {
	if err := d.put(ctx, rec); err != nil {
		return err
	}
	d.view.SelectRecord(nil)
	return d.Refresh(ctx)
}

// SaveEdit applies the editor text to rec and saves the result.
func (d *Dispatcher) SaveEdit(ctx context.Context, rec record.Record, binsText, ttlText string) error {
	edited, err := record.EditRecord(rec, binsText, ttlText)
	if err != nil {
		err = newError(KindValidation, "", err)
		d.view.Report(err)
		return err
	}
	return d.SaveRecord(ctx, edited)
}

// AddRecord writes a new record. The set is reloaded only when the record
// belongs to the displayed set.
func (d *Dispatcher) AddRecord(ctx context.Context, rec record.Record) error {
	if err := d.put(ctx, rec); err != nil {
		return err
	}
	sel := d.view.Selection()
	if sel.HasSet && sel.Namespace == rec.Namespace && sel.Set == rec.SetName {
		return d.Refresh(ctx)
	}
	return nil
}

// AddForm builds a record from the new-record form and adds it.
func (d *Dispatcher) AddForm(ctx context.Context, form record.Form) error {
	rec, err := form.Build()
	if err != nil {
		err = newError(KindValidation, "", err)
		d.view.Report(err)
		return err
	}
	return d.AddRecord(ctx, rec)
}

// DeleteRecord deletes a record, closes the editor if it showed that record
// and reloads the set.
func (d *Dispatcher) DeleteRecord(ctx context.Context, rec record.Record) error {
	deleted, err := d.drv.DeleteRecord(ctx, rec.Namespace, rec.SetName, rec.Key)
	if err != nil {
		err = newError(KindMutation, "delete record", err)
		d.view.Report(err)
		return err
	}
	if !deleted {
		Logger.Warningf("record %s did not exist", rec.Identity())
	}
	d.view.Report(nil)
	if sel := d.view.Selection(); sel.Record != nil && sel.Record.Identity() == rec.Identity() {
		d.view.SelectRecord(nil)
	}
	return d.Refresh(ctx)
}
