package browse

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/ValentinKolb/asadmin/lib/view"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/muesli/reflow/truncate"
)

var Logger = logger.GetLogger("browse")

type mode uint8

const (
	modeBrowse mode = iota
	modeSearch
	modeEdit
	modeAdd
	modeConfirmDelete
)

// operations reported by doneMsg
const (
	opConnect    = "connect"
	opDisconnect = "disconnect"
	opSync       = "sync"
	opLoad       = "load"
	opSearch     = "search"
	opSave       = "save"
	opAdd        = "add"
	opDelete     = "delete"
)

const (
	leftWidth     = 30 // outer width of the namespace and set panels
	chromeLines   = 4  // header, notice and help lines
	maxCellWidth  = 24
	defaultWidth  = 100
	defaultHeight = 30
)

var matchTypes = []record.MatchType{record.MatchExact, record.MatchPrefix, record.MatchSuffix, record.MatchContains}

// add form inputs
const (
	fieldNamespace = iota
	fieldSet
	fieldKey
	fieldTTL
	fieldBins
	fieldCount
)

// doneMsg reports the end of one dispatcher call
type doneMsg struct {
	op  string
	err error
}

// Options configure the browser.
type Options struct {
	Dispatcher *view.Dispatcher
	// Params are used by the connect key and, with AutoConnect, on start.
	// Without AutoConnect the browser adopts the status of the driver.
	Params      driver.ConnectParams
	AutoConnect bool
	// Profiles persists the theme; may be nil.
	Profiles    profile.IManager
	Theme       profile.Theme
	EditorWidth int
}

// Model is the bubbletea model of the record browser. All data lives in
// the view coordinator; the model only keeps widgets and input state.
type Model struct {
	ctx    context.Context
	opts   Options
	disp   *view.Dispatcher
	keys   keyMap
	theme  profile.Theme
	styles styles

	mode     mode
	focus    view.Panel
	pending  int
	spinner  spinner.Model
	showHelp bool
	status   string

	width  int
	height int

	snap       view.Snapshot
	namespaces table.Model
	sets       table.Model
	records    table.Model

	search     textinput.Model
	matchType  int
	lastSearch string

	editing   record.Record
	editor    textarea.Model
	ttl       textinput.Model
	editField int

	form      [fieldBins]textinput.Model
	formBins  textarea.Model
	formField int

	deleting record.Record
	back     mode
}

// New creates the browser model.
func New(ctx context.Context, opts Options) *Model {
	if opts.Theme == "" {
		opts.Theme = profile.DefaultTheme
	}
	if opts.EditorWidth == 0 {
		opts.EditorWidth = profile.DefaultEditorWidth
	}
	m := &Model{
		ctx:    ctx,
		opts:   opts,
		disp:   opts.Dispatcher,
		keys:   newKeyMap(),
		focus:  view.PanelNamespaces,
		width:  defaultWidth,
		height: defaultHeight,
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.namespaces = newTable()
	m.sets = newTable()
	m.records = newTable()
	m.setFocus(view.PanelNamespaces)

	m.search = newInput("key pattern")
	m.ttl = newInput("namespace default")
	for i, placeholder := range []string{"namespace", "set", "key", "namespace default"} {
		m.form[i] = newInput(placeholder)
	}
	m.editor = newTextarea("")
	m.formBins = newTextarea("name=value\nage:number=42\ntags:json=[\"a\"]")

	m.applyTheme(opts.Theme)
	m.layout()
	m.sync()
	return m
}

func newTable() table.Model {
	return table.New(table.WithFocused(false), table.WithHeight(5))
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func newTextarea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Placeholder = placeholder
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

// editorColumns converts the stored editor width to terminal columns
func editorColumns(width int) int {
	return profile.ClampEditorWidth(width) / 8
}

func (m *Model) applyTheme(t profile.Theme) {
	m.theme = t
	m.styles = newStyles(t)
	m.spinner.Style = m.styles.title.UnsetBackground().UnsetPadding()
	for _, tbl := range []*table.Model{&m.namespaces, &m.sets, &m.records} {
		tbl.SetStyles(m.styles.table)
	}
}

func (m *Model) rightWidth() int {
	return max(m.width-leftWidth, 40)
}

// layout sizes the widgets to the window
func (m *Model) layout() {
	body := max(m.height-chromeLines, 10)
	top := body / 2
	m.namespaces.SetWidth(leftWidth - 4)
	m.namespaces.SetHeight(max(top-3, 2))
	m.sets.SetWidth(leftWidth - 4)
	m.sets.SetHeight(max(body-top-3, 2))
	m.records.SetWidth(m.rightWidth() - 4)
	m.records.SetHeight(max(body-5, 2))

	inner := m.rightWidth() - 4
	m.editor.SetWidth(min(editorColumns(m.opts.EditorWidth), inner))
	m.editor.SetHeight(max(body-9, 3))
	m.formBins.SetWidth(min(editorColumns(m.opts.EditorWidth), inner))
	m.formBins.SetHeight(max(body-13, 3))
	m.search.Width = max(inner-30, 10)
}

// --------------------------------------------------------------------------
// View state
// --------------------------------------------------------------------------

// sync copies the coordinator state into the tables
func (m *Model) sync() {
	m.snap = m.disp.View().Snapshot()

	nsRows := make([]table.Row, len(m.snap.Namespaces))
	for i, ns := range m.snap.Namespaces {
		nsRows[i] = table.Row{ns.Name, strconv.FormatInt(ns.MasterObjects, 10)}
	}
	setRows(&m.namespaces, []table.Column{{Title: "NAMESPACE", Width: leftWidth - 16}, {Title: "OBJECTS", Width: 8}}, nsRows)

	setRowsData := make([]table.Row, len(m.snap.Sets))
	for i, s := range m.snap.Sets {
		name := s.SetName
		if name == "" {
			name = record.Placeholder
		}
		setRowsData[i] = table.Row{name, strconv.FormatInt(s.ObjectCount, 10)}
	}
	setRows(&m.sets, []table.Column{{Title: "SET", Width: leftWidth - 16}, {Title: "OBJECTS", Width: 8}}, setRowsData)

	keyWidth := len("KEY")
	for _, r := range m.snap.PageRecords {
		keyWidth = max(keyWidth, len(r.Key))
	}
	cols := []table.Column{{Title: "KEY", Width: min(keyWidth, maxCellWidth)}}
	rows := make([]table.Row, len(m.snap.PageRecords))
	for i, r := range m.snap.PageRecords {
		rows[i] = table.Row{r.Key}
	}
	for _, name := range m.snap.Columns {
		width := len(name)
		for i, r := range m.snap.PageRecords {
			cell := record.DisplayBin(r, name)
			width = max(width, len(cell))
			rows[i] = append(rows[i], cell)
		}
		cols = append(cols, table.Column{Title: strings.ToUpper(name), Width: min(width, maxCellWidth)})
	}
	setRows(&m.records, cols, rows)
}

// setRows replaces the content of a table, keeping the cursor in range
func setRows(t *table.Model, cols []table.Column, rows []table.Row) {
	cur := t.Cursor()
	t.SetRows(nil)
	t.SetColumns(cols)
	t.SetRows(rows)
	if len(rows) > 0 {
		t.SetCursor(min(max(cur, 0), len(rows)-1))
	}
}

func (m *Model) setFocus(p view.Panel) {
	m.focus = p
	for i, t := range []*table.Model{&m.namespaces, &m.sets, &m.records} {
		if view.Panel(i) == p {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) focusedTable() *table.Model {
	switch m.focus {
	case view.PanelSets:
		return &m.sets
	case view.PanelRecords:
		return &m.records
	default:
		return &m.namespaces
	}
}

// selectedRecord returns the record under the cursor of the records table
func (m *Model) selectedRecord() (record.Record, bool) {
	i := m.records.Cursor()
	if i < 0 || i >= len(m.snap.PageRecords) {
		return record.Record{}, false
	}
	return m.snap.PageRecords[i], true
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

// run executes fn outside of the update loop and reports it with a doneMsg
func (m *Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	m.pending++
	ctx := m.ctx
	call := func() tea.Msg {
		return doneMsg{op: op, err: fn(ctx)}
	}
	if m.pending == 1 {
		return tea.Batch(m.spinner.Tick, call)
	}
	return call
}

func (m *Model) connect() tea.Cmd {
	params := m.opts.Params
	return m.run(opConnect, func(ctx context.Context) error {
		_, err := m.disp.Connect(ctx, params)
		return err
	})
}

func (m *Model) Init() tea.Cmd {
	if m.opts.AutoConnect {
		return m.connect()
	}
	return m.run(opSync, func(ctx context.Context) error {
		_, err := m.disp.Sync(ctx)
		return err
	})
}

// --------------------------------------------------------------------------
// Update
// --------------------------------------------------------------------------

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.sync()
		return m, nil
	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case doneMsg:
		m.done(msg)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (msg.String() == "ctrl+c" || m.mode == modeBrowse) {
			return m, tea.Quit
		}
		m.status = ""
		switch m.mode {
		case modeSearch:
			return m, m.updateSearch(msg)
		case modeEdit:
			return m, m.updateEdit(msg)
		case modeAdd:
			return m, m.updateAdd(msg)
		case modeConfirmDelete:
			return m, m.updateConfirm(msg)
		default:
			return m, m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) done(msg doneMsg) {
	m.pending = max(m.pending-1, 0)
	if msg.err != nil {
		Logger.Debugf("%s failed: %v", msg.op, msg.err)
	}
	m.sync()
	if msg.err != nil {
		return
	}
	switch msg.op {
	case opSave:
		if m.mode == modeEdit {
			m.mode = modeBrowse
		}
		m.status = "Record saved"
	case opAdd:
		if m.mode == modeAdd {
			m.mode = modeBrowse
		}
		m.status = "Record added"
	case opDelete:
		m.status = "Record deleted"
	case opConnect:
		m.setFocus(view.PanelNamespaces)
	}
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.NextPanel):
		m.setFocus((m.focus + 1) % 3)
	case key.Matches(msg, m.keys.PrevPanel):
		m.setFocus((m.focus + 2) % 3)
	case key.Matches(msg, m.keys.Open):
		return m.open()
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.lastSearch)
		m.search.CursorEnd()
		m.search.Focus()
	case key.Matches(msg, m.keys.Clear):
		m.lastSearch = ""
		return m.run(opSearch, func(ctx context.Context) error {
			return m.disp.Search(ctx, "", record.MatchExact, true)
		})
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	case key.Matches(msg, m.keys.NextPage):
		m.goToPage(m.snap.Page + 1)
	case key.Matches(msg, m.keys.PrevPage):
		m.goToPage(m.snap.Page - 1)
	case key.Matches(msg, m.keys.Bigger):
		m.resizePages(1)
	case key.Matches(msg, m.keys.Smaller):
		m.resizePages(-1)
	case key.Matches(msg, m.keys.Add):
		m.openForm()
	case key.Matches(msg, m.keys.Delete):
		if rec, ok := m.selectedRecord(); ok && m.focus == view.PanelRecords {
			m.confirmDelete(rec)
		}
	case key.Matches(msg, m.keys.Connect):
		return m.connect()
	case key.Matches(msg, m.keys.Disconnect):
		return m.run(opDisconnect, m.disp.Disconnect)
	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
	default:
		t := m.focusedTable()
		var cmd tea.Cmd
		*t, cmd = t.Update(msg)
		return cmd
	}
	return nil
}

// open acts on the row under the cursor of the focused panel
func (m *Model) open() tea.Cmd {
	switch m.focus {
	case view.PanelNamespaces:
		i := m.namespaces.Cursor()
		if i < 0 || i >= len(m.snap.Namespaces) {
			return nil
		}
		ns := m.snap.Namespaces[i].Name
		m.lastSearch = ""
		m.setFocus(view.PanelSets)
		return m.run(opLoad, func(ctx context.Context) error {
			return m.disp.SelectNamespace(ctx, ns)
		})
	case view.PanelSets:
		i := m.sets.Cursor()
		if i < 0 || i >= len(m.snap.Sets) {
			return nil
		}
		ns, set := m.snap.Selection.Namespace, m.snap.Sets[i].SetName
		m.lastSearch = ""
		m.setFocus(view.PanelRecords)
		m.records.SetCursor(0)
		return m.run(opLoad, func(ctx context.Context) error {
			return m.disp.LoadSet(ctx, ns, set)
		})
	case view.PanelRecords:
		if rec, ok := m.selectedRecord(); ok {
			m.openEditor(rec)
		}
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	sel := m.snap.Selection
	return m.run(opLoad, func(ctx context.Context) error {
		switch {
		case sel.HasSet:
			return m.disp.Refresh(ctx)
		case sel.Namespace != "":
			return m.disp.ListSets(ctx)
		default:
			return m.disp.ListNamespaces(ctx)
		}
	})
}

func (m *Model) goToPage(page int) {
	if err := m.disp.View().GoToPage(page); err != nil {
		return
	}
	m.sync()
	m.records.SetCursor(0)
}

func (m *Model) resizePages(dir int) {
	i := slices.Index(view.PageSizes, m.snap.PageSize)
	if i < 0 {
		i = slices.Index(view.PageSizes, view.DefaultPageSize)
	}
	i = min(max(i+dir, 0), len(view.PageSizes)-1)
	if err := m.disp.View().SetPageSize(view.PageSizes[i]); err != nil {
		return
	}
	m.sync()
	m.records.SetCursor(0)
}

func (m *Model) toggleTheme() {
	next := profile.ThemeLight
	if m.theme == profile.ThemeLight {
		next = profile.ThemeDark
	}
	m.applyTheme(next)
	if m.opts.Profiles != nil {
		if err := m.opts.Profiles.SetTheme(next); err != nil {
			m.status = fmt.Sprintf("failed to save theme: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Search
// --------------------------------------------------------------------------

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeBrowse
		m.search.Blur()
	case key.Matches(msg, m.keys.NextPanel):
		m.matchType = (m.matchType + 1) % len(matchTypes)
	case key.Matches(msg, m.keys.Open):
		pattern, mt := m.search.Value(), matchTypes[m.matchType]
		m.lastSearch = strings.TrimSpace(pattern)
		m.mode = modeBrowse
		m.search.Blur()
		m.setFocus(view.PanelRecords)
		m.records.SetCursor(0)
		return m.run(opSearch, func(ctx context.Context) error {
			return m.disp.Search(ctx, pattern, mt, false)
		})
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return cmd
	}
	return nil
}

// --------------------------------------------------------------------------
// Record editor
// --------------------------------------------------------------------------

func (m *Model) openEditor(rec record.Record) {
	m.disp.View().SelectRecord(&rec)
	m.editing = rec
	m.editor.SetValue(record.EditText(rec.Bins))
	m.ttl.SetValue("")
	if rec.TTL != nil {
		m.ttl.SetValue(strconv.FormatInt(*rec.TTL, 10))
	}
	m.editField = 0
	m.ttl.Blur()
	m.editor.Focus()
	m.mode = modeEdit
	m.sync()
}

func (m *Model) closeEditor() {
	m.disp.View().SelectRecord(nil)
	m.editor.Blur()
	m.ttl.Blur()
	m.mode = modeBrowse
	m.sync()
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeEditor()
	case key.Matches(msg, m.keys.NextPanel), key.Matches(msg, m.keys.PrevPanel):
		m.editField = 1 - m.editField
		if m.editField == 0 {
			m.ttl.Blur()
			m.editor.Focus()
		} else {
			m.editor.Blur()
			m.ttl.Focus()
		}
	case key.Matches(msg, m.keys.Save):
		rec, binsText, ttlText := m.editing, m.editor.Value(), m.ttl.Value()
		return m.run(opSave, func(ctx context.Context) error {
			return m.disp.SaveEdit(ctx, rec, binsText, ttlText)
		})
	case msg.String() == "ctrl+d":
		m.confirmDelete(m.editing)
	default:
		var cmd tea.Cmd
		if m.editField == 0 {
			m.editor, cmd = m.editor.Update(msg)
		} else {
			m.ttl, cmd = m.ttl.Update(msg)
		}
		return cmd
	}
	return nil
}

// --------------------------------------------------------------------------
// New record form
// --------------------------------------------------------------------------

func (m *Model) openForm() {
	sel := m.snap.Selection
	for i := range m.form {
		m.form[i].SetValue("")
		m.form[i].Blur()
	}
	m.form[fieldNamespace].SetValue(sel.Namespace)
	m.form[fieldSet].SetValue(sel.Set)
	m.formBins.SetValue("")
	m.formBins.Blur()
	m.formField = fieldKey
	if sel.Namespace == "" {
		m.formField = fieldNamespace
	}
	m.focusFormField()
	m.mode = modeAdd
}

func (m *Model) focusFormField() {
	for i := range m.form {
		if i == m.formField {
			m.form[i].Focus()
		} else {
			m.form[i].Blur()
		}
	}
	if m.formField == fieldBins {
		m.formBins.Focus()
	} else {
		m.formBins.Blur()
	}
}

func (m *Model) updateAdd(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.NextPanel):
		m.formField = (m.formField + 1) % fieldCount
		m.focusFormField()
	case key.Matches(msg, m.keys.PrevPanel):
		m.formField = (m.formField + fieldCount - 1) % fieldCount
		m.focusFormField()
	case key.Matches(msg, m.keys.Save):
		bins, err := record.ParseBinLines(m.formBins.Value())
		if err != nil {
			m.disp.View().Report(&view.Error{Kind: view.KindValidation, Err: err})
			m.sync()
			return nil
		}
		form := record.Form{
			Namespace: strings.TrimSpace(m.form[fieldNamespace].Value()),
			SetName:   strings.TrimSpace(m.form[fieldSet].Value()),
			Key:       m.form[fieldKey].Value(),
			TTL:       m.form[fieldTTL].Value(),
			Bins:      bins,
		}
		return m.run(opAdd, func(ctx context.Context) error {
			return m.disp.AddForm(ctx, form)
		})
	default:
		var cmd tea.Cmd
		if m.formField == fieldBins {
			m.formBins, cmd = m.formBins.Update(msg)
		} else {
			m.form[m.formField], cmd = m.form[m.formField].Update(msg)
		}
		return cmd
	}
	return nil
}

// --------------------------------------------------------------------------
// Delete confirmation
// --------------------------------------------------------------------------

func (m *Model) confirmDelete(rec record.Record) {
	m.deleting = rec
	m.back = m.mode
	m.mode = modeConfirmDelete
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		rec := m.deleting
		m.mode = modeBrowse
		if m.back == modeEdit {
			m.closeEditor()
		}
		return m.run(opDelete, func(ctx context.Context) error {
			return m.disp.DeleteRecord(ctx, rec)
		})
	case key.Matches(msg, m.keys.Cancel):
		m.mode = m.back
	}
	return nil
}

// --------------------------------------------------------------------------
// View
// --------------------------------------------------------------------------

func (m *Model) View() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.panel("Namespaces", view.PanelNamespaces, leftWidth, m.namespaces.View()),
		m.panel("Sets", view.PanelSets, leftWidth, m.sets.View()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, m.rightView())
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.footer())
}

func (m *Model) header() string {
	conn := m.snap.Connection
	var status string
	if conn.Connected {
		name := conn.ClusterName
		if name == "" {
			name = "cluster"
		}
		status = m.styles.success.Render(fmt.Sprintf("● %s (%d nodes)", name, len(conn.Nodes)))
	} else {
		status = m.styles.muted.Render("○ disconnected")
	}
	line := m.styles.title.Render("asadmin") + " " + status
	if sel := m.snap.Selection; sel.Namespace != "" {
		path := sel.Namespace
		if sel.HasSet {
			path += " / " + displaySet(sel.Set)
		}
		line += "  " + m.styles.label.Render(path)
	}
	if m.pending > 0 {
		line += "  " + m.spinner.View()
	}
	return line
}

func (m *Model) footer() string {
	var notice string
	switch {
	case m.mode == modeConfirmDelete:
		notice = m.styles.errorMsg.Render(fmt.Sprintf("Delete record %s? (y/n)", m.deleting.Identity()))
	case m.snap.Notice != "":
		notice = m.styles.errorMsg.Render(truncate.StringWithTail(m.snap.Notice, uint(max(m.width-2, 10)), "…"))
	case m.status != "":
		notice = m.styles.success.Render(m.status)
	}

	var help string
	switch m.mode {
	case modeSearch:
		help = helpLine(m.keys.Open, m.keys.NextPanel, m.keys.Back)
		help = strings.Replace(help, "tab next panel", "tab match type", 1)
	case modeEdit:
		help = helpLine(m.keys.Save, m.keys.NextPanel, m.keys.Back) + " · ctrl+d delete"
		help = strings.Replace(help, "tab next panel", "tab bins/ttl", 1)
	case modeAdd:
		help = helpLine(m.keys.Save, m.keys.NextPanel, m.keys.PrevPanel, m.keys.Back)
		help = strings.NewReplacer("next panel", "next field", "previous panel", "previous field").Replace(help)
	case modeConfirmDelete:
		help = helpLine(m.keys.Confirm, m.keys.Cancel)
	default:
		help = m.keys.browseHelp(m.showHelp)
	}
	return lipgloss.JoinVertical(lipgloss.Left, notice, m.styles.help.Render(help))
}

// panel renders a bordered data panel in the state of the coordinator
func (m *Model) panel(title string, p view.Panel, width int, content string) string {
	st := m.snap.Panel(p)
	style := m.styles.panel
	if p == m.focus && m.mode == modeBrowse {
		style = m.styles.focused
	}
	if st.Refreshing {
		title += " " + m.styles.muted.Render("(refreshing)")
	}

	switch st.State {
	case view.StateLoading:
		content = m.spinner.View() + " Loading..."
	case view.StateError:
		content = m.styles.errorMsg.Render(wrap(st.Message, width-4))
	case view.StateEmpty:
		content = m.styles.muted.Render(emptyText(p, m.snap))
	}
	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, m.styles.label.Render(title), content))
}

func emptyText(p view.Panel, snap view.Snapshot) string {
	switch p {
	case view.PanelNamespaces:
		if !snap.Connection.Connected {
			return "Not connected (press c)"
		}
		return "No namespaces"
	case view.PanelSets:
		if snap.Selection.Namespace == "" {
			return "Select a namespace"
		}
		return "No sets"
	default:
		return "No records"
	}
}

func (m *Model) rightView() string {
	width := m.rightWidth()
	switch m.mode {
	case modeEdit:
		return m.editorView(width)
	case modeAdd:
		return m.formView(width)
	}

	sel := m.snap.Selection
	switch {
	case sel.HasSet:
		title := "Records"
		if m.lastSearch != "" {
			title += fmt.Sprintf(" matching %q (%s)", m.lastSearch, matchTypes[m.matchType])
		}
		content := m.records.View()
		if st := m.snap.Panel(view.PanelRecords); st.State == view.StateReady {
			content = lipgloss.JoinVertical(lipgloss.Left, content, "",
				m.styles.muted.Render(fmt.Sprintf("page %d of %d · %d per page · %d records",
					m.snap.Page, m.snap.TotalPages, m.snap.PageSize, len(m.snap.Records))))
		}
		if m.mode == modeSearch {
			content = lipgloss.JoinVertical(lipgloss.Left,
				m.styles.label.Render("Search ")+m.search.View()+"  "+m.styles.muted.Render(string(matchTypes[m.matchType])),
				content)
		}
		return m.panel(title, view.PanelRecords, width, content)
	case sel.Namespace != "":
		return m.styles.panel.Width(width - 2).Render(m.namespaceStats(width - 4))
	default:
		return m.styles.panel.Width(width - 2).Render(m.styles.muted.Render("Select a namespace and a set to browse records"))
	}
}

// namespaceStats renders the statistics of the selected namespace
func (m *Model) namespaceStats(width int) string {
	ns, ok := m.snap.SelectedNamespace()
	if !ok {
		return m.styles.muted.Render("No statistics available")
	}
	lines := []string{
		m.styles.label.Render("Namespace " + ns.Name),
		"",
		fmt.Sprintf("%-20s %d", "objects", ns.MasterObjects),
		fmt.Sprintf("%-20s %d", "replication factor", ns.ReplicationFactor),
		fmt.Sprintf("%-20s %s", "storage engine", orPlaceholder(ns.StorageEngine)),
		fmt.Sprintf("%-20s %d", "sets", len(m.snap.Sets)),
	}
	if len(ns.Config) > 0 {
		lines = append(lines, "", m.styles.label.Render("Configuration"))
		names := make([]string, 0, len(ns.Config))
		for k := range ns.Config {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			lines = append(lines, truncate.StringWithTail(fmt.Sprintf("%-28s %s", k, ns.Config[k]), uint(max(width, 10)), "…"))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) editorView(width int) string {
	rec := m.editing
	info := []string{m.styles.label.Render("Edit " + rec.Identity())}
	var meta []string
	if rec.Generation != nil {
		meta = append(meta, fmt.Sprintf("generation %d", *rec.Generation))
	}
	if rec.Expiration != "" {
		meta = append(meta, "expires "+rec.Expiration)
	}
	if len(meta) > 0 {
		info = append(info, m.styles.muted.Render(strings.Join(meta, " · ")))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(info, "\n"),
		"",
		m.styles.label.Render("Bins (JSON)"),
		m.editor.View(),
		"",
		m.styles.label.Render("TTL (seconds, -1 never expires) ")+m.ttl.View(),
	)
	return m.styles.focused.Width(width - 2).Render(content)
}

func (m *Model) formView(width int) string {
	labels := []string{"Namespace", "Set", "Key", "TTL"}
	lines := []string{m.styles.label.Render("New record"), ""}
	for i, label := range labels {
		lines = append(lines, m.styles.label.Render(fmt.Sprintf("%-10s ", label))+m.form[i].View())
	}
	lines = append(lines, "",
		m.styles.label.Render("Bins")+m.styles.muted.Render("  one name[:type]=value per line, type is string, number, boolean or json"),
		m.formBins.View())
	return m.styles.focused.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func displaySet(name string) string {
	if name == "" {
		return record.Placeholder
	}
	return name
}

func orPlaceholder(s string) string {
	if s == "" {
		return record.Placeholder
	}
	return s
}

// wrap breaks s into lines of at most width runes
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
