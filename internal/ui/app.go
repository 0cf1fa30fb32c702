package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/roster/internal/prefs"
	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/state"
	"github.com/five82/roster/internal/syncer"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewStudents
	ViewSearch
	ViewLogs
)

var viewNames = map[View]string{
	ViewDashboard: "dashboard",
	ViewStudents:  "students",
	ViewSearch:    "search",
	ViewLogs:      "logs",
}

func (v View) String() string {
	return viewNames[v]
}

func parseView(name string) View {
	for v, n := range viewNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return v
		}
	}
	return ViewDashboard
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Syncer      *syncer.Syncer
	APIURL      string
	LogPath     string
	ExportDir   string
	ThemeName   string
	StartView   string
	PrefsPath   string
	RefreshTick time.Duration
}

// deleteTarget is a record awaiting delete confirmation.
type deleteTarget struct {
	student roster.Student
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	sync      *syncer.Syncer
	keys      keyMap
	apiURL    string
	logPath   string
	exportDir string
	prefsPath string
	tick      time.Duration

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot    state.Snapshot
	status      syncer.Status
	lastUpdated time.Time
	loading     bool
	notice      string
	noticeErr   bool

	// Students table
	selectedRow int

	// Search
	searchInput textinput.Model
	searching   bool
	searchDone  bool
	lastSearch  string

	// Delete confirmation
	confirm *deleteTarget

	// Add/edit form; formSeq numbers each opened form so late results
	// from a closed one are ignored
	form    *studentForm
	formSeq uint64

	// Activity log
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.RefreshTick
	if tick <= 0 {
		tick = 2 * time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Placeholder = "Search by Roll Number"
	search.Prompt = "/ "
	search.CharLimit = 64

	m := Model{
		ctx:         ctx,
		sync:        opts.Syncer,
		keys:        DefaultKeyMap(),
		apiURL:      opts.APIURL,
		logPath:     opts.LogPath,
		exportDir:   opts.ExportDir,
		prefsPath:   prefsPath,
		tick:        tick,
		theme:       GetTheme(opts.ThemeName),
		currentView: parseView(opts.StartView),
		searchInput: search,
		logState:    logState{follow: true},
	}
	if m.currentView == ViewLogs {
		m.currentView = ViewDashboard
	}
	if m.currentView == ViewSearch {
		m.searchInput.Focus()
	}
	if m.sync != nil {
		m.snapshot = m.sync.Store().Snapshot()
		m.loading = true
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.sync != nil {
		cmds = append(cmds, loadCmd(m.ctx, m.sync))
	}
	if m.currentView == ViewSearch {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case loadedMsg:
		m.loading = false
		m.refresh()
		return m, nil

	case searchedMsg:
		// A superseded completion leaves the newer search pending.
		if msg.Applied {
			m.searching = false
			if msg.Err == nil {
				m.searchDone = true
				m.lastSearch = msg.Key
			}
		}
		m.refresh()
		return m, nil

	case deletedMsg:
		m.refresh()
		if msg.err == nil {
			m.setNotice("Deleted "+displayName(msg.student), false)
		}
		return m, nil

	case fetchedMsg:
		if m.form != nil && m.form.seq == msg.seq {
			m.form.prefill(msg.student, msg.err)
		}
		return m, nil

	case savedMsg:
		m.refresh()
		if m.form == nil || m.form.seq != msg.seq {
			return m, nil
		}
		if msg.err != nil {
			m.form.fail(msg.err)
			return m, nil
		}
		if msg.created {
			m.setNotice("Student added", false)
		} else {
			m.setNotice("Student updated", false)
		}
		m.form = nil
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.setNotice("Export failed: "+msg.err.Error(), true)
		} else {
			m.setNotice("Exported "+msg.res.CSVPath+" and .pdf", false)
		}
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.searchInput.Focused() {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.confirm != nil {
		return m.renderConfirm()
	}
	if m.form != nil {
		return m.renderForm()
	}

	return m.renderMain()
}

// handleKey routes keyboard input: overlays first, then text inputs, then
// global and view keys.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.savePrefs()
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	if m.form != nil {
		return m.handleFormKey(msg)
	}
	if m.currentView == ViewSearch && m.searchInput.Focused() {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.logState.dirty = true
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(nextView(m.currentView, 1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(nextView(m.currentView, -1))

	case key.Matches(msg, m.keys.ViewDashboard):
		return m.switchView(ViewDashboard)

	case key.Matches(msg, m.keys.ViewStudents):
		return m.switchView(ViewStudents)

	case key.Matches(msg, m.keys.ViewSearch):
		return m.switchView(ViewSearch)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Reload):
		if m.sync == nil {
			return m, nil
		}
		m.loading = true
		return m, loadCmd(m.ctx, m.sync)

	case key.Matches(msg, m.keys.Add):
		m.formSeq++
		m.form = newStudentForm(m.formSeq, nil)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.exportDir, m.snapshot, time.Now())

	case key.Matches(msg, m.keys.Escape):
		if m.currentView != ViewDashboard {
			return m.switchView(ViewDashboard)
		}
		return m, nil
	}

	switch m.currentView {
	case ViewStudents:
		return m.handleStudentsKey(msg)
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

var viewCycle = []View{ViewDashboard, ViewStudents, ViewSearch, ViewLogs}

func nextView(current View, step int) View {
	for i, v := range viewCycle {
		if v == current {
			n := len(viewCycle)
			return viewCycle[((i+step)%n+n)%n]
		}
	}
	return ViewDashboard
}

// switchView activates v and kicks off whatever it needs.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.searchInput.Blur()
	switch v {
	case ViewSearch:
		m.searchInput.Focus()
		return m, textinput.Blink
	case ViewLogs:
		return m, m.refreshLogs()
	}
	return m, nil
}

// targetStudent returns the record the record actions apply to in the
// current view: the selected row or the search result.
func (m Model) targetStudent() (roster.Student, bool) {
	switch m.currentView {
	case ViewStudents:
		if m.selectedRow >= 0 && m.selectedRow < len(m.snapshot.Students) {
			return m.snapshot.Students[m.selectedRow], true
		}
	case ViewSearch:
		if m.snapshot.SearchResult != nil {
			return *m.snapshot.SearchResult, true
		}
	}
	return roster.Student{}, false
}

// handleRecordKey handles edit and delete for the current target.
func (m Model) handleRecordKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		target, ok := m.targetStudent()
		if !ok || target.ID == "" {
			return m, nil, true
		}
		m.formSeq++
		m.form = newStudentForm(m.formSeq, &target)
		var cmd tea.Cmd
		if m.sync != nil {
			cmd = fetchCmd(m.ctx, m.sync, m.formSeq, target.ID)
		}
		return m, tea.Batch(cmd, textinput.Blink), true

	case key.Matches(msg, m.keys.Delete):
		target, ok := m.targetStudent()
		if !ok {
			return m, nil, true
		}
		m.confirm = &deleteTarget{student: target}
		return m, nil, true
	}
	return m, nil, false
}

// handleConfirmKey resolves the delete prompt.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes), key.Matches(msg, m.keys.Confirm):
		target := m.confirm.student
		m.confirm = nil
		if m.sync == nil {
			return m, nil
		}
		return m, deleteCmd(m.ctx, m.sync, target)
	case key.Matches(msg, m.keys.No):
		m.confirm = nil
	}
	return m, nil
}

// handleTick re-reads local state and schedules the next tick. It never
// issues remote reads; those happen on load, reload and after writes.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.refresh()
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// refresh copies the store and sync status into the model.
func (m *Model) refresh() {
	if m.sync == nil {
		return
	}
	m.snapshot = m.sync.Store().Snapshot()
	m.status = m.sync.Status()
	if !m.snapshot.LastUpdated.IsZero() {
		m.lastUpdated = m.snapshot.LastUpdated
	}
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := len(m.snapshot.Students)
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	view := m.currentView
	if view == ViewLogs {
		view = ViewDashboard
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, LastView: view.String()})
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.renderDashboard()
	case ViewStudents:
		return m.renderStudents()
	case ViewSearch:
		return m.renderSearch()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

func (m Model) contentHeight() int {
	h := m.height - 2
	if h < 3 {
		h = 3
	}
	return h
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
