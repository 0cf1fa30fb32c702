package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/state"
	"github.com/five82/roster/internal/syncer"
)

type fakeRemote struct {
	mu        sync.Mutex
	students  []roster.Student
	stats     roster.Statistics
	searchErr error
	deleteErr error
	createErr error
	// searchGate, when set before use, holds searches until closed.
	searchGate chan struct{}
	deleted   []string
	created   []roster.Student
	updated   []roster.Student
}

func (f *fakeRemote) ListStudents(context.Context) ([]roster.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]roster.Student(nil), f.students...), nil
}

func (f *fakeRemote) FetchStatistics(context.Context) (roster.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, nil
}

func (f *fakeRemote) SearchByRollNumber(_ context.Context, rollNumber string) (*roster.Student, error) {
	if f.searchGate != nil {
		<-f.searchGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	for _, s := range f.students {
		if s.RollNumber == rollNumber {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote) FetchStudent(_ context.Context, id string) (roster.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.ID == id {
			return s, nil
		}
	}
	return roster.Student{}, &roster.Error{Op: "fetch student", Kind: roster.KindStatus, Status: 404}
}

func (f *fakeRemote) CreateStudent(_ context.Context, s roster.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, s)
	s.ID = "new-id"
	f.students = append(f.students, s)
	return nil
}

func (f *fakeRemote) UpdateStudent(_ context.Context, s roster.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, s)
	for i := range f.students {
		if f.students[i].ID == s.ID {
			f.students[i] = s
		}
	}
	return nil
}

func (f *fakeRemote) DeleteStudent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	kept := f.students[:0]
	for _, s := range f.students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.students = kept
	return nil
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		students: []roster.Student{
			{ID: "a1", Name: "Alice", RollNumber: "R1", Class: "10A", Gender: "Female", BatchYear: "2021"},
			{ID: "b2", Name: "Bob", RollNumber: "R2", Class: "10B", Gender: "Male", BatchYear: "2022"},
		},
		stats: roster.Statistics{
			TotalStudents:       2,
			StudentsByGender:    []roster.Bucket{{Label: "Female", Count: 1}, {Label: "Male", Count: 1}},
			StudentsByBatchYear: []roster.Bucket{{Label: "2021", Count: 1}, {Label: "2022", Count: 1}},
		},
	}
}

// newTestModel returns a sized model whose store holds the remote's
// initial data.
func newTestModel(t *testing.T, remote *fakeRemote, view string) Model {
	t.Helper()
	s := syncer.New(remote, &state.Store{}, nil)
	s.Load(context.Background())

	m := New(Options{
		Syncer:    s,
		APIURL:    "http://localhost:5000",
		StartView: view,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		ExportDir: t.TempDir(),
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, m, loadedMsg{})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = press(t, m, string(r))
	}
	return m
}

// runCmd executes cmd, expanding batches, and feeds every message of the
// given types back into the model.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = runCmd(t, m, c)
		}
	case loadedMsg, searchedMsg, deletedMsg, fetchedMsg, savedMsg, exportedMsg, logLinesMsg:
		m = update(t, m, msg)
	}
	return m
}

func TestViewSwitching(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "")
	assert.Equal(t, ViewDashboard, m.currentView)

	m, _ = press(t, m, "2")
	assert.Equal(t, ViewStudents, m.currentView)

	m, _ = press(t, m, "/")
	assert.Equal(t, ViewSearch, m.currentView)
	assert.True(t, m.searchInput.Focused())

	m, _ = press(t, m, "esc")
	assert.False(t, m.searchInput.Focused())

	m, _ = press(t, m, "1")
	assert.Equal(t, ViewDashboard, m.currentView)

	m, _ = press(t, m, "tab")
	assert.Equal(t, ViewStudents, m.currentView)
}

func TestStartViewFromPrefs(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "students")
	assert.Equal(t, ViewStudents, m.currentView)

	m = newTestModel(t, newFakeRemote(), "logs")
	assert.Equal(t, ViewDashboard, m.currentView)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, "students")

	m, cmd := press(t, m, "d")
	require.NotNil(t, m.confirm)
	assert.Nil(t, cmd)
	assert.Equal(t, "a1", m.confirm.student.ID)
	assert.Contains(t, m.View(), "Delete student?")

	m, cmd = press(t, m, "n")
	assert.Nil(t, m.confirm)
	assert.Nil(t, cmd)
	assert.Empty(t, remote.deleted)
	assert.Len(t, m.snapshot.Students, 2)
}

func TestDeleteConfirmedRemovesRow(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, "students")

	m, _ = press(t, m, "j")
	assert.Equal(t, 1, m.selectedRow)

	m, _ = press(t, m, "d")
	m, cmd := press(t, m, "y")
	require.NotNil(t, cmd)
	m = runCmd(t, m, cmd)

	assert.Equal(t, []string{"b2"}, remote.deleted)
	require.Len(t, m.snapshot.Students, 1)
	assert.Equal(t, "a1", m.snapshot.Students[0].ID)
	assert.Equal(t, 0, m.selectedRow)
	assert.Equal(t, "Deleted Bob", m.notice)
}

func TestFailedDeleteKeepsRow(t *testing.T) {
	remote := newFakeRemote()
	remote.deleteErr = errors.New("connection refused")
	m := newTestModel(t, remote, "students")

	m, _ = press(t, m, "d")
	m, cmd := press(t, m, "y")
	m = runCmd(t, m, cmd)

	assert.Len(t, m.snapshot.Students, 2)
	assert.Empty(t, m.notice)
	assert.Equal(t, syncer.OpDelete, m.status.LastFailedOp)
	assert.Contains(t, m.View(), "ERROR")
}

func TestSearchShowsResult(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "")

	m, _ = press(t, m, "/")
	m = typeText(t, m, "R2")
	m, cmd := press(t, m, "enter")
	assert.True(t, m.searching)
	m = runCmd(t, m, cmd)

	assert.False(t, m.searching)
	require.NotNil(t, m.snapshot.SearchResult)
	assert.Equal(t, "Bob", m.snapshot.SearchResult.Name)
	assert.Contains(t, m.View(), "Bob")
}

func TestSearchNoMatch(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "search")

	m = typeText(t, m, "R9")
	m, cmd := press(t, m, "enter")
	m = runCmd(t, m, cmd)

	assert.Nil(t, m.snapshot.SearchResult)
	assert.Contains(t, m.View(), `No student found for roll number "R9"`)
	assert.Len(t, m.snapshot.Students, 2)
}

func TestFailedSearchKeepsPreviousResult(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, "search")

	m = typeText(t, m, "R1")
	m, cmd := press(t, m, "enter")
	m = runCmd(t, m, cmd)
	require.NotNil(t, m.snapshot.SearchResult)

	remote.mu.Lock()
	remote.searchErr = errors.New("timeout")
	remote.mu.Unlock()

	m, _ = press(t, m, "/")
	m = typeText(t, m, "R2")
	m, cmd = press(t, m, "enter")
	m = runCmd(t, m, cmd)

	require.NotNil(t, m.snapshot.SearchResult)
	assert.Equal(t, "Alice", m.snapshot.SearchResult.Name)
}

func TestSupersededSearchKeepsIndicator(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "search")

	m = typeText(t, m, "R2")
	m, _ = press(t, m, "enter")
	require.True(t, m.searching)

	m = update(t, m, searchedMsg{Key: "R1", Applied: false})
	assert.True(t, m.searching)
	assert.False(t, m.searchDone)
	assert.Contains(t, m.View(), "Searching...")
}

func TestHeaderShowsPendingSearch(t *testing.T) {
	remote := newFakeRemote()
	remote.searchGate = make(chan struct{})
	m := newTestModel(t, remote, "search")

	m = typeText(t, m, "R1")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	require.Eventually(t, func() bool {
		return m.activity() == "SEARCHING"
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, m.renderHeader(), "SEARCHING")

	close(remote.searchGate)
	m = update(t, m, <-done)
	assert.Empty(t, m.activity())
	assert.NotContains(t, m.renderHeader(), "SEARCHING")
	require.NotNil(t, m.snapshot.SearchResult)
	assert.Equal(t, "Alice", m.snapshot.SearchResult.Name)
}

func TestDeleteFromSearchClearsSlot(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "search")

	m = typeText(t, m, "R1")
	m, cmd := press(t, m, "enter")
	m = runCmd(t, m, cmd)
	require.NotNil(t, m.snapshot.SearchResult)

	m, _ = press(t, m, "d")
	require.NotNil(t, m.confirm)
	assert.Equal(t, "a1", m.confirm.student.ID)
	m, cmd = press(t, m, "y")
	m = runCmd(t, m, cmd)

	assert.Nil(t, m.snapshot.SearchResult)
	assert.Len(t, m.snapshot.Students, 1)
}

func TestAddStudentSubmitsAndReloads(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, "students")

	m, _ = press(t, m, "a")
	require.NotNil(t, m.form)
	assert.False(t, m.form.editing())

	m = typeText(t, m, "Carol")
	m, _ = press(t, m, "tab")
	m = typeText(t, m, "R3")
	m, cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	assert.True(t, m.form.submitting)
	m = runCmd(t, m, cmd)

	require.Len(t, remote.created, 1)
	assert.Equal(t, "Carol", remote.created[0].Name)
	assert.Equal(t, "R3", remote.created[0].RollNumber)
	assert.Nil(t, m.form)
	assert.Len(t, m.snapshot.Students, 3)
	assert.Equal(t, "Student added", m.notice)
}

func TestEditPrefillsAndUpdates(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, "students")

	m, cmd := press(t, m, "e")
	require.NotNil(t, m.form)
	assert.True(t, m.form.editing())
	assert.Equal(t, "Alice", m.form.inputs[0].Value())
	m = runCmd(t, m, cmd)
	assert.False(t, m.form.fetching)

	m = typeText(t, m, " Smith")
	m, cmd = press(t, m, "ctrl+s")
	m = runCmd(t, m, cmd)

	require.Len(t, remote.updated, 1)
	assert.Equal(t, "a1", remote.updated[0].ID)
	assert.Equal(t, "Alice Smith", remote.updated[0].Name)
	assert.Nil(t, m.form)
	assert.Equal(t, "Alice Smith", m.snapshot.Students[0].Name)
}

func TestFormEscapeDiscardsDraft(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, "")

	m, _ = press(t, m, "a")
	m = typeText(t, m, "q")
	require.NotNil(t, m.form)
	m, _ = press(t, m, "esc")
	assert.Nil(t, m.form)
	assert.Empty(t, remote.created)
}

func TestLateSaveIgnoredByNewerForm(t *testing.T) {
	remote := newFakeRemote()
	m := newTestModel(t, remote, "students")

	m, _ = press(t, m, "a")
	m = typeText(t, m, "Carol")
	m, saveCarol := press(t, m, "ctrl+s")
	require.NotNil(t, saveCarol)

	m, _ = press(t, m, "esc")
	require.Nil(t, m.form)
	m, _ = press(t, m, "a")
	m = typeText(t, m, "Dave")

	m = runCmd(t, m, saveCarol)

	require.NotNil(t, m.form)
	assert.Equal(t, "Dave", m.form.inputs[0].Value())
	assert.False(t, m.form.submitting)
	assert.Empty(t, m.form.err)
	assert.Empty(t, m.notice)
	assert.Len(t, m.snapshot.Students, 3)
}

func TestLateSaveFailureIgnoredByNewerForm(t *testing.T) {
	remote := newFakeRemote()
	remote.createErr = errors.New("old request failed")
	m := newTestModel(t, remote, "students")

	m, _ = press(t, m, "a")
	m = typeText(t, m, "Carol")
	m, saveCarol := press(t, m, "ctrl+s")

	m, _ = press(t, m, "esc")
	m, _ = press(t, m, "a")
	m = typeText(t, m, "Erin")

	m = runCmd(t, m, saveCarol)

	require.NotNil(t, m.form)
	assert.Equal(t, "Erin", m.form.inputs[0].Value())
	assert.Empty(t, m.form.err)
	assert.NotContains(t, m.renderForm(), "old request failed")
}

func TestLogLinesReplacedOnlyWhenChanged(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "")

	first := []string{`{"level":"info","msg":"roster starting"}`}
	m = update(t, m, logLinesMsg{lines: first})
	require.Len(t, m.logState.lines, 1)

	same := []string{`{"level":"info","msg":"roster starting"}`}
	m = update(t, m, logLinesMsg{lines: same})
	assert.Same(t, &first[0], &m.logState.lines[0])

	grown := append(append([]string(nil), same...), `{"level":"warn","msg":"error fetching students"}`)
	m = update(t, m, logLinesMsg{lines: grown})
	assert.Equal(t, grown, m.logState.lines)
	assert.Contains(t, m.logViewport.View(), "error fetching students")
}

func TestDashboardRendersCharts(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "")
	view := m.View()

	assert.Contains(t, view, "Student Distribution by Gender")
	assert.Contains(t, view, "Number of Students by Batch Year")
	assert.Contains(t, view, "Total Students")
	assert.Contains(t, view, "Female")
	assert.Contains(t, view, "2022")
	assert.Contains(t, view, "ONLINE")
}

func TestDashboardEmptyStatistics(t *testing.T) {
	remote := newFakeRemote()
	remote.stats = roster.Statistics{}
	m := newTestModel(t, remote, "")

	view := m.View()
	assert.Contains(t, view, noChartData)
	assert.Equal(t, 2, strings.Count(view, noChartData))
}

func TestExportWritesFiles(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "students")

	m, cmd := press(t, m, "x")
	require.NotNil(t, cmd)
	m = runCmd(t, m, cmd)

	assert.False(t, m.noticeErr, m.notice)
	assert.Contains(t, m.notice, "Exported")
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "")

	m, _ = press(t, m, "?")
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = press(t, m, "j")
	assert.False(t, m.showHelp)
}

func TestCycleThemePersists(t *testing.T) {
	m := newTestModel(t, newFakeRemote(), "")
	before := m.theme.Name

	m, _ = press(t, m, "T")
	assert.Equal(t, NextTheme(before), m.theme.Name)
}
