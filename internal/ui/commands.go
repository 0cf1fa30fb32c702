package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/roster/internal/export"
	"github.com/five82/roster/internal/logtail"
	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/state"
	"github.com/five82/roster/internal/syncer"
)

// Messages

type tickMsg time.Time

type loadedMsg syncer.LoadResult

type searchedMsg syncer.SearchResult

type deletedMsg struct {
	student roster.Student
	err     error
}

type fetchedMsg struct {
	seq     uint64
	student roster.Student
	err     error
}

type savedMsg struct {
	seq     uint64
	created bool
	err     error
}

type exportedMsg struct {
	res export.Result
	err error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadCmd(ctx context.Context, s *syncer.Syncer) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg(s.Load(ctx))
	}
}

func searchCmd(ctx context.Context, s *syncer.Syncer, rollNumber string) tea.Cmd {
	return func() tea.Msg {
		return searchedMsg(s.Search(ctx, rollNumber))
	}
}

func deleteCmd(ctx context.Context, s *syncer.Syncer, student roster.Student) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{student: student, err: s.Delete(ctx, student.ID)}
	}
}

func fetchCmd(ctx context.Context, s *syncer.Syncer, seq uint64, id string) tea.Cmd {
	return func() tea.Msg {
		student, err := s.Fetch(ctx, id)
		return fetchedMsg{seq: seq, student: student, err: err}
	}
}

func saveCmd(ctx context.Context, s *syncer.Syncer, seq uint64, student roster.Student) tea.Cmd {
	return func() tea.Msg {
		if student.ID == "" {
			return savedMsg{seq: seq, created: true, err: s.Create(ctx, student)}
		}
		return savedMsg{seq: seq, err: s.Update(ctx, student)}
	}
}

func exportCmd(dir string, snap state.Snapshot, now time.Time) tea.Cmd {
	return func() tea.Msg {
		res, err := export.WriteSnapshot(dir, snap, now)
		return exportedMsg{res: res, err: err}
	}
}

func readLogCmd(path string, limit int) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, limit)
		return logLinesMsg{lines: lines, err: err}
	}
}
