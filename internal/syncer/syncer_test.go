package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/state"
)

type fakeRemote struct {
	mu sync.Mutex

	students []roster.Student
	listErr  error
	stats    roster.Statistics
	statsErr error

	matches   map[string]*roster.Student
	searchErr error

	fetched   roster.Student
	fetchErr  error
	deleteErr error
	writeErr  error

	listCalls int
	deleted   []string
	created   []roster.Student
	updated   []roster.Student

	// When set, the call signals entered and blocks until the gate closes.
	// Gated list and statistics reads answer with the data current when
	// they were issued.
	listGate    chan struct{}
	statsGate   chan struct{}
	searchGates map[string]chan struct{}
	entered     chan string
}

func (f *fakeRemote) wait(ctx context.Context, name string, gate chan struct{}) {
	if gate == nil {
		return
	}
	if f.entered != nil {
		f.entered <- name
	}
	select {
	case <-gate:
	case <-ctx.Done():
	}
}

func (f *fakeRemote) ListStudents(ctx context.Context) ([]roster.Student, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	students := append([]roster.Student(nil), f.students...)
	err := f.listErr
	f.mu.Unlock()
	f.wait(ctx, "list", gate)

	if err != nil {
		return nil, err
	}
	return students, nil
}

func (f *fakeRemote) FetchStatistics(ctx context.Context) (roster.Statistics, error) {
	f.mu.Lock()
	gate := f.statsGate
	stats, err := f.stats, f.statsErr
	f.mu.Unlock()
	f.wait(ctx, "statistics", gate)

	if err != nil {
		return roster.Statistics{}, err
	}
	return stats, nil
}

func (f *fakeRemote) SearchByRollNumber(ctx context.Context, key string) (*roster.Student, error) {
	f.mu.Lock()
	gate := f.searchGates[key]
	f.mu.Unlock()
	f.wait(ctx, "search:"+key, gate)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if m, ok := f.matches[key]; ok && m != nil {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRemote) FetchStudent(context.Context, string) (roster.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched, f.fetchErr
}

func (f *fakeRemote) CreateStudent(_ context.Context, s roster.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.created = append(f.created, s)
	f.students = append(f.students, s)
	return nil
}

func (f *fakeRemote) UpdateStudent(_ context.Context, s roster.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
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
	return nil
}

type recordingObserver struct {
	mu         sync.Mutex
	started    []Op
	succeeded  []Op
	failed     []Op
	superseded []Op
}

func (r *recordingObserver) Started(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, op)
}

func (r *recordingObserver) Succeeded(op Op, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, op)
}

func (r *recordingObserver) Failed(op Op, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, op)
}

func (r *recordingObserver) Superseded(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.superseded = append(r.superseded, op)
}

var errBoom = errors.New("boom")

func seeded() *fakeRemote {
	return &fakeRemote{
		students: []roster.Student{
			{ID: "abc123", Name: "Asha", RollNumber: "1", Gender: "F"},
			{ID: "xyz789", Name: "Ravi", RollNumber: "2", Gender: "M"},
		},
		stats: roster.Statistics{
			TotalStudents:    2,
			StudentsByGender: []roster.Bucket{{Label: "M", Count: 1}, {Label: "F", Count: 1}},
		},
		matches: map[string]*roster.Student{
			"1": {ID: "abc123", Name: "Asha", RollNumber: "1"},
			"2": {ID: "xyz789", Name: "Ravi", RollNumber: "2"},
		},
	}
}

func awaitEntered(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s to reach the remote", want)
	}
}

func TestLoad_AppliesListAndStatistics(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)

	res := s.Load(context.Background())
	require.NoError(t, res.ListErr)
	require.NoError(t, res.StatsErr)

	snap := s.Store().Snapshot()
	assert.True(t, snap.ListLoaded)
	assert.True(t, snap.StatsLoaded)
	assert.Len(t, snap.Students, 2)
	assert.Equal(t, 2, snap.Statistics.TotalStudents)
	assert.Equal(t, PhaseFulfilled, s.Phase(OpList))
	assert.Equal(t, PhaseFulfilled, s.Phase(OpStatistics))
}

func TestLoad_HalvesAreIndependent(t *testing.T) {
	t.Run("statistics fail", func(t *testing.T) {
		remote := seeded()
		remote.statsErr = errBoom
		s := New(remote, &state.Store{}, nil)

		res := s.Load(context.Background())
		require.NoError(t, res.ListErr)
		require.ErrorIs(t, res.StatsErr, errBoom)

		snap := s.Store().Snapshot()
		assert.Len(t, snap.Students, 2)
		assert.False(t, snap.StatsLoaded)
		assert.Zero(t, snap.Statistics.TotalStudents)
		assert.Empty(t, snap.Statistics.StudentsByGender)
		assert.Equal(t, PhaseFailed, s.Phase(OpStatistics))
	})

	t.Run("list fails", func(t *testing.T) {
		remote := seeded()
		remote.listErr = errBoom
		s := New(remote, &state.Store{}, nil)

		res := s.Load(context.Background())
		require.ErrorIs(t, res.ListErr, errBoom)
		require.NoError(t, res.StatsErr)

		snap := s.Store().Snapshot()
		assert.False(t, snap.ListLoaded)
		assert.Empty(t, snap.Students)
		assert.Equal(t, 2, snap.Statistics.TotalStudents)
	})
}

func TestLoad_FailureKeepsPreviousValues(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	s.Load(context.Background())
	before := s.Store().Snapshot()

	remote.mu.Lock()
	remote.listErr = errBoom
	remote.statsErr = errBoom
	remote.mu.Unlock()

	s.Reload(context.Background())
	after := s.Store().Snapshot()
	assert.Equal(t, before, after)

	st := s.Status()
	assert.Equal(t, 2, st.ConsecutiveFailures)
	assert.True(t, st.IsOffline())
	assert.ErrorIs(t, st.LastError, errBoom)
}

func TestDelete_SuccessRemovesEverywhere(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()
	s.Load(ctx)
	s.Search(ctx, "1")
	require.True(t, s.Store().Snapshot().HasSearchResult())

	require.NoError(t, s.Delete(ctx, "abc123"))

	snap := s.Store().Snapshot()
	assert.Equal(t, []roster.Student{{ID: "xyz789", Name: "Ravi", RollNumber: "2", Gender: "M"}}, snap.Students)
	assert.False(t, snap.HasSearchResult())
	assert.Equal(t, []string{"abc123"}, remote.deleted)
	// Statistics are not recomputed after a local delete.
	assert.Equal(t, 2, snap.Statistics.TotalStudents)
}

func TestDelete_FailureLeavesStoreUnchanged(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()
	s.Load(ctx)
	s.Search(ctx, "1")
	before := s.Store().Snapshot()

	remote.deleteErr = errBoom
	err := s.Delete(ctx, "abc123")
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, before, s.Store().Snapshot())
	assert.Equal(t, PhaseFailed, s.Phase(OpDelete))
}

func TestDelete_TwiceIsIdempotentLocally(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()
	s.Load(ctx)

	require.NoError(t, s.Delete(ctx, "abc123"))
	first := s.Store().Snapshot()
	require.NoError(t, s.Delete(ctx, "abc123"))
	assert.Equal(t, first, s.Store().Snapshot())
}

func TestSearch_NoMatchEmptiesSlotOnly(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()
	s.Load(ctx)
	s.Search(ctx, "1")

	res := s.Search(ctx, "404")
	require.NoError(t, res.Err)
	assert.True(t, res.Applied)
	assert.Nil(t, res.Found)

	snap := s.Store().Snapshot()
	assert.False(t, snap.HasSearchResult())
	assert.Len(t, snap.Students, 2)
}

func TestSearch_FailurePreservesPreviousResult(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()
	s.Search(ctx, "2")

	remote.searchErr = errBoom
	res := s.Search(ctx, "1")
	require.ErrorIs(t, res.Err, errBoom)
	assert.Nil(t, res.Found)

	got := s.Store().Snapshot().SearchResult
	require.NotNil(t, got)
	assert.Equal(t, "xyz789", got.ID)
	assert.Equal(t, PhaseFailed, s.Phase(OpSearch))
}

func TestSearch_StaleCompletionDiscarded(t *testing.T) {
	remote := seeded()
	gate := make(chan struct{})
	remote.searchGates = map[string]chan struct{}{"1": gate}
	remote.entered = make(chan string, 1)
	obs := &recordingObserver{}
	s := New(remote, &state.Store{}, obs)
	ctx := context.Background()

	slow := make(chan SearchResult, 1)
	go func() { slow <- s.Search(ctx, "1") }()
	awaitEntered(t, remote.entered, "search:1")

	fast := s.Search(ctx, "2")
	require.True(t, fast.Applied)

	close(gate)
	stale := <-slow
	assert.False(t, stale.Applied)
	assert.Nil(t, stale.Found)

	got := s.Store().Snapshot().SearchResult
	require.NotNil(t, got)
	assert.Equal(t, "xyz789", got.ID)
	assert.Equal(t, []Op{OpSearch}, obs.superseded)
}

func TestLoad_StaleListCompletionDiscarded(t *testing.T) {
	remote := seeded()
	gate := make(chan struct{})
	remote.listGate = gate
	remote.entered = make(chan string, 1)
	obs := &recordingObserver{}
	s := New(remote, &state.Store{}, obs)
	ctx := context.Background()

	slow := make(chan LoadResult, 1)
	go func() { slow <- s.Load(ctx) }()
	awaitEntered(t, remote.entered, "list")

	remote.mu.Lock()
	remote.listGate = nil
	remote.students = []roster.Student{{ID: "new001", Name: "Meera", RollNumber: "3"}}
	remote.mu.Unlock()
	res := s.Reload(ctx)
	require.NoError(t, res.ListErr)

	close(gate)
	<-slow

	snap := s.Store().Snapshot()
	require.Len(t, snap.Students, 1)
	assert.Equal(t, "new001", snap.Students[0].ID)
	assert.Equal(t, PhaseFulfilled, s.Phase(OpList))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Contains(t, obs.superseded, OpList)
}

func TestLoad_StaleStatisticsCompletionDiscarded(t *testing.T) {
	remote := seeded()
	gate := make(chan struct{})
	remote.statsGate = gate
	remote.entered = make(chan string, 1)
	obs := &recordingObserver{}
	s := New(remote, &state.Store{}, obs)
	ctx := context.Background()

	slow := make(chan LoadResult, 1)
	go func() { slow <- s.Load(ctx) }()
	awaitEntered(t, remote.entered, "statistics")

	remote.mu.Lock()
	remote.statsGate = nil
	remote.stats = roster.Statistics{
		TotalStudents:    5,
		StudentsByGender: []roster.Bucket{{Label: "F", Count: 5}},
	}
	remote.mu.Unlock()
	res := s.Reload(ctx)
	require.NoError(t, res.StatsErr)

	close(gate)
	<-slow

	got := s.Store().Snapshot().Statistics
	assert.Equal(t, 5, got.TotalStudents)
	assert.Equal(t, []roster.Bucket{{Label: "F", Count: 5}}, got.StudentsByGender)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Contains(t, obs.superseded, OpStatistics)
}

func TestLoad_InFlightReadCannotResurrectDeletedRecord(t *testing.T) {
	remote := seeded()
	gate := make(chan struct{})
	remote.listGate = gate
	remote.entered = make(chan string, 1)
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()

	done := make(chan LoadResult, 1)
	go func() { done <- s.Load(ctx) }()
	awaitEntered(t, remote.entered, "list")

	require.NoError(t, s.Delete(ctx, "abc123"))
	close(gate)
	res := <-done
	require.NoError(t, res.ListErr)

	snap := s.Store().Snapshot()
	require.Len(t, snap.Students, 1)
	assert.Equal(t, "xyz789", snap.Students[0].ID)

	// A read issued after the delete sees whatever the service returns.
	remote.mu.Lock()
	remote.listGate = nil
	remote.mu.Unlock()
	s.Reload(ctx)
	assert.Len(t, s.Store().Snapshot().Students, 2)
}

func TestSearch_InFlightResultForDeletedRecordIsDropped(t *testing.T) {
	remote := seeded()
	gate := make(chan struct{})
	remote.searchGates = map[string]chan struct{}{"1": gate}
	remote.entered = make(chan string, 1)
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()

	done := make(chan SearchResult, 1)
	go func() { done <- s.Search(ctx, "1") }()
	awaitEntered(t, remote.entered, "search:1")

	require.NoError(t, s.Delete(ctx, "abc123"))
	close(gate)
	res := <-done
	assert.True(t, res.Applied)
	assert.Nil(t, res.Found)
	assert.False(t, s.Store().Snapshot().HasSearchResult())
}

func TestCreate_ReloadsOnSuccessOnly(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()
	s.Load(ctx)

	require.NoError(t, s.Create(ctx, roster.Student{ID: "new1", Name: "Meera"}))
	assert.Equal(t, 2, remote.listCalls)
	assert.Len(t, s.Store().Snapshot().Students, 3)

	remote.writeErr = errBoom
	require.ErrorIs(t, s.Create(ctx, roster.Student{Name: "Nope"}), errBoom)
	assert.Equal(t, 2, remote.listCalls)
	assert.Equal(t, PhaseFailed, s.Phase(OpCreate))
}

func TestUpdate_ReplacesThroughReload(t *testing.T) {
	remote := seeded()
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()
	s.Load(ctx)

	edited := roster.Student{ID: "xyz789", Name: "Ravi K", RollNumber: "2", Gender: "M"}
	require.NoError(t, s.Update(ctx, edited))

	snap := s.Store().Snapshot()
	require.Len(t, snap.Students, 2)
	assert.Equal(t, "Ravi K", snap.Students[1].Name)
	assert.Equal(t, []roster.Student{edited}, remote.updated)
}

func TestFetch_DoesNotTouchStore(t *testing.T) {
	remote := seeded()
	remote.fetched = roster.Student{ID: "abc123", Name: "Asha"}
	s := New(remote, &state.Store{}, nil)

	got, err := s.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.False(t, s.Store().Snapshot().ListLoaded)
}

func TestStatus_SuccessResetsFailures(t *testing.T) {
	remote := seeded()
	remote.searchErr = errBoom
	s := New(remote, &state.Store{}, nil)
	ctx := context.Background()

	s.Search(ctx, "1")
	assert.Equal(t, 1, s.Status().ConsecutiveFailures)
	assert.Equal(t, OpSearch, s.Status().LastFailedOp)

	remote.mu.Lock()
	remote.searchErr = nil
	remote.mu.Unlock()
	s.Search(ctx, "1")

	st := s.Status()
	assert.Zero(t, st.ConsecutiveFailures)
	assert.NoError(t, st.LastError)
	assert.False(t, st.IsOffline())
	assert.Zero(t, st.Pending)
}

func TestPhase_IdleBeforeFirstRequest(t *testing.T) {
	s := New(seeded(), &state.Store{}, nil)
	assert.Equal(t, PhaseIdle, s.Phase(OpSearch))
	assert.Equal(t, "idle", s.Phase(OpSearch).String())
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	remote := seeded()
	remote.deleteErr = errBoom
	s := New(remote, &state.Store{}, Observers{a, b})

	_ = s.Delete(context.Background(), "abc123")
	for _, o := range []*recordingObserver{a, b} {
		assert.Equal(t, []Op{OpDelete}, o.started)
		assert.Equal(t, []Op{OpDelete}, o.failed)
		assert.Empty(t, o.succeeded)
	}
}

func TestLogObserver_FailureMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewLogObserver(zap.New(core))

	remote := seeded()
	remote.listErr = errBoom
	remote.statsErr = errBoom
	s := New(remote, &state.Store{}, obs)
	s.Load(context.Background())

	errorsOnly := logs.FilterLevelExact(zapcore.ErrorLevel)
	assert.Equal(t, 1, errorsOnly.FilterMessage("error fetching students").Len())
	assert.Equal(t, 1, errorsOnly.FilterMessage("error fetching student statistics").Len())

	entry := errorsOnly.FilterMessage("error fetching students").All()[0]
	assert.Equal(t, "list", entry.ContextMap()["op"])
	assert.Equal(t, "boom", entry.ContextMap()["error"])
}

func TestLogObserver_ClientErrorFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewLogObserver(zap.New(core))

	err := &roster.Error{Op: "delete student", Path: "/students/x", Kind: roster.KindStatus, Status: 500, RequestID: "req-1"}
	obs.Failed(OpDelete, time.Millisecond, err)

	entries := logs.FilterMessage("error deleting student").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "status", fields["kind"])
	assert.Equal(t, "req-1", fields["request_id"])
}
