package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/state"
)

// Remote is the subset of the student service the Syncer needs.
type Remote interface {
	ListStudents(ctx context.Context) ([]roster.Student, error)
	FetchStatistics(ctx context.Context) (roster.Statistics, error)
	SearchByRollNumber(ctx context.Context, rollNumber string) (*roster.Student, error)
	FetchStudent(ctx context.Context, id string) (roster.Student, error)
	CreateStudent(ctx context.Context, s roster.Student) error
	UpdateStudent(ctx context.Context, s roster.Student) error
	DeleteStudent(ctx context.Context, id string) error
}

var _ Remote = (*roster.Client)(nil)

// Op names a remote operation.
type Op string

const (
	OpList       Op = "list"
	OpStatistics Op = "statistics"
	OpSearch     Op = "search"
	OpDelete     Op = "delete"
	OpFetch      Op = "fetch"
	OpCreate     Op = "create"
	OpUpdate     Op = "update"
)

func (op Op) failureMessage() string {
	switch op {
	case OpList:
		return "error fetching students"
	case OpStatistics:
		return "error fetching student statistics"
	case OpSearch:
		return "error searching student"
	case OpDelete:
		return "error deleting student"
	case OpFetch:
		return "error fetching student"
	case OpCreate:
		return "error creating student"
	case OpUpdate:
		return "error updating student"
	default:
		return fmt.Sprintf("error in %s", string(op))
	}
}

// Phase is the lifecycle of the most recent request of an operation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseFulfilled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseFulfilled:
		return "fulfilled"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Status summarises failure bookkeeping for the status line.
type Status struct {
	LastError           error
	LastFailedOp        Op
	ConsecutiveFailures int
	Pending             int
}

// IsOffline returns true when the service has failed several calls in a row.
func (s Status) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// LoadResult reports the outcome of each half of a load.
type LoadResult struct {
	ListErr  error
	StatsErr error
}

// SearchResult reports the outcome of a search.
type SearchResult struct {
	Key     string
	Found   *roster.Student
	Applied bool
	Err     error
}

// Syncer is the only writer of a state.Store. It issues remote calls and
// applies their outcomes so that the list and the search slot never
// contradict each other or show a record whose delete was confirmed.
type Syncer struct {
	remote Remote
	store  *state.Store
	obs    Observer

	mu         sync.Mutex
	gens       map[Op]uint64
	phases     map[Op]Phase
	pending    map[Op]int
	epoch      uint64
	tombstones map[string]uint64
	status     Status
}

// New builds a Syncer. A nil observer discards notifications.
func New(remote Remote, store *state.Store, obs Observer) *Syncer {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Syncer{
		remote:     remote,
		store:      store,
		obs:        obs,
		gens:       make(map[Op]uint64),
		phases:     make(map[Op]Phase),
		pending:    make(map[Op]int),
		tombstones: make(map[string]uint64),
	}
}

// Store returns the view-state store the Syncer writes.
func (s *Syncer) Store() *state.Store {
	return s.store
}

// ticket identifies one issued request.
type ticket struct {
	op    Op
	gen   uint64
	epoch uint64
	start time.Time
}

func (s *Syncer) begin(op Op) ticket {
	s.mu.Lock()
	s.gens[op]++
	t := ticket{op: op, gen: s.gens[op], epoch: s.epoch, start: time.Now()}
	s.phases[op] = PhasePending
	s.pending[op]++
	s.mu.Unlock()

	s.obs.Started(op)
	return t
}

// finish settles t. apply runs under the Syncer lock, and only when t is
// still the latest request of its kind (or when latestOnly is false).
// It returns false when the completion was discarded as stale.
func (s *Syncer) finish(t ticket, err error, latestOnly bool, apply func()) bool {
	elapsed := time.Since(t.start)

	s.mu.Lock()
	s.pending[t.op]--
	if latestOnly && t.gen != s.gens[t.op] {
		s.mu.Unlock()
		s.obs.Superseded(t.op)
		return false
	}
	if err != nil {
		s.phases[t.op] = PhaseFailed
		s.status.LastError = err
		s.status.LastFailedOp = t.op
		s.status.ConsecutiveFailures++
	} else {
		s.phases[t.op] = PhaseFulfilled
		s.status.LastError = nil
		s.status.LastFailedOp = ""
		s.status.ConsecutiveFailures = 0
		if apply != nil {
			apply()
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.obs.Failed(t.op, elapsed, err)
	} else {
		s.obs.Succeeded(t.op, elapsed)
	}
	return true
}

// deletedSince reports whether id had its delete confirmed after a request
// stamped with epoch was issued. Callers hold s.mu.
func (s *Syncer) deletedSince(id string, epoch uint64) bool {
	at, ok := s.tombstones[id]
	return ok && at > epoch
}

// Load issues the list read and the statistics read concurrently. Each
// half is applied as soon as it completes; a failure in one never blocks
// the other, and a failed half leaves its slice as it was.
func (s *Syncer) Load(ctx context.Context) LoadResult {
	var (
		wg  sync.WaitGroup
		res LoadResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.ListErr = s.loadList(ctx)
	}()
	go func() {
		defer wg.Done()
		res.StatsErr = s.loadStatistics(ctx)
	}()
	wg.Wait()
	return res
}

// Reload re-synchronizes after an external create or edit. Edited records
// are never merged into the list in place.
func (s *Syncer) Reload(ctx context.Context) LoadResult {
	return s.Load(ctx)
}

func (s *Syncer) loadList(ctx context.Context) error {
	t := s.begin(OpList)
	students, err := s.remote.ListStudents(ctx)
	s.finish(t, err, true, func() {
		kept := make([]roster.Student, 0, len(students))
		for _, st := range students {
			if s.deletedSince(st.ID, t.epoch) {
				continue
			}
			kept = append(kept, st)
		}
		s.store.SetAll(kept)
	})
	return err
}

func (s *Syncer) loadStatistics(ctx context.Context) error {
	t := s.begin(OpStatistics)
	stats, err := s.remote.FetchStatistics(ctx)
	s.finish(t, err, true, func() {
		s.store.SetStatistics(stats)
	})
	return err
}

// Search looks up key and, on success, replaces the search slot with the
// match or empties it. On failure the previous result is kept. Only the
// most recently issued search may write the slot.
func (s *Syncer) Search(ctx context.Context, key string) SearchResult {
	t := s.begin(OpSearch)
	found, err := s.remote.SearchByRollNumber(ctx, key)
	res := SearchResult{Key: key, Err: err}
	res.Applied = s.finish(t, err, true, func() {
		if found != nil && s.deletedSince(found.ID, t.epoch) {
			found = nil
		}
		s.store.SetSearchResult(found)
	})
	if res.Applied && err == nil {
		res.Found = found
	}
	return res
}

// Delete removes id remotely and, only once the service confirms, from
// every local slot. A failed delete changes nothing locally.
func (s *Syncer) Delete(ctx context.Context, id string) error {
	t := s.begin(OpDelete)
	err := s.remote.DeleteStudent(ctx, id)
	s.finish(t, err, false, func() {
		s.epoch++
		s.tombstones[id] = s.epoch
		s.store.RemoveByID(id)
	})
	return err
}

// Fetch reads one record for the edit form. The store is not touched.
func (s *Syncer) Fetch(ctx context.Context, id string) (roster.Student, error) {
	t := s.begin(OpFetch)
	student, err := s.remote.FetchStudent(ctx, id)
	s.finish(t, err, false, nil)
	return student, err
}

// Create submits a new record and reloads on success.
func (s *Syncer) Create(ctx context.Context, student roster.Student) error {
	t := s.begin(OpCreate)
	err := s.remote.CreateStudent(ctx, student)
	s.finish(t, err, false, nil)
	if err != nil {
		return err
	}
	s.Reload(ctx)
	return nil
}

// Update replaces a record and reloads on success.
func (s *Syncer) Update(ctx context.Context, student roster.Student) error {
	t := s.begin(OpUpdate)
	err := s.remote.UpdateStudent(ctx, student)
	s.finish(t, err, false, nil)
	if err != nil {
		return err
	}
	s.Reload(ctx)
	return nil
}

// Phase returns the lifecycle phase of the latest request of op.
func (s *Syncer) Phase(op Op) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[op]
}

// Status returns a copy of the failure bookkeeping.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status
	for _, n := range s.pending {
		st.Pending += n
	}
	return st
}
