package state

import (
	"sync"
	"time"

	"github.com/five82/roster/internal/roster"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Students     []roster.Student
	SearchResult *roster.Student
	Statistics   roster.Statistics

	ListLoaded  bool
	StatsLoaded bool
	LastUpdated time.Time
}

// HasSearchResult reports whether the search slot is occupied.
func (s Snapshot) HasSearchResult() bool {
	return s.SearchResult != nil
}

// Store holds the list, the search slot and the statistics snapshot. It
// performs no I/O and is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetAll replaces the full student list.
func (s *Store) SetAll(students []roster.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Students = cloneStudents(students)
	s.snapshot.ListLoaded = true
	s.snapshot.LastUpdated = time.Now()
}

// SetStatistics replaces the statistics snapshot wholesale. Absent
// sequences become empty ones.
func (s *Store) SetStatistics(stats roster.Statistics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Statistics = cloneStatistics(stats)
	s.snapshot.StatsLoaded = true
	s.snapshot.LastUpdated = time.Now()
}

// SetSearchResult replaces the search slot; nil empties it.
func (s *Store) SetSearchResult(student *roster.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.SearchResult = cloneStudent(student)
	s.snapshot.LastUpdated = time.Now()
}

// RemoveByID drops every list entry with the identifier and clears the
// search slot when it holds the same identifier. It reports whether
// anything changed; repeating the call is a no-op.
func (s *Store) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	kept := s.snapshot.Students[:0:0]
	for _, student := range s.snapshot.Students {
		if student.ID == id {
			changed = true
			continue
		}
		kept = append(kept, student)
	}
	if changed {
		s.snapshot.Students = kept
	}
	if s.snapshot.SearchResult != nil && s.snapshot.SearchResult.ID == id {
		s.snapshot.SearchResult = nil
		changed = true
	}
	if changed {
		s.snapshot.LastUpdated = time.Now()
	}
	return changed
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Students = cloneStudents(s.snapshot.Students)
	snap.SearchResult = cloneStudent(s.snapshot.SearchResult)
	snap.Statistics = cloneStatistics(s.snapshot.Statistics)
	return snap
}

func cloneStudents(items []roster.Student) []roster.Student {
	dup := make([]roster.Student, len(items))
	copy(dup, items)
	return dup
}

func cloneStudent(student *roster.Student) *roster.Student {
	if student == nil {
		return nil
	}
	dup := *student
	return &dup
}

func cloneStatistics(stats roster.Statistics) roster.Statistics {
	dup := stats
	if dup.TotalStudents < 0 {
		dup.TotalStudents = 0
	}
	dup.StudentsByGender = make([]roster.Bucket, len(stats.StudentsByGender))
	copy(dup.StudentsByGender, stats.StudentsByGender)
	dup.StudentsByBatchYear = make([]roster.Bucket, len(stats.StudentsByBatchYear))
	copy(dup.StudentsByBatchYear, stats.StudentsByBatchYear)
	return dup
}
