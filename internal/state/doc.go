// Package state provides the view-state store for the roster dashboard.
//
// # Overview
//
// The Store is the single source of truth for rendering. It holds three
// slices of client-side state:
//
//   - the full student list
//   - the search slot (at most one student)
//   - the statistics snapshot (total, by gender, by batch year)
//
// It performs no I/O. The syncer package is its only writer; the UI reads
// value snapshots and never mutates them back.
//
// # Architecture
//
//	Writer (syncer.Syncer):            Reader (ui.Model):
//	┌──────────────────────┐          ┌──────────────────────┐
//	│ ListStudents()       │          │                      │
//	│ FetchStatistics()    │          │                      │
//	│ SearchByRollNumber() │          │                      │
//	│ DeleteStudent()      │          │                      │
//	│        ↓             │          │                      │
//	│ SetAll / SetStats /  │─────────→│ store.Snapshot()     │
//	│ SetSearchResult /    │ (mutex)  │        ↓             │
//	│ RemoveByID           │          │ render tables/charts │
//	└──────────────────────┘          └──────────────────────┘
//
// Bubble Tea runs commands on their own goroutines, so completions can land
// while the UI is reading; a sync.RWMutex guards every access.
//
// # Update Semantics
//
//	SetAll(list)            list replaced, ListLoaded = true
//	SetStatistics(stats)    snapshot replaced, nil sequences become empty
//	SetSearchResult(s|nil)  search slot replaced
//	RemoveByID(id)          id dropped from list and from the search slot
//
// RemoveByID is idempotent. Delivering the same removal twice leaves the
// list exactly as the first call did and reports false.
//
// The statistics snapshot is not recomputed after RemoveByID. It reflects
// the last successful statistics read until the next load.
//
// Failure bookkeeping (last error, failure streak, per-operation phase)
// lives in the syncer, so a failed remote call never changes the Store.
//
// # Defensive Copying
//
// Setters clone their input and Snapshot clones its output: slices, the
// search pointer and the statistics sequences. Callers may mutate what
// they pass in or get back without affecting the store.
//
// # Testing Considerations
//
// The zero Store is ready to use:
//
//	store := &state.Store{}
//	snap := store.Snapshot() // empty list, nil search slot, zero stats
package state
