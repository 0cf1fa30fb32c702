// Package syncer keeps the view-state store consistent with the remote
// student collection.
//
// Every remote call goes through a Syncer. Reads (list, statistics, search)
// carry a generation number taken when they are issued; a completion is
// applied only if no newer read for the same slot was issued in the
// meantime. Deletes are applied locally only after the service confirms
// them, and each confirmation is remembered so that a read issued before it
// cannot bring the record back.
//
// Failures never surface as blocking errors. They are reported to the
// Observer, counted in Status, and the affected slot keeps its last good
// value.
package syncer
