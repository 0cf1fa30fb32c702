// Package ui provides the terminal dashboard for the roster service.
//
// The interface is a Bubble Tea program. Model holds UI-only state (the
// active view, table cursor, search text, form drafts, delete prompt) and
// a copy of the latest state.Snapshot. All remote work goes through a
// syncer.Syncer inside tea.Cmd functions; the model never writes the store
// and only re-reads it when a command completes or the refresh tick fires.
//
// # Views
//
//   - Dashboard: summary cards plus the gender and batch-year charts
//   - Students: the full list with edit, delete and add actions
//   - Search: roll-number lookup showing at most one record
//   - Activity Log: the tail of the JSON log file, decoded by logtail
//
// Add and edit open a form overlay; delete always asks for confirmation.
// Remote failures never open dialogs. They surface in the header as an
// offline indicator and the last error, and the previous data stays on
// screen.
//
// # Key Bindings
//
//   - 1 / 2 / "/" / L: Dashboard, Students, Search, Activity Log
//   - Tab, Shift+Tab: Cycle views
//   - j/k, g/G, ctrl+d/u: Move in tables and the log
//   - a / e / d: Add, edit, delete
//   - r: Reload list and statistics
//   - x: Export the list to CSV and PDF
//   - Space: Toggle log follow mode
//   - T: Cycle theme
//   - h or ?: Help
//   - q or Ctrl+C: Quit
package ui
