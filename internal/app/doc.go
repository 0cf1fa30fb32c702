// Package app is the composition root for roster.
//
// Run wires the pieces together and blocks until the TUI exits:
//
//  1. config.Load reads ~/.config/roster/config.toml (or the given path)
//  2. logging.New opens the JSON log file
//  3. roster.NewClient builds the HTTP client for the student service
//  4. syncer.New owns the state.Store and reports to the log observer and,
//     when metrics_addr is set, the Prometheus observer
//  5. StartPoller reloads in the background when reload_interval is set
//  6. ui.Run starts the Bubble Tea program with the saved preferences
//
// # Polling
//
// Polling is off by default: the list and statistics are read at startup,
// on demand (r) and after every create or update. With reload_interval set,
// the poller calls Syncer.Reload on that cadence and doubles the wait after
// each consecutive failure, up to five minutes. Failures are recorded by the
// Syncer like any other read, so the header shows them the same way.
//
// # Error Handling
//
// Run returns errors for an invalid configuration, an unwritable log file
// or an unusable API address. Remote failures after startup never end the
// program. Cancelling the context quits the UI and Run returns nil.
package app
