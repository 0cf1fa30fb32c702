// Package config loads roster's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/roster/config.toml
//  3. If the file doesn't exist, start from Default()
//  4. Empty or missing fields keep their defaults
//  5. ROSTER_API_URL and ROSTER_LOG_LEVEL override whatever the file says
//
// # TOML Format
//
//	api_url = "http://localhost:5000"
//	request_timeout = "5s"
//	log_file = "~/.local/state/roster/roster.log"
//	log_level = "info"
//	metrics_addr = ""
//	export_dir = "~/Documents/roster"
//	reload_interval = "0s"
//
// Every field is optional. Tilde expansion is performed for log_file and
// export_dir. A bare host:port api_url gets an http scheme.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and unparseable durations
//   - Validation failures, reported together as "invalid config: ..."
//
// A missing config file is NOT an error. roster works out of the box against
// a service on localhost:5000.
package config
