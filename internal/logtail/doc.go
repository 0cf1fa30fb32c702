// Package logtail reads the tail of roster's log file for the activity view.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines, so it scans the file once and
// holds O(maxLines) lines regardless of file size. Lines come back in
// chronological order. A missing file is not an error.
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//
// # Parsing
//
// roster logs zap JSON records. Parse splits a line into timestamp, level,
// logger name, message and the remaining fields (op, error, request_id and
// so on). Anything that is not a JSON object is passed through as Raw so
// the view can still show it.
package logtail
