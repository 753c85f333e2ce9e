// Package log defines the structured logging contract used across the
// module and provides a zerolog-backed implementation plus a no-op logger
// for library consumers that bring their own.
package log
