// Package debug provides an opt-in debug log for gt.
//
// Logging is off unless --debug-log or general.debug_log names a file. Every
// git invocation is logged with its duration.
package debug
