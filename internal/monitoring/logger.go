// Package monitoring holds the package-level diagnostic logger shared by
// the recorder, store and report code.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var debug bool

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebug toggles per-frame debug logging. Off by default because a
// session can easily produce tens of thousands of frame records.
func SetDebug(enabled bool) {
	debug = enabled
}

// Debugf logs through Logf only when debug logging is enabled.
func Debugf(format string, v ...interface{}) {
	if debug {
		Logf(format, v...)
	}
}
