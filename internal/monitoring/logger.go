package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debug gates per-frame diagnostic output. Frame-rate logging is far too
// chatty for production sessions, so Debugf is a no-op unless enabled.
var Debug = false

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Debugf logs through Logf only when Debug is enabled.
func Debugf(format string, v ...interface{}) {
	if Debug {
		Logf(format, v...)
	}
}
