package util

import "log"

// Logging is a clumsy switch that affects what Logf does.
//
// The wash pipeline logs per-file progress via Logf, so a batch run
// over many thousands of files stays quiet unless asked.
var Logging = false

// Logf calls log.Printf if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}
