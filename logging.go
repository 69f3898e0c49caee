package gochan

import "github.com/rs/zerolog"

// logger is the package-wide diagnostic logger. It defaults to a no-op so
// gochan stays silent unless a host process opts in with SetLogger. No
// code in this package currently writes to it; SetLogger only installs
// the logger.
var logger = zerolog.Nop()

// SetLogger replaces the package-wide diagnostic logger. Typical use is
// to pass a sub-logger already tagged with a component field, e.g.
// gochan.SetLogger(baseLogger.With().Str("component", "gochan").Logger()).
func SetLogger(l zerolog.Logger) {
	logger = l
}
