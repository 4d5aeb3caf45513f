// Package log defines the structured logger used across phaselight and a
// zap-backed implementation of it.
package log

// Logger is the logging contract used by lights, observers and task pools.
type Logger interface {
	// Debug starts a new message with debug level.
	Debug(...any)
	// Debugf starts a new message with debug level.
	Debugf(string, ...any)
	// Info starts a new message with info level.
	Info(...any)
	// Infof starts a new message with info level.
	Infof(string, ...any)
	// Warn starts a new message with warn level.
	Warn(...any)
	// Warnf starts a new message with warn level.
	Warnf(string, ...any)
	// Error starts a new message with error level.
	Error(...any)
	// Errorf starts a new message with error level.
	Errorf(string, ...any)
	// With returns a Logger that attaches the given key-value pairs to every entry.
	With(keyValues ...any) Logger
	// Enabled reports whether the given level would be written.
	Enabled(level Level) bool
	// LogLevel returns the log level being used
	LogLevel() Level
}
