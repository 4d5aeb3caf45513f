package observers

import "github.com/anggasct/phaselight/pkg/log"

// NewDefaultLoggingObserver creates a logging observer writing info entries to stdout
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(log.DefaultLogger, "TrafficLight")
}
