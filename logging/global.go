package logging

import (
	"sync"
)

var (
	globalLogger Logger
	globalMu     sync.RWMutex
)

// Global returns the process logger. Until SetGlobal is called it is a
// no-op logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return NewNop()
	}
	return globalLogger
}

// SetGlobal replaces the global logger with the given logger.
func SetGlobal(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}
