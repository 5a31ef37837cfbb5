package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	openWriters   []*lumberjack.Logger
	openWritersMu sync.Mutex
)

// newFileWriter returns a rotating writer for <Director>/<level>.log.
func newFileWriter(config Config, level string) *lumberjack.Logger {
	_ = os.MkdirAll(config.Director, 0755)

	w := &lumberjack.Logger{
		Filename:   filepath.Join(config.Director, level+".log"),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}

	openWritersMu.Lock()
	openWriters = append(openWriters, w)
	openWritersMu.Unlock()
	return w
}

// getWriteSyncer combines stdout and the level file as configured. It
// returns nil when neither output is enabled.
func getWriteSyncer(config Config, level string) zapcore.WriteSyncer {
	var syncers []zapcore.WriteSyncer
	if config.LogInTerminal {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}
	if config.Director != "" {
		syncers = append(syncers, zapcore.AddSync(newFileWriter(config, level)))
	}

	switch len(syncers) {
	case 0:
		return nil
	case 1:
		return syncers[0]
	default:
		return zapcore.NewMultiWriteSyncer(syncers...)
	}
}

// CloseAllWriters closes every log file opened so far.
func CloseAllWriters() error {
	openWritersMu.Lock()
	defer openWritersMu.Unlock()

	var lastErr error
	for _, w := range openWriters {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	openWriters = nil
	return lastErr
}
