package common

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger, falling back to a bare console
// logger if SetupLogger hasn't run yet (startup-order safety net).
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		defer loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(writerConfig(nil, models.LogWriterTypeConsole))
		globalLogger.Warn().Msg("Using fallback logger - SetupLogger() should run during startup")
	}
	return globalLogger
}

// SetupLogger builds the logger from configuration and installs it as the
// global singleton.
func SetupLogger(cfg *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	hasStdout := false
	for _, o := range cfg.Logging.Output {
		if o == "stdout" || o == "console" {
			hasStdout = true
		}
	}
	if hasStdout || len(cfg.Logging.Output) == 0 {
		logger = logger.WithConsoleWriter(writerConfig(cfg, models.LogWriterTypeConsole))
	}
	logger = logger.WithMemoryWriter(writerConfig(cfg, models.LogWriterTypeMemory))
	logger = logger.WithLevelFromString(cfg.Logging.Level)

	loggerMutex.Lock()
	globalLogger = logger
	loggerMutex.Unlock()

	return logger
}

func writerConfig(cfg *Config, writerType models.LogWriterType) models.WriterConfiguration {
	timeFormat := "15:04:05.000"
	if cfg != nil && cfg.Logging.TimeFormat != "" {
		timeFormat = cfg.Logging.TimeFormat
	}
	return models.WriterConfiguration{
		Type:             writerType,
		TimeFormat:       timeFormat,
		DisableTimestamp: false,
		TextOutput:       true,
	}
}
