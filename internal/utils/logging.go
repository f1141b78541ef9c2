package utils

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// GetLogger returns the process logger, building a production logger on first use.
func GetLogger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
		logger = l
	}
	return logger
}

// SetLogger replaces the process logger, e.g. with a development logger for the CLI.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// NewCLILogger logs to stderr in development format when verbose, otherwise not at all.
func NewCLILogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
