package slogutil

import (
	"io"
	"log/slog"
	"path/filepath"

	"facettes/internal/config"
)

// LoggerFactory builds the process logger from CLI flags and configuration.
// The console honours the CLI level; the log file honours logging.level.
type LoggerFactory struct {
	dataDir  string
	config   *config.Config
	cliLevel slog.Level
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory.
func NewLoggerFactory(dataDir string, cfg *config.Config, cliLevel slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		dataDir:  dataDir,
		config:   cfg,
		cliLevel: cliLevel,
	}
}

// CLILogger returns a logger writing to console and, when logging.file is
// set, to a rotating file under the data directory. A file that cannot be
// opened is skipped.
func (f *LoggerFactory) CLILogger(console io.Writer) *slog.Logger {
	consoleHandler := NewLineHandler(console, &slog.HandlerOptions{Level: f.cliLevel})

	path := f.LogPath()
	if path == "" {
		return slog.New(consoleHandler)
	}

	fileLogger, closer, err := f.createFileLogger(path, LevelFromString(f.config.Logging.Level))
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Debug("log file unavailable", "path", path, "error", err.Error())
		return logger
	}
	f.closers = append(f.closers, closer)

	return slog.New(NewTeeHandler(consoleHandler, fileLogger.Handler()))
}

// LogPath resolves logging.file against the data directory.
func (f *LoggerFactory) LogPath() string {
	file := f.config.Logging.File
	if file == "" {
		return ""
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(f.dataDir, file)
}

func (f *LoggerFactory) createFileLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if f.config.Logging.MaxSize != "" {
		return NewFileLoggerWithRotation(path, level, f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	}
	rf, err := OpenRotatingFile(path, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(rf, level), rf, nil
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
