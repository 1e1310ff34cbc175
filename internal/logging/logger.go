// Package logging provides structured logging for xssh on top of log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelError LogLevel = "error"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

// Config holds logging configuration.
type Config struct {
	Level  LogLevel  // Minimum log level to output
	Format LogFormat // Output format (json or text)
	Output io.Writer // Output destination (defaults to stderr)
	File   string    // Optional log file; output is teed to it
}

// Logger wraps slog.Logger with the domain-specific helpers the rest of
// the program logs through.
type Logger struct {
	logger  *slog.Logger
	config  Config
	logFile *os.File
}

// NewLogger creates a logger from config. When config.File is set the log
// stream is written both to Output and to the file, appended.
func NewLogger(config Config) (*Logger, error) {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	out := config.Output
	var logFile *os.File
	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", config.File, err)
		}
		logFile = f
		out = io.MultiWriter(config.Output, f)
	}

	opts := &slog.HandlerOptions{Level: convertLogLevel(config.Level)}
	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{
		logger:  slog.New(handler),
		config:  config,
		logFile: logFile,
	}, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func convertLogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// LogRegistryWarning logs a non-fatal registry problem. Resolution
// proceeds with whatever was parsed.
func (l *Logger) LogRegistryWarning(path string, err error) {
	if err != nil {
		l.Warn("host registry unreadable, proceeding without it", "path", path, "error", err.Error())
		return
	}
	l.Warn("host registry not found, proceeding without it", "path", path)
}

// LogResolution logs the outcome of pattern resolution.
func (l *Logger) LogResolution(pattern string, user string, hosts []string) {
	l.Debug("pattern resolved",
		"pattern", pattern,
		"user", user,
		"host_count", len(hosts),
		"hosts", hosts,
	)
}

// LogCommandBuilt logs the built remote command at debug level.
func (l *Logger) LogCommandBuilt(command string, sudo bool) {
	l.Debug("remote command built", "command", command, "sudo", sudo)
}

// LogConnection logs an established SSH connection.
func (l *Logger) LogConnection(host, user string, duration time.Duration) {
	l.Debug("ssh connection established",
		"host", host,
		"user", user,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogConnectionError logs a failed SSH connection.
func (l *Logger) LogConnectionError(host string, err error) {
	l.Error("ssh connection failed",
		"host", host,
		"error", err.Error(),
	)
}

// LogExecution logs a completed remote command.
func (l *Logger) LogExecution(host string, exitCode int, duration time.Duration) {
	l.Info("command executed",
		"host", host,
		"exit_code", exitCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogExecutionError logs a failed remote command.
func (l *Logger) LogExecutionError(host string, err error) {
	l.Error("command execution failed",
		"host", host,
		"error", err.Error(),
	)
}

// LogFleetStart logs the start of a mass-mode run.
func (l *Logger) LogFleetStart(hostCount int) {
	l.Info("mass execution started", "host_count", hostCount)
}

// LogFleetComplete logs the completion of a mass-mode run.
func (l *Logger) LogFleetComplete(total, succeeded, failed int, duration time.Duration) {
	l.Info("mass execution completed",
		"host_count", total,
		"succeeded", succeeded,
		"failed", failed,
		"total_duration_ms", duration.Milliseconds(),
	)
}
