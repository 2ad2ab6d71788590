package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)
}

// SetLevel sets the logging level from its string form ("debug", "info",
// "warn", "error"). Unknown values leave the level at info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	logger.SetLevel(parsed)
}

// SetOutput sets the log output.
func SetOutput(output io.Writer) {
	logger.SetOutput(output)
}

// EnableFileLogging mirrors log lines to a rotated file in addition to
// stdout.
func EnableFileLogging(logDir, logFile string, maxSizeMB, maxBackups, maxAgeDays int) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFile),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
	return nil
}

// WithFields creates a new log entry with structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Fatalf logs an error message and exits the process.
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
