package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
	// FatalLevel indicates a log message's level of criticality
	FatalLevel
)

var (
	loggerOnce sync.Once
	logger     *logrus.Logger
)

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}

// ParseLogLevel translates a string representation of a log level to a log level enum.
// Unknown strings produce InfoLevel.
func ParseLogLevel(level string) int {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return TraceLevel
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

func toLogrusLevel(level int) logrus.Level {
	switch level {
	case TraceLevel:
		return logrus.TraceLevel
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// formatter renders entries as "[time] [LEVEL] message key=value..."
type formatter struct {
	TimestampFormat string
}

// Format implements logrus.Formatter
func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] %s", entry.Time.Format(f.TimestampFormat), strings.ToUpper(entry.Level.String()), entry.Message)
	for k, v := range entry.Data {
		fmt.Fprintf(&sb, " %s=%v", k, v)
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

// Logger returns the logger shared by all Sif bag components
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&formatter{TimestampFormat: "15:04:05 MST 2006/01/02"})
		logger.SetLevel(logrus.InfoLevel)
	})
	return logger
}

// SetLevel configures the minimum level of the shared logger
func SetLevel(level int) {
	Logger().SetLevel(toLogrusLevel(level))
}
