// Package log is the leveled logger used by every atlasmesh package. It wraps
// a unilogger.LeveledLogger; nothing is logged until Default, New or
// SetLogger installs one.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	unilogger "github.com/neuronlabs/uni-logger"
	"github.com/pkg/errors"
)

const (
	// LDEBUG is the logger DEBUG level.
	LDEBUG = unilogger.DEBUG
	// LINFO is the logger INFO level.
	LINFO = unilogger.INFO
	// LWARNING is the logger WARNING level.
	LWARNING = unilogger.WARNING
	// LERROR is the logger ERROR level.
	LERROR = unilogger.ERROR
	// LCRITICAL is the logger CRITICAL level.
	LCRITICAL = unilogger.CRITICAL
	// LUNKNOWN is the unspecified logger level.
	LUNKNOWN = unilogger.UNKNOWN
)

var (
	logger       unilogger.LeveledLogger
	currentLevel = LINFO
)

// Default creates and sets a new unilogger.BasicLogger writing to os.Stderr.
func Default() {
	New(os.Stderr, "", log.Ltime)
}

// New creates a unilogger.BasicLogger writing to out with the given prefix
// and standard library flags, and sets it as the current logger.
func New(out io.Writer, prefix string, flags int) {
	basic := unilogger.NewBasicLogger(out, prefix, flags)
	basic.SetOutputDepth(4)
	SetLogger(basic)
}

// SetLogger sets l as the current logger at the current level.
func SetLogger(l unilogger.LeveledLogger) {
	logger = l
	if lvl, ok := l.(unilogger.LevelSetter); ok {
		lvl.SetLevel(currentLevel)
	}
}

// Logger returns the current logger.
func Logger() unilogger.LeveledLogger { return logger }

// Level returns the current level.
func Level() unilogger.Level { return currentLevel }

// ParseLevel parses level names such as "debug" or "WARNING".
func ParseLevel(s string) unilogger.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LDEBUG
	case "info":
		return LINFO
	case "warn", "warning":
		return LWARNING
	case "error":
		return LERROR
	case "critical":
		return LCRITICAL
	}
	return LUNKNOWN
}

// SetLevel sets the level of the current and any future logger.
func SetLevel(level unilogger.Level) error {
	if level == LUNKNOWN {
		return errors.New("can't set unknown logger level")
	}
	currentLevel = level
	if logger == nil {
		return nil
	}
	lvl, ok := logger.(unilogger.LevelSetter)
	if !ok {
		return errors.New("logger doesn't implement LevelSetter interface")
	}
	lvl.SetLevel(level)
	return nil
}

// Debug writes the LDEBUG level log.
func Debug(args ...interface{}) {
	if logger != nil {
		logger.Debug(args...)
	}
}

// Debugf writes the formatted LDEBUG level log.
func Debugf(format string, args ...interface{}) {
	if logger != nil {
		logger.Debugf(format, args...)
	}
}

// Info writes the LINFO level log.
func Info(args ...interface{}) {
	if logger != nil {
		logger.Info(args...)
	}
}

// Infof writes the formatted LINFO level log.
func Infof(format string, args ...interface{}) {
	if logger != nil {
		logger.Infof(format, args...)
	}
}

// Warning writes the LWARNING level log.
func Warning(args ...interface{}) {
	if logger != nil {
		logger.Warning(args...)
	}
}

// Warningf writes the formatted LWARNING level log.
func Warningf(format string, args ...interface{}) {
	if logger != nil {
		logger.Warningf(format, args...)
	}
}

// Error writes the LERROR level log.
func Error(args ...interface{}) {
	if logger != nil {
		logger.Error(args...)
	}
}

// Errorf writes the formatted LERROR level log.
func Errorf(format string, args ...interface{}) {
	if logger != nil {
		logger.Errorf(format, args...)
	}
}

// Panicf writes the formatted log and panics.
func Panicf(format string, args ...interface{}) {
	if logger != nil {
		logger.Panicf(format, args...)
	} else {
		panic(fmt.Sprintf(format, args...))
	}
}
