package logger

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"
)

// logEntry is a single formatted log message together with the level it was
// written at, ready to be handed to the backend's writers.
type logEntry struct {
	log   []byte
	level Level
}

// Logger is a subsystem logger. It is safe for concurrent use by multiple
// goroutines.
type Logger struct {
	lvl       Level // specified as atomic, must stay first for alignment
	tag       string
	b         *Backend
	writeChan chan logEntry
}

// Level returns the current logging level of the logger.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32((*uint32)(&l.lvl)))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(logLevel Level) {
	atomic.StoreUint32((*uint32)(&l.lvl), uint32(logLevel))
}

// Trace formats a message using the default formats for its operands and
// writes it at the trace level.
func (l *Logger) Trace(args ...interface{}) {
	l.write(LevelTrace, args...)
}

// Tracef formats a message according to a format specifier and writes it at
// the trace level.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.writef(LevelTrace, format, args...)
}

// Debug writes a message at the debug level.
func (l *Logger) Debug(args ...interface{}) {
	l.write(LevelDebug, args...)
}

// Debugf writes a formatted message at the debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.writef(LevelDebug, format, args...)
}

// Info writes a message at the info level.
func (l *Logger) Info(args ...interface{}) {
	l.write(LevelInfo, args...)
}

// Infof writes a formatted message at the info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.writef(LevelInfo, format, args...)
}

// Warn writes a message at the warn level.
func (l *Logger) Warn(args ...interface{}) {
	l.write(LevelWarn, args...)
}

// Warnf writes a formatted message at the warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.writef(LevelWarn, format, args...)
}

// Error writes a message at the error level.
func (l *Logger) Error(args ...interface{}) {
	l.write(LevelError, args...)
}

// Errorf writes a formatted message at the error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.writef(LevelError, format, args...)
}

// Critical writes a message at the critical level.
func (l *Logger) Critical(args ...interface{}) {
	l.write(LevelCritical, args...)
}

// Criticalf writes a formatted message at the critical level.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.writef(LevelCritical, format, args...)
}

func (l *Logger) write(logLevel Level, args ...interface{}) {
	if l.Level() > logLevel {
		return
	}
	l.print(logLevel, fmt.Sprint(args...))
}

func (l *Logger) writef(logLevel Level, format string, args ...interface{}) {
	if l.Level() > logLevel {
		return
	}
	l.print(logLevel, fmt.Sprintf(format, args...))
}

// print formats the header for the given level and message and sends the
// entry to the backend. If the backend is not running the entry is written
// directly to stderr so that early errors are never silently lost.
func (l *Logger) print(logLevel Level, message string) {
	buf := &bytes.Buffer{}
	formatHeader(buf, l.b.flag, logLevel, l.tag)
	buf.WriteString(message)
	buf.WriteByte('\n')

	if !l.b.IsRunning() {
		_, _ = fmt.Fprint(os.Stderr, buf.String())
		return
	}
	l.writeChan <- logEntry{log: buf.Bytes(), level: logLevel}
}

// formatHeader writes "2006-01-02 15:04:05.000 [LVL] TAG: " and, when file
// flags are set, the callsite location.
func formatHeader(buf *bytes.Buffer, flag uint32, logLevel Level, tag string) {
	t := time.Now().Format("2006-01-02 15:04:05.000")
	buf.WriteString(t)
	buf.WriteString(" [")
	buf.WriteString(logLevel.String())
	buf.WriteString("] ")
	buf.WriteString(tag)

	if flag&(LogFlagShortFile|LogFlagLongFile) != 0 {
		file, line := callsite(flag)
		fmt.Fprintf(buf, " %s:%d", file, line)
	}

	buf.WriteString(": ")
}

// callsite returns the file name and line number of the logging callsite.
func callsite(flag uint32) (string, int) {
	// Skip formatHeader, print, writef/write and the exported level method.
	_, file, line, ok := runtime.Caller(5)
	if !ok {
		return "???", 0
	}
	if flag&LogFlagShortFile != 0 {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if os.IsPathSeparator(file[i]) {
				short = file[i+1:]
				break
			}
		}
		file = short
	}
	return file, line
}
