package logger

import (
	"os"
	"sync"

	"github.com/pkg/errors"
)

// backendLog is the logging backend used to create all subsystem loggers.
var backendLog = NewBackend()

var (
	subsystemLoggersMutex sync.Mutex
	subsystemLoggers      = make(map[string]*Logger)
)

// RegisterSubSystem returns the logger for the given subsystem tag, creating
// it if needed. Packages call this from their log.go.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()

	logger, ok := subsystemLoggers[subsystem]
	if !ok {
		logger = backendLog.Logger(subsystem)
		subsystemLoggers[subsystem] = logger
	}
	return logger
}

// InitLog attaches the rotating log files and stdout to the backend and
// starts it. logFile receives everything, errLogFile warnings and up.
func InitLog(logFile, errLogFile string) error {
	err := backendLog.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		return errors.Wrap(err, "error adding stdout to the logger")
	}
	err = backendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		return errors.Wrapf(err, "error adding log file %s to the logger", logFile)
	}
	err = backendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		return errors.Wrapf(err, "error adding log file %s to the logger", errLogFile)
	}
	return backendLog.Run()
}

// SetLogLevels sets the logging level of all registered subsystems.
func SetLogLevels(logLevel Level) {
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()

	for _, logger := range subsystemLoggers {
		logger.SetLevel(logLevel)
	}
}
