package main

import (
	"fmt"
	"os"

	"github.com/meraknet/merakd/infrastructure/logger"
	"github.com/meraknet/merakd/util/panics"
)

var (
	log   = logger.RegisterSubSystem("IBEN")
	spawn = panics.GoroutineWrapperFunc(log)
)

func initLog(logFile, errLogFile string) {
	level := logger.LevelInfo
	if activeConfig().LogLevel != "" {
		var ok bool
		level, ok = logger.LevelFromString(activeConfig().LogLevel)
		if !ok {
			fmt.Fprintf(os.Stderr, "Log level %s doesn't exist\n", activeConfig().LogLevel)
			os.Exit(1)
		}
	}
	err := logger.InitLog(logFile, errLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %+v\n", err)
		os.Exit(1)
	}
	logger.SetLogLevels(level)
}
