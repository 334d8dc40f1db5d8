package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/meraknet/merakd/util/threads"
)

const (
	defaultLogFilename    = "ingressbench.log"
	defaultErrLogFilename = "ingressbench_err.log"
)

type configFlags struct {
	LogLevel           string `long:"loglevel" description:"Set log level {trace, debug, info, warn, error, critical}"`
	Producers          int    `long:"producers" description:"Number of producer goroutines (default: half the CPUs)"`
	DurationSeconds    uint   `long:"duration" default:"10" description:"Benchmark duration in seconds"`
	PacketCapacity     int    `long:"capacity" default:"5000" description:"Per-call packet count ceiling"`
	RecvTimeoutMillis  uint   `long:"recv-timeout" default:"10" description:"Per-call receive timeout in milliseconds"`
	BatchSize          int    `long:"batch-size" default:"64" description:"Packets per batch"`
	DiscardPercent     int    `long:"discard-percent" default:"5" description:"Percentage of packets flagged as discarded upstream"`
	GarbagePercent     int    `long:"garbage-percent" default:"5" description:"Percentage of packets carrying random garbage"`
	TransactionVariety int    `long:"variety" default:"32" description:"Number of distinct signed transactions each producer cycles through"`
	MetricsListen      string `long:"metrics-listen" description:"Serve prometheus metrics on the given address while the benchmark runs"`
}

var cfg *configFlags

func activeConfig() *configFlags {
	return cfg
}

func parseConfig() error {
	cfg = &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return err
	}

	if cfg.Producers <= 0 {
		cfg.Producers = threads.ProcessingThreadCount()
	}

	initLog(defaultLogFilename, defaultErrLogFilename)

	return nil
}
